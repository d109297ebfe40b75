// Package simulator drives the demo pipeline: it fabricates chat
// traffic, pushes each message through the filter and moderation
// services, and fans the annotated results out to WebSocket clients.
package simulator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modflow/modflow/pkg/models"
)

// Message categories produced by the generator.
var messageTypes = []string{"normal", "toxic", "spam", "pii"}

// messageTypeWeights is the traffic mix: mostly clean chatter with a
// realistic tail of abuse.
var messageTypeWeights = map[string]int{
	"normal": 70,
	"toxic":  15,
	"spam":   10,
	"pii":    5,
}

var channels = []string{"general", "gaming", "tech-talk", "random", "support"}

var usernames = []string{
	"GamerPro123", "ChatMaster", "StreamFan", "TechGuru", "RandomUser",
	"NightOwl", "CoffeeAddict", "BookWorm", "MusicLover", "Traveler",
	"Foodie", "Artist", "Developer", "Student", "Teacher",
	"SportsFan", "MovieBuff", "Photographer", "Chef", "Musician",
}

var reputations = []string{"new", "regular", "trusted", "moderator"}
var activityLevels = []string{"low", "medium", "high"}

// variations are appended to ~30% of generated messages so repeated
// samples do not hash identically.
var variations = []string{"!", "?", " 😊", " 👍", " 🔥", " ❤️", " 🎮", " 💯"}

const variationChance = 0.3

// simulatedUser is one member of the fixed demo population.
type simulatedUser struct {
	UserID        string
	Username      string
	Reputation    string
	ActivityLevel string
}

// Generator fabricates chat messages from sample pools.
type Generator struct {
	mu      sync.Mutex
	samples map[string][]string
	users   []simulatedUser
	rng     *rand.Rand
}

// NewGenerator loads the sample pools from path, falling back to the
// built-in pools when the file is missing.
func NewGenerator(path string) *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	samples := defaultSamples()
	if data, err := os.ReadFile(path); err == nil {
		var loaded map[string][]string
		if err := json.Unmarshal(data, &loaded); err != nil {
			slog.Warn("Sample data file is invalid, using built-in pools", "path", path, "error", err)
		} else if len(loaded) > 0 {
			samples = loaded
			slog.Info("Sample messages loaded", "path", path, "pools", len(loaded))
		}
	} else if !os.IsNotExist(err) {
		slog.Warn("Could not read sample data file", "path", path, "error", err)
	} else {
		slog.Warn("Sample data file not found, using built-in pools", "path", path)
	}

	users := make([]simulatedUser, len(usernames))
	for i, name := range usernames {
		users[i] = simulatedUser{
			UserID:        fmt.Sprintf("user_%04d", i),
			Username:      name,
			Reputation:    reputations[rng.Intn(len(reputations))],
			ActivityLevel: activityLevels[rng.Intn(len(activityLevels))],
		}
	}

	return &Generator{samples: samples, users: users, rng: rng}
}

// MessageTypes lists the available sample pools.
func (g *Generator) MessageTypes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	types := make([]string, 0, len(g.samples))
	for t := range g.samples {
		types = append(types, t)
	}
	return types
}

// UserPoolSize reports the number of simulated users.
func (g *Generator) UserPoolSize() int {
	return len(g.users)
}

// Channels lists the simulated channels.
func (g *Generator) Channels() []string {
	return channels
}

// Generate fabricates one message. An empty messageType draws from the
// weighted mix; unknown types fall back to the normal pool.
func (g *Generator) Generate(messageType string) *models.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	if messageType == "" {
		messageType = g.weightedType()
	}
	pool, ok := g.samples[messageType]
	if !ok || len(pool) == 0 {
		pool = g.samples["normal"]
	}

	user := g.users[g.rng.Intn(len(g.users))]
	text := pool[g.rng.Intn(len(pool))]
	if g.rng.Float64() < variationChance {
		text += variations[g.rng.Intn(len(variations))]
	}

	return &models.ChatMessage{
		MessageID:   uuid.NewString(),
		UserID:      user.UserID,
		Username:    user.Username,
		ChannelID:   channels[g.rng.Intn(len(channels))],
		Message:     text,
		Timestamp:   time.Now().UTC(),
		MessageType: models.MessageTypeText,
		Metadata: map[string]any{
			"reputation":     user.Reputation,
			"activity_level": user.ActivityLevel,
		},
	}
}

func (g *Generator) weightedType() string {
	total := 0
	for _, t := range messageTypes {
		total += messageTypeWeights[t]
	}
	pick := g.rng.Intn(total)
	for _, t := range messageTypes {
		pick -= messageTypeWeights[t]
		if pick < 0 {
			return t
		}
	}
	return "normal"
}

func defaultSamples() map[string][]string {
	return map[string][]string{
		"normal": {
			"Hey everyone! How's it going?",
			"Just finished a great game session",
			"Anyone know about the new update?",
			"Thanks for the help earlier!",
			"Good morning chat!",
			"What's everyone up to today?",
			"That was an amazing stream!",
			"Can someone help me with this issue?",
			"Love this community ❤️",
			"See you all later!",
			"Great discussion today!",
			"Looking forward to the next event",
			"This feature is really useful",
			"Thanks for sharing that link",
			"Hope everyone has a good day!",
		},
		"toxic": {
			"You're absolutely terrible at this game",
			"This is the worst stream ever",
			"Nobody cares about your opinion",
			"Stop being such a noob",
			"This chat is full of idiots",
			"You should just quit playing",
			"What a waste of time this is",
			"Everyone here is so stupid",
			"This content is garbage",
			"You're all pathetic losers",
		},
		"spam": {
			"🎉 FREE MONEY HERE: bit.ly/fake-link 🎉",
			"CLICK HERE FOR AMAZING DEALS!!!",
			"💰💰💰 CRYPTO INVESTMENT OPPORTUNITY 💰💰💰",
			"Follow my channel for exclusive content!",
			"BUY MY COURSE FOR ONLY $99.99",
			"🚀 MAKE $1000 A DAY FROM HOME 🚀",
			"LIMITED TIME OFFER - ACT NOW!!!",
			"FREE GIFT CARDS - CLICK HERE NOW",
			"EARN MONEY FAST WITH THIS TRICK",
			"SUBSCRIBE TO MY CHANNEL FOR PRIZES",
		},
		"pii": {
			"My email is john.doe@email.com if you want to contact me",
			"Call me at 555-123-4567",
			"I live at 123 Main Street, Anytown USA",
			"My credit card number is 4532-1234-5678-9012",
			"You can reach me at jane.smith@company.com",
			"My phone is (555) 987-6543",
			"I'm at 456 Oak Avenue, Springfield",
			"My SSN is 123-45-6789 for verification",
		},
	}
}
