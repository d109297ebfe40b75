package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_PostsTextPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	}))
	defer srv.Close()

	New(srv.URL).Notify(context.Background(), "⚠️ User user_0001 warned for: spam")

	assert.Equal(t, "⚠️ User user_0001 warned for: spam", got["text"])
}

func TestNotify_DisabledWithoutURL(t *testing.T) {
	// Must not panic or block.
	New("").Notify(context.Background(), "dropped")
	assert.False(t, New("").Enabled())
}

func TestNotify_ServerErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// No error surfaces to the caller.
	New(srv.URL).Notify(context.Background(), "hello")
}

func TestNotify_UnreachableHostIsSwallowed(t *testing.T) {
	New("http://127.0.0.1:1/webhook").Notify(context.Background(), "hello")
}
