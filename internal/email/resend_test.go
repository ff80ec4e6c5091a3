package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/godigest/internal/logger"
)

func newTestResendClient(baseURL string) *ResendClient {
	return NewResendClient(ResendClientConfig{APIKey: "re_test", BaseURL: baseURL}, logger.NewNop())
}

func TestResendSenderBroadcastFlow(t *testing.T) {
	var created, sent atomic.Bool
	var gotAuth string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.Method + " " + r.URL.Path {
		case "POST /broadcasts":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			created.Store(true)
			fmt.Fprint(w, `{"id": "bc_123"}`)
		case "POST /broadcasts/bc_123/send":
			sent.Store(true)
			fmt.Fprint(w, `{"id": "bc_123"}`)
		case "GET /audiences/aud_1/contacts":
			fmt.Fprint(w, `{"data": [{"id": "c1"}, {"id": "c2"}, {"id": "c3"}]}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sender := NewResendSender(newTestResendClient(srv.URL), "aud_1", "World Digest", "digest@example.com", logger.NewNop())

	n, err := sender.Send(context.Background(), Message{
		Subject: "World Digest – August 24, 2026",
		HTML:    "<html>digest</html>",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, created.Load())
	assert.True(t, sent.Load())
	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "aud_1", gotPayload["audience_id"])
	assert.Equal(t, "World Digest <digest@example.com>", gotPayload["from"])
	assert.Equal(t, "<html>digest</html>", gotPayload["html"])
}

func TestResendClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id": "bc_9"}`)
	}))
	defer srv.Close()

	client := newTestResendClient(srv.URL)
	client.policy.InitialDelay = 0

	id, err := client.CreateBroadcast(context.Background(), "aud", "f", "s", "<p>x</p>")

	require.NoError(t, err)
	assert.Equal(t, "bc_9", id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResendClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "invalid from address"}`)
	}))
	defer srv.Close()

	_, err := newTestResendClient(srv.URL).CreateBroadcast(context.Background(), "aud", "f", "s", "x")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestResendClientAddContact(t *testing.T) {
	var gotEmail string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/audiences/aud_1/contacts", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotEmail = payload["email"]
		fmt.Fprint(w, `{"id": "c_new"}`)
	}))
	defer srv.Close()

	err := newTestResendClient(srv.URL).AddContact(context.Background(), "aud_1", "new@example.com")

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", gotEmail)
}

func TestResendSenderMissingBroadcastID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := newTestResendClient(srv.URL).CreateBroadcast(context.Background(), "aud", "f", "s", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}
