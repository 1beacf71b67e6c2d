package postmark

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(baseURL string, timeout time.Duration) config.EmailClientSettings {
	return config.EmailClientSettings{
		BaseURL:             baseURL,
		SenderEmail:         "newsletter@example.com",
		AuthorizationToken:  config.NewSecret("test-server-token"),
		TimeoutMilliseconds: int(timeout.Milliseconds()),
	}
}

func mustEmail(t *testing.T, raw string) domain.SubscriberEmail {
	t.Helper()
	email, err := domain.ParseSubscriberEmail(raw)
	require.NoError(t, err)
	return email
}

func TestNewClientRejectsInvalidSender(t *testing.T) {
	cfg := testSettings("https://api.postmarkapp.com", time.Second)
	cfg.SenderEmail = "not-an-email"

	_, err := NewClient(cfg)
	require.Error(t, err)
}

func TestSendConfirmationFiresExpectedRequest(t *testing.T) {
	var gotPath, gotToken, gotContentType string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(testSettings(server.URL, 5*time.Second))
	require.NoError(t, err)

	err = client.SendConfirmation(context.Background(),
		mustEmail(t, "ursula_le_guin@gmail.com"),
		"Welcome!", "<p>confirm</p>", "confirm")
	require.NoError(t, err)

	assert.Equal(t, "/email", gotPath)
	assert.Equal(t, "test-server-token", gotToken)
	assert.Equal(t, "application/json", gotContentType)

	// Wire field names are capitalized
	assert.Equal(t, "newsletter@example.com", gotBody["From"])
	assert.Equal(t, "ursula_le_guin@gmail.com", gotBody["To"])
	assert.Equal(t, "Welcome!", gotBody["Subject"])
	assert.Equal(t, "<p>confirm</p>", gotBody["HtmlBody"])
	assert.Equal(t, "confirm", gotBody["TextBody"])
}

func TestSendConfirmationProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"ErrorCode":405,"Message":"details"}`))
	}))
	defer server.Close()

	client, err := NewClient(testSettings(server.URL, 5*time.Second))
	require.NoError(t, err)

	err = client.SendConfirmation(context.Background(),
		mustEmail(t, "ursula_le_guin@gmail.com"), "s", "h", "t")
	require.Error(t, err)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, SendProviderRejected, sendErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, sendErr.Status)
}

func TestSendConfirmationTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(testSettings(server.URL, 150*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	err = client.SendConfirmation(context.Background(),
		mustEmail(t, "ursula_le_guin@gmail.com"), "s", "h", "t")
	elapsed := time.Since(start)

	require.Error(t, err)
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, SendTimeout, sendErr.Kind)
	// Failure arrives near the timeout, not after a hang.
	assert.Less(t, elapsed, 2*time.Second)
}

func TestSendConfirmationTransportFailure(t *testing.T) {
	// Grab a port that nothing is listening on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(testSettings(url, time.Second))
	require.NoError(t, err)

	err = client.SendConfirmation(context.Background(),
		mustEmail(t, "ursula_le_guin@gmail.com"), "s", "h", "t")
	require.Error(t, err)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, SendTransport, sendErr.Kind)
}

func TestSendErrorNeverCarriesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testSettings(server.URL, time.Second))
	require.NoError(t, err)

	err = client.SendConfirmation(context.Background(),
		mustEmail(t, "ursula_le_guin@gmail.com"), "s", "h", "t")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-server-token")
}
