package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/apperrors"
)

func testClient(url string) *Client {
	return NewClient(config.LineConfig{
		PushEndpoint:   url,
		Timeout:        5 * time.Second,
		PushRatePerSec: 100,
		PushBurst:      10,
	})
}

func TestPush_Success(t *testing.T) {
	var got pushRequest
	var auth, retry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		retry = r.Header.Get("X-Line-Retry-Key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	msg := BuildVOCard(CardInput{Data: map[string]any{"voNumber": "VO-1"}})
	err := testClient(srv.URL).Push(context.Background(), "tok", "C123", []Message{msg}, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "key-1", retry)
	assert.Equal(t, "C123", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "flex", got.Messages[0].Type)
}

func TestPush_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)","details":[{"message":"must be specified","property":"to"}]}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), "tok", "", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDispatch))
	assert.Equal(t, "LINE API error: The request body has 1 error(s)", apperrors.Message(err))

	details, ok := apperrors.DetailsOf(err).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, details["status"])
	assert.Equal(t, []string{"must be specified"}, details["details"])
}

func TestPush_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("unauthorized"))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), "bad", "C1", nil, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindDispatch))
	assert.Equal(t, "LINE API error: LINE API returned status 401", apperrors.Message(err))
}

func TestPush_DuplicateRetryKeyIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"The retry key is already accepted"}`))
	}))
	defer srv.Close()

	assert.NoError(t, testClient(srv.URL).Push(context.Background(), "tok", "C1", nil, "key-1"))
	assert.Error(t, testClient(srv.URL).Push(context.Background(), "tok", "C1", nil, ""))
}

func TestPush_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := testClient(url).Push(context.Background(), "tok", "C1", nil, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindService))
}
