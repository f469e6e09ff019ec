package douyin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/signsrv"
)

func newSignServer(t *testing.T) *signsrv.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"isok": true,
			"data": map[string]string{"a_bogus": "test-bogus"},
		})
	}))
	t.Cleanup(server.Close)
	return signsrv.New(server.URL)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	c := New(Config{Cookies: "sessionid=abc", Sign: newSignServer(t)})
	c.apiBase = api.URL
	c.retry = media.RetryPolicy{Attempts: 5, Backoff: media.BackoffNone}
	c.verify = &verifyParams{
		msToken:  fakeMsToken(),
		webID:    fakeWebID(),
		verifyFp: genVerifyFp(),
	}
	return c
}

func TestGetCarriesSignedParams(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"status_code": 0})
	})

	var out map[string]any
	require.NoError(t, c.get(context.Background(), "/aweme/v1/web/user/profile/other/", nil, &out))
	assert.Equal(t, "test-bogus", gotQuery["a_bogus"][0])
	assert.Equal(t, "6383", gotQuery["aid"][0])
	assert.NotEmpty(t, gotQuery["msToken"][0])
	assert.NotEmpty(t, gotQuery["webid"][0])
}

func TestBlockedBodyIsTerminal(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte("blocked"))
	})

	var out map[string]any
	err := c.get(context.Background(), "/aweme/v1/web/aweme/post/", nil, &out)

	var fetchErr *media.DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, attempts, "blocked account must not be retried")
}

func TestEmptyBodyIsTerminal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	var out map[string]any
	err := c.get(context.Background(), "/aweme/v1/web/aweme/detail/", nil, &out)
	var fetchErr *media.DataFetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestCheckAliveAdoptsUserAgent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(selfInfo{
			UserUID:   "12345",
			ID:        "12345",
			UserAgent: "Mozilla/5.0 session-ua",
		})
	})

	require.True(t, c.CheckAlive(context.Background()))
	assert.Equal(t, "Mozilla/5.0 session-ua", c.userAgent)
}

func TestCheckAliveFalseWithoutIdentity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(selfInfo{})
	})
	assert.False(t, c.CheckAlive(context.Background()))
}

func TestInitializeSessionFallsBack(t *testing.T) {
	// Unreachable bootstrap endpoints still yield a usable token set.
	c := New(Config{Sign: newSignServer(t)})
	c.bootstrap = bootstrapEndpoints{
		msTokenURL: "http://127.0.0.1:1/web/report",
		webIDURL:   "http://127.0.0.1:1/webid",
	}
	require.NoError(t, c.InitializeSession(context.Background()))
	require.NotNil(t, c.verify)
	assert.NotEmpty(t, c.verify.msToken)
	assert.Len(t, c.verify.webID, 19)
	assert.Contains(t, c.verify.verifyFp, "verify_")
}
