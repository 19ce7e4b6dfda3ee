package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/customsgate/internal/cache"
	"github.com/ppiankov/customsgate/internal/model"
)

func newHSServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRemoteClassifier_Success(t *testing.T) {
	server, _ := newHSServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mens cotton shirt", req.GoodsDescription)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hs_code": "6205.20"}`))
	})

	c, err := NewRemoteClassifier(RemoteOptions{URL: server.URL, AuthHeader: "Bearer token"})
	require.NoError(t, err)

	res := c.Classify(context.Background(), "mens cotton shirt")
	assert.Equal(t, "620520", res.Code)
	assert.Equal(t, model.StatusAPIMatch, res.Status)
	assert.NoError(t, res.Err)
}

func TestRemoteClassifier_TruncatesLongCodes(t *testing.T) {
	server, _ := newHSServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hs_code": "85076000"}`))
	})

	c, err := NewRemoteClassifier(RemoteOptions{URL: server.URL})
	require.NoError(t, err)

	res := c.Classify(context.Background(), "power bank")
	assert.Equal(t, "850760", res.Code)
}

func TestRemoteClassifier_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		statusCode int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			statusCode: http.StatusInternalServerError,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			statusCode: http.StatusUnauthorized,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
		},
		{
			name: "missing code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"label": "shirt"}`))
			},
		},
		{
			name: "short code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"hs_code": "6205"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newHSServer(t, tt.handler)
			c, err := NewRemoteClassifier(RemoteOptions{URL: server.URL})
			require.NoError(t, err)

			res := c.Classify(context.Background(), "mens shirt")
			assert.Equal(t, model.UnclassifiedCode, res.Code)
			assert.Equal(t, model.StatusAPIError, res.Status)

			var svcErr *model.ClassificationServiceError
			require.True(t, errors.As(res.Err, &svcErr))
			assert.Equal(t, model.ClassifierRemote, svcErr.Service)
			assert.Equal(t, tt.statusCode, svcErr.StatusCode)
		})
	}
}

func TestRemoteClassifier_Timeout(t *testing.T) {
	server, _ := newHSServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	c, err := NewRemoteClassifier(RemoteOptions{URL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	res := c.Classify(context.Background(), "mens shirt")
	assert.Equal(t, model.StatusAPIError, res.Status)
	assert.Error(t, res.Err)
}

func TestRemoteClassifier_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewRemoteClassifier(RemoteOptions{URL: url})
	require.NoError(t, err)

	res := c.Classify(context.Background(), "mens shirt")
	assert.Equal(t, model.UnclassifiedCode, res.Code)
	assert.Equal(t, model.StatusAPIError, res.Status)
}

func TestRemoteClassifier_CachesSuccessOnly(t *testing.T) {
	fail := int32(1)
	server, calls := newHSServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"hs_code": "851712"}`))
	})

	c, err := NewRemoteClassifier(RemoteOptions{
		URL:   server.URL,
		Cache: cache.NewMemoryCache(time.Minute),
	})
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, model.StatusAPIError, c.Classify(ctx, "smartphone").Status)

	atomic.StoreInt32(&fail, 0)
	assert.Equal(t, "851712", c.Classify(ctx, "smartphone").Code)
	assert.Equal(t, "851712", c.Classify(ctx, "  smartphone ").Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestRemoteClassifier_LimiterFailure(t *testing.T) {
	server, calls := newHSServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hs_code": "851712"}`))
	})

	c, err := NewRemoteClassifier(RemoteOptions{URL: server.URL, Limiter: failingLimiter{}})
	require.NoError(t, err)

	res := c.Classify(context.Background(), "smartphone")
	assert.Equal(t, model.StatusAPIError, res.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestNewRemoteClassifier_RequiresURL(t *testing.T) {
	_, err := NewRemoteClassifier(RemoteOptions{})
	assert.Error(t, err)
}
