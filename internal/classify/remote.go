package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/customsgate/internal/cache"
	"github.com/ppiankov/customsgate/internal/model"
	"github.com/ppiankov/customsgate/internal/util"
)

// maxResponseBytes caps how much of a service response is read
const maxResponseBytes = 64 << 10

// RateLimiter throttles outbound calls per service host
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// RemoteOptions configures a RemoteClassifier
type RemoteOptions struct {
	URL        string
	AuthHeader string // Sent verbatim as the Authorization header
	Timeout    time.Duration
	Cache      cache.Cache // Optional
	Limiter    RateLimiter // Optional
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// RemoteClassifier asks an HS code prediction service for each description.
// Any failure is reported as API_ERROR with the sentinel code.
type RemoteClassifier struct {
	url        string
	authHeader string
	httpClient *http.Client
	cache      cache.Cache
	limiter    RateLimiter
}

type remoteRequest struct {
	GoodsDescription string `json:"goods_description"`
}

type remoteResponse struct {
	HSCode string `json:"hs_code"`
}

// NewRemoteClassifier creates a classifier backed by an HTTP service
func NewRemoteClassifier(opts RemoteOptions) (*RemoteClassifier, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("remote classifier requires a service URL")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RemoteClassifier{
		url:        opts.URL,
		authHeader: opts.AuthHeader,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		cache:   opts.Cache,
		limiter: opts.Limiter,
	}, nil
}

// Name returns the classifier name
func (c *RemoteClassifier) Name() string {
	return model.ClassifierRemote
}

// Classify posts the description to the service
func (c *RemoteClassifier) Classify(ctx context.Context, text string) Result {
	if c.cache != nil {
		if e, ok := c.cache.Lookup(c.Name(), text); ok {
			return Result{Code: e.Code, Status: e.Status}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.url); err != nil {
			return unclassified(model.StatusAPIError, &model.ClassificationServiceError{Service: c.Name(), Err: err})
		}
	}

	code, err := c.fetch(ctx, text)
	if err != nil {
		return unclassified(model.StatusAPIError, err)
	}

	res := Result{Code: code, Status: model.StatusAPIMatch}
	if c.cache != nil {
		_ = c.cache.Store(c.Name(), text, cache.Entry{Code: res.Code, Status: res.Status})
	}
	return res
}

func (c *RemoteClassifier) fetch(ctx context.Context, text string) (string, error) {
	fail := func(status int, err error) error {
		return &model.ClassificationServiceError{Service: c.Name(), StatusCode: status, Err: err}
	}

	body, err := json.Marshal(remoteRequest{GoodsDescription: text})
	if err != nil {
		return "", fail(0, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fail(0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", fail(resp.StatusCode, nil)
	}

	var out remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fail(0, fmt.Errorf("decode response: %w", err))
	}

	code := normalizeCode(out.HSCode)
	if len(code) < 6 {
		return "", fail(0, fmt.Errorf("invalid hs_code %q", out.HSCode))
	}
	return code[:6], nil
}
