// internal/cache/remote.go
//
// Remote key/value tier over a REST interface.
//
// Context
// -------
// The secondary tier speaks the Upstash-style HTTP command protocol:
//
//	GET  {base}/get/{key}            → {"result": <string|null>}
//	POST {base}/set/{key}/{value}    → {"result": "OK"}
//	POST {base}/expire/{key}/{ttl}   → {"result": 1}
//
// with a bearer token on every call.  The tier is strictly best effort:
// every transport or protocol failure is swallowed (logged at debug) and
// the caller falls through to the in-process tier.  A slow remote can
// only delay a response, never break one.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Remote is a client for the secondary tier.  Construct via NewRemote;
// a nil *Remote is a valid "tier not configured" value.
type Remote struct {
	base   string
	token  string
	client *http.Client
}

// NewRemote returns a client when both an https endpoint and a credential
// are configured, else nil.  Mirrors the activation rule of the remote
// tier: partial configuration means the tier stays off.
func NewRemote(baseURL, token string) *Remote {
	if !strings.HasPrefix(baseURL, "https://") || token == "" {
		return nil
	}
	return &Remote{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// newRemoteForTest skips the https requirement so tests can point the
// client at an httptest server.
func newRemoteForTest(baseURL, token string) *Remote {
	return &Remote{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type remoteReply struct {
	Result *string `json:"result"`
}

// Get fetches key; any failure reads as a miss.
func (r *Remote) Get(ctx context.Context, key string) (string, bool) {
	body, ok := r.call(ctx, http.MethodGet, "/get/"+url.PathEscape(key))
	if !ok {
		return "", false
	}
	var reply remoteReply
	if err := json.Unmarshal(body, &reply); err != nil || reply.Result == nil {
		return "", false
	}
	return *reply.Result, true
}

// Set stores val and, for positive TTLs, arms the store's native expiry.
// Errors are swallowed; the in-process tier is the fallback of record.
func (r *Remote) Set(ctx context.Context, key, val string, ttl time.Duration) {
	if _, ok := r.call(ctx, http.MethodPost,
		"/set/"+url.PathEscape(key)+"/"+url.PathEscape(val)); !ok {
		return
	}
	if secs := int(ttl.Seconds()); secs > 0 {
		r.call(ctx, http.MethodPost, fmt.Sprintf("/expire/%s/%d", url.PathEscape(key), secs))
	}
}

// call performs one command, returning the body and whether the reply was
// a 2xx.
func (r *Remote) call(ctx context.Context, method, path string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		zap.S().Debugw("remote cache unreachable", "path", path, "err", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.S().Debugw("remote cache error status", "path", path, "status", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false
	}
	return body, true
}
