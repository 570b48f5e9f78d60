// Package blobstore uploads and destroys images on a Cloudinary-compatible
// media API using signed requests.
package blobstore

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/domain"
)

const service = "blobstore"

var (
	ErrRejected    = errors.New("blobstore: request rejected")
	ErrUnavailable = errors.New("blobstore: unavailable")
)

type Config struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	RPS       int
}

type Client struct {
	base   string
	cloud  string
	key    string
	secret string
	hc     *http.Client
	rl     *rate.Limiter
	cb     *gobreaker.CircuitBreaker[[]byte]
	now    func() time.Time
}

func New(cfg Config) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloud name, API key and API secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com"
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		cloud:  cfg.CloudName,
		key:    cfg.APIKey,
		secret: cfg.APISecret,
		hc:     &http.Client{Timeout: 30 * time.Second},
		rl:     rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		cb:     newBreaker(),
		now:    time.Now,
	}, nil
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        service,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && ratio >= 0.6
		},
		// Rejections are the caller's fault, not the remote's.
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, ErrRejected) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload stores r under folder/publicID and returns its delivery URL.
func (c *Client) Upload(ctx context.Context, folder, publicID string, r io.Reader) (domain.UploadedBlob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.UploadedBlob{}, err
	}
	params := c.signed(map[string]string{"folder": folder, "public_id": publicID})

	// The body is rebuilt per attempt so retries resend the whole file.
	body := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for _, k := range sortedKeys(params) {
			if err := mw.WriteField(k, params[k]); err != nil {
				return nil, "", err
			}
		}
		fw, err := mw.CreateFormFile("file", publicID)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, "", err
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil
	}

	raw, err := c.post(ctx, "upload", body)
	if err != nil {
		return domain.UploadedBlob{}, err
	}
	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.UploadedBlob{}, fmt.Errorf("decode upload response: %w", err)
	}
	u := out.SecureURL
	if u == "" {
		u = out.URL
	}
	return domain.UploadedBlob{PublicID: out.PublicID, URL: u}, nil
}

// Destroy removes publicID. Destroying an unknown id is not an error.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	form := url.Values{}
	for k, v := range c.signed(map[string]string{"public_id": publicID}) {
		form.Set(k, v)
	}
	raw, err := c.post(ctx, "destroy", func() (io.Reader, string, error) {
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	})
	if err != nil {
		return err
	}
	var out struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	if out.Result != "ok" && out.Result != "not found" {
		return fmt.Errorf("%w: destroy result %q", ErrRejected, out.Result)
	}
	return nil
}

// signed adds api_key, timestamp and signature to params. The signature is
// the SHA-1 of the sorted k=v pairs joined by '&' followed by the secret.
func (c *Client) signed(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+3)
	for k, v := range params {
		if v != "" {
			out[k] = v
		}
	}
	out["timestamp"] = strconv.FormatInt(c.now().Unix(), 10)
	out["signature"] = Sign(out, c.secret)
	out["api_key"] = c.key
	return out
}

// Sign computes the request signature over params, ignoring the
// file, api_key and signature entries.
func Sign(params map[string]string, secret string) string {
	var parts []string
	for _, k := range sortedKeys(params) {
		switch k {
		case "file", "api_key", "signature":
			continue
		}
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Client) post(ctx context.Context, action string, body func() (io.Reader, string, error)) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/image/%s", c.base, c.cloud, action)
	out, err := c.cb.Execute(func() ([]byte, error) { return c.do(ctx, action, endpoint, body) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, err
}

// do POSTs with retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) do(ctx context.Context, action, endpoint string, body func() (io.Reader, string, error)) ([]byte, error) {
	var lastErr error
	for i := 0; i < 4; i++ {
		rd, ctype, err := body()
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", ctype)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "reviewhub/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, action, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal(service, action, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return b, err

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

var _ domain.BlobStore = (*Client)(nil)
