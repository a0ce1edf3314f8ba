package surface

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/restolead/catalog-cli/internal/resilience"
)

// ErrBlocked marks responses that look like an anti-bot block or captcha
// interstitial rather than the listing page.
var ErrBlocked = eris.New("surface: blocked or captcha page")

// blockMarkers are phrases that only appear on block/captcha interstitials.
var blockMarkers = []string{
	"captcha",
	"verify you are human",
	"access denied",
	"ロボットではありません",
	"アクセスが集中",
}

// BlockDetected reports whether a fetched body looks like a block page.
func BlockDetected(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range blockMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Fetcher retrieves a URL as raw HTML.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	PerHostRPS float64 // politeness floor per host
}

// HTTPFetcher implements Fetcher over net/http with per-host rate limiting
// and retry with jittered backoff. Only transient failures retry; a 403
// or a block marker fails immediately as ErrBlocked.
type HTTPFetcher struct {
	client     *http.Client
	userAgent  string
	retryCfg   resilience.RetryConfig
	perHostRPS float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := opts.PerHostRPS
	if rps <= 0 {
		rps = 0.5
	}

	retryCfg := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retryCfg.MaxAttempts = opts.MaxRetries + 1
	}
	retryCfg.InitialBackoff = time.Second
	retryCfg.OnRetry = func(attempt int, err error) {
		zap.L().Debug("surface: fetch attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout},
		userAgent:  opts.UserAgent,
		retryCfg:   retryCfg,
		perHostRPS: rps,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.perHostRPS), 1)
		f.limiters[host] = l
	}
	return l
}

// Fetch retrieves the URL body. Blocked pages and non-2xx statuses are
// errors; the caller decides whether to count them as collaborator
// failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "surface: parse url %s", rawURL)
	}

	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return "", eris.Wrap(err, "surface: rate limit wait")
	}

	body, err := resilience.DoVal(ctx, f.retryCfg, func(ctx context.Context) (string, error) {
		return f.get(ctx, rawURL)
	})
	if err != nil {
		return "", eris.Wrapf(err, "surface: fetch %s", rawURL)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "surface: build request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "surface: do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", eris.Wrap(err, "surface: read body")
	}

	status := resp.StatusCode
	switch {
	case resilience.IsTransientHTTPStatus(status):
		return "", resilience.NewTransientError(
			eris.Errorf("surface: status %d for %s", status, rawURL), status)
	case status == http.StatusForbidden:
		return "", eris.Wrapf(ErrBlocked, "status 403 for %s", rawURL)
	case status < 200 || status >= 300:
		return "", eris.Errorf("surface: status %d for %s", status, rawURL)
	}

	if BlockDetected(string(body)) {
		return "", eris.Wrapf(ErrBlocked, "block markers in %s", rawURL)
	}
	return string(body), nil
}
