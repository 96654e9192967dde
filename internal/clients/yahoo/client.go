// Package yahoo fetches dividend history and yields from Yahoo Finance.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://query1.finance.yahoo.com"
	DefaultSessionURL = "https://fc.yahoo.com"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	crumbKey  = "crumb"
	crumbTTL  = 30 * time.Minute
)

// ErrUnauthorized is returned when Yahoo rejects the session crumb twice in a row.
var ErrUnauthorized = errors.New("yahoo rejected session crumb")

// Dividend is one payout from the chart events feed.
type Dividend struct {
	Date   time.Time
	Amount float64
}

// Config configures the HTTP client.
type Config struct {
	BaseURL    string
	SessionURL string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

// Client talks to the Yahoo Finance JSON endpoints directly, managing the
// cookie and crumb session they require.
type Client struct {
	http    *http.Client
	baseURL string
	session string
	limiter *rate.Limiter
	cache   *cache.Cache
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = DefaultSessionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: cfg.SessionURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		cache:   cache.New(crumbTTL, 2*crumbTTL),
		log:     log.With().Str("client", "yahoo").Logger(),
	}, nil
}

type chartEventsResponse struct {
	Chart struct {
		Result []struct {
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				DividendYield               rawValue `json:"dividendYield"`
				TrailingAnnualDividendYield rawValue `json:"trailingAnnualDividendYield"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("yahoo: %s: %s", e.Code, e.Description)
}

// notFound reports whether Yahoo simply has no data for the symbol.
func (e *apiError) notFound() bool {
	return strings.EqualFold(e.Code, "Not Found")
}

// GetDividends returns every dividend Yahoo has on record for the symbol,
// oldest first. A symbol that never paid returns an empty slice.
func (c *Client) GetDividends(ctx context.Context, symbol string) ([]Dividend, error) {
	params := url.Values{}
	params.Set("range", "max")
	params.Set("interval", "1d")
	params.Set("events", "div")

	var resp chartEventsResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch dividends for %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.notFound() {
			return []Dividend{}, nil
		}
		return nil, resp.Chart.Error
	}

	dividends := []Dividend{}
	for _, result := range resp.Chart.Result {
		for _, d := range result.Events.Dividends {
			dividends = append(dividends, Dividend{
				Date:   time.Unix(d.Date, 0).UTC(),
				Amount: d.Amount,
			})
		}
	}
	sort.Slice(dividends, func(i, j int) bool {
		return dividends[i].Date.Before(dividends[j].Date)
	})

	c.log.Debug().Str("symbol", symbol).Int("count", len(dividends)).Msg("Fetched dividends")
	return dividends, nil
}

// GetDividendYield returns the forward dividend yield as a fraction (0.031 for
// 3.1%), falling back to the trailing yield. Nil when Yahoo has neither.
func (c *Client) GetDividendYield(ctx context.Context, symbol string) (*float64, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail")

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch dividend yield for %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		if resp.QuoteSummary.Error.notFound() {
			return nil, nil
		}
		return nil, resp.QuoteSummary.Error
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	detail := resp.QuoteSummary.Result[0].SummaryDetail
	if detail.DividendYield.Raw != nil {
		return detail.DividendYield.Raw, nil
	}
	return detail.TrailingAnnualDividendYield.Raw, nil
}

// getJSON performs a rate-limited, crumb-authenticated GET. A 401 or 403
// drops the cached crumb and retries once with a fresh session.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	for attempt := 0; attempt < 2; attempt++ {
		crumb, err := c.crumb(ctx)
		if err != nil {
			return err
		}

		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("crumb", crumb)

		status, body, err := c.get(ctx, c.baseURL+path+"?"+q.Encode())
		if err != nil {
			return err
		}

		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			c.log.Debug().Int("status", status).Msg("Crumb rejected, refreshing session")
			c.cache.Delete(crumbKey)
			continue
		case status == http.StatusNotFound:
			// Unknown symbols come back as 404 with an error document.
			if err := json.Unmarshal(body, out); err == nil {
				return nil
			}
			return fmt.Errorf("yahoo returned status %d", status)
		case status != http.StatusOK:
			return fmt.Errorf("yahoo returned status %d", status)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode yahoo response: %w", err)
		}
		return nil
	}

	return ErrUnauthorized
}

// crumb returns the cached session crumb, establishing a new session when it
// has expired.
func (c *Client) crumb(ctx context.Context) (string, error) {
	if v, ok := c.cache.Get(crumbKey); ok {
		return v.(string), nil
	}

	c.log.Debug().Msg("Initializing Yahoo Finance session")

	// Only the cookies matter here; the session page itself often answers 404.
	if _, _, err := c.get(ctx, c.session); err != nil {
		c.log.Warn().Err(err).Msg("Session warm-up request failed")
	}

	status, body, err := c.get(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to fetch crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if status != http.StatusOK || crumb == "" {
		return "", fmt.Errorf("failed to fetch crumb: status %d", status)
	}

	c.cache.SetDefault(crumbKey, crumb)
	return crumb, nil
}

// Wait blocks until the shared request budget allows another Yahoo call.
// Callers using other Yahoo transports go through it to stay under the same limit.
func (c *Client) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

func (c *Client) get(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := c.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
