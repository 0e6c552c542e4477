package dcx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kshitijsachdeva/dcxctl/internal/telemetry"
	"golang.org/x/time/rate"
)

const orderCreatePath = "/exchange/v1/orders/create"

// statusCauses are the error causes documented by the exchange. Anything
// else is reported as an unknown error.
var statusCauses = map[int]string{
	400: "Bad Request -- Your request is invalid.",
	401: "Unauthorized -- Your API key is wrong.",
	404: "Not Found -- The specified link could not be found.",
	429: "Too Many Requests -- You're making too many API calls",
	500: "Internal Server Error -- We had a problem with our server. Try again later.",
	503: "Service Unavailable -- We're temporarily offline for maintenance. Please try again later.",
}

// APIError is a non-2xx response from the exchange, classified by status.
type APIError struct {
	Status int
	URL    string
	Cause  string
}

func (e *APIError) Error() string {
	if e.Cause == "" {
		return fmt.Sprintf("unknown error for %q status code: %d", e.URL, e.Status)
	}
	return fmt.Sprintf("error for %q: %s", e.URL, e.Cause)
}

func newAPIError(status int, url string) *APIError {
	return &APIError{Status: status, URL: url, Cause: statusCauses[status]}
}

// Client sends requests to the CoinDCX REST API. Authenticated endpoints
// get a millisecond timestamp merged into the JSON body and an HMAC-SHA256
// signature over the exact serialized bytes; public endpoints are plain GET.
//
// Failures never propagate as panics or retries: a transport error or a
// non-2xx status is logged and returned, and the caller aborts only the
// step that needed the data.
type Client struct {
	apiBaseURL    string
	publicBaseURL string
	httpClient    *http.Client
	signer        *Signer
	readLimiter   *rate.Limiter
	writeLimiter  *rate.Limiter

	// now is swappable for tests; production uses time.Now.
	now func() time.Time
}

func NewClient(apiBaseURL, publicBaseURL string, signer *Signer) *Client {
	return &Client{
		apiBaseURL:    apiBaseURL,
		publicBaseURL: publicBaseURL,
		// No explicit timeout: the exchange is slow under load and every
		// call here is a blocking, one-shot step.
		httpClient:   &http.Client{},
		signer:       signer,
		readLimiter:  rate.NewLimiter(rate.Limit(20), 20),
		writeLimiter: rate.NewLimiter(rate.Limit(10), 10),
		now:          time.Now,
	}
}

// Post sends a signed POST to an authenticated endpoint. The caller body is
// merged with a millisecond epoch "timestamp" field; the timestamp always
// wins for that key, caller fields win for every other key.
func (c *Client) Post(ctx context.Context, path string, body map[string]any) (json.RawMessage, error) {
	if err := c.writeLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	merged := make(map[string]any, len(body)+1)
	for k, v := range body {
		merged[k] = v
	}
	merged["timestamp"] = c.now().UnixMilli()

	// encoding/json writes map keys in sorted order with no extra
	// whitespace, so the signature input is stable for a given body.
	payload, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	url := c.apiBaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-AUTH-APIKEY", c.signer.APIKey())
	req.Header.Set("X-AUTH-SIGNATURE", c.signer.Sign(payload))

	// Order creation moves money; keep a verbatim audit line of what we
	// are about to send.
	if strings.HasSuffix(path, orderCreatePath) {
		telemetry.Infof("order request: %s", payload)
	}

	return c.do(req)
}

// Get hits a public, unauthenticated endpoint. rawURL is the full URL
// including query parameters; no signing, no body.
func (c *Client) Get(ctx context.Context, rawURL string) (json.RawMessage, error) {
	if err := c.readLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	start := time.Now()
	telemetry.Metrics.RequestsSent.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.RequestErrors.Inc()
		telemetry.Errorf("request failed for url %q: %v", req.URL, err)
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.Metrics.RequestErrors.Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	telemetry.Metrics.RequestLatency.Record(time.Since(start))
	telemetry.Debugf("dcx: %s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.Metrics.RequestErrors.Inc()
		apiErr := newAPIError(resp.StatusCode, req.URL.String())
		telemetry.Errorf("%v", apiErr)
		return nil, apiErr
	}

	return json.RawMessage(respBody), nil
}

// publicURL builds a URL on the public (market data) host.
func (c *Client) publicURL(path string) string {
	return c.publicBaseURL + path
}
