package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	// BypassHeaderKey is required by the tunnel in front of the partner service;
	// without it the tunnel answers with an interstitial HTML page.
	BypassHeaderKey   = "ngrok-skip-browser-warning"
	BypassHeaderValue = "true"

	defaultContentType = "application/json"
)

// ForwardRequest is an outbound call to the partner service.
type ForwardRequest struct {
	Method        string
	URL           string
	ContentType   string
	Authorization string
	Body          []byte
}

// ForwardResponse mirrors what the partner returned. Only a transport failure
// produces a status the partner did not send (502).
type ForwardResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Err is set when the partner could not be reached.
	Err error
}

// IsSuccess reports whether the partner answered with a 2xx status.
func (resp *ForwardResponse) IsSuccess() bool {
	return resp.Err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Client talks to the single partner upstream. It never retries.
type Client struct {
	resty   *resty.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	restyClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &Client{
		resty:   restyClient,
		baseURL: baseURL,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Close() error {
	return c.resty.Close()
}

// Forward performs the upstream call and returns the partner's status, headers and body verbatim.
func (c *Client) Forward(ctx context.Context, req ForwardRequest) *ForwardResponse {
	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	r := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Authorization", req.Authorization).
		SetHeader(BypassHeaderKey, BypassHeaderValue)

	if len(req.Body) > 0 && req.Method != http.MethodGet && req.Method != http.MethodHead {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return badGateway(err)
	}

	return &ForwardResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header().Clone(),
		Body:       resp.Bytes(),
	}
}

// GetReport reads a report directly from the partner using the caller's credentials.
func (c *Client) GetReport(ctx context.Context, reportID string, authorization string) (*Report, error) {
	target := TargetURL(c.baseURL, FamilyReports, "/"+url.PathEscape(reportID), "")

	resp := c.Forward(ctx, ForwardRequest{
		Method:        http.MethodGet,
		URL:           target,
		Authorization: authorization,
	})
	if resp.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportUnavailable, resp.Err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: partner responded with status %d", ErrReportUnavailable, resp.StatusCode)
	}

	report, err := ParseReport(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportUnavailable, err)
	}
	if report.ID == "" {
		report.ID = reportID
	}

	return report, nil
}

func badGateway(err error) *ForwardResponse {
	body, _ := json.Marshal(map[string]string{
		"error":   "Bad Gateway",
		"message": "failed to reach partner service",
		"details": err.Error(),
	})

	header := http.Header{}
	header.Set("Content-Type", defaultContentType)

	return &ForwardResponse{
		StatusCode: http.StatusBadGateway,
		Header:     header,
		Body:       body,
		Err:        err,
	}
}

var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	// The body is already decoded and re-framed by the local server.
	"Content-Length":   {},
	"Content-Encoding": {},
}

// PassthroughHeaders returns the upstream headers that are safe to copy to the local response.
func PassthroughHeaders(header http.Header) http.Header {
	out := http.Header{}
	for key, values := range header {
		canonical := http.CanonicalHeaderKey(key)
		if _, skip := hopByHopHeaders[canonical]; skip {
			continue
		}
		if strings.HasPrefix(canonical, "Access-Control-") {
			continue
		}
		for _, v := range values {
			out.Add(canonical, v)
		}
	}
	return out
}
