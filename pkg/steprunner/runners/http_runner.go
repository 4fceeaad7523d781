package runners

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/arnavsurve/smokeshot/pkg/steprunner"
	"github.com/arnavsurve/smokeshot/pkg/types"
)

const defaultHttpTimeout = 30 * time.Second

// HttpRunner issues a request against the target and checks the status and, optionally,
// that the returned HTML contains an element matching call.selector.
type HttpRunner struct {
	StepCtx types.ExecutionContext
	Client  *http.Client
}

func init() {
	steprunner.RegisterRunnerFactory("http", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &HttpRunner{
			StepCtx: withLogger(ctx),
			Client:  &http.Client{},
		}, nil
	})
}

func (hr *HttpRunner) Validate() error {
	check := hr.StepCtx.Check
	logger := hr.StepCtx.Logger

	if check.Call == nil {
		return fmt.Errorf("http check %q must define 'call'", check.ID)
	}

	if check.Call.Url == "" {
		return fmt.Errorf("http check %q: 'call.url' is required", check.ID)
	}

	validMethods := map[string]bool{
		"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true, "HEAD": true, "OPTIONS": true,
	}
	if check.Call.Method != "" && !validMethods[strings.ToUpper(check.Call.Method)] {
		logger.Warn().Str("method", check.Call.Method).Msg("Non-standard HTTP method specified. Proceeding, but ensure server supports it.")
	}

	if check.Call.ExpectStatus != 0 && (check.Call.ExpectStatus < 100 || check.Call.ExpectStatus > 599) {
		return fmt.Errorf("http check %q: 'call.expect_status' %d is not a valid HTTP status", check.ID, check.Call.ExpectStatus)
	}

	if check.Selector != "" {
		return fmt.Errorf("http check %q must not define 'selector' (use 'call.selector')", check.ID)
	}

	if _, err := check.ResolveTimeout(defaultHttpTimeout); err != nil {
		return fmt.Errorf("http check %q has invalid 'timeout': %w", check.ID, err)
	}

	return nil
}

func (hr *HttpRunner) Run() (*types.CheckResult, error) {
	check := hr.StepCtx.Check
	logger := hr.StepCtx.Logger
	call := check.Call

	method := strings.ToUpper(call.Method)
	if method == "" {
		method = http.MethodGet
	}

	timeout, err := check.ResolveTimeout(defaultHttpTimeout)
	if err != nil {
		logger.Warn().Err(err).Str("timeout", check.Timeout).Msg("Failed to parse timeout duration, using default")
		timeout = defaultHttpTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, call.Url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	for key, value := range call.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", "Smokeshot-Http-Client/1.0")

	// Redaction of headers happens at the logger sink level
	logger.Info().
		Str("method", method).
		Str("url", call.Url).
		Interface("headers", call.Headers).
		Msg("Making HTTP request")

	start := time.Now()
	resp, err := hr.Client.Do(req)
	if err != nil {
		// A request deadline is a failed check, not a page assertion timeout.
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("HTTP request timed out after %s: %w", timeout, err)
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	elapsed := time.Since(start)

	logger.Info().
		Int("status_code", resp.StatusCode).
		Interface("response_headers", resp.Header).
		Msg("Received HTTP response")

	output := map[string]any{
		"status_code": resp.StatusCode,
	}

	respHeaders := make(map[string]string)
	for k, v := range resp.Header {
		respHeaders[k] = strings.Join(v, ", ")
	}
	output["headers"] = respHeaders

	if call.ExpectStatus != 0 && resp.StatusCode != call.ExpectStatus {
		return nil, fmt.Errorf("http check %q: expected status %d, got %d", check.ID, call.ExpectStatus, resp.StatusCode)
	}
	if call.ExpectStatus == 0 && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		logger.Warn().Int("status_code", resp.StatusCode).Msg("Received non-success HTTP response (non-2xx)")
	}

	if isHTML(resp.Header.Get("Content-Type"), respBodyBytes) || call.Selector != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(respBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML response: %w", err)
		}
		output["title"] = strings.TrimSpace(doc.Find("title").First().Text())

		if call.Selector != "" {
			matches := doc.Find(call.Selector).Length()
			output["matches"] = matches
			if matches == 0 {
				return nil, fmt.Errorf("http check %q: selector %q matched no elements in response", check.ID, call.Selector)
			}
			logger.Debug().Str("selector", call.Selector).Int("matches", matches).Msg("Selector matched response HTML")
		}
	}

	return &types.CheckResult{Output: output, DurationMs: elapsed.Milliseconds()}, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	return strings.Contains(http.DetectContentType(body), "text/html")
}
