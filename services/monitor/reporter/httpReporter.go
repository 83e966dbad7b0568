package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("reporter")

type httpReporter struct {
	endpoint  string
	apiKey    string
	pageURL   string
	userAgent string
	client    *http.Client
}

// vitalsPayload is the analytics wire format: the report fields plus page context
type vitalsPayload struct {
	common.Report
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
	Timestamp int64  `json:"timestamp"`
}

// NewHTTPReporter creates a new reporter that pushes report snapshots to the
// configured analytics endpoint
func NewHTTPReporter(endpoint, apiKey, pageURL, userAgent string, timeout time.Duration) *httpReporter {
	return &httpReporter{
		endpoint:  endpoint,
		apiKey:    apiKey,
		pageURL:   pageURL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Report posts one report snapshot as JSON. The caller decides what to do
// with a returned error; the intended policy is log-and-drop.
func (r *httpReporter) Report(ctx context.Context, report common.Report) error {
	payload := vitalsPayload{
		Report:    report,
		URL:       r.pageURL,
		UserAgent: r.userAgent,
		Timestamp: time.Now().UnixMilli(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal vitals payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create vitals request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error sending vitals report: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint rejected report with status code: %d", resp.StatusCode)
	}

	log.Debug("successfully sent vitals report", "endpoint", r.endpoint, "url", r.pageURL)

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *httpReporter) IsInterfaceNil() bool {
	return r == nil
}
