package e2e_test

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	collectorCfg "github.com/iulianpascalau/web-vitals-monitoring/services/collector/config"
	collectorFactory "github.com/iulianpascalau/web-vitals-monitoring/services/collector/factory"
	monitorCfg "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/config"
	monitorFactory "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/factory"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/source"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("e2e-test")

const testPageURL = "https://example.com/"

const testTrace = `
{"kind":"entry","type":"navigation","name":"https://example.com/","requestStart":10,"responseStart":210}
{"kind":"batch","type":"paint","entries":[{"name":"first-contentful-paint","startTime":1000}]}
{"kind":"batch","type":"largest-contentful-paint","entries":[{"startTime":1200},{"startTime":2400}]}
{"kind":"batch","type":"first-input","entries":[{"startTime":100,"processingStart":108,"duration":0}]}
{"kind":"batch","type":"layout-shift","entries":[{"value":0.01},{"value":0.03},{"value":0.5,"hadRecentInput":true}]}
{"kind":"batch","type":"resource","entries":[{"name":"https://example.com/app.js","duration":120,"transferSize":52000},{"name":"https://example.com/hero.webp","duration":80,"transferSize":34000}]}
{"kind":"dom","scriptCount":3,"images":[{"src":"https://example.com/hero.webp","alt":"hero","loading":"lazy","srcset":"hero-2x.webp 2x"}]}
{"kind":"visibility","hidden":true}
`

func TestE2EFlow(t *testing.T) {
	log.Info("======== 1. Prepare SQLite path for the Collector")
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "e2e_sqlite.db")

	log.Info("======== 2. Start Collector Service via componentsHandler")
	collectorConfig := collectorCfg.Config{
		ListenAddress:    "127.0.0.1:0",
		DatabasePath:     dbPath,
		RetentionSeconds: 3600,
	}

	collectorHandler, err := collectorFactory.NewComponentsHandler(
		"test-service-key",
		collectorConfig,
	)
	require.NoError(t, err)

	collectorHandler.Start()
	defer collectorHandler.Close()

	_, port, err := net.SplitHostPort(collectorHandler.GetServer().Address())
	require.NoError(t, err)
	collectorURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	log.Info("======== 2.1. Wait a moment for server to start")
	time.Sleep(100 * time.Millisecond)

	log.Info("======== 3. Start Monitor Service via componentsHandler")
	monitorConfig := monitorCfg.Config{
		Name:                   "e2e-monitor",
		PageURL:                testPageURL,
		UserAgent:              "e2e-agent/1.0",
		AnalyticsEndpoint:      collectorURL + "/api/vitals",
		ReportTimeoutInSeconds: 5,
	}

	traceSource := source.NewTraceSource(source.ArgsTraceSource{})
	err = traceSource.Preload([]byte(testTrace))
	require.NoError(t, err)

	monitorHandler, err := monitorFactory.NewComponentsHandler(
		"test-service-key",
		monitorConfig,
		traceSource,
		traceSource,
		traceSource,
	)
	require.NoError(t, err)

	monitorHandler.Start()
	defer monitorHandler.Close()

	log.Info("======== 4. Replay the recorded performance trace")
	err = traceSource.Replay(strings.NewReader(testTrace))
	require.NoError(t, err)

	log.Info("======== 5. Verify the local performance data")
	data := monitorHandler.GetPerformanceData()
	require.NotNil(t, data.Vitals.FCP)
	require.Equal(t, 1000.0, data.Vitals.FCP.Value)
	require.NotNil(t, data.Vitals.LCP)
	require.Equal(t, 2400.0, data.Vitals.LCP.Value)
	require.NotNil(t, data.Vitals.FID)
	require.Equal(t, 8.0, data.Vitals.FID.Value)
	require.NotNil(t, data.Vitals.CLS)
	require.InDelta(t, 0.04, data.Vitals.CLS.Value, 1e-9)
	require.NotNil(t, data.Vitals.TTFB)
	require.Equal(t, 200.0, data.Vitals.TTFB.Value)
	require.True(t, data.Budget.Passed, "expected no budget violations, got %v", data.Budget.Violations)
	require.Equal(t, 100, data.Images.Score)
	require.Equal(t, 1, data.Resources["script"].Count)
	require.Equal(t, 1, data.Resources["image"].Count)

	log.Info("======== 6. Test the Collector API using HTTP calls")
	client := &http.Client{}

	log.Info("======== 6.a. Fetch the latest reports")
	reqLatest, err := http.NewRequest(http.MethodGet, collectorURL+"/api/vitals", nil)
	require.NoError(t, err)
	reqLatest.Header.Set("X-Api-Key", "test-service-key")

	respLatest, err := client.Do(reqLatest)
	require.NoError(t, err)
	defer func() {
		_ = respLatest.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respLatest.StatusCode)

	b, err := io.ReadAll(respLatest.Body)
	require.NoError(t, err)

	reports := gjson.ParseBytes(b).Get("reports").Array()
	require.Len(t, reports, 1)
	latest := reports[0]
	require.Equal(t, testPageURL, latest.Get("url").String())
	require.Equal(t, "e2e-agent/1.0", latest.Get("userAgent").String())
	require.Equal(t, 1000.0, latest.Get("fcp").Float())
	require.Equal(t, 2400.0, latest.Get("lcp").Float())
	require.Equal(t, 8.0, latest.Get("fid").Float())
	require.InDelta(t, 0.04, latest.Get("cls").Float(), 1e-9)
	require.Equal(t, 200.0, latest.Get("ttfb").Float())

	log.Info("======== 6.b. Fetch the page history")
	reqHistory, err := http.NewRequest(http.MethodGet, collectorURL+"/api/vitals/history?url="+testPageURL, nil)
	require.NoError(t, err)
	reqHistory.Header.Set("X-Api-Key", "test-service-key")

	respHistory, err := client.Do(reqHistory)
	require.NoError(t, err)
	defer func() {
		_ = respHistory.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respHistory.StatusCode)

	h, err := io.ReadAll(respHistory.Body)
	require.NoError(t, err)

	// one report per emitted metric (ttfb, fcp, lcp, fid) plus the final one on hidden
	history := gjson.ParseBytes(h).Get("reports").Array()
	require.Len(t, history, 5)
	require.False(t, history[0].Get("lcp").Exists(), "the first snapshot only carries the navigation metric")
	require.Equal(t, 200.0, history[0].Get("ttfb").Float())
	require.Equal(t, 2400.0, history[len(history)-1].Get("lcp").Float())

	log.Info("======== 6.c. Delete the page")
	reqDelete, err := http.NewRequest(http.MethodDelete, collectorURL+"/api/vitals?url="+testPageURL, nil)
	require.NoError(t, err)
	reqDelete.Header.Set("X-Api-Key", "test-service-key")

	respDelete, err := client.Do(reqDelete)
	require.NoError(t, err)
	defer func() {
		_ = respDelete.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respDelete.StatusCode)

	log.Info("======== 6.d. Verify deletion")
	reqAfter, err := http.NewRequest(http.MethodGet, collectorURL+"/api/vitals", nil)
	require.NoError(t, err)
	reqAfter.Header.Set("X-Api-Key", "test-service-key")

	respAfter, err := client.Do(reqAfter)
	require.NoError(t, err)
	defer func() {
		_ = respAfter.Body.Close()
	}()
	require.Equal(t, http.StatusOK, respAfter.StatusCode)

	a, err := io.ReadAll(respAfter.Body)
	require.NoError(t, err)
	require.Empty(t, gjson.ParseBytes(a).Get("reports").Array())
}

func TestE2EUnauthorizedBeaconIsDiscarded(t *testing.T) {
	log.Info("======== 1. Start Collector Service via componentsHandler")
	collectorConfig := collectorCfg.Config{
		ListenAddress:    "127.0.0.1:0",
		DatabasePath:     filepath.Join(t.TempDir(), "e2e_sqlite.db"),
		RetentionSeconds: 3600,
	}

	collectorHandler, err := collectorFactory.NewComponentsHandler(
		"test-service-key",
		collectorConfig,
	)
	require.NoError(t, err)

	collectorHandler.Start()
	defer collectorHandler.Close()

	_, port, err := net.SplitHostPort(collectorHandler.GetServer().Address())
	require.NoError(t, err)
	collectorURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	time.Sleep(100 * time.Millisecond)

	log.Info("======== 2. Start a Monitor with a wrong service key and replay")
	monitorConfig := monitorCfg.Config{
		Name:                   "e2e-monitor",
		PageURL:                testPageURL,
		UserAgent:              "e2e-agent/1.0",
		AnalyticsEndpoint:      collectorURL + "/api/vitals",
		ReportTimeoutInSeconds: 5,
	}

	traceSource := source.NewTraceSource(source.ArgsTraceSource{})
	err = traceSource.Preload([]byte(testTrace))
	require.NoError(t, err)

	monitorHandler, err := monitorFactory.NewComponentsHandler(
		"wrong-key",
		monitorConfig,
		traceSource,
		traceSource,
		traceSource,
	)
	require.NoError(t, err)

	monitorHandler.Start()
	defer monitorHandler.Close()

	err = traceSource.Replay(strings.NewReader(testTrace))
	require.NoError(t, err)

	log.Info("======== 3. Verify the collector stored nothing")
	req, err := http.NewRequest(http.MethodGet, collectorURL+"/api/vitals", nil)
	require.NoError(t, err)
	req.Header.Set("X-Api-Key", "test-service-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Empty(t, gjson.ParseBytes(b).Get("reports").Array())

	// the session itself still accumulated everything locally
	data := monitorHandler.GetPerformanceData()
	require.NotNil(t, data.Vitals.LCP)
	require.Equal(t, 2400.0, data.Vitals.LCP.Value)
}
