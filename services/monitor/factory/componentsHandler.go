package factory

import (
	"context"
	"sync"
	"time"

	"github.com/iulianpascalau/web-vitals-monitoring/commonGo"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/audit"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/budget"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/config"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/reporter"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/vitals"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	config           config.Config
	monitor          Monitor
	tracker          ResourceTracker
	reporter         Reporter
	inspector        DocumentInspector
	reportTimeout    time.Duration
	snapshotInterval time.Duration
	mutCancel        sync.Mutex
	cancel           func()
}

// NewComponentsHandler wires the monitor, the resource tracker and the
// analytics reporter around the provided host capabilities
func NewComponentsHandler(
	serviceKeyApi string,
	cfg config.Config,
	source vitals.EntrySource,
	lifecycle vitals.PageLifecycle,
	inspector DocumentInspector,
) (*componentsHandler, error) {
	ch := &componentsHandler{
		config:           cfg,
		inspector:        inspector,
		reportTimeout:    time.Duration(cfg.ReportTimeoutInSeconds) * time.Second,
		snapshotInterval: time.Duration(cfg.SnapshotIntervalInSeconds) * time.Second,
	}

	if cfg.AnalyticsEndpoint != "" {
		ch.reporter = reporter.NewHTTPReporter(cfg.AnalyticsEndpoint, serviceKeyApi, cfg.PageURL, cfg.UserAgent, ch.reportTimeout)
	}

	mon, err := vitals.NewWebVitalsMonitor(vitals.ArgsWebVitalsMonitor{
		Source:           source,
		Lifecycle:        lifecycle,
		Callback:         ch.forwardReport,
		ReportAllChanges: cfg.ReportAllChanges,
	})
	if err != nil {
		return nil, err
	}
	ch.monitor = mon

	tracker, err := audit.NewResourceTracker(source)
	if err != nil {
		return nil, err
	}
	ch.tracker = tracker

	return ch, nil
}

// forwardReport is the monitor callback: every emitted snapshot goes to the
// analytics endpoint, fire and forget
func (ch *componentsHandler) forwardReport(report common.Report) {
	if check.IfNil(ch.reporter) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ch.reportTimeout)
	defer cancel()

	err := ch.reporter.Report(ctx, report)
	if err != nil {
		log.Warn("failed to send vitals report, it will be discarded", "error", err)
	}
}

// GetMonitor returns the monitor component
func (ch *componentsHandler) GetMonitor() Monitor {
	return ch.monitor
}

// GetTracker returns the resource tracker component
func (ch *componentsHandler) GetTracker() ResourceTracker {
	return ch.tracker
}

// GetReporter returns the reporter component, nil when no endpoint is configured
func (ch *componentsHandler) GetReporter() Reporter {
	return ch.reporter
}

// GetPerformanceData assembles the current view of the session: the vitals
// report, the resource aggregates, a fresh image audit and the budget verdict
func (ch *componentsHandler) GetPerformanceData() common.PerformanceData {
	report := ch.monitor.GetReport()

	var images common.ImageAuditResult
	var budgetResult common.BudgetResult
	if !check.IfNil(ch.inspector) {
		images = audit.AuditImages(ch.inspector)
	}
	budgetResult = budget.Evaluate(report, ch.budgetOverrides(), ch.inspector)

	return common.PerformanceData{
		Vitals:    report,
		Resources: ch.tracker.Snapshot(),
		Images:    images,
		Budget:    budgetResult,
	}
}

func (ch *componentsHandler) budgetOverrides() budget.Overrides {
	b := ch.config.Budget

	return budget.Overrides{
		LCP:         b.Lcp,
		FID:         b.Fid,
		CLS:         b.Cls,
		FCP:         b.Fcp,
		TTFB:        b.Ttfb,
		BundleSize:  b.BundleSize,
		ImageCount:  b.ImageCount,
		ScriptCount: b.ScriptCount,
	}
}

// Start begins observation and, if an interval is configured, the periodic
// resource snapshot check
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	ch.monitor.Start()

	for entryType, supported := range ch.monitor.Capabilities() {
		if !supported {
			log.Warn("running a degraded session", "unsupported stream", entryType)
		}
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	if ch.snapshotInterval > 0 {
		commonGo.CronJobStarter(ctx, ch.checkResourceSnapshot, ch.snapshotInterval)
	}
}

// checkResourceSnapshot warns when the accumulated transfer size crosses the
// configured bundle-size ceiling
func (ch *componentsHandler) checkResourceSnapshot(_ context.Context) {
	snapshot := ch.tracker.Snapshot()

	var totalSize int64
	for _, stats := range snapshot {
		totalSize += stats.TotalSize
	}

	bundleCeiling := budget.Merge(ch.budgetOverrides()).BundleSize
	if totalSize > bundleCeiling {
		log.Warn("transferred bytes exceed the bundle size budget", "total", totalSize, "budget", bundleCeiling)
		return
	}

	log.Debug("resource snapshot", "total bytes", totalSize, "types", len(snapshot))
}

// Close disconnects the monitor and the tracker. Safe to call more than once.
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	ch.monitor.Disconnect()
	ch.tracker.Close()
}
