package vitals

import (
	"errors"
	"sync"
	"time"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("vitals")

// ArgsWebVitalsMonitor defines the web vitals monitor arguments
type ArgsWebVitalsMonitor struct {
	Source    EntrySource
	Lifecycle PageLifecycle
	Callback  func(report common.Report)
	// ReportAllChanges makes the monitor emit on every lcp and cls update
	// instead of deferring them to the session finalizer
	ReportAllChanges bool
}

// webVitalsMonitor accumulates the vitals of one page session from the
// independent entry streams of the host and emits report snapshots through
// the configured callback
type webVitalsMonitor struct {
	source           EntrySource
	lifecycle        PageLifecycle
	callback         func(report common.Report)
	reportAllChanges bool

	mut          sync.Mutex
	report       common.Report
	clsSum       float64
	finalized    bool
	disconnected bool
	teardown     []func()
	capabilities map[string]bool
}

// NewWebVitalsMonitor creates a new web vitals monitor instance
func NewWebVitalsMonitor(args ArgsWebVitalsMonitor) (*webVitalsMonitor, error) {
	if check.IfNil(args.Source) {
		return nil, errors.New("nil entry source")
	}
	if check.IfNil(args.Lifecycle) {
		return nil, errors.New("nil page lifecycle")
	}
	if args.Callback == nil {
		return nil, errors.New("nil report callback")
	}

	return &webVitalsMonitor{
		source:           args.Source,
		lifecycle:        args.Lifecycle,
		callback:         args.Callback,
		reportAllChanges: args.ReportAllChanges,
		capabilities:     make(map[string]bool),
	}, nil
}

// Start subscribes to all entry streams and the lifecycle signals, and
// computes the navigation-derived ttfb value once. A stream the host does not
// support is logged and skipped, the others keep observing.
func (m *webVitalsMonitor) Start() {
	m.observe(common.EntryTypePaint, m.handlePaint)
	m.observe(common.EntryTypeLCP, m.handleLCP)
	m.observe(common.EntryTypeFirstInput, m.handleFirstInput)
	m.observe(common.EntryTypeLayoutShift, m.handleLayoutShift)

	removeHidden := m.lifecycle.OnHidden(m.finalize)
	removeUnload := m.lifecycle.OnUnload(m.finalize)

	m.mut.Lock()
	m.teardown = append(m.teardown, removeHidden, removeUnload)
	m.mut.Unlock()

	m.computeTTFB()
}

func (m *webVitalsMonitor) observe(entryType string, handler func(entries []common.Entry)) {
	unsubscribe, err := m.source.Subscribe(entryType, handler)

	m.mut.Lock()
	defer m.mut.Unlock()

	if err != nil {
		log.Warn("performance entry type not supported by host", "type", entryType, "error", err)
		m.capabilities[entryType] = false
		return
	}

	m.capabilities[entryType] = true
	m.teardown = append(m.teardown, unsubscribe)
}

func (m *webVitalsMonitor) computeTTFB() {
	entry, found := m.source.NavigationEntry()
	if !found {
		return
	}

	m.mut.Lock()
	if m.disconnected {
		m.mut.Unlock()
		return
	}
	m.report.TTFB = newMetric(common.MetricTTFB, entry.ResponseStart-entry.RequestStart)
	snapshot := m.report
	m.mut.Unlock()

	m.callback(snapshot)
}

func (m *webVitalsMonitor) handlePaint(entries []common.Entry) {
	for _, entry := range entries {
		if entry.Name != common.EntryNameFCP {
			continue
		}

		m.mut.Lock()
		if m.disconnected {
			m.mut.Unlock()
			return
		}
		m.report.FCP = newMetric(common.MetricFCP, entry.StartTime)
		snapshot := m.report
		m.mut.Unlock()

		m.callback(snapshot)
	}
}

func (m *webVitalsMonitor) handleLCP(entries []common.Entry) {
	if len(entries) == 0 {
		return
	}

	// the last entry of a batch is the largest render seen so far
	last := entries[len(entries)-1]

	m.mut.Lock()
	if m.disconnected {
		m.mut.Unlock()
		return
	}
	m.report.LCP = newMetric(common.MetricLCP, last.StartTime)
	snapshot := m.report
	m.mut.Unlock()

	// a final lcp update after backgrounding is left to the session finalizer
	if !m.reportAllChanges && m.lifecycle.Hidden() {
		return
	}

	m.callback(snapshot)
}

func (m *webVitalsMonitor) handleFirstInput(entries []common.Entry) {
	for _, entry := range entries {
		m.mut.Lock()
		if m.disconnected {
			m.mut.Unlock()
			return
		}

		// a populated duration marks the modern interaction kind
		if entry.Duration > 0 {
			m.report.INP = newMetric(common.MetricINP, entry.Duration)
		} else {
			m.report.FID = newMetric(common.MetricFID, entry.ProcessingStart-entry.StartTime)
		}
		snapshot := m.report
		m.mut.Unlock()

		m.callback(snapshot)
	}
}

func (m *webVitalsMonitor) handleLayoutShift(entries []common.Entry) {
	m.mut.Lock()
	if m.disconnected {
		m.mut.Unlock()
		return
	}

	for _, entry := range entries {
		if entry.HadRecentInput {
			continue
		}
		m.clsSum += entry.Value
	}
	m.report.CLS = newMetric(common.MetricCLS, m.clsSum)
	snapshot := m.report
	m.mut.Unlock()

	if !m.reportAllChanges {
		return
	}

	m.callback(snapshot)
}

// finalize emits the report one last time so that cls, whose true value is
// only known at end of session, is reported at least once under the
// throttled policy. Observation itself is not stopped.
func (m *webVitalsMonitor) finalize() {
	m.mut.Lock()
	if m.disconnected || m.finalized || m.report.CLS == nil {
		m.mut.Unlock()
		return
	}
	m.finalized = true
	snapshot := m.report
	m.mut.Unlock()

	m.callback(snapshot)
}

// GetReport returns a snapshot of the accumulated report
func (m *webVitalsMonitor) GetReport() common.Report {
	m.mut.Lock()
	defer m.mut.Unlock()

	return m.report
}

// Capabilities returns, per entry type, whether the host supported the
// subscription. Useful for diagnostics on degraded sessions.
func (m *webVitalsMonitor) Capabilities() map[string]bool {
	m.mut.Lock()
	defer m.mut.Unlock()

	result := make(map[string]bool, len(m.capabilities))
	for entryType, supported := range m.capabilities {
		result[entryType] = supported
	}

	return result
}

// Disconnect tears down all stream subscriptions and lifecycle listeners.
// Safe to call more than once, no callback fires afterwards.
func (m *webVitalsMonitor) Disconnect() {
	m.mut.Lock()
	if m.disconnected {
		m.mut.Unlock()
		return
	}
	m.disconnected = true
	teardown := m.teardown
	m.teardown = nil
	m.mut.Unlock()

	for _, remove := range teardown {
		remove()
	}
}

func newMetric(name string, value float64) *common.Metric {
	return &common.Metric{
		Name:      name,
		Value:     value,
		Rating:    Rate(name, value),
		Timestamp: time.Now().UnixMilli(),
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (m *webVitalsMonitor) IsInterfaceNil() bool {
	return m == nil
}
