package audit

import (
	"errors"
	"strings"
	"sync"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/vitals"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("audit")

// Resource type tags
const (
	ResourceCSS    = "css"
	ResourceScript = "script"
	ResourceImage  = "image"
	ResourceFont   = "font"
	ResourceVideo  = "video"
	ResourceOther  = "other"
)

// resourceTracker aggregates loaded-resource timings per resource type
type resourceTracker struct {
	mut         sync.Mutex
	stats       map[string]common.ResourceStats
	unsubscribe func()
	supported   bool
	closed      bool
}

// NewResourceTracker subscribes to the host's resource entry stream and keeps
// running per-type aggregates. An unsupported stream degrades to an empty
// snapshot, it does not fail the construction.
func NewResourceTracker(source vitals.EntrySource) (*resourceTracker, error) {
	if check.IfNil(source) {
		return nil, errors.New("nil entry source")
	}

	tracker := &resourceTracker{
		stats: make(map[string]common.ResourceStats),
	}

	unsubscribe, err := source.Subscribe(common.EntryTypeResource, tracker.handleResources)
	if err != nil {
		log.Warn("resource entries not supported by host", "error", err)
		return tracker, nil
	}

	tracker.unsubscribe = unsubscribe
	tracker.supported = true

	return tracker, nil
}

func (tracker *resourceTracker) handleResources(entries []common.Entry) {
	tracker.mut.Lock()
	defer tracker.mut.Unlock()

	if tracker.closed {
		return
	}

	for _, entry := range entries {
		if entry.TransferSize <= 0 {
			continue
		}

		tag := classifyResource(entry.Name)
		stats := tracker.stats[tag]

		stats.Count++
		stats.TotalSize += entry.TransferSize

		n := float64(stats.Count)
		stats.AverageLoadTime = (stats.AverageLoadTime*(n-1) + entry.Duration) / n
		if entry.Duration > stats.Slowest {
			stats.Slowest = entry.Duration
		}

		tracker.stats[tag] = stats
	}
}

// Snapshot returns a copy of the current per-type aggregates
func (tracker *resourceTracker) Snapshot() map[string]common.ResourceStats {
	tracker.mut.Lock()
	defer tracker.mut.Unlock()

	result := make(map[string]common.ResourceStats, len(tracker.stats))
	for tag, stats := range tracker.stats {
		result[tag] = stats
	}

	return result
}

// Supported returns whether the host implements the resource entry stream
func (tracker *resourceTracker) Supported() bool {
	return tracker.supported
}

// Close stops the subscription. Safe to call more than once.
func (tracker *resourceTracker) Close() {
	tracker.mut.Lock()
	if tracker.closed {
		tracker.mut.Unlock()
		return
	}
	tracker.closed = true
	unsubscribe := tracker.unsubscribe
	tracker.mut.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (tracker *resourceTracker) IsInterfaceNil() bool {
	return tracker == nil
}

func classifyResource(url string) string {
	name := strings.ToLower(url)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}

	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ResourceOther
	}

	switch name[idx+1:] {
	case "css":
		return ResourceCSS
	case "js", "mjs":
		return ResourceScript
	case "png", "jpg", "jpeg", "gif", "svg", "webp", "avif", "ico":
		return ResourceImage
	case "woff", "woff2", "ttf", "otf", "eot":
		return ResourceFont
	case "mp4", "webm", "ogv", "mov":
		return ResourceVideo
	default:
		return ResourceOther
	}
}
