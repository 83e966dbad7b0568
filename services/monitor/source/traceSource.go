package source

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("source")

// Trace record kinds
const (
	recordKindEntry      = "entry"
	recordKindBatch      = "batch"
	recordKindVisibility = "visibility"
	recordKindUnload     = "unload"
	recordKindDOM        = "dom"
)

// ArgsTraceSource defines the trace source arguments
type ArgsTraceSource struct {
	// UnsupportedEntryTypes lists entry types this source should refuse to
	// subscribe to, mimicking a host without those capabilities
	UnsupportedEntryTypes []string
}

// traceSource replays a recorded performance trace (newline-delimited JSON
// records) to its subscribers, in record order. It also plays the roles of
// page lifecycle and document inspector, fed by visibility/unload/dom records.
type traceSource struct {
	mut            sync.Mutex
	nextID         int
	handlers       map[string]map[int]func(entries []common.Entry)
	hiddenHandlers map[int]func()
	unloadHandlers map[int]func()
	unsupported    map[string]struct{}
	hidden         bool
	navigation     *common.Entry
	images         []common.ImageInfo
	numImages      int
	numScripts     int
}

// NewTraceSource creates a new trace source instance
func NewTraceSource(args ArgsTraceSource) *traceSource {
	unsupported := make(map[string]struct{}, len(args.UnsupportedEntryTypes))
	for _, entryType := range args.UnsupportedEntryTypes {
		unsupported[entryType] = struct{}{}
	}

	return &traceSource{
		handlers:       make(map[string]map[int]func(entries []common.Entry)),
		hiddenHandlers: make(map[int]func()),
		unloadHandlers: make(map[int]func()),
		unsupported:    unsupported,
	}
}

// Subscribe registers a handler for the given entry type and returns an
// unsubscribe function
func (s *traceSource) Subscribe(entryType string, handler func(entries []common.Entry)) (func(), error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if _, found := s.unsupported[entryType]; found {
		return nil, errUnsupportedEntryType(entryType)
	}

	id := s.nextID
	s.nextID++

	if s.handlers[entryType] == nil {
		s.handlers[entryType] = make(map[int]func(entries []common.Entry))
	}
	s.handlers[entryType][id] = handler

	return func() {
		s.mut.Lock()
		defer s.mut.Unlock()
		delete(s.handlers[entryType], id)
	}, nil
}

// NavigationEntry returns the navigation timing record of the trace, if it
// was already fed
func (s *traceSource) NavigationEntry() (common.Entry, bool) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.navigation == nil {
		return common.Entry{}, false
	}

	return *s.navigation, true
}

// OnHidden registers a handler for visibility-to-hidden transitions
func (s *traceSource) OnHidden(handler func()) func() {
	return s.addLifecycleHandler(s.hiddenHandlers, handler)
}

// OnUnload registers a handler for the page unload signal
func (s *traceSource) OnUnload(handler func()) func() {
	return s.addLifecycleHandler(s.unloadHandlers, handler)
}

func (s *traceSource) addLifecycleHandler(handlers map[int]func(), handler func()) func() {
	s.mut.Lock()
	defer s.mut.Unlock()

	id := s.nextID
	s.nextID++
	handlers[id] = handler

	return func() {
		s.mut.Lock()
		defer s.mut.Unlock()
		delete(handlers, id)
	}
}

// Hidden returns the current visibility state of the traced page
func (s *traceSource) Hidden() bool {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.hidden
}

// Images returns the image elements of the last dom snapshot record
func (s *traceSource) Images() []common.ImageInfo {
	s.mut.Lock()
	defer s.mut.Unlock()

	result := make([]common.ImageInfo, len(s.images))
	copy(result, s.images)

	return result
}

// CountImages returns the image element count of the last dom snapshot record
func (s *traceSource) CountImages() int {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.numImages
}

// CountScripts returns the script element count of the last dom snapshot record
func (s *traceSource) CountScripts() int {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.numScripts
}

// Preload scans the trace for navigation and dom snapshot records without
// dispatching anything. Called before observation starts so that
// synchronously-read values are in place.
func (s *traceSource) Preload(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		kind := gjson.GetBytes(line, "kind").String()
		if kind != recordKindEntry {
			continue
		}
		if gjson.GetBytes(line, "type").String() != common.EntryTypeNavigation {
			continue
		}

		entry := parseEntry(gjson.ParseBytes(line))
		entry.Type = common.EntryTypeNavigation

		s.mut.Lock()
		s.navigation = &entry
		s.mut.Unlock()
	}

	return scanner.Err()
}

// Replay feeds every record of the trace, in order
func (s *traceSource) Replay(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		err := s.Feed(line)
		if err != nil {
			log.Warn("skipping trace record", "error", err)
		}
	}

	return scanner.Err()
}

// Feed processes one JSON trace record
func (s *traceSource) Feed(record []byte) error {
	parsed := gjson.ParseBytes(record)
	kind := parsed.Get("kind").String()

	switch kind {
	case recordKindEntry:
		s.feedEntries(parsed.Get("type").String(), []gjson.Result{parsed})
	case recordKindBatch:
		s.feedEntries(parsed.Get("type").String(), parsed.Get("entries").Array())
	case recordKindVisibility:
		s.feedVisibility(parsed.Get("hidden").Bool())
	case recordKindUnload:
		s.dispatchLifecycle(s.unloadHandlers)
	case recordKindDOM:
		s.feedDOM(parsed)
	default:
		return errMalformedRecord(kind)
	}

	return nil
}

func (s *traceSource) feedEntries(entryType string, records []gjson.Result) {
	entries := make([]common.Entry, 0, len(records))
	for _, record := range records {
		entry := parseEntry(record)
		entry.Type = entryType
		entries = append(entries, entry)
	}

	if entryType == common.EntryTypeNavigation {
		// navigation timing is pulled synchronously, not dispatched
		if len(entries) > 0 {
			s.mut.Lock()
			nav := entries[len(entries)-1]
			s.navigation = &nav
			s.mut.Unlock()
		}
		return
	}

	for _, handler := range s.snapshotHandlers(entryType) {
		handler(entries)
	}
}

func (s *traceSource) feedVisibility(hidden bool) {
	s.mut.Lock()
	wasHidden := s.hidden
	s.hidden = hidden
	s.mut.Unlock()

	if hidden && !wasHidden {
		s.dispatchLifecycle(s.hiddenHandlers)
	}
}

func (s *traceSource) feedDOM(parsed gjson.Result) {
	images := make([]common.ImageInfo, 0)
	for _, img := range parsed.Get("images").Array() {
		images = append(images, common.ImageInfo{
			Src:     img.Get("src").String(),
			Alt:     img.Get("alt").String(),
			Loading: img.Get("loading").String(),
			Srcset:  img.Get("srcset").String(),
		})
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	s.images = images
	s.numImages = len(images)
	if parsed.Get("imageCount").Exists() {
		s.numImages = int(parsed.Get("imageCount").Int())
	}
	s.numScripts = int(parsed.Get("scriptCount").Int())
}

func (s *traceSource) snapshotHandlers(entryType string) []func(entries []common.Entry) {
	s.mut.Lock()
	defer s.mut.Unlock()

	result := make([]func(entries []common.Entry), 0, len(s.handlers[entryType]))
	for _, handler := range s.handlers[entryType] {
		result = append(result, handler)
	}

	return result
}

func (s *traceSource) dispatchLifecycle(handlers map[int]func()) {
	s.mut.Lock()
	snapshot := make([]func(), 0, len(handlers))
	for _, handler := range handlers {
		snapshot = append(snapshot, handler)
	}
	s.mut.Unlock()

	for _, handler := range snapshot {
		handler()
	}
}

func parseEntry(record gjson.Result) common.Entry {
	return common.Entry{
		Name:            record.Get("name").String(),
		StartTime:       record.Get("startTime").Float(),
		Duration:        record.Get("duration").Float(),
		ProcessingStart: record.Get("processingStart").Float(),
		Value:           record.Get("value").Float(),
		HadRecentInput:  record.Get("hadRecentInput").Bool(),
		RequestStart:    record.Get("requestStart").Float(),
		ResponseStart:   record.Get("responseStart").Float(),
		TransferSize:    record.Get("transferSize").Int(),
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *traceSource) IsInterfaceNil() bool {
	return s == nil
}
