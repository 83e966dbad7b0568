package source

import (
	"strings"
	"testing"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTrace = `
{"kind":"entry","type":"navigation","requestStart":10,"responseStart":200}
{"kind":"entry","type":"paint","name":"first-contentful-paint","startTime":900}
{"kind":"batch","type":"largest-contentful-paint","entries":[{"startTime":1000},{"startTime":2300}]}
{"kind":"entry","type":"first-input","startTime":1500,"processingStart":1560}
{"kind":"batch","type":"layout-shift","entries":[{"value":0.05},{"value":0.07},{"value":0.4,"hadRecentInput":true}]}
{"kind":"entry","type":"resource","name":"https://cdn.example.com/app.js","transferSize":50000,"duration":120}
{"kind":"dom","scriptCount":4,"images":[{"src":"hero.jpg","alt":"","loading":"","srcset":""}]}
{"kind":"visibility","hidden":true}
{"kind":"unload"}
`

func TestTraceSource_SubscribeAndReplay(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{})
	require.False(t, s.IsInterfaceNil())

	batches := make(map[string][][]common.Entry)
	for _, entryType := range []string{
		common.EntryTypePaint,
		common.EntryTypeLCP,
		common.EntryTypeFirstInput,
		common.EntryTypeLayoutShift,
		common.EntryTypeResource,
	} {
		et := entryType
		_, err := s.Subscribe(et, func(entries []common.Entry) {
			batches[et] = append(batches[et], entries)
		})
		require.NoError(t, err)
	}

	numHidden := 0
	numUnload := 0
	s.OnHidden(func() { numHidden++ })
	s.OnUnload(func() { numUnload++ })

	err := s.Replay(strings.NewReader(testTrace))
	require.NoError(t, err)

	require.Len(t, batches[common.EntryTypePaint], 1)
	assert.Equal(t, common.EntryNameFCP, batches[common.EntryTypePaint][0][0].Name)
	assert.Equal(t, 900.0, batches[common.EntryTypePaint][0][0].StartTime)

	require.Len(t, batches[common.EntryTypeLCP], 1)
	require.Len(t, batches[common.EntryTypeLCP][0], 2)
	assert.Equal(t, 2300.0, batches[common.EntryTypeLCP][0][1].StartTime)

	require.Len(t, batches[common.EntryTypeFirstInput], 1)
	assert.Equal(t, 1560.0, batches[common.EntryTypeFirstInput][0][0].ProcessingStart)

	require.Len(t, batches[common.EntryTypeLayoutShift], 1)
	require.Len(t, batches[common.EntryTypeLayoutShift][0], 3)
	assert.True(t, batches[common.EntryTypeLayoutShift][0][2].HadRecentInput)

	require.Len(t, batches[common.EntryTypeResource], 1)
	assert.Equal(t, int64(50000), batches[common.EntryTypeResource][0][0].TransferSize)

	assert.Equal(t, 1, numHidden)
	assert.Equal(t, 1, numUnload)
	assert.True(t, s.Hidden())

	// navigation records are stored, never dispatched
	nav, found := s.NavigationEntry()
	require.True(t, found)
	assert.Equal(t, 10.0, nav.RequestStart)
	assert.Equal(t, 200.0, nav.ResponseStart)

	// dom snapshot record
	assert.Equal(t, 1, s.CountImages())
	assert.Equal(t, 4, s.CountScripts())
	require.Len(t, s.Images(), 1)
	assert.Equal(t, "hero.jpg", s.Images()[0].Src)
}

func TestTraceSource_Preload(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{})

	_, found := s.NavigationEntry()
	require.False(t, found)

	err := s.Preload([]byte(testTrace))
	require.NoError(t, err)

	nav, found := s.NavigationEntry()
	require.True(t, found)
	assert.Equal(t, 200.0, nav.ResponseStart)

	// preload must not flip the visibility state
	assert.False(t, s.Hidden())
}

func TestTraceSource_UnsupportedEntryTypes(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{
		UnsupportedEntryTypes: []string{common.EntryTypeLayoutShift},
	})

	unsubscribe, err := s.Subscribe(common.EntryTypeLayoutShift, func(entries []common.Entry) {})
	assert.Nil(t, unsubscribe)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")

	_, err = s.Subscribe(common.EntryTypePaint, func(entries []common.Entry) {})
	assert.NoError(t, err)
}

func TestTraceSource_Unsubscribe(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{})

	numCalls := 0
	unsubscribe, err := s.Subscribe(common.EntryTypePaint, func(entries []common.Entry) {
		numCalls++
	})
	require.NoError(t, err)

	require.NoError(t, s.Feed([]byte(`{"kind":"entry","type":"paint","name":"first-contentful-paint","startTime":1}`)))
	assert.Equal(t, 1, numCalls)

	unsubscribe()

	require.NoError(t, s.Feed([]byte(`{"kind":"entry","type":"paint","name":"first-contentful-paint","startTime":2}`)))
	assert.Equal(t, 1, numCalls)
}

func TestTraceSource_MalformedRecord(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{})

	err := s.Feed([]byte(`{"type":"paint"}`))
	assert.Error(t, err)

	// a bad line inside a replay is skipped, not fatal
	err = s.Replay(strings.NewReader("{\"kind\":\"bogus\"}\n{\"kind\":\"visibility\",\"hidden\":true}\n"))
	require.NoError(t, err)
	assert.True(t, s.Hidden())
}

func TestTraceSource_VisibilityEdgeTrigger(t *testing.T) {
	t.Parallel()

	s := NewTraceSource(ArgsTraceSource{})

	numHidden := 0
	s.OnHidden(func() { numHidden++ })

	require.NoError(t, s.Feed([]byte(`{"kind":"visibility","hidden":true}`)))
	require.NoError(t, s.Feed([]byte(`{"kind":"visibility","hidden":true}`)))
	assert.Equal(t, 1, numHidden)

	require.NoError(t, s.Feed([]byte(`{"kind":"visibility","hidden":false}`)))
	require.NoError(t, s.Feed([]byte(`{"kind":"visibility","hidden":true}`)))
	assert.Equal(t, 2, numHidden)
}
