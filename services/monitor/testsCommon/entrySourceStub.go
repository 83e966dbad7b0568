package testsCommon

import "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"

// EntrySourceStub -
type EntrySourceStub struct {
	SubscribeHandler       func(entryType string, handler func(entries []common.Entry)) (func(), error)
	NavigationEntryHandler func() (common.Entry, bool)
}

// Subscribe -
func (stub *EntrySourceStub) Subscribe(entryType string, handler func(entries []common.Entry)) (func(), error) {
	if stub.SubscribeHandler != nil {
		return stub.SubscribeHandler(entryType, handler)
	}

	return func() {}, nil
}

// NavigationEntry -
func (stub *EntrySourceStub) NavigationEntry() (common.Entry, bool) {
	if stub.NavigationEntryHandler != nil {
		return stub.NavigationEntryHandler()
	}

	return common.Entry{}, false
}

// IsInterfaceNil -
func (stub *EntrySourceStub) IsInterfaceNil() bool {
	return stub == nil
}
