package vitals

import "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"

// EntrySource defines the host capability of delivering performance timeline entries
type EntrySource interface {
	// Subscribe registers a handler for the given entry type and returns an
	// unsubscribe function. A returned error means the host does not implement
	// that entry type; the subscription is then simply absent.
	Subscribe(entryType string, handler func(entries []common.Entry)) (func(), error)

	// NavigationEntry returns the single navigation timing record, if one exists
	NavigationEntry() (common.Entry, bool)

	IsInterfaceNil() bool
}

// PageLifecycle exposes the page visibility and teardown signals of the host
type PageLifecycle interface {
	// OnHidden registers a handler invoked when the page visibility changes to
	// hidden and returns a function that removes the handler
	OnHidden(handler func()) func()

	// OnUnload registers a handler invoked when the page unloads and returns a
	// function that removes the handler
	OnUnload(handler func()) func()

	// Hidden returns true if the page is currently in the background
	Hidden() bool

	IsInterfaceNil() bool
}
