package testsCommon

// LifecycleStub -
type LifecycleStub struct {
	OnHiddenHandler func(handler func()) func()
	OnUnloadHandler func(handler func()) func()
	HiddenHandler   func() bool
}

// OnHidden -
func (stub *LifecycleStub) OnHidden(handler func()) func() {
	if stub.OnHiddenHandler != nil {
		return stub.OnHiddenHandler(handler)
	}

	return func() {}
}

// OnUnload -
func (stub *LifecycleStub) OnUnload(handler func()) func() {
	if stub.OnUnloadHandler != nil {
		return stub.OnUnloadHandler(handler)
	}

	return func() {}
}

// Hidden -
func (stub *LifecycleStub) Hidden() bool {
	if stub.HiddenHandler != nil {
		return stub.HiddenHandler()
	}

	return false
}

// IsInterfaceNil -
func (stub *LifecycleStub) IsInterfaceNil() bool {
	return stub == nil
}
