package testsCommon

import "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"

// InspectorStub -
type InspectorStub struct {
	ImagesHandler       func() []common.ImageInfo
	CountImagesHandler  func() int
	CountScriptsHandler func() int
}

// Images -
func (stub *InspectorStub) Images() []common.ImageInfo {
	if stub.ImagesHandler != nil {
		return stub.ImagesHandler()
	}

	return make([]common.ImageInfo, 0)
}

// CountImages -
func (stub *InspectorStub) CountImages() int {
	if stub.CountImagesHandler != nil {
		return stub.CountImagesHandler()
	}

	return 0
}

// CountScripts -
func (stub *InspectorStub) CountScripts() int {
	if stub.CountScriptsHandler != nil {
		return stub.CountScriptsHandler()
	}

	return 0
}

// IsInterfaceNil -
func (stub *InspectorStub) IsInterfaceNil() bool {
	return stub == nil
}
