package audit

import (
	"fmt"
	"strings"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

const issuePenalty = 10

// ImageLister provides the image elements currently present in the page
type ImageLister interface {
	Images() []common.ImageInfo
	IsInterfaceNil() bool
}

// AuditImages performs a one-shot scan of the currently inserted images and
// flags missed optimization opportunities. It reflects the page state at call
// time only. Each failed check of each image costs 10 score points.
func AuditImages(lister ImageLister) common.ImageAuditResult {
	issues := make([]string, 0)
	if check.IfNil(lister) {
		return common.ImageAuditResult{Issues: issues, Score: 100}
	}

	for _, img := range lister.Images() {
		if img.Alt == "" {
			issues = append(issues, fmt.Sprintf("image %s is missing alt text", img.Src))
		}
		if img.Loading != "lazy" {
			issues = append(issues, fmt.Sprintf("image %s is not lazy loaded", img.Src))
		}
		if img.Srcset == "" {
			issues = append(issues, fmt.Sprintf("image %s has no responsive srcset", img.Src))
		}
		if !hasModernFormat(img.Src) {
			issues = append(issues, fmt.Sprintf("image %s is not served in a modern format", img.Src))
		}
	}

	score := 100 - issuePenalty*len(issues)
	if score < 0 {
		score = 0
	}

	return common.ImageAuditResult{
		Issues: issues,
		Score:  score,
	}
}

func hasModernFormat(src string) bool {
	name := strings.ToLower(src)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}

	return strings.HasSuffix(name, ".webp") || strings.HasSuffix(name, ".avif")
}
