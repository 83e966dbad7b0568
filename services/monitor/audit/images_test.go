package audit

import (
	"testing"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/testsCommon"
	"github.com/stretchr/testify/assert"
)

func TestAuditImages(t *testing.T) {
	t.Parallel()

	t.Run("nil lister yields a perfect score", func(t *testing.T) {
		result := AuditImages(nil)

		assert.Empty(t, result.Issues)
		assert.Equal(t, 100, result.Score)
	})
	t.Run("fully unoptimized image fails all four checks", func(t *testing.T) {
		lister := &testsCommon.InspectorStub{
			ImagesHandler: func() []common.ImageInfo {
				return []common.ImageInfo{
					{Src: "https://example.com/hero.jpg"},
				}
			},
		}

		result := AuditImages(lister)

		assert.Len(t, result.Issues, 4)
		assert.Equal(t, 60, result.Score)
	})
	t.Run("fully optimized image passes all checks", func(t *testing.T) {
		lister := &testsCommon.InspectorStub{
			ImagesHandler: func() []common.ImageInfo {
				return []common.ImageInfo{
					{
						Src:     "https://example.com/hero.webp?w=1200",
						Alt:     "hero banner",
						Loading: "lazy",
						Srcset:  "hero-600.webp 600w, hero-1200.webp 1200w",
					},
				}
			},
		}

		result := AuditImages(lister)

		assert.Empty(t, result.Issues)
		assert.Equal(t, 100, result.Score)
	})
	t.Run("avif counts as a modern format", func(t *testing.T) {
		lister := &testsCommon.InspectorStub{
			ImagesHandler: func() []common.ImageInfo {
				return []common.ImageInfo{
					{Src: "pic.avif", Alt: "a", Loading: "lazy", Srcset: "pic.avif 1x"},
				}
			},
		}

		result := AuditImages(lister)

		assert.Empty(t, result.Issues)
	})
	t.Run("score never goes below zero", func(t *testing.T) {
		images := make([]common.ImageInfo, 3)
		for i := range images {
			images[i] = common.ImageInfo{Src: "img.png"}
		}
		lister := &testsCommon.InspectorStub{
			ImagesHandler: func() []common.ImageInfo {
				return images
			},
		}

		result := AuditImages(lister)

		assert.Len(t, result.Issues, 12)
		assert.Equal(t, 0, result.Score)
	})
}
