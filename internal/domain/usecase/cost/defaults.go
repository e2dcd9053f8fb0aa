package cost

import (
	"github.com/reelkit/credits-service/internal/domain/entity"
)

// Media types priced by the platform
const (
	MediaTypeImage   = "IMAGE"
	MediaTypeVideo   = "VIDEO"
	MediaTypeUpscale = "UPSCALE"
)

// DefaultCostTable returns the compiled pricing baseline. The admin override
// table stored in settings takes precedence; these values apply when a lookup
// misses the override table entirely.
func DefaultCostTable() entity.CostTable {
	return entity.CostTable{
		MediaTypeImage: {
			Default: 1,
			Models: map[string]entity.CostEntry{
				"nano-banana": entity.FlatCost(1),
				"flux-pro":    entity.FlatCost(2),
				"seedream":    entity.FlatCost(2),
			},
		},
		MediaTypeVideo: {
			Default: 20,
			Models: map[string]entity.CostEntry{
				"veo": entity.VariantCost(map[string]int64{
					"720p":    15,
					"1080p":   20,
					"4k":      40,
					"default": 20,
				}),
				"kling":   entity.FlatCost(10),
				"runway":  entity.FlatCost(12),
				"sora":    entity.FlatCost(25),
			},
		},
		MediaTypeUpscale: {
			Default: 2,
			Models: map[string]entity.CostEntry{
				"topaz": entity.VariantCost(map[string]int64{
					"2x": 2,
					"4x": 4,
					"8x": 8,
				}),
			},
		},
	}
}
