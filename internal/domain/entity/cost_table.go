package entity

import (
	"encoding/json"
	"fmt"

	errs "github.com/reelkit/credits-service/internal/domain/error"
)

// costDefaultKey is the reserved variant key holding a model-level default cost
const costDefaultKey = "default"

// CostEntry is the cost of one generation model: either a flat number of
// credits regardless of variant, or a variant-keyed map (e.g. per target
// resolution) with an optional model-level default.
type CostEntry struct {
	flat              int64
	isFlat            bool
	variants          map[string]int64
	variantDefault    int64
	hasVariantDefault bool
}

// FlatCost builds an entry charging the same amount for every variant
func FlatCost(credits int64) CostEntry {
	return CostEntry{flat: credits, isFlat: true}
}

// VariantCost builds an entry with per-variant costs. A "default" key, if
// present, becomes the model-level fallback.
func VariantCost(variants map[string]int64) CostEntry {
	entry := CostEntry{variants: make(map[string]int64, len(variants))}
	for variant, credits := range variants {
		if variant == costDefaultKey {
			entry.variantDefault = credits
			entry.hasVariantDefault = true
			continue
		}
		entry.variants[variant] = credits
	}
	return entry
}

// IsFlat reports whether the entry is a flat cost
func (e CostEntry) IsFlat() bool {
	return e.isFlat
}

// Resolve returns the cost for the given variant, following the order
// variant-specific -> model default -> flat number.
func (e CostEntry) Resolve(variant string) (int64, bool) {
	if e.isFlat {
		return e.flat, true
	}
	if variant != "" {
		if credits, ok := e.variants[variant]; ok {
			return credits, true
		}
	}
	if e.hasVariantDefault {
		return e.variantDefault, true
	}
	return 0, false
}

// UnmarshalJSON accepts either a bare number (flat cost) or an object of
// variant costs
func (e *CostEntry) UnmarshalJSON(data []byte) error {
	var flat int64
	if err := json.Unmarshal(data, &flat); err == nil {
		*e = FlatCost(flat)
		return nil
	}

	var variants map[string]int64
	if err := json.Unmarshal(data, &variants); err != nil {
		return fmt.Errorf("%w: cost entry must be a number or a variant map", errs.ErrInvalidRequest)
	}
	*e = VariantCost(variants)
	return nil
}

// MarshalJSON emits the same shape the entry was parsed from
func (e CostEntry) MarshalJSON() ([]byte, error) {
	if e.isFlat {
		return json.Marshal(e.flat)
	}
	variants := make(map[string]int64, len(e.variants)+1)
	for variant, credits := range e.variants {
		variants[variant] = credits
	}
	if e.hasVariantDefault {
		variants[costDefaultKey] = e.variantDefault
	}
	return json.Marshal(variants)
}

// MediaTypeCosts holds the costs for one media type: a required default and
// optional per-model entries
type MediaTypeCosts struct {
	Default int64                `json:"default"`
	Models  map[string]CostEntry `json:"models,omitempty"`
}

// CostTable maps media types (IMAGE, VIDEO, ...) to their cost configuration
type CostTable map[string]MediaTypeCosts

// Resolve returns the credit cost for a generation request within this table.
// Resolution order: models[model][variant] -> models[model] default ->
// models[model] flat -> mediaType default. The boolean reports whether the
// media type was present at all.
func (t CostTable) Resolve(mediaType, model, variant string) (int64, bool) {
	media, ok := t[mediaType]
	if !ok {
		return 0, false
	}

	if model != "" {
		if entry, ok := media.Models[model]; ok {
			if credits, ok := entry.Resolve(variant); ok {
				return credits, true
			}
		}
	}

	return media.Default, true
}

// Validate checks that every cost in the table is positive. A zero cost would
// silently hand out free generations, so it is rejected up front.
func (t CostTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty cost table", errs.ErrInvalidRequest)
	}
	for mediaType, media := range t {
		if media.Default <= 0 {
			return fmt.Errorf("%w: media type %s has no positive default cost", errs.ErrInvalidRequest, mediaType)
		}
		for model, entry := range media.Models {
			if entry.isFlat {
				if entry.flat <= 0 {
					return fmt.Errorf("%w: model %s has non-positive cost", errs.ErrInvalidRequest, model)
				}
				continue
			}
			if entry.hasVariantDefault && entry.variantDefault <= 0 {
				return fmt.Errorf("%w: model %s has non-positive default cost", errs.ErrInvalidRequest, model)
			}
			for variant, credits := range entry.variants {
				if credits <= 0 {
					return fmt.Errorf("%w: model %s variant %s has non-positive cost", errs.ErrInvalidRequest, model, variant)
				}
			}
		}
	}
	return nil
}
