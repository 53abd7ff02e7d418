package pantry

import (
	"strconv"
	"strings"
	"time"
)

// ResolvedInput is a raw descriptor normalized onto the two authoritative
// channels: a discrete count and a weight in grams.
type ResolvedInput struct {
	Count  float64
	Weight float64 // grams
}

// ResolveInput normalizes a raw descriptor exactly once at ingress.
// Precedence: explicit count, explicit weight, then the legacy quantity+unit
// pair only when neither explicit field parsed. Unparseable numbers are
// treated as absent rather than rejected.
func ResolveInput(item RawItem) ResolvedInput {
	var in ResolvedInput
	var hasCount, hasWeight bool

	if v, ok := parseNumber(item.Count); ok {
		in.Count = v
		hasCount = true
	}
	if v, ok := parseNumber(item.Weight); ok {
		unit := item.WeightUnit
		if unit == "" {
			unit = "g"
		}
		in.Weight = ToGrams(v, unit)
		hasWeight = true
	}
	if hasCount || hasWeight {
		return in
	}

	qty, ok := parseNumber(item.Quantity)
	if !ok {
		return in
	}
	if IsWeightUnit(item.Unit) {
		in.Weight = ToGrams(qty, item.Unit)
		// "1 lb of chicken" is still one physical unit of purchase.
		in.Count = 1
	} else {
		in.Count = qty
	}
	return in
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MergeResult is the write produced for one input: a fresh record or updated
// totals for an existing one, plus the history delta.
type MergeResult struct {
	Record Record
	Delta  Delta
	Merged bool
}

// MergeInto folds a resolved input additively into an existing record and
// recomputes the display cache from the new totals. The totals never
// decrease here; consumption is a separate path.
func MergeInto(existing Record, item IngestItem, in ResolvedInput, now time.Time) MergeResult {
	rec := existing
	rec.TotalCount += in.Count
	rec.TotalWeight += in.Weight

	// Display unit preference: new weight unit, new generic unit, then
	// whatever the record already displayed.
	rec.Unit = displayUnit(item.Raw, existing.Unit)
	if IsWeightUnit(rec.Unit) {
		rec.Quantity = FormatQuantity(FromGrams(rec.TotalWeight, rec.Unit))
	} else {
		rec.Quantity = FormatQuantity(rec.TotalCount)
	}
	rec.UpdatedDate = now.UTC().Format(time.RFC3339)

	return MergeResult{
		Record: rec,
		Merged: true,
		Delta:  newDelta(rec.ID, rec.Name, existing.Category, existing.UserID, item.Raw, in, now, true),
	}
}

// NewRecord builds a fresh record for the first sighting of a canonical name.
// The weight display branch only fires when the input actually carried weight.
func NewRecord(id, userID string, item IngestItem, in ResolvedInput, now time.Time) MergeResult {
	unit := displayUnit(item.Raw, "")
	quantity := FormatQuantity(in.Count)
	if IsWeightUnit(unit) && in.Weight > 0 {
		quantity = FormatQuantity(FromGrams(in.Weight, unit))
	}

	rec := Record{
		ID:          id,
		UserID:      userID,
		Name:        item.Name,
		TotalCount:  in.Count,
		TotalWeight: in.Weight,
		Quantity:    quantity,
		Unit:        unit,
		Category:    item.Category,
		ExpiryDate:  item.Raw.ExpiryDate,
		AddedDate:   now.UTC().Format(time.RFC3339),
	}
	return MergeResult{
		Record: rec,
		Merged: false,
		Delta:  newDelta(id, item.Name, item.Category, userID, item.Raw, in, now, false),
	}
}

func displayUnit(raw RawItem, existingUnit string) string {
	if raw.WeightUnit != "" {
		return raw.WeightUnit
	}
	if raw.Unit != "" {
		return raw.Unit
	}
	return existingUnit
}

func newDelta(id, name, category, userID string, raw RawItem, in ResolvedInput, now time.Time, merged bool) Delta {
	return Delta{
		ID:         id,
		Name:       name,
		Quantity:   raw.Quantity,
		Unit:       raw.Unit,
		Count:      in.Count,
		Weight:     in.Weight,
		Category:   category,
		ExpiryDate: raw.ExpiryDate,
		AddedDate:  now.UTC().Format(time.RFC3339),
		UserID:     userID,
		Merged:     merged,
	}
}
