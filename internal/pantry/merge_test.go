package pantry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveInputExplicitChannels(t *testing.T) {
	in := ResolveInput(RawItem{Count: "3", Weight: "500", WeightUnit: "g"})
	assert.InDelta(t, 3.0, in.Count, 1e-9)
	assert.InDelta(t, 500.0, in.Weight, 1e-9)
}

func TestResolveInputWeightUnitDefaultsToGrams(t *testing.T) {
	in := ResolveInput(RawItem{Weight: "250"})
	assert.InDelta(t, 0.0, in.Count, 1e-9)
	assert.InDelta(t, 250.0, in.Weight, 1e-9)
}

func TestResolveInputWeightConversion(t *testing.T) {
	in := ResolveInput(RawItem{Weight: "2", WeightUnit: "lb"})
	assert.InDelta(t, 907.184, in.Weight, 1e-6)
}

func TestResolveInputExplicitSuppressesLegacy(t *testing.T) {
	// The legacy quantity must be ignored as soon as any explicit field
	// parsed, even when the explicit value is zero.
	in := ResolveInput(RawItem{Count: "0", Quantity: "5", Unit: "pcs"})
	assert.InDelta(t, 0.0, in.Count, 1e-9)
	assert.InDelta(t, 0.0, in.Weight, 1e-9)

	in = ResolveInput(RawItem{Weight: "100", Quantity: "5", Unit: "pcs"})
	assert.InDelta(t, 0.0, in.Count, 1e-9)
	assert.InDelta(t, 100.0, in.Weight, 1e-9)
}

func TestResolveInputLegacyCountUnit(t *testing.T) {
	in := ResolveInput(RawItem{Quantity: "2", Unit: "pcs"})
	assert.InDelta(t, 2.0, in.Count, 1e-9)
	assert.InDelta(t, 0.0, in.Weight, 1e-9)
}

func TestResolveInputLegacyWeightUnit(t *testing.T) {
	// A weight-only legacy descriptor still represents one physical unit.
	in := ResolveInput(RawItem{Quantity: "1", Unit: "lb"})
	assert.InDelta(t, 1.0, in.Count, 1e-9)
	assert.InDelta(t, 453.592, in.Weight, 1e-6)
}

func TestResolveInputUnparseableIsAbsent(t *testing.T) {
	in := ResolveInput(RawItem{Count: "a few", Weight: "some", Quantity: "n/a", Unit: "kg"})
	assert.InDelta(t, 0.0, in.Count, 1e-9)
	assert.InDelta(t, 0.0, in.Weight, 1e-9)
}

func TestNewRecordWeightItem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := IngestItem{
		Raw:      RawItem{Name: "chicken", Weight: "2", WeightUnit: "lb"},
		Name:     "Chicken",
		Category: "meat",
	}
	res := NewRecord("id-1", "user-1", item, ResolveInput(item.Raw), now)

	assert.False(t, res.Merged)
	assert.Equal(t, "Chicken", res.Record.Name)
	assert.InDelta(t, 907.184, res.Record.TotalWeight, 1e-6)
	assert.InDelta(t, 0.0, res.Record.TotalCount, 1e-9)
	assert.Equal(t, "lb", res.Record.Unit)
	assert.Equal(t, "2", res.Record.Quantity)
	assert.Equal(t, "2026-03-01T12:00:00Z", res.Record.AddedDate)
}

func TestNewRecordCountItem(t *testing.T) {
	now := time.Now()
	item := IngestItem{
		Raw:      RawItem{Name: "eggs", Quantity: "12", Unit: "pcs"},
		Name:     "Egg",
		Category: "meat",
	}
	res := NewRecord("id-2", "user-1", item, ResolveInput(item.Raw), now)

	assert.InDelta(t, 12.0, res.Record.TotalCount, 1e-9)
	assert.InDelta(t, 0.0, res.Record.TotalWeight, 1e-9)
	assert.Equal(t, "pcs", res.Record.Unit)
	assert.Equal(t, "12", res.Record.Quantity)
}

func TestNewRecordWeightUnitWithoutWeightShowsCount(t *testing.T) {
	// A weight-like display unit with no actual weight must not render the
	// quantity through the gram converter.
	now := time.Now()
	item := IngestItem{
		Raw:  RawItem{Name: "water", Count: "2", WeightUnit: "l"},
		Name: "Water",
	}
	res := NewRecord("id-3", "user-1", item, ResolveInput(item.Raw), now)

	assert.Equal(t, "l", res.Record.Unit)
	assert.Equal(t, "2", res.Record.Quantity)
}

func TestMergeIntoAddsWeight(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	existing := Record{
		ID: "id-1", UserID: "user-1", Name: "Chicken",
		TotalCount: 1, TotalWeight: 500, Quantity: "500", Unit: "g",
		Category: "meat",
	}
	item := IngestItem{
		Raw:  RawItem{Name: "chicken", Weight: "1", WeightUnit: "kg"},
		Name: "Chicken",
	}
	res := MergeInto(existing, item, ResolveInput(item.Raw), now)

	assert.True(t, res.Merged)
	assert.InDelta(t, 1.0, res.Record.TotalCount, 1e-9)
	assert.InDelta(t, 1500.0, res.Record.TotalWeight, 1e-9)
	// Display follows the incoming weight unit.
	assert.Equal(t, "kg", res.Record.Unit)
	assert.Equal(t, "1.5", res.Record.Quantity)
	assert.Equal(t, "2026-03-02T09:00:00Z", res.Record.UpdatedDate)
}

func TestMergeIntoAddsCount(t *testing.T) {
	existing := Record{
		ID: "id-2", UserID: "user-1", Name: "Egg",
		TotalCount: 6, Quantity: "6", Unit: "pcs",
	}
	item := IngestItem{
		Raw:  RawItem{Name: "eggs", Count: "6"},
		Name: "Egg",
	}
	res := MergeInto(existing, item, ResolveInput(item.Raw), time.Now())

	assert.InDelta(t, 12.0, res.Record.TotalCount, 1e-9)
	// No unit on the input: the existing display unit survives.
	assert.Equal(t, "pcs", res.Record.Unit)
	assert.Equal(t, "12", res.Record.Quantity)
}

func TestMergeIntoKeepsExistingUnitWhenInputHasNone(t *testing.T) {
	existing := Record{
		ID: "id-3", UserID: "user-1", Name: "Rice",
		TotalWeight: 1000, Quantity: "1", Unit: "kg",
	}
	item := IngestItem{
		Raw:  RawItem{Name: "rice", Weight: "500"},
		Name: "Rice",
	}
	res := MergeInto(existing, item, ResolveInput(item.Raw), time.Now())

	assert.Equal(t, "kg", res.Record.Unit)
	assert.Equal(t, "1.5", res.Record.Quantity)
}

func TestDeltaRecordsAddedAmountsNotTotals(t *testing.T) {
	existing := Record{
		ID: "id-1", UserID: "user-1", Name: "Chicken",
		TotalCount: 4, TotalWeight: 2000, Unit: "g", Category: "meat",
	}
	item := IngestItem{
		Raw:  RawItem{Name: "chicken", Weight: "500", WeightUnit: "g"},
		Name: "Chicken",
	}
	res := MergeInto(existing, item, ResolveInput(item.Raw), time.Now())

	assert.InDelta(t, 500.0, res.Delta.Weight, 1e-9)
	assert.InDelta(t, 0.0, res.Delta.Count, 1e-9)
	assert.True(t, res.Delta.Merged)
	assert.Equal(t, "meat", res.Delta.Category)
	assert.Equal(t, "user-1", res.Delta.UserID)
}
