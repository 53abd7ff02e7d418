package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToGrams(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		unit string
		want float64
	}{
		{"kilograms", 1, "kg", 1000},
		{"kilograms long form", 2, "kilograms", 2000},
		{"pounds", 1, "lb", 453.592},
		{"pounds plural alias", 2, "lbs", 907.184},
		{"ounces", 1, "oz", 28.3495},
		{"grams pass through", 250, "g", 250},
		{"mixed case", 1, "KG", 1000},
		{"count unit carries no mass", 3, "pcs", 0},
		{"empty unit carries no mass", 3, "", 0},
		{"volume has no gram factor", 1, "l", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToGrams(tt.qty, tt.unit), 1e-9)
		})
	}
}

func TestFromGramsRoundTrip(t *testing.T) {
	for _, unit := range []string{"kg", "lb", "oz", "g"} {
		t.Run(unit, func(t *testing.T) {
			got := FromGrams(ToGrams(2.5, unit), unit)
			assert.InDelta(t, 2.5, got, 1e-9)
		})
	}
}

func TestFromGramsUnknownUnitPassesThrough(t *testing.T) {
	assert.InDelta(t, 500.0, FromGrams(500, "pcs"), 1e-9)
	assert.InDelta(t, 500.0, FromGrams(500, ""), 1e-9)
}

func TestIsWeightUnit(t *testing.T) {
	for _, unit := range []string{"g", "kg", "lb", "lbs", "oz", "pounds", "GRAMS", " kg ", "l", "ml"} {
		assert.True(t, IsWeightUnit(unit), "expected %q to be weight-like", unit)
	}
	for _, unit := range []string{"pcs", "bag", "bottle", "can", ""} {
		assert.False(t, IsWeightUnit(unit), "expected %q not to be weight-like", unit)
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{0, "0"},
		{12, "12"},
		{1.5, "1.5"},
		{0.25, "0.25"},
		{2.50, "2.5"},
		{1.004, "1"},
		{1.239, "1.24"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatQuantity(tt.in), "FormatQuantity(%v)", tt.in)
	}
}

func TestDisplayInSystem(t *testing.T) {
	tests := []struct {
		name   string
		qty    float64
		unit   string
		system string
		want   string
	}{
		{"kg to lb", 1, "kg", "imperial", "2.20lb"},
		{"g to oz", 453.592, "g", "imperial", "16.00oz"},
		{"lb to g", 1, "lb", "metric", "454g"},
		{"oz to g", 2, "oz", "metric", "57g"},
		{"cup to ml", 1, "cup", "metric", "237ml"},
		{"metric stays metric", 2, "kg", "metric", "2kg"},
		{"imperial stays imperial", 1.5, "lb", "imperial", "1.5lb"},
		{"count unit passes through", 3, "pcs", "metric", "3pcs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayInSystem(tt.qty, tt.unit, tt.system))
		})
	}
}
