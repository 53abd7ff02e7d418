package pantry

import (
	"math"
	"strconv"
	"strings"
)

// ToGrams converts a quantity in the given unit to grams. Units that carry no
// mass information (counts like "pcs" or "bag", or an empty string) convert
// to 0; that is the permissive fallback, not an error.
func ToGrams(qty float64, unit string) float64 {
	switch normalizeUnit(unit) {
	case "kg", "kilogram", "kilograms":
		return qty * 1000
	case "lb", "lbs", "pound", "pounds":
		return qty * 453.592
	case "oz", "ounce", "ounces":
		return qty * 28.3495
	case "g", "gram", "grams":
		return qty
	default:
		return 0
	}
}

// FromGrams converts grams to the target unit. Unknown target units are
// treated as already-grams and returned unchanged.
func FromGrams(grams float64, unit string) float64 {
	switch normalizeUnit(unit) {
	case "kg", "kilogram", "kilograms":
		return grams / 1000
	case "lb", "lbs", "pound", "pounds":
		return grams / 453.592
	case "oz", "ounce", "ounces":
		return grams / 28.3495
	default:
		return grams
	}
}

// IsWeightUnit reports whether a unit routes an item down the weight display
// branch. The volume aliases l and ml are classified as weight-like even
// though no gram factor exists for them.
func IsWeightUnit(unit string) bool {
	switch normalizeUnit(unit) {
	case "g", "gram", "grams",
		"kg", "kilogram", "kilograms",
		"lb", "lbs", "pound", "pounds",
		"oz", "ounce", "ounces",
		"l", "ml":
		return true
	}
	return false
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// FormatQuantity renders a display quantity: whole numbers without a decimal
// point, everything else rounded to two decimals with trailing zeros (and a
// bare trailing point) stripped.
func FormatQuantity(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// DisplayInSystem renders "qty+unit" converted into the user's preferred
// measurement system for recipe prompts. Units outside the known tables pass
// through unchanged.
func DisplayInSystem(qty float64, unit, system string) string {
	u := normalizeUnit(unit)

	metric := map[string]bool{"kg": true, "g": true, "l": true, "ml": true}
	imperial := map[string]bool{"lb": true, "oz": true, "cup": true, "tbsp": true, "tsp": true}

	if system == "metric" && imperial[u] {
		switch u {
		case "lb":
			return strconv.FormatFloat(qty*453.592, 'f', 0, 64) + "g"
		case "oz":
			return strconv.FormatFloat(qty*28.3495, 'f', 0, 64) + "g"
		case "cup":
			return strconv.FormatFloat(qty*236.588, 'f', 0, 64) + "ml"
		}
	}
	if system == "imperial" && metric[u] {
		switch u {
		case "kg":
			return strconv.FormatFloat(qty/0.453592, 'f', 2, 64) + "lb"
		case "g":
			return strconv.FormatFloat(qty/28.3495, 'f', 2, 64) + "oz"
		case "l", "ml":
			ml := qty
			if u == "l" {
				ml = qty * 1000
			}
			return strconv.FormatFloat(ml/236.588, 'f', 2, 64) + "cup"
		}
	}
	return FormatQuantity(qty) + unit
}
