package pantry

import "regexp"

// Non-grocery receipt lines that should be flagged before they land in the
// pantry. Receipts mix food with batteries and paper towels; these tables are
// the offline fallback when the AI classifier is unavailable.
var nonGroceryPatterns = []*regexp.Regexp{
	// Electronics & appliances
	regexp.MustCompile(`(?i)\btv\b|television|monitor|laptop|computer|tablet|phone|headphone|earbud|speaker|camera|charger|cable|usb|hdmi|battery|keyboard|mouse|printer|router`),
	// Home & garden
	regexp.MustCompile(`(?i)furniture|chair|table|desk|mattress|pillow|blanket|towel|curtain|rug|lamp|light bulb|paint|hammer|screwdriver|drill|glue`),
	// Clothing & accessories
	regexp.MustCompile(`(?i)shirt|pants|jeans|dress|jacket|coat|shoe|boot|sneaker|sock|belt|hat|gloves|scarf|wallet|backpack`),
	// Personal care
	regexp.MustCompile(`(?i)shampoo|conditioner|body wash|lotion|makeup|cosmetic|perfume|deodorant|toothbrush|toothpaste|mouthwash|razor`),
	// Household
	regexp.MustCompile(`(?i)detergent|bleach|cleaner|disinfectant|sponge|mop|broom|trash bag|paper towel|tissue|toilet paper|cookware|pan|pot`),
	// Office, toys, auto, other
	regexp.MustCompile(`(?i)\bpen\b|pencil|notebook|stapler|scissors|marker|envelope|calculator`),
	regexp.MustCompile(`(?i)\btoy\b|puzzle|board game|video game|playstation|xbox|nintendo|lego`),
	regexp.MustCompile(`(?i)tire|motor oil|windshield|wiper|air freshener|car wash`),
	regexp.MustCompile(`(?i)magazine|newspaper|gift card|lottery|cigarette|tobacco|vape`),
}

var groceryPattern = regexp.MustCompile(`(?i)food|grocery|produce|fruit|vegetable|meat|dairy|bread|milk|cheese|egg|chicken|beef|pork|fish|rice|pasta|cereal|snack|juice|soda|water|coffee|tea|sugar|salt|spice|sauce|oil|butter|yogurt|cream`)

// IsGroceryItem reports whether a receipt line looks like food. Most receipt
// lines are groceries, so anything that matches neither table defaults to
// true.
func IsGroceryItem(name string) bool {
	for _, p := range nonGroceryPatterns {
		if p.MatchString(name) {
			return false
		}
	}
	return true
}

// FallbackClassify is the offline substitute for the AI grocery classifier.
// Strong grocery keyword matches get a higher confidence than the default.
func FallbackClassify(names []string) []Classification {
	out := make([]Classification, len(names))
	for i, name := range names {
		c := Classification{IsGrocery: IsGroceryItem(name), Confidence: 0.7}
		if c.IsGrocery && groceryPattern.MatchString(name) {
			c.Confidence = 0.95
		}
		out[i] = c
	}
	return out
}
