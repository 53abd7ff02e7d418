package pantry

import "regexp"

// Keyword tables for auto-categorizing items by name. First match wins, so
// the more specific aisles (spices, baking) sit above the broad ones they
// overlap with.
var categoryPatterns = []struct {
	category string
	pattern  *regexp.Regexp
}{
	{"spices", regexp.MustCompile(`(?i)paprika|cumin|turmeric|cinnamon|nutmeg|oregano|basil|thyme|rosemary|chili powder|curry powder|peppercorn|clove|cardamom|seasoning|spice`)},
	{"condiments", regexp.MustCompile(`(?i)ketchup|mustard|mayonnaise|mayo|relish|salsa|soy sauce|hot sauce|bbq sauce|sriracha|vinegar|dressing|pesto|hummus`)},
	{"baking", regexp.MustCompile(`(?i)baking soda|baking powder|yeast|vanilla extract|cocoa powder|powdered sugar|brown sugar|cake mix|chocolate chip`)},
	{"canned", regexp.MustCompile(`(?i)canned|tomato paste|tomato sauce|soup|broth|stock`)},
	{"frozen", regexp.MustCompile(`(?i)frozen|ice cream|popsicle`)},
	{"legumes", regexp.MustCompile(`(?i)lentil|chickpea|black bean|kidney bean|pinto bean|edamame|tofu|tempeh|split pea`)},
	{"produce", regexp.MustCompile(`(?i)tomato|lettuce|spinach|kale|cabbage|carrot|potato|onion|garlic|pepper|cucumber|broccoli|cauliflower|celery|mushroom|zucchini|squash|eggplant|avocado|apple|banana|orange|grape|berry|melon|peach|pear|plum|mango|pineapple|lemon|lime`)},
	{"dairy", regexp.MustCompile(`(?i)milk|cheese|yogurt|butter|cream|cheddar|mozzarella|parmesan|feta|brie|whey|dairy`)},
	{"meat", regexp.MustCompile(`(?i)chicken|beef|pork|lamb|turkey|fish|salmon|tuna|shrimp|crab|lobster|egg|bacon|sausage|ham|steak|meat|protein`)},
	{"grains", regexp.MustCompile(`(?i)bread|rice|pasta|noodle|flour|oat|cereal|granola|quinoa|barley|wheat|bagel|tortilla|pita|cracker|baguette|roll`)},
	{"snacks", regexp.MustCompile(`(?i)chip|cookie|candy|chocolate|snack|popcorn|pretzel|nut|almond|cashew|peanut|walnut|trail mix|granola bar|cake|brownie`)},
	{"beverages", regexp.MustCompile(`(?i)juice|soda|coffee|tea|water|beer|wine|liquor|energy drink|sports drink|lemonade|cola`)},
}

// CategorizeItem infers a category tag from an item name, defaulting to
// "other".
func CategorizeItem(name string) string {
	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(name) {
			return cp.category
		}
	}
	return "other"
}
