package pantry

import "time"

// Ingestion sources for history entries.
const (
	SourceManual  = "manual"
	SourceReceipt = "receipt"
)

// Categories a pantry item can be tagged with.
var Categories = []string{
	"produce", "dairy", "meat", "grains", "snacks", "beverages",
	"condiments", "spices", "canned", "frozen", "baking", "legumes", "other",
}

// Record is one inventory row per (user, canonical item name). TotalCount and
// TotalWeight are the authoritative totals; Quantity and Unit are a display
// cache recomputed from them on every merge.
type Record struct {
	ID          string  `json:"id" db:"id"`
	UserID      string  `json:"userId" db:"user_id"`
	Name        string  `json:"name" db:"name"`
	TotalCount  float64 `json:"totalCount" db:"total_count"`
	TotalWeight float64 `json:"totalWeight" db:"total_weight"` // grams
	Quantity    string  `json:"quantity" db:"quantity"`
	Unit        string  `json:"unit" db:"unit"`
	Category    string  `json:"category" db:"category"`
	ExpiryDate  string  `json:"expiryDate,omitempty" db:"expiry_date"`
	AddedDate   string  `json:"addedDate" db:"added_date"`
	UpdatedDate string  `json:"updatedDate,omitempty" db:"updated_date"`
}

// RawItem is the loose descriptor accepted from the manual entry form and the
// receipt scanner. All numeric fields arrive as strings; unparseable values
// degrade to zero instead of failing the batch.
type RawItem struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Count      string `json:"count,omitempty"`
	Weight     string `json:"weight,omitempty"`
	WeightUnit string `json:"weightUnit,omitempty"`
	Category   string `json:"category,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// IngestItem is a raw descriptor paired with its canonical name and inferred
// category, ready for merging.
type IngestItem struct {
	Raw      RawItem
	Name     string
	Category string
}

// Delta records what one input added to the pantry, never the post-merge
// totals. History is built from deltas so it always reflects "what was
// added", not "what now exists".
type Delta struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quantity   string  `json:"quantity"`
	Unit       string  `json:"unit"`
	Count      float64 `json:"count"`
	Weight     float64 `json:"weight"` // grams
	Category   string  `json:"category"`
	ExpiryDate string  `json:"expiryDate,omitempty"`
	AddedDate  string  `json:"addedDate"`
	UserID     string  `json:"userId"`
	Merged     bool    `json:"merged"`
}

// MergeOutcome summarizes one ingestion batch.
type MergeOutcome struct {
	Deltas      []Delta
	AddedCount  int
	MergedCount int
}

// HistoryEntry is one append-only record of an ingestion batch.
type HistoryEntry struct {
	ID        string           `json:"id"`
	UID       string           `json:"uid"`
	Items     []Delta          `json:"items"`
	Source    string           `json:"source"`
	Metadata  *ReceiptMetadata `json:"metadata,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Count     int              `json:"count"`
}

// ReceiptMetadata is what the scanner extracts about the receipt itself.
type ReceiptMetadata struct {
	MerchantName string `json:"merchantName"`
	Date         string `json:"date"`
	TotalAmount  string `json:"totalAmount"`
}

// ReceiptScan is the result of scanning one receipt image.
type ReceiptScan struct {
	Items    []RawItem       `json:"items"`
	Metadata ReceiptMetadata `json:"metadata"`
}

// Classification is the grocery/non-grocery verdict for one scanned item.
type Classification struct {
	IsGrocery  bool    `json:"isGrocery"`
	Confidence float64 `json:"confidence"`
}

// Recipe is one generated meal suggestion.
type Recipe struct {
	Title              string   `json:"title"`
	Time               string   `json:"time"`
	Difficulty         string   `json:"difficulty"`
	Calories           string   `json:"calories"`
	Protein            string   `json:"protein"`
	Description        string   `json:"description"`
	UsedIngredients    []string `json:"usedIngredients"`
	MissingIngredients []string `json:"missingIngredients"`
	Instructions       []string `json:"instructions"`
}

// RecipeRequest carries everything the recipe generator needs.
type RecipeRequest struct {
	Cuisine         string
	PantryList      string
	ProteinTarget   float64
	DietTags        string
	Gender          string
	WeightKg        float64
	HeightCm        float64
	MeasurementUnit string
}

// Profile holds per-user dietary settings and biometrics.
type Profile struct {
	UserID          string    `json:"userId"`
	ProteinTarget   float64   `json:"proteinTarget"`
	Tags            []string  `json:"tags"`
	Gender          string    `json:"gender,omitempty"`
	Weight          float64   `json:"weight,omitempty"` // kg
	Height          float64   `json:"height,omitempty"` // cm
	MeasurementUnit string    `json:"measurementUnit"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial profile patch; nil fields are left untouched.
type ProfileUpdate struct {
	ProteinTarget   *float64  `json:"proteinTarget"`
	Tags            *[]string `json:"tags"`
	Gender          *string   `json:"gender"`
	Weight          *float64  `json:"weight"`
	Height          *float64  `json:"height"`
	MeasurementUnit *string   `json:"measurementUnit"`
}

// ItemUpdate is a partial pantry item patch; nil fields are left untouched.
type ItemUpdate struct {
	Name       *string `json:"name"`
	Quantity   *string `json:"quantity"`
	Unit       *string `json:"unit"`
	Category   *string `json:"category"`
	ExpiryDate *string `json:"expiryDate"`
}

// NutritionLog is one logged meal or quick-add entry.
type NutritionLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Date      string    `json:"date" db:"log_date"` // YYYY-MM-DD
	Calories  float64   `json:"calories" db:"calories"`
	Protein   float64   `json:"protein" db:"protein"`
	Label     string    `json:"label" db:"label"`
	Timestamp time.Time `json:"timestamp" db:"ts"`
}

// DailyTotals is the nutrition sum for one day.
type DailyTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// ResetSummary reports what a full user-data wipe removed.
type ResetSummary struct {
	PantryItemsDeleted   int `json:"pantryItemsDeleted"`
	HistoryDeleted       int `json:"historyDeleted"`
	NutritionLogsDeleted int `json:"nutritionLogsDeleted"`
}
