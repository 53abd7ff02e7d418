package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

// PantryStore defines the data operations the API needs.
type PantryStore interface {
	MergeItems(ctx context.Context, userID string, items []pantry.IngestItem) (*pantry.MergeOutcome, error)
	ListItems(ctx context.Context, userID string) ([]pantry.Record, error)
	GetItem(ctx context.Context, id string) (*pantry.Record, error)
	UpdateItem(ctx context.Context, id string, upd pantry.ItemUpdate) error
	DeleteItem(ctx context.Context, id string) error
	Consume(ctx context.Context, userID string, names []string) ([]pantry.Record, []string, error)
	AddHistory(ctx context.Context, entry *pantry.HistoryEntry) error
	ListHistory(ctx context.Context, uid string, limit int) ([]pantry.HistoryEntry, error)
	HistoryBetween(ctx context.Context, uid string, start, end time.Time) ([]pantry.HistoryEntry, error)
	FindReceiptDuplicate(ctx context.Context, uid string, meta pantry.ReceiptMetadata) (*time.Time, error)
	LogNutrition(ctx context.Context, entry *pantry.NutritionLog) error
	DailyNutrition(ctx context.Context, userID, date string) (pantry.DailyTotals, error)
	NutritionSince(ctx context.Context, userID, since string) (map[string]pantry.DailyTotals, error)
	GetOrCreateProfile(ctx context.Context, userID string) (*pantry.Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd pantry.ProfileUpdate) (*pantry.Profile, error)
	ResetUserData(ctx context.Context, userID string) (pantry.ResetSummary, error)
}

// VisionClient defines the interface for the receipt/recipe AI backend.
type VisionClient interface {
	ScanReceipt(ctx context.Context, imageData []byte, format string) (*pantry.ReceiptScan, error)
	GenerateRecipes(ctx context.Context, req pantry.RecipeRequest) ([]pantry.Recipe, error)
}

// Normalizer defines the interface for the text AI backend. Both operations
// are infallible: they fall back to offline heuristics internally.
type Normalizer interface {
	NormalizeItemName(ctx context.Context, name string) string
	ClassifyGroceryItems(ctx context.Context, names []string) []pantry.Classification
}

// Handler handles HTTP requests.
type Handler struct {
	Store      PantryStore
	Vision     VisionClient
	Normalizer Normalizer
}

// NewHandler creates a new Handler.
func NewHandler(store PantryStore, vision VisionClient, normalizer Normalizer) *Handler {
	return &Handler{Store: store, Vision: vision, Normalizer: normalizer}
}

type addItemsRequest struct {
	Items    []pantry.RawItem        `json:"items"`
	Source   string                  `json:"source"`
	Metadata *pantry.ReceiptMetadata `json:"metadata"`
}

// AddItems handles a batch ingestion call (manual entry or scanner save).
func (h *Handler) AddItems(c *gin.Context) {
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided"})
		return
	}
	h.ingest(c, req.Items, req.Source, req.Metadata)
}

// AddSingleItem wraps one item and delegates to the batch path so both share
// the same merge logic.
func (h *Handler) AddSingleItem(c *gin.Context) {
	var item pantry.RawItem
	if err := c.ShouldBindJSON(&item); err != nil || item.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided"})
		return
	}
	h.ingest(c, []pantry.RawItem{item}, pantry.SourceManual, nil)
}

// ingest is the core ingestion flow: normalize names, categorize, merge the
// whole batch atomically, then append history (non-fatally).
func (h *Handler) ingest(c *gin.Context, items []pantry.RawItem, source string, metadata *pantry.ReceiptMetadata) {
	uid := userID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	ingest := make([]pantry.IngestItem, 0, len(items))
	for _, raw := range items {
		name := h.Normalizer.NormalizeItemName(ctx, raw.Name)
		category := raw.Category
		if category == "" {
			category = pantry.CategorizeItem(name)
		}
		ingest = append(ingest, pantry.IngestItem{Raw: raw, Name: name, Category: category})
	}

	outcome, err := h.Store.MergeItems(ctx, uid, ingest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, "Database write timed out")
			return
		}
		logger.Error("failed to add items to pantry", "userId", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add items to pantry", "details": err.Error()})
		return
	}

	if source != pantry.SourceReceipt {
		source = pantry.SourceManual
	}
	entry := &pantry.HistoryEntry{
		UID:       uid,
		Items:     outcome.Deltas,
		Source:    source,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
		Count:     len(items),
	}
	// History is best effort; the batch is already committed.
	if err := h.Store.AddHistory(ctx, entry); err != nil {
		logger.Error("failed to save history", "userId", uid, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     fmt.Sprintf("%d items processed (%d merged)", len(outcome.Deltas), outcome.MergedCount),
		"addedCount":  outcome.AddedCount,
		"mergedCount": outcome.MergedCount,
		"items":       outcome.Deltas,
	})
}

// GetPantryItems returns all pantry items for the caller, newest first.
func (h *Handler) GetPantryItems(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Store.ListItems(ctx, userID(c))
	if err != nil {
		logger.Error("failed to fetch pantry items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pantry items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ownedItem loads an item and verifies the caller owns it, writing the error
// response itself when not.
func (h *Handler) ownedItem(ctx context.Context, c *gin.Context, itemID string) *pantry.Record {
	rec, err := h.Store.GetItem(ctx, itemID)
	if err != nil {
		logger.Error("failed to load pantry item", "itemId", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load item"})
		return nil
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return nil
	}
	if rec.UserID != userID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return nil
	}
	return rec
}

// UpdatePantryItem applies a partial patch to one owned item.
func (h *Handler) UpdatePantryItem(c *gin.Context) {
	itemID := c.Param("itemId")

	var upd pantry.ItemUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.ownedItem(ctx, c, itemID) == nil {
		return
	}
	if err := h.Store.UpdateItem(ctx, itemID, upd); err != nil {
		logger.Error("failed to update pantry item", "itemId", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

// DeletePantryItem removes one owned item.
func (h *Handler) DeletePantryItem(c *gin.Context) {
	itemID := c.Param("itemId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.ownedItem(ctx, c, itemID) == nil {
		return
	}
	if err := h.Store.DeleteItem(ctx, itemID); err != nil {
		logger.Error("failed to delete pantry item", "itemId", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

type consumeRequest struct {
	Ingredients []string `json:"ingredients"`
}

// ConsumeIngredients applies the recipe-completion deduction to the named
// ingredients.
func (h *Handler) ConsumeIngredients(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	updated, removed, err := h.Store.Consume(ctx, userID(c), req.Ingredients)
	if err != nil {
		logger.Error("failed to consume ingredients", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pantry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "removed": removed})
}
