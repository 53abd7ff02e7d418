package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

type generateRecipesRequest struct {
	Cuisine string `json:"cuisine"`
}

// GenerateRecipes asks the AI for meal suggestions built from the caller's
// current pantry, profile and preferred cuisine.
func (h *Handler) GenerateRecipes(c *gin.Context) {
	var req generateRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Cuisine) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuisine is required"})
		return
	}

	uid := userID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	profile, err := h.Store.GetOrCreateProfile(ctx, uid)
	if err != nil {
		logger.Error("failed to load profile for recipes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	items, err := h.Store.ListItems(ctx, uid)
	if err != nil {
		logger.Error("failed to load pantry for recipes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pantry"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your pantry is empty. Add some items first."})
		return
	}

	recipes, err := h.Vision.GenerateRecipes(ctx, pantry.RecipeRequest{
		Cuisine:         req.Cuisine,
		PantryList:      pantryList(items, profile.MeasurementUnit),
		ProteinTarget:   profile.ProteinTarget,
		DietTags:        strings.Join(profile.Tags, ", "),
		Gender:          profile.Gender,
		WeightKg:        profile.Weight,
		HeightCm:        profile.Height,
		MeasurementUnit: profile.MeasurementUnit,
	})
	if err != nil {
		logger.Error("recipe generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// pantryList renders the inventory as a prompt-friendly list with quantities
// converted to the user's measurement system.
func pantryList(items []pantry.Record, system string) string {
	entries := make([]string, 0, len(items))
	for _, rec := range items {
		var display string
		if pantry.IsWeightUnit(rec.Unit) {
			display = pantry.DisplayInSystem(pantry.FromGrams(rec.TotalWeight, rec.Unit), rec.Unit, system)
		} else {
			display = pantry.DisplayInSystem(rec.TotalCount, rec.Unit, system)
		}
		entries = append(entries, rec.Name+" ("+display+")")
	}
	return strings.Join(entries, ", ")
}
