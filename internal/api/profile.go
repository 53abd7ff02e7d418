package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

// Protein target bounds for profile updates, in grams per day.
const (
	minProteinTarget = 30
	maxProteinTarget = 300
)

// GetProfile returns the caller's profile, creating it with defaults on first
// access.
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Store.GetOrCreateProfile(ctx, userID(c))
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a partial patch to the caller's profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var upd pantry.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload"})
		return
	}
	if upd.ProteinTarget != nil && (*upd.ProteinTarget < minProteinTarget || *upd.ProteinTarget > maxProteinTarget) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Protein target must be between 30 and 300 grams"})
		return
	}
	if upd.MeasurementUnit != nil && *upd.MeasurementUnit != "metric" && *upd.MeasurementUnit != "imperial" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Measurement unit must be metric or imperial"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Store.UpdateProfile(ctx, userID(c), upd)
	if err != nil {
		logger.Error("failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ResetUserData wipes the caller's pantry, history and nutrition logs. The
// profile itself survives.
func (h *Handler) ResetUserData(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	uid := userID(c)
	summary, err := h.Store.ResetUserData(ctx, uid)
	if err != nil {
		logger.Error("failed to reset user data", "userId", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset data"})
		return
	}
	logger.Info("user data reset", "userId", uid,
		"pantryItems", summary.PantryItemsDeleted,
		"historyEntries", summary.HistoryDeleted,
		"nutritionLogs", summary.NutritionLogsDeleted)
	c.JSON(http.StatusOK, gin.H{"message": "All data has been reset", "deleted": summary})
}
