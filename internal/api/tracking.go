package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
)

const dateLayout = "2006-01-02"

type logNutritionRequest struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Label    string  `json:"label"`
}

// LogNutrition records one meal or quick-add entry against a day.
func (h *Handler) LogNutrition(c *gin.Context) {
	var req logNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nutrition payload"})
		return
	}
	if req.Calories < 0 || req.Protein < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Calories and protein must be non-negative"})
		return
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry := &pantry.NutritionLog{
		UserID:    userID(c),
		Date:      req.Date,
		Calories:  req.Calories,
		Protein:   req.Protein,
		Label:     req.Label,
		Timestamp: time.Now().UTC(),
	}
	if err := h.Store.LogNutrition(ctx, entry); err != nil {
		logger.Error("failed to log nutrition", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log nutrition"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// GetDailyNutrition returns the calorie and protein totals for one day,
// defaulting to today.
func (h *Handler) GetDailyNutrition(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	totals, err := h.Store.DailyNutrition(ctx, userID(c), date)
	if err != nil {
		logger.Error("failed to fetch daily nutrition", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch nutrition"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "calories": totals.Calories, "protein": totals.Protein})
}

// GetNutritionHistory returns per-day totals for the last N days (default 30).
func (h *Handler) GetNutritionHistory(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}
	since := time.Now().UTC().AddDate(0, 0, -days).Format(dateLayout)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	history, err := h.Store.NutritionSince(ctx, userID(c), since)
	if err != nil {
		logger.Error("failed to fetch nutrition history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch nutrition history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// GetPantryHistory returns the most recent ingestion batches.
func (h *Handler) GetPantryHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Store.ListHistory(ctx, userID(c), 100)
	if err != nil {
		logger.Error("failed to fetch pantry history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if entries == nil {
		entries = []pantry.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// GetActivityCalendar aggregates one month of history into per-day manual and
// receipt batch counts for the calendar view.
func (h *Handler) GetActivityCalendar(c *gin.Context) {
	month := c.Query("month") // YYYY-MM
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Store.HistoryBetween(ctx, userID(c), start, end)
	if err != nil {
		logger.Error("failed to fetch activity calendar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	type dayActivity struct {
		Manual  int `json:"manual"`
		Receipt int `json:"receipt"`
		Items   int `json:"items"`
	}
	days := make(map[string]dayActivity)
	for _, e := range entries {
		key := e.Timestamp.UTC().Format(dateLayout)
		d := days[key]
		if e.Source == pantry.SourceReceipt {
			d.Receipt++
		} else {
			d.Manual++
		}
		d.Items += e.Count
		days[key] = d
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}

// GetHistoryByDate returns the full ingestion batches for one day.
func (h *Handler) GetHistoryByDate(c *gin.Context) {
	date := c.Param("date")
	start, err := time.Parse(dateLayout, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
		return
	}
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Store.HistoryBetween(ctx, userID(c), start, end)
	if err != nil {
		logger.Error("failed to fetch history for date", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if entries == nil {
		entries = []pantry.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "entries": entries})
}
