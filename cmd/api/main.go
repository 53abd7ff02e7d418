package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pantrypal/internal/api"
	"pantrypal/internal/logger"
	"pantrypal/internal/pantry"
	"pantrypal/internal/platform/gemini"
	"pantrypal/internal/platform/groq"
)

// Config represents the application configuration, read from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	GeminiAPIKey  string
	GroqAPIKey    string
	JWTSecret     string
	AllowedOrigin string
}

func loadConfig() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:5173"
	}
	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		panic("GEMINI_API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		panic("JWT_SECRET is required")
	}
	return cfg
}

func main() {
	ctx := context.Background()
	logger.Init()

	config := loadConfig()

	geminiClient, err := gemini.NewClient(ctx, config.GeminiAPIKey)
	if err != nil {
		panic(fmt.Errorf("error creating gemini client: %w", err))
	}

	groqClient := groq.NewClient(config.GroqAPIKey)

	store, err := pantry.NewPostgresStore(config.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("error creating postgres store: %w", err))
	}

	handler := api.NewHandler(store, geminiClient, groqClient)

	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := r.Group("/api", api.RequireAuth([]byte(config.JWTSecret)))

	authed.GET("/pantry", handler.GetPantryItems)
	authed.POST("/pantry/items", handler.AddItems)
	authed.POST("/pantry/item", handler.AddSingleItem)
	authed.PATCH("/pantry/items/:itemId", handler.UpdatePantryItem)
	authed.DELETE("/pantry/items/:itemId", handler.DeletePantryItem)
	authed.POST("/pantry/consume", handler.ConsumeIngredients)

	authed.POST("/scanner/scan", handler.ScanReceipt)
	authed.POST("/scanner/save", handler.SaveScannedItems)

	authed.POST("/recipes/generate", handler.GenerateRecipes)

	authed.POST("/nutrition/log", handler.LogNutrition)
	authed.GET("/nutrition/today", handler.GetDailyNutrition)
	authed.GET("/nutrition/history", handler.GetNutritionHistory)

	authed.GET("/history/pantry", handler.GetPantryHistory)
	authed.GET("/history/calendar", handler.GetActivityCalendar)
	authed.GET("/history/date/:date", handler.GetHistoryByDate)

	authed.GET("/user/profile", handler.GetProfile)
	authed.PATCH("/user/profile", handler.UpdateProfile)
	authed.DELETE("/user/data", handler.ResetUserData)

	r.Run(":" + config.Port)
}
