package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/api"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/config"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/history"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/session"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "FAWireTool.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize artifact storage
	artifactStore, err := storage.NewLocalStore(cfg.GetOutputDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize session manager
	sessionMgr := session.NewManager()

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOld(time.Duration(cfg.Processing.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Export-run history (non-fatal if unavailable)
	hist, err := history.Open(cfg.GetDataDir())
	if err != nil {
		fmt.Printf("Warning: run history unavailable: %v\n", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	// Initialize API handler
	h := api.NewHandler(artifactStore, sessionMgr, hist, cfg.DefaultParameters())

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)
	apiGroup.GET("/formats", h.HandleFormats)

	// Circuit management
	apiGroup.POST("/circuits", h.HandleUploadCircuit)
	apiGroup.POST("/circuits/:id/validate", h.HandleValidateCircuit)

	// Export
	apiGroup.POST("/export", h.HandleExport)
	apiGroup.GET("/reports/:runId/records", h.HandleGetRecords)
	apiGroup.GET("/reports/:runId/records/msgpack", h.HandleGetRecordsMsgpack)
	apiGroup.GET("/reports/recent", h.HandleRecentRuns)

	// Artifacts
	apiGroup.GET("/artifacts", h.HandleListArtifacts)
	apiGroup.GET("/artifacts/:id", h.HandleDownloadArtifact)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("FA Wire Tool Server\n")
	fmt.Printf("  Version:    %s (built %s)\n", Version, BuildTime)
	fmt.Printf("  Config:     %s\n", configPath)
	fmt.Printf("  Listen:     http://%s\n", cfg.GetServerAddr())
	fmt.Printf("  Output Dir: %s\n", cfg.GetOutputDir())
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
