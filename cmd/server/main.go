package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grade-assist/backend/internal/api"
	"github.com/grade-assist/backend/internal/config"
	"github.com/grade-assist/backend/internal/matcher"
	"github.com/grade-assist/backend/internal/report"
	"github.com/grade-assist/backend/internal/roster"
	"github.com/grade-assist/backend/internal/session"
	"github.com/grade-assist/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
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
	configPath := filepath.Join(exeDir, "SubmissionMatcher.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Build the matching engine. YAML overrides in data/defaults take
	// precedence over the XML config so calibration tweaks don't require
	// editing the machine config.
	params := cfg.MatchingParams()
	paramsPath := filepath.Join(cfg.GetDataDir(), "defaults", "matching.yaml")
	params, err = matcher.LoadParamsFile(paramsPath, params)
	if err != nil {
		fmt.Printf("Warning: ignoring matching param overrides: %v\n", err)
		params = cfg.MatchingParams()
	}
	engine := matcher.New(params)

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	rosterStore := roster.NewStore()

	// Initialize run manager; the sync /api/match path and async runs
	// share one engine so both resolve with identical parameters.
	runMgr := session.NewManager(engine)

	// Open the report archive. The server still operates without it.
	var archive *report.Archive
	archive, err = report.Open(cfg.GetReportsDir())
	if err != nil {
		fmt.Printf("Warning: report archive unavailable: %v\n", err)
		archive = nil
	} else {
		defer archive.Close()
		runMgr.SetArchiver(archive)
	}

	// Start background run cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			runMgr.CleanupOldRuns(time.Duration(cfg.Processing.RunTimeoutMinutes) * time.Minute)
		}
	}()

	// Initialize API handler
	h := api.NewHandler(fileStore, runMgr, rosterStore, archive, engine)
	api.SetAllowedFileTypes(cfg.Security.AllowedFileTypes)
	api.SetFileDeletionAllowed(cfg.Security.AllowFileDeletion)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				strings.HasSuffix(path, "/progress") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/progress") ||
				strings.Contains(path, "/upload") ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
		ErrorMessage: "Request timeout",
	}))

	// Compression middleware
	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return c.Request().Header.Get("Accept") == "text/event-stream"
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{
				"http://localhost:5173", "http://127.0.0.1:5173",
				"http://localhost:3000", "http://127.0.0.1:3000",
			}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", h.HandleHealth)

	// Roster management
	apiGroup.POST("/roster/upload", h.HandleUploadRoster)
	apiGroup.GET("/roster", h.HandleGetRoster)
	apiGroup.DELETE("/roster", h.HandleClearRoster)

	// File management
	apiGroup.POST("/files/upload", h.HandleUploadFile)
	apiGroup.GET("/files/recent", h.HandleRecentFiles)
	apiGroup.GET("/files/:id", h.HandleGetFile)
	apiGroup.GET("/files/:id/content", h.HandleDownloadFile)
	apiGroup.DELETE("/files/:id", h.HandleDeleteFile)
	apiGroup.PUT("/files/:id", h.HandleRenameFile)

	// Matching
	apiGroup.POST("/match", h.HandleMatch)
	apiGroup.POST("/match/run", h.HandleStartRun)
	apiGroup.GET("/match/run/:runId/status", h.HandleRunStatus)
	apiGroup.GET("/match/run/:runId/progress", h.HandleRunProgressStream)
	apiGroup.GET("/match/run/:runId/results", h.HandleRunResults)
	apiGroup.GET("/match/run/:runId/results/msgpack", h.HandleRunResultsMsgpack)

	// Archived reports
	apiGroup.GET("/reports/recent", h.HandleRecentReports)
	apiGroup.GET("/reports/:runId", h.HandleGetReport)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Submission Matcher Server                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
