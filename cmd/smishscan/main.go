package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/overcastsec/smishscan/pkg/analysis"
	"github.com/overcastsec/smishscan/pkg/cache"
	"github.com/overcastsec/smishscan/pkg/config"
	"github.com/overcastsec/smishscan/pkg/httputil"
	"github.com/overcastsec/smishscan/pkg/patterns"
	"github.com/overcastsec/smishscan/pkg/report"
	"github.com/overcastsec/smishscan/pkg/store"
	"github.com/overcastsec/smishscan/pkg/timeline"
)

// ============================================================================
// ANALYZER - shared pipeline wiring
// ============================================================================

// Analyzer bundles the components serve mode needs. The message store and
// pattern registry are mandatory; cache and archive are optional and degrade
// gracefully when not configured.
type Analyzer struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *patterns.Registry
	store    *store.Store
	limiter  *httputil.Limiter
	cache    cache.Cache
	archive  *store.Archive // nil when ARCHIVE_DATABASE_URL is unset
}

// NewAnalyzer wires up serve-mode components from config.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) (*Analyzer, error) {
	registry, err := loadRegistry(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open message database: %w", err)
	}

	a := &Analyzer{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		store:    st,
		limiter:  httputil.NewLimiter(cfg.MaxConcurrent),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Report cache: Redis when configured, in-memory otherwise.
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("○ Redis cache unavailable, falling back to in-memory", zap.Error(err))
			a.cache = cache.NewMemory(cfg.CacheTTL)
		} else {
			a.cache = rc
			logger.Info("✓ Redis report cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		a.cache = cache.NewMemory(cfg.CacheTTL)
		logger.Info("○ Redis not configured, using in-memory report cache")
	}

	// Report archive: optional Postgres history of past analyses.
	if cfg.ArchiveURL != "" {
		ar, err := store.OpenArchive(ctx, cfg.ArchiveURL, logger)
		if err != nil {
			logger.Warn("○ Report archive unavailable", zap.Error(err))
		} else {
			a.archive = ar
			logger.Info("✓ Report archive enabled (Postgres)")
		}
	} else {
		logger.Info("○ Report archive disabled (no ARCHIVE_DATABASE_URL)")
	}

	return a, nil
}

// Close releases all backend connections.
func (a *Analyzer) Close() {
	a.store.Close()
	a.cache.Close()
	if a.archive != nil {
		a.archive.Close()
	}
}

// analyzeContact runs the full pipeline for one contact: extract, classify,
// score, summarize timeline, assemble.
func (a *Analyzer) analyzeContact(ctx context.Context, contact string, limit int) (report.Report, error) {
	msgs, err := a.store.ExtractByContact(ctx, contact, limit)
	if err != nil {
		return report.Report{}, err
	}
	return buildReport(a.registry, contact, filepath.Base(a.cfg.DBPath), msgs, time.Now()), nil
}

// buildReport folds extracted messages into a finished report.
func buildReport(registry *patterns.Registry, contact, source string, msgs []analysis.MessageRecord, now time.Time) report.Report {
	clf := analysis.NewClassifier(registry)
	res := analysis.Analyze(clf, msgs)

	times := make([]time.Time, len(msgs))
	for i, m := range msgs {
		times[i] = m.Date
	}
	tl := timeline.Summarize(times)

	meta := report.Meta{
		Contact:     contact,
		GeneratedAt: now,
		Source:      source,
	}
	return report.Assemble(meta, res, tl)
}

// loadRegistry compiles the threat taxonomy, preferring a YAML override
// when one is configured.
func loadRegistry(path string) (*patterns.Registry, error) {
	defs := patterns.DefaultTaxonomy()
	if path != "" {
		loaded, err := patterns.LoadTaxonomyFile(path)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}
	return patterns.NewRegistry(defs)
}

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// ============================================================================
// MAIN
// ============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(os.Args[2:])

	case "serve":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runServe(port)

	case "taxonomy":
		runTaxonomy(os.Args[2:])

	case "version":
		fmt.Printf("smishscan v%s\n", report.Version)
		fmt.Println("iMessage threat classification and risk scoring engine")

	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("smishscan v%s - iMessage threat analysis\n\n", report.Version)
	fmt.Println("Usage:")
	fmt.Println("  smishscan analyze --db-path <chat.db> --contact <id> [flags]")
	fmt.Println("                                    Analyze one contact and export reports")
	fmt.Println("  smishscan serve [port]            Start the HTTP API (default port: 8089)")
	fmt.Println("  smishscan taxonomy [--patterns f] Print the compiled threat taxonomy")
	fmt.Println("  smishscan version                 Show version")
	fmt.Println("")
	fmt.Println("Analyze flags:")
	fmt.Println("  --db-path PATH     Path to the chat.db file (or SMISHSCAN_DB_PATH)")
	fmt.Println("  --contact ID       Phone number or email to analyze (required)")
	fmt.Println("  --output-dir DIR   Report output directory (default: ./analysis_output)")
	fmt.Println("  --limit N          Analyze only the N most recent messages (0 = all)")
	fmt.Println("  --patterns FILE    YAML taxonomy overriding the built-in patterns")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  smishscan analyze --db-path ~/Library/Messages/chat.db --contact +15551234567")
	fmt.Println("  smishscan serve 8089")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  SMISHSCAN_DB_PATH       Default chat.db path")
	fmt.Println("  SMISHSCAN_PATTERNS      Default taxonomy YAML path")
	fmt.Println("  SMISHSCAN_MAX_CONCURRENT  Concurrent analyses in serve mode (default: 8)")
	fmt.Println("  REDIS_ADDR              Redis report cache for serve mode (optional)")
	fmt.Println("  ARCHIVE_DATABASE_URL    Postgres report archive for serve mode (optional)")
}

// ============================================================================
// ANALYZE MODE - one-shot extraction and report export
// ============================================================================

func runAnalyze(args []string) {
	cfg := config.NewDefaultConfig()

	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dbPath := fs.String("db-path", cfg.DBPath, "path to the chat.db file")
	contact := fs.String("contact", "", "contact identifier to analyze")
	outputDir := fs.String("output-dir", cfg.OutputDir, "output directory for reports")
	limit := fs.Int("limit", cfg.Limit, "limit number of messages to analyze (0 = all)")
	taxonomy := fs.String("patterns", cfg.TaxonomyPath, "YAML taxonomy overriding the built-in patterns")
	_ = fs.Parse(args)

	if *contact == "" {
		fmt.Println("✗ --contact is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg.DBPath = *dbPath
	cfg.OutputDir = *outputDir
	cfg.Limit = *limit
	cfg.TaxonomyPath = *taxonomy
	if err := cfg.Validate(); err != nil {
		fmt.Printf("✗ %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	registry, err := loadRegistry(cfg.TaxonomyPath)
	if err != nil {
		fmt.Printf("✗ Taxonomy load failed: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		fmt.Printf("✗ Database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		st.Close()
		fmt.Println("✓ Database connection closed")
	}()
	fmt.Printf("✓ Connected to database: %s\n", cfg.DBPath)

	msgs, err := st.ExtractByContact(context.Background(), *contact, cfg.Limit)
	if err != nil {
		fmt.Printf("✗ Message extraction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Extracted %d messages for contact: %s\n", len(msgs), *contact)

	rep := buildReport(registry, *contact, filepath.Base(cfg.DBPath), msgs, time.Now())

	if err := exportReport(cfg.OutputDir, *contact, rep); err != nil {
		fmt.Printf("✗ Analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✓ Analysis complete for contact: %s\n", *contact)
	fmt.Printf("✓ Risk Score: %d/100\n", rep.ThreatAnalysis.RiskScore)
	fmt.Printf("✓ Reports saved to: %s\n", cfg.OutputDir)
}

// exportReport writes the JSON report and rendered text summary. File names
// carry the contact with "+" stripped so they stay shell-friendly.
func exportReport(outputDir, contact string, rep report.Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	slug := strings.ReplaceAll(contact, "+", "")

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	jsonPath := filepath.Join(outputDir, fmt.Sprintf("analysis_report_%s.json", slug))
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("✓ Analysis report exported: %s\n", jsonPath)

	summaryPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.txt", slug))
	if err := os.WriteFile(summaryPath, []byte(report.RenderSummary(rep)), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	fmt.Printf("✓ Summary report generated: %s\n", summaryPath)

	return nil
}

// ============================================================================
// SERVE MODE - HTTP API
// ============================================================================

type analyzeRequest struct {
	Contact string `json:"contact"`
	Limit   int    `json:"limit"`
	Render  bool   `json:"render"`
}

// renderedReport is the analyze response when render=true.
type renderedReport struct {
	report.Report
	RenderedSummary string `json:"rendered_summary"`
}

func runServe(portOverride string) {
	cfg := config.NewDefaultConfig()
	if portOverride != "" {
		cfg.Port = portOverride
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("✗ %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	a, err := NewAnalyzer(cfg, logger)
	if err != nil {
		logger.Fatal("Analyzer initialization failed", zap.Error(err))
	}
	defer a.Close()

	app := fiber.New(fiber.Config{
		AppName: "smishscan",
	})

	// Tag every response so archived reports can be correlated with logs.
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Request-ID", uuid.NewString())
		return c.Next()
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": report.Version,
			"limiter": a.limiter.Stats(),
		})
	})

	app.Post("/v1/analyze", func(c fiber.Ctx) error {
		var req analyzeRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.Contact == "" {
			return c.Status(400).JSON(fiber.Map{"error": "contact field is required"})
		}
		if req.Limit < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "limit must not be negative"})
		}
		if req.Limit == 0 {
			req.Limit = a.cfg.Limit
		}

		if !a.limiter.TryAcquire() {
			return c.Status(429).JSON(fiber.Map{"error": "analysis capacity saturated, retry later"})
		}
		defer a.limiter.Release()

		// Cached responses skip extraction entirely. Rendered summaries
		// are never cached, so render requests always recompute.
		key := cache.Key(req.Contact, req.Limit)
		if !req.Render {
			if data, ok := a.cache.Get(c.Context(), key); ok {
				c.Set("X-Cache", "hit")
				return c.JSON(json.RawMessage(data))
			}
		}

		rep, err := a.analyzeContact(c.Context(), req.Contact, req.Limit)
		if err != nil {
			a.logger.Error("Analysis failed", zap.String("contact", req.Contact), zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "analysis failed"})
		}

		data, err := json.Marshal(rep)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "encode report"})
		}
		a.cache.Set(c.Context(), key, data)

		// Archive writes are best effort; a down archive never fails the
		// request.
		if a.archive != nil {
			if _, err := a.archive.SaveReport(c.Context(), req.Contact, rep.ThreatAnalysis.RiskScore, data); err != nil {
				a.logger.Warn("Report archive write failed", zap.Error(err))
			}
		}

		if req.Render {
			return c.JSON(renderedReport{Report: rep, RenderedSummary: report.RenderSummary(rep)})
		}
		return c.JSON(json.RawMessage(data))
	})

	app.Get("/v1/taxonomy", func(c fiber.Ctx) error {
		cats := a.registry.Categories()
		out := make([]fiber.Map, 0, len(cats))
		for _, cat := range cats {
			ps := a.registry.Patterns(cat)
			sources := make([]string, len(ps))
			for i, p := range ps {
				sources[i] = p.Source
			}
			out = append(out, fiber.Map{
				"name":     cat,
				"patterns": sources,
			})
		}
		return c.JSON(fiber.Map{
			"categories":     out,
			"total_patterns": a.registry.TotalPatterns(),
		})
	})

	app.Get("/v1/reports/:contact", func(c fiber.Ctx) error {
		if a.archive == nil {
			return c.Status(503).JSON(fiber.Map{"error": "report archive not configured"})
		}

		contact := c.Params("contact")
		n, _ := strconv.Atoi(c.Query("n", "10"))
		reports, err := a.archive.RecentReports(c.Context(), contact, n)
		if err != nil {
			a.logger.Error("Archive query failed", zap.String("contact", contact), zap.Error(err))
			return c.Status(500).JSON(fiber.Map{"error": "archive query failed"})
		}
		if reports == nil {
			reports = []store.ArchivedReport{}
		}
		return c.JSON(fiber.Map{
			"contact": contact,
			"reports": reports,
		})
	})

	logger.Info("smishscan HTTP server starting",
		zap.String("port", cfg.Port),
		zap.Int("max_concurrent", cfg.MaxConcurrent),
		zap.String("database", cfg.DBPath))
	logger.Info("Endpoints:")
	logger.Info("  GET  /health               - Health and limiter stats")
	logger.Info("  POST /v1/analyze           - Analyze one contact's messages")
	logger.Info("  GET  /v1/taxonomy          - Compiled threat taxonomy")
	logger.Info("  GET  /v1/reports/:contact  - Archived report history")

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("Server terminated", zap.Error(err))
	}
}

// ============================================================================
// TAXONOMY MODE - inspect the compiled pattern registry
// ============================================================================

func runTaxonomy(args []string) {
	cfg := config.NewDefaultConfig()

	fs := flag.NewFlagSet("taxonomy", flag.ExitOnError)
	taxonomy := fs.String("patterns", cfg.TaxonomyPath, "YAML taxonomy overriding the built-in patterns")
	_ = fs.Parse(args)

	registry, err := loadRegistry(*taxonomy)
	if err != nil {
		fmt.Printf("✗ Taxonomy load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Threat taxonomy: %d categories, %d patterns\n\n", len(registry.Categories()), registry.TotalPatterns())
	for _, cat := range registry.Categories() {
		fmt.Printf("  %s (%d patterns)\n", cat, registry.CategoryCount(cat))
		for _, p := range registry.Patterns(cat) {
			fmt.Printf("    %s\n", p.Source)
		}
		fmt.Println()
	}
}
