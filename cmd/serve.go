package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/planfill-cli/internal/export"
	"github.com/sells-group/planfill-cli/internal/model"
	"github.com/sells-group/planfill-cli/internal/pipeline"
	"github.com/sells-group/planfill-cli/internal/registry"
	"github.com/sells-group/planfill-cli/internal/store"
	"github.com/sells-group/planfill-cli/internal/vesting"
)

const maxUploadBytes = 64 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP service",
	Long:  "Serves upload and JSON processing endpoints for browser clients, plus admin imports and run history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		tables, err := loadVestingTables()
		if err != nil {
			return err
		}

		env := &serverEnv{
			store:  st,
			tables: tables,
			loader: registry.Loader{
				MapPath:     cfg.Registry.MapPath,
				OptionsPath: cfg.Registry.OptionsPath,
				StoreDir:    cfg.Registry.StoreDir,
			},
			storeDir: cfg.Registry.StoreDir,
		}
		if cfg.Server.RateLimit > 0 {
			env.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		}

		port := resolvePort(servePort, cfg.Server.Port)
		return startServer(ctx, buildRouter(env), port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// serverEnv carries the handlers' shared dependencies. A nil limiter
// disables rate limiting.
type serverEnv struct {
	store    store.Store
	tables   *vesting.Tables
	loader   registry.Loader
	storeDir string
	limiter  *rate.Limiter
}

// buildRouter assembles the service routes. Processing endpoints sit
// behind the rate limiter; health, admin, and history do not.
func buildRouter(env *serverEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Group(func(pr chi.Router) {
		pr.Use(env.throttle)
		pr.Post("/process", env.handleProcess)
		pr.Post("/process-json", env.handleProcessJSON)
	})
	r.Post("/admin/import-csv", env.handleImportCSV)
	r.Post("/admin/import-json", env.handleImportJSON)
	r.Get("/runs", env.handleRuns)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess answers every configured prompt against uploaded XML
// documents. Uploaded map and data-points CSVs are honored only as a
// pair; otherwise the layered registry supplies both.
func (e *serverEnv) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	xmlParts := r.MultipartForm.File["xml_files"]
	if len(xmlParts) == 0 {
		writeError(w, http.StatusBadRequest, "xml_files is required")
		return
	}

	src := &pipeline.MemSource{}
	for _, fh := range xmlParts {
		content, err := readPart(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("read %s: %v", fh.Filename, err))
			return
		}
		src.Add(fh.Filename, content)
	}

	bundle, err := e.uploadBundle(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := e.extract(r.Context(), bundle, src, fmt.Sprintf("upload: %d files", src.Len()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="plan_answers.csv"`)
		if err := export.WriteCSV(w, grid); err != nil {
			zap.L().Error("serve: stream csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// handleProcessJSON accepts {"xmlFiles": [{"name", "content"}]} and always
// uses the layered registry.
func (e *serverEnv) handleProcessJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		XMLFiles []struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		} `json:"xmlFiles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.XMLFiles) == 0 {
		writeError(w, http.StatusBadRequest, "xmlFiles is required")
		return
	}

	src := &pipeline.MemSource{}
	for _, f := range req.XMLFiles {
		src.Add(f.Name, []byte(f.Content))
	}

	bundle, err := e.loadBundle()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := e.extract(r.Context(), bundle, src, fmt.Sprintf("json: %d files", src.Len()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// handleImportCSV persists uploaded map and data-points CSVs to the user
// store. Both files are required.
func (e *serverEnv) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	mapPart := formFile(r, "map_csv")
	optsPart := formFile(r, "datapoints_csv")
	if mapPart == nil || optsPart == nil {
		writeError(w, http.StatusBadRequest, "map_csv and datapoints_csv are required")
		return
	}

	entries, err := parseMapPart(mapPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	options, err := parseOptionsPart(optsPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := e.userStoreDir()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := registry.SaveUserMap(dir, entries); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := registry.SaveUserOptions(dir, options); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	zap.L().Info("serve: csv import",
		zap.String("store_dir", dir),
		zap.Int("entries", len(entries)),
		zap.Int("options", len(options)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"saved":   dir,
		"entries": len(entries),
		"options": len(options),
	})
}

// handleImportJSON persists {"map": [...], "options": {...}} to the user
// store.
func (e *serverEnv) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Map     []model.MapEntry  `json:"map"`
		Options map[string]string `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Map) == 0 || req.Options == nil {
		writeError(w, http.StatusBadRequest, "body must include map: [] and options: {}")
		return
	}

	dir, err := e.userStoreDir()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := registry.SaveUserMap(dir, req.Map); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := registry.SaveUserOptions(dir, req.Options); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	zap.L().Info("serve: json import",
		zap.String("store_dir", dir),
		zap.Int("entries", len(req.Map)),
		zap.Int("options", len(req.Options)),
	)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "saved": dir})
}

func (e *serverEnv) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := e.store.ListRuns(r.Context(), store.RunFilter{Limit: limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// extract runs the pipeline over the request's documents and records the
// run. History failures are logged, not surfaced: a working extraction
// should not fail because the store is down.
func (e *serverEnv) extract(ctx context.Context, bundle *registry.Bundle, src pipeline.Source, input string) (*model.Grid, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, err
	}

	var runID string
	if run, err := e.store.CreateRun(ctx, model.Run{
		Source:        model.RunSourceAPI,
		Input:         input,
		MapSource:     bundle.MapSource,
		OptionsSource: bundle.OptionsSource,
		Documents:     len(docs),
		Prompts:       len(bundle.Prompts),
	}); err != nil {
		zap.L().Warn("serve: record run", zap.Error(err))
	} else {
		runID = run.ID
	}

	grid, err := pipeline.New(bundle, e.tables, nil).Run(ctx, pipeline.Docs(docs))
	if err != nil {
		if runID != "" {
			if ferr := e.store.FailRun(ctx, runID, err.Error()); ferr != nil {
				zap.L().Warn("serve: record run failure", zap.Error(ferr))
			}
		}
		return nil, err
	}

	if runID != "" {
		if cerr := e.store.CompleteRun(ctx, runID, grid.MissCount(), ""); cerr != nil {
			zap.L().Warn("serve: record run completion", zap.Error(cerr))
		}
	}
	return grid, nil
}

// uploadBundle compiles the configuration for one upload request.
func (e *serverEnv) uploadBundle(r *http.Request) (*registry.Bundle, error) {
	mapPart := formFile(r, "map_file")
	optsPart := formFile(r, "datapoints_file")
	if mapPart == nil || optsPart == nil {
		return e.loadBundle()
	}

	entries, err := parseMapPart(mapPart)
	if err != nil {
		return nil, err
	}
	options, err := parseOptionsPart(optsPart)
	if err != nil {
		return nil, err
	}

	bundle := registry.Compile(entries, options)
	bundle.MapSource = "upload"
	bundle.OptionsSource = "upload"
	if len(bundle.Prompts) == 0 {
		return nil, eris.New("uploaded map has no prompts")
	}
	return bundle, nil
}

func (e *serverEnv) loadBundle() (*registry.Bundle, error) {
	bundle, err := e.loader.Load()
	if err != nil {
		return nil, err
	}
	if len(bundle.Prompts) == 0 {
		return nil, eris.New("prompt map is empty")
	}
	return bundle, nil
}

func (e *serverEnv) userStoreDir() (string, error) {
	if e.storeDir != "" {
		return e.storeDir, nil
	}
	return registry.DefaultStoreDir()
}

// throttle rejects processing requests over the configured rate.
func (e *serverEnv) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e.limiter != nil && !e.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("serve: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if fhs := r.MultipartForm.File[field]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func parseMapPart(fh *multipart.FileHeader) ([]model.MapEntry, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", fh.Filename)
	}
	defer f.Close()
	entries, err := registry.ParseMapCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s (upload CSV, not Excel)", fh.Filename)
	}
	return entries, nil
}

func parseOptionsPart(fh *multipart.FileHeader) (map[string]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", fh.Filename)
	}
	defer f.Close()
	options, err := registry.ParseOptionsCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s (upload CSV, not Excel)", fh.Filename)
	}
	return options, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolvePort returns the flag port when set, otherwise the configured one.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// startServer runs the HTTP server until ctx ends, then shuts down
// gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}
