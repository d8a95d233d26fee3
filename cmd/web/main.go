package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oaktreenum/peptoid-msa/internal/config"
	"github.com/oaktreenum/peptoid-msa/internal/logging"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
	"github.com/oaktreenum/peptoid-msa/internal/session"
)

//go:embed templates/*.html
var embedded embed.FS

var funcs = template.FuncMap{
	"textColor": func(c palette.Color) palette.Color { return c.TextColor() },
}

// loadTemplates parses every .html file under fsys, named by file name.
func loadTemplates(fsys fs.FS) (*template.Template, error) {
	t := template.New("").Funcs(funcs)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if _, err := t.New(path.Base(p)).Parse(string(data)); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func templateFS(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "templates")
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", srw.status,
			"bytes", srw.written,
			"duration", time.Since(start),
		)
	})
}

func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler(a))
	mux.HandleFunc("/msa", postOnly(msaHandler(a)))
	mux.HandleFunc("/colors", postOnly(colorsHandler(a)))
	mux.HandleFunc("/colors/add", postOnly(addColorHandler(a)))
	mux.HandleFunc("/colors/delete/", postOnly(deleteColorHandler(a)))
	mux.HandleFunc("/colors/reset", postOnly(resetColorsHandler(a)))
	mux.HandleFunc("/export/", exportHandler(a))
	mux.HandleFunc("/api/grid", apiGridHandler(a))
	mux.HandleFunc("/api/palette", apiPaletteHandler(a))
	mux.HandleFunc("/reset", postOnly(resetHandler(a)))
	return mux
}

// sweep drops idle sessions until ctx is done.
func sweep(ctx context.Context, store *session.Store, every time.Duration, logger *log.Logger) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "config file (json, yaml or toml); reloaded on change")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	templatesDir := flag.String("templates", "", "directory of HTML templates to use instead of the embedded ones")
	logFile := flag.String("log", "", "path to write logs (optional)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *templatesDir != "" {
		cfg.Templates = *templatesDir
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose, Prefix: "peptoid-msa"})
	defer closeLog()

	fsys, err := templateFS(cfg.Templates)
	if err != nil {
		logger.Fatal("failed to open templates", "err", err)
	}
	tmpl, err := loadTemplates(fsys)
	if err != nil {
		logger.Fatal("failed to load templates", "err", err)
	}

	defaults, err := cfg.SessionDefaults()
	if err != nil {
		logger.Fatal("invalid palette", "err", err)
	}
	a := &app{
		store:  session.NewStore(cfg.SessionTTL, defaults),
		tmpl:   tmpl,
		logger: logger,
		render: cfg.RenderOptions(),
		fasta:  cfg.FastaWriteOptions(),
	}

	if cfg.Source != "" {
		_, err := config.Watch(cfg.Source, func(c *config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed; keeping previous settings", "path", cfg.Source, "err", err)
				return
			}
			d, err := c.SessionDefaults()
			if err != nil {
				logger.Warn("config reload failed; keeping previous settings", "path", cfg.Source, "err", err)
				return
			}
			a.store.SetDefaults(d)
			logger.Info("config reloaded; new sessions use the updated palette", "path", cfg.Source, "groups", len(d.Groups))
		})
		if err != nil {
			logger.Warn("config watch disabled", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweep(ctx, a.store, cfg.SessionTTL/2, logger)

	srv := &http.Server{Addr: cfg.Addr, Handler: loggingMiddleware(logger, newMux(a)), ReadTimeout: 5 * time.Second, WriteTimeout: 30 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving MSA UI", "addr", cfg.Addr, "config", cfg.Source, "session_ttl", cfg.SessionTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", "err", err)
	}
}
