package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edupath/readiness/internal/handler"
	appI18n "github.com/edupath/readiness/internal/i18n"
	"github.com/edupath/readiness/internal/llm"
	"github.com/edupath/readiness/internal/model"
	"github.com/edupath/readiness/internal/render"
	"github.com/edupath/readiness/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readiness",
		Short: "Study-abroad readiness assessment server",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `readiness --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP assessment server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "", "SQLite archive path (empty disables archiving)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "Primary LLM model name")
	f.StringSlice("llm-fallback-models", nil, "Fallback LLM model names, tried in order")
	f.Duration("llm-timeout", 60*time.Second, "Timeout per LLM attempt")
	f.Duration("render-timeout", 30*time.Second, "Timeout for one PDF render")
	f.String("chrome-path", "", "Path to the Chrome/Chromium binary (empty searches PATH)")
	f.StringP("lang", "l", "en", "Report language (en, ru)")
	f.String("admin-password", "", "Password for the archive endpoints (or set READINESS_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived assessments as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "readiness.db", "SQLite archive path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("READINESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("readiness")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/readiness")
	v.AddConfigPath("/etc/readiness")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open the archive when a path is configured.
	var db *store.Store
	if dbPath := v.GetString("db"); dbPath != "" {
		var err error
		db, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer db.Close()
	} else {
		slog.Info("archiving disabled, no database path configured")
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Create LLM client with the ordered model candidates.
	models := append([]string{v.GetString("llm-model")}, v.GetStringSlice("llm-fallback-models")...)
	llmClient, err := llm.New(llm.Config{
		BaseURL:        v.GetString("llm-url"),
		APIKey:         v.GetString("llm-key"),
		Models:         models,
		AttemptTimeout: v.GetDuration("llm-timeout"),
	})
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	if err := llmClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "models", models)

	renderer := render.NewChromeRenderer(v.GetString("chrome-path"), v.GetDuration("render-timeout"))

	cfg := model.ServerConfig{
		Addr:          v.GetString("addr"),
		Lang:          lang,
		AdminPassword: v.GetString("admin-password"),
	}

	h, err := handler.New(db, llmClient, renderer, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	slog.Info("starting server",
		"addr", cfg.Addr,
		"models", models,
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"archive", v.GetString("db") != "",
	)
	return http.ListenAndServe(cfg.Addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	assessments, err := db.ExportAll()
	if err != nil {
		return fmt.Errorf("export assessments: %w", err)
	}

	export := model.AssessmentExport{
		GeneratedAt: time.Now(),
		Count:       len(assessments),
		Assessments: assessments,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}
