package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/studyplan/internal/handler"
	appI18n "github.com/pavelanni/studyplan/internal/i18n"
	"github.com/pavelanni/studyplan/internal/model"
	"github.com/pavelanni/studyplan/internal/performance"
	"github.com/pavelanni/studyplan/internal/recommend"
	"github.com/pavelanni/studyplan/internal/seed"
	"github.com/pavelanni/studyplan/internal/store"
)

const errNoStudentID = "No student ID provided"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "studyplan [student-id]",
		Short:        "Lesson recommendations from exam performance",
		SilenceUsage: true,
	}

	rec := recommendCmd()
	root.AddCommand(rec, analyzeCmd(), importCmd(), serveCmd())

	// Make "recommend" the default when no subcommand is given.
	root.Args = rec.Args
	root.RunE = rec.RunE

	// Register recommend flags on root so bare `studyplan <id> --db ...` still works.
	root.Flags().AddFlagSet(rec.Flags())

	return root
}

func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "studyplan.db", "SQLite database path or postgres:// URL")
	f.Duration("query-timeout", 10*time.Second, "Timeout for each store query (0 disables)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("weak-below", performance.DefaultThresholds().WeakBelow, "Subjects with a mean below this are weak")
	f.Float64("strong-above", performance.DefaultThresholds().StrongAbove, "Subjects with a mean above this are strong")
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [student-id]",
		Short: "Print lesson recommendations for a student as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE:  runRecommend,
	}
	addStoreFlags(cmd)
	addAnalysisFlags(cmd)
	cmd.Flags().StringP("lang", "l", "en", "Language for recommendation reasons (en, ru)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [student-id]",
		Short: "Print a student's performance summary as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE:  runAnalyze,
	}
	addStoreFlags(cmd)
	addAnalysisFlags(cmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load exam results and lessons from JSON or YAML files",
		Args:  cobra.NoArgs,
		RunE:  runImport,
	}
	addStoreFlags(cmd)
	f := cmd.Flags()
	f.StringSliceP("exams", "e", nil, "Paths to exam result files (repeatable)")
	f.StringSliceP("lessons", "L", nil, "Paths to lesson catalog files (repeatable)")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP recommendation API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addStoreFlags(cmd)
	addAnalysisFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default language for recommendation reasons (en, ru)")
	return cmd
}

func setupLogging(cmd *cobra.Command, v *viper.Viper) {
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
		logHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	default:
		logHandler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STUDYPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("studyplan")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/studyplan")
	v.AddConfigPath("/etc/studyplan")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// prepare sets up logging and configuration, then opens the store.
func prepare(cmd *cobra.Command) (*viper.Viper, *store.Store, error) {
	v := viperForCmd(cmd)
	setupLogging(cmd, v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetQueryTimeout(v.GetDuration("query-timeout"))
	slog.Debug("opened store", "dialect", db.Dialect())
	return v, db, nil
}

func thresholds(v *viper.Viper) (performance.Thresholds, error) {
	t := performance.Thresholds{
		WeakBelow:   v.GetFloat64("weak-below"),
		StrongAbove: v.GetFloat64("strong-above"),
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid thresholds: %w", err)
	}
	return t, nil
}

func phrases(v *viper.Viper) (appI18n.Phrases, error) {
	lang := v.GetString("lang")
	if err := appI18n.ValidateLang(lang); err != nil {
		return appI18n.Phrases{}, err
	}
	if err := appI18n.Init(); err != nil {
		return appI18n.Phrases{}, fmt.Errorf("init i18n: %w", err)
	}
	return appI18n.Phrases{Lang: lang}, nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	// Without an ID nothing else runs: no config, no store. Arguments after
	// the first are ignored.
	if len(args) == 0 {
		return writeJSON(cmd.OutOrStdout(), model.ErrorResponse{Error: errNoStudentID})
	}

	v, db, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	th, err := thresholds(v)
	if err != nil {
		return err
	}
	p, err := phrases(v)
	if err != nil {
		return err
	}

	rec := recommend.New(performance.NewAnalyzer(db, th), db, p)
	set, err := rec.Recommend(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("recommend lessons: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), set)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return writeJSON(cmd.OutOrStdout(), model.ErrorResponse{Error: errNoStudentID})
	}

	v, db, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	th, err := thresholds(v)
	if err != nil {
		return err
	}

	summary, err := performance.NewAnalyzer(db, th).Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze performance: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), summary)
}

func runImport(cmd *cobra.Command, _ []string) error {
	v, db, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	exams := v.GetStringSlice("exams")
	lessons := v.GetStringSlice("lessons")
	if len(exams) == 0 && len(lessons) == 0 {
		return fmt.Errorf("nothing to import: pass --exams and/or --lessons")
	}

	ctx := cmd.Context()
	for _, path := range exams {
		if _, _, err := seed.ImportExamResultsFile(ctx, db, path); err != nil {
			return fmt.Errorf("import exam results: %w", err)
		}
	}
	for _, path := range lessons {
		if _, _, err := seed.ImportLessonsFile(ctx, db, path); err != nil {
			return fmt.Errorf("import lessons: %w", err)
		}
	}

	examCount, err := db.ExamResultCount(ctx)
	if err != nil {
		return fmt.Errorf("count exam results: %w", err)
	}
	lessonCount, err := db.LessonCount(ctx)
	if err != nil {
		return fmt.Errorf("count lessons: %w", err)
	}
	slog.Info("store totals", "exam_results", examCount, "lessons", lessonCount)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, db, err := prepare(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	th, err := thresholds(v)
	if err != nil {
		return err
	}
	p, err := phrases(v)
	if err != nil {
		return err
	}

	analyzer := performance.NewAnalyzer(db, th)
	h := handler.New(recommend.New(analyzer, db, p), analyzer, db)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(p.Lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("starting server",
		"addr", addr,
		"dialect", db.Dialect(),
		"weak_below", th.WeakBelow,
		"strong_above", th.StrongAbove,
		"lang", p.Lang,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
