// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/logger"
	"marquee/internal/metadata"
	"marquee/internal/playback"
	"marquee/internal/session"
	"marquee/internal/store"
	"marquee/internal/watchstate"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagJSON     bool
	flagDebug    bool
	flagServer   string
	flagLanguage string
	flagLauncher string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// log is the process logger, set up in loadConfig.
var log = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "marquee [query]",
	Short: "Browse movies and TV shows from the terminal",
	Long: `Marquee browses trending, popular and top-rated movies and TV shows,
keeps your favorites and watch history, and opens titles on a streaming server
in your browser.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              rootRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Playback server key (see 'marquee servers')")
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Metadata language, e.g. en-US")
	rootCmd.PersistentFlags().StringVar(&flagLauncher, "launcher", "browser", "How to open player pages: browser | print")

	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(topRatedCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(detailsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(signoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagServer != "" {
		cfg.DefaultServer = strings.ToLower(flagServer)
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log = logger.New(logger.Options{Debug: cfg.Debug, File: cfg.LogFile})
	return nil
}

// rootRun searches when given a query and shows the home screen otherwise.
func rootRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return searchRun(cmd, args)
	}
	return homeRun(cmd, args)
}

// app holds the services a command needs. Commands open it on demand so
// that e.g. 'version' works without a database.
type app struct {
	db       *sql.DB
	accounts *session.Accounts
	sessions *session.FileProvider
	state    *watchstate.Store
	servers  *playback.Table
	catalog  *catalog.Catalog
	launcher playback.Launcher
}

func openApp() (*app, error) {
	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	accounts, err := newAccounts(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionPath, err := config.SessionPath()
	if err != nil {
		db.Close()
		return nil, err
	}
	sessions := session.NewFileProvider(afero.NewOsFs(), sessionPath, accounts)
	state := watchstate.New(db, sessions, log)
	servers := playback.NewTable(cfg.Servers, cfg.DefaultServer)

	return &app{
		db:       db,
		accounts: accounts,
		sessions: sessions,
		state:    state,
		servers:  servers,
		catalog:  catalog.New(newMetadata(), state, sessions, servers, catalogOptions(), log),
		launcher: playback.NewLauncher(flagLauncher, fmt.Printf),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newMetadata() *metadata.TMDB {
	return metadata.NewTMDB(metadata.Options{
		BaseURL:        cfg.TMDBBaseURL,
		APIKey:         cfg.TMDBAPIKey,
		Language:       cfg.Language,
		ImageBaseSmall: cfg.ImageBaseSmall,
		ImageBaseLarge: cfg.ImageBaseLarge,
	}, metadata.WithLogger(log))
}

func catalogOptions() catalog.Options {
	return catalog.Options{
		MinQueryLength: cfg.MinQueryLength,
		Entitlement: playback.Entitlement{
			Policy:     cfg.Entitlement,
			Subscribed: cfg.Subscribed,
		},
	}
}

func newAccounts(db *sql.DB) (*session.Accounts, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		path, err := config.SecretPath()
		if err != nil {
			return nil, err
		}
		secret, err = session.LoadOrCreateSecret(afero.NewOsFs(), path)
		if err != nil {
			return nil, err
		}
	}
	return session.NewAccounts(db, secret, cfg.SessionTTL.Duration, log)
}

// withApp opens the services, runs fn and closes them again.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

// requireMetadata fails early when no TMDB API key is configured.
func requireMetadata() error {
	if cfg.TMDBAPIKey == "" {
		return errors.New("no TMDB API key configured (set tmdb_api_key in config or TMDB_API_KEY)")
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
