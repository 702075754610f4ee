package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"elo-welcoming/internal/config"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "elo",
	Short: "Elo - visitor welcoming and follow-up",
	Long: `Elo loads the visitors who made a decision at a service, hands each one to
a welcomer, tells welcomers who to contact and records how each contact went.

Typical cycle:
  elo extract-intake entrada.txt   structure the raw visitor list
  elo load-intake                  load today's batch (status Pendente)
  elo notify                       send each welcomer their list (Notificado)
  elo load-replies                 record the outcomes welcomers reported`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil || level == zerolog.NoLevel {
			level = zerolog.InfoLevel
		}
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "elo.yaml", "Optional YAML config file")

	rootCmd.AddCommand(
		setupDBCmd,
		loadGroupsCmd,
		loadWelcomersCmd,
		loadIntakeCmd,
		notifyCmd,
		loadRepliesCmd,
		pendingReportCmd,
		extractIntakeCmd,
		extractRepliesCmd,
		extractWelcomersCmd,
		whatsappCmd,
		mcpCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore opens the configured database
func openStore() (*storage.Storage, error) {
	if err := cfg.Validate(config.NeedStore); err != nil {
		return nil, err
	}
	store, err := storage.NewStorage(cfg.DBPath(), cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	logger.Debug().Str("path", store.Path()).Str("driver", store.Driver()).Msg("Storage opened")
	return store, nil
}

// withReconciler opens the store, runs fn and closes the store
func withReconciler(fn func(rec *reconcile.Reconciler, store *storage.Storage) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(reconcile.New(store, logger), store)
}

// today formats the current date with layout
func today(layout string) string {
	return time.Now().Format(layout)
}
