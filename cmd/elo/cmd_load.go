package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
)

var (
	intakeDate  string
	intakeFile  string
	repliesDate string
	repliesFile string
)

var setupDBCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the database and its tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Printf("Database ready at %s\n", store.Path())
		return nil
	},
}

var loadGroupsCmd = &cobra.Command{
	Use:   "load-groups <gps.csv>",
	Short: "Load small groups (GPs) from the group export",
	Long: `Creates one group per leader, read from the LÍDER_name column (or the first
column when that header is absent). Leader names are stored normalized.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			tally, err := rec.LoadGroupsFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(tally)
			return nil
		})
	},
}

var loadWelcomersCmd = &cobra.Command{
	Use:   "load-welcomers [acolhedores.csv]",
	Short: "Load welcomers from the standardized CSV",
	Long: `Loads welcomers from a CSV with header Nome,Apelido,Nascimento,Email,Celular,GP.
Without an argument the standardized file in PASTA_CSV is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.WelcomerCSVPath()
		if len(args) == 1 {
			path = args[0]
		}
		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			tally, err := rec.LoadWelcomersFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Println(tally)
			return nil
		})
	},
}

var loadIntakeCmd = &cobra.Command{
	Use:   "load-intake",
	Short: "Load a structured intake batch of new visitors",
	Long: `Loads EloCargaDados_<ddmmyy>.json from PASTA_JSON (today's by default) or the
file given with --file. Every loaded visitor starts as Pendente.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := intakeFile
		if path == "" {
			date := intakeDate
			if date == "" {
				date = today("020106")
			}
			path = cfg.IntakeBatchPath(date)
		}
		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			tally, err := rec.IntakeFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Println(tally)
			return nil
		})
	},
}

var loadRepliesCmd = &cobra.Command{
	Use:   "load-replies",
	Short: "Apply welcomer replies to notified visitors",
	Long: `Loads acompanhamento_carga_<ddmmyyyy>.json from PASTA_BASE (today's by default)
or the file given with --file, and records each outcome on the matching
Notificado visitor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := repliesFile
		if path == "" {
			date := repliesDate
			if date == "" {
				date = today("02012006")
			}
			path = cfg.ReplyBatchPath(date)
		}
		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			tally, err := rec.RepliesFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Println(tally)
			return nil
		})
	},
}

func init() {
	loadIntakeCmd.Flags().StringVar(&intakeDate, "data", "", "Batch date as ddmmyy (default today)")
	loadIntakeCmd.Flags().StringVar(&intakeFile, "file", "", "Intake batch file (overrides --data)")
	loadIntakeCmd.MarkFlagsMutuallyExclusive("data", "file")

	loadRepliesCmd.Flags().StringVar(&repliesDate, "data", "", "Batch date as ddmmyyyy (default today)")
	loadRepliesCmd.Flags().StringVar(&repliesFile, "file", "", "Reply batch file (overrides --data)")
	loadRepliesCmd.MarkFlagsMutuallyExclusive("data", "file")
}
