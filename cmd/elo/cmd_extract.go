package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"elo-welcoming/internal/config"
	"elo-welcoming/internal/extract"
)

var (
	extractDate  string
	extractEvent string
)

var extractIntakeCmd = &cobra.Command{
	Use:   "extract-intake <entrada.txt>",
	Short: "Structure a raw visitor list into an intake batch",
	Long: `Sends the semi-structured visitor list to the language model and writes the
result to PASTA_JSON/EloCargaDados_<ddmmyy>.json for load-intake.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if extractDate != "" {
			var err error
			if date, err = time.Parse("02/01/2006", extractDate); err != nil {
				return fmt.Errorf("invalid --date %q, want dd/mm/yyyy", extractDate)
			}
		}

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		ex, err := newExtractor(cmd)
		if err != nil {
			return err
		}
		batch, err := ex.IntakeFromText(cmd.Context(), string(text), date, extractEvent)
		if err != nil {
			return err
		}

		path := cfg.IntakeBatchPath(date.Format("020106"))
		if err := extract.WriteJSON(path, batch); err != nil {
			return err
		}
		fmt.Printf("%d visitors written to %s\n", len(batch.List), path)
		return nil
	},
}

var extractRepliesCmd = &cobra.Command{
	Use:   "extract-replies <resposta.txt>",
	Short: "Structure a welcomer's reply into a reply batch",
	Long: `Sends a welcomer's free-text reply to the language model and writes the result
to PASTA_BASE/acompanhamento_carga_<ddmmyyyy>.json for load-replies.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		ex, err := newExtractor(cmd)
		if err != nil {
			return err
		}
		entries, err := ex.RepliesFromText(cmd.Context(), string(text))
		if err != nil {
			return err
		}

		path := cfg.ReplyBatchPath(today("02012006"))
		if err := extract.WriteJSON(path, entries); err != nil {
			return err
		}
		fmt.Printf("%d replies written to %s\n", len(entries), path)
		return nil
	},
}

var extractWelcomersCmd = &cobra.Command{
	Use:   "extract-welcomers <data.csv> <gps.csv>",
	Short: "Standardize the welcomer signup export",
	Long: `Matches each welcomer's group leader against the group export and writes
PASTA_CSV/acolhedores_carga.csv for load-welcomers.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		welcomers, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read welcomers: %w", err)
		}
		groups, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read groups: %w", err)
		}

		ex, err := newExtractor(cmd)
		if err != nil {
			return err
		}
		out, err := ex.WelcomersCSV(cmd.Context(), string(welcomers), string(groups))
		if err != nil {
			return err
		}

		path := cfg.WelcomerCSVPath()
		if err := extract.WriteFile(path, []byte(out)); err != nil {
			return err
		}
		fmt.Printf("Welcomer CSV written to %s\n", path)
		return nil
	},
}

func newExtractor(cmd *cobra.Command) (*extract.Extractor, error) {
	if err := cfg.Validate(config.NeedLLM); err != nil {
		return nil, err
	}
	model, err := extract.NewGeminiModel(cmd.Context(), cfg.GeminiKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("model", model.Name()).Msg("Extractor ready")
	return extract.New(model, logger), nil
}

func init() {
	extractIntakeCmd.Flags().StringVar(&extractDate, "date", "", "Decision date (dd/mm/yyyy, default today)")
	extractIntakeCmd.Flags().StringVar(&extractEvent, "event", "", "Event the visitors came from")
}
