package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"elo-welcoming/internal/config"
	"elo-welcoming/internal/notify"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
	"elo-welcoming/internal/whatsapp"
)

var (
	notifierName string
	reportFrom   string
	reportTo     string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send each welcomer their pending visitors",
	Long: `Sends every welcomer with Pendente visitors the list of those visitors and
marks exactly the sent visitors as Notificado. A failed send keeps the
visitors Pendente for the next run.

Channels: email (default), whatsapp, log (dry run).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, closeFn, err := newNotifier(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			tally, err := rec.Notify(cmd.Context(), n)
			if err != nil {
				return err
			}
			fmt.Println(tally)
			return nil
		})
	},
}

var pendingReportCmd = &cobra.Command{
	Use:   "pending-report",
	Short: "Show pending visitors per welcomer",
	Long: `Counts Pendente visitors per welcomer for decision dates within --from and
--to (dd/mm/yyyy, both optional). Up to two pending is green, three yellow,
more is red.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReconciler(func(rec *reconcile.Reconciler, _ *storage.Storage) error {
			sum, err := rec.PendingReport(cmd.Context(), reportFrom, reportTo)
			if err != nil {
				return err
			}
			fmt.Println(sum)
			return nil
		})
	},
}

// newNotifier builds the configured notification channel. The returned
// close function is always safe to call.
func newNotifier(ctx context.Context) (reconcile.Notifier, func(), error) {
	name := notifierChoice(cfg.Notifier, notifierName)
	switch name {
	case config.NotifierLog:
		return notify.NewLogNotifier(logger), func() {}, nil

	case config.NotifierWhatsApp:
		svc, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing WhatsApp service: %w", err)
		}
		if err := svc.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("error connecting to WhatsApp: %w", err)
		}
		return svc, svc.Disconnect, nil

	case config.NotifierEmail, "":
		if err := cfg.Validate(config.NeedEmail); err != nil {
			return nil, nil, err
		}
		return notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.EmailSender,
			Password: cfg.EmailPassword,
		}, logger), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown notifier %q (want email, whatsapp or log)", name)
}

func init() {
	notifyCmd.Flags().StringVar(&notifierName, "via", "", "Notification channel: email, whatsapp or log")
	mcpCmd.Flags().StringVar(&notifierName, "via", "", "Notification channel for notify_welcomers")

	pendingReportCmd.Flags().StringVar(&reportFrom, "from", "", "First decision date (dd/mm/yyyy)")
	pendingReportCmd.Flags().StringVar(&reportTo, "to", "", "Last decision date (dd/mm/yyyy)")
}

// notifierChoice picks the --via flag over the configured channel
func notifierChoice(configured, flag string) string {
	if v := strings.ToLower(strings.TrimSpace(flag)); v != "" {
		return v
	}
	return configured
}
