package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"elo-welcoming/internal/config"
	"elo-welcoming/internal/extract"
	"elo-welcoming/internal/handler"
	"elo-welcoming/internal/models"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
	"elo-welcoming/internal/whatsapp"
)

var whatsappCmd = &cobra.Command{
	Use:   "whatsapp",
	Short: "Run the WhatsApp bot: send pending lists and read welcomer replies",
	Long: `Links to WhatsApp (showing a QR code the first time), listens for welcomer
replies and applies them to that welcomer's notified visitors, and offers an
interactive menu to run the notification cycle over WhatsApp.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Println("🙏 Elo WhatsApp Bot")
		fmt.Println("===================")

		return withReconciler(func(rec *reconcile.Reconciler, store *storage.Storage) error {
			svc, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, logger)
			if err != nil {
				return fmt.Errorf("error initializing WhatsApp service: %w", err)
			}

			if err := cfg.Validate(config.NeedLLM); err != nil {
				logger.Warn().Err(err).Msg("Replies will not be read")
			} else {
				model, err := extract.NewGeminiModel(ctx, cfg.GeminiKey, cfg.Model)
				if err != nil {
					return err
				}
				replies := handler.NewReplyHandler(svc, store, extract.New(model, logger), rec, logger)
				svc.SetMessageHandler(replies.HandleMessage)
			}

			fmt.Println("Connecting to WhatsApp...")
			if err := svc.Connect(ctx); err != nil {
				return fmt.Errorf("error connecting to WhatsApp: %w", err)
			}
			defer svc.Disconnect()

			fmt.Println("\n✅ Connected to WhatsApp!")
			fmt.Println("The bot is now listening for welcomer replies.")

			done := make(chan struct{})
			go func() {
				startCLI(ctx, rec, store, svc)
				close(done)
			}()

			select {
			case <-ctx.Done():
			case <-done:
			}
			fmt.Println("\n\nShutting down...")
			return nil
		})
	},
}

func startCLI(ctx context.Context, rec *reconcile.Reconciler, store *storage.Storage, svc *whatsapp.Service) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Send pending lists to welcomers")
		fmt.Println("  2. View pending report")
		fmt.Println("  3. View all visitors")
		fmt.Println("  4. View visitors by status")
		fmt.Println("  5. Exit")
		fmt.Print("\nEnter command (1-5): ")

		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			tally, err := rec.Notify(ctx, svc)
			if err != nil {
				fmt.Printf("❌ Error running notification cycle: %v\n", err)
				continue
			}
			fmt.Println(tally)
		case "2":
			sum, err := rec.PendingReport(ctx, "", "")
			if err != nil {
				fmt.Printf("❌ Error building report: %v\n", err)
				continue
			}
			fmt.Println(sum)
		case "3":
			viewAllVisitors(ctx, store)
		case "4":
			viewVisitorsByStatus(ctx, scanner, store)
		case "5":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func viewVisitorsByStatus(ctx context.Context, scanner *bufio.Scanner, store *storage.Storage) {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Pendente")
	fmt.Println("  2. Notificado")
	for i, o := range models.KnownOutcomes {
		fmt.Printf("  %d. %s\n", i+3, o)
	}
	fmt.Printf("Enter choice (1-%d): ", len(models.KnownOutcomes)+2)

	if !scanner.Scan() {
		return
	}

	var status models.ContactStatus
	switch choice := strings.TrimSpace(scanner.Text()); choice {
	case "1":
		status = models.Pending()
	case "2":
		status = models.Notified()
	default:
		var n int
		if _, err := fmt.Sscan(choice, &n); err != nil || n < 3 || n > len(models.KnownOutcomes)+2 {
			fmt.Println("Invalid choice.")
			return
		}
		status = models.Resolved(models.KnownOutcomes[n-3])
	}

	visitors, err := store.VisitorsByStatus(ctx, status)
	if err != nil {
		fmt.Printf("❌ Error listing visitors: %v\n", err)
		return
	}
	if len(visitors) == 0 {
		fmt.Printf("\nNo visitors with status '%s'.\n", status)
		return
	}

	fmt.Printf("\n📋 Visitors with status '%s' (%d total):\n", status, len(visitors))
	printVisitors(visitors, false)
}

func viewAllVisitors(ctx context.Context, store *storage.Storage) {
	visitors, err := store.AllVisitors(ctx)
	if err != nil {
		fmt.Printf("❌ Error listing visitors: %v\n", err)
		return
	}
	if len(visitors) == 0 {
		fmt.Println("\nNo visitors found.")
		return
	}

	fmt.Printf("\n📋 All Visitors (%d total):\n", len(visitors))
	printVisitors(visitors, true)
}

func printVisitors(visitors []models.Visitor, withStatus bool) {
	fmt.Println(strings.Repeat("-", 60))
	for _, v := range visitors {
		fmt.Printf("Name: %s\n", v.Name)
		if v.Phone != "" {
			fmt.Printf("Phone: %s\n", v.Phone)
		}
		if withStatus {
			fmt.Printf("Status: %s\n", v.Status)
		}
		fmt.Printf("Decision date: %s\n", v.DecisionDate)
		if v.Observation != "" {
			fmt.Printf("Observation: %s\n", v.Observation)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}
