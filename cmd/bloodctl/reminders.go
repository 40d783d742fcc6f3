package main

import (
	"fmt"
	"time"

	"bloodlink/internal/config"
	"bloodlink/internal/services"

	"github.com/spf13/cobra"
)

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Appointment reminder jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "send",
		Short: "Send reminders for tomorrow's appointments once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			email := services.NewEmailService(services.NewMailer(cfg.Email, app.logger.Named("mail")), cfg.BaseURL)
			worker := services.NewReminderWorker(app.repos.Appointments, email, time.Hour, app.logger)

			sent, failed := worker.SendDue(app.ctx)
			fmt.Printf("Reminders sent: %d, failed: %d\n", sent, failed)
			if failed > 0 {
				return fmt.Errorf("%d reminders failed", failed)
			}
			return nil
		},
	})
	return cmd
}
