package main

import (
	"fmt"
	"strings"

	"bloodlink/internal/auth"
	"bloodlink/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validate = validator.New()

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if err := validate.Var(email, "required,email"); err != nil {
				return fmt.Errorf("invalid email %q", email)
			}
			if err := validate.Var(password, "required,min=8"); err != nil {
				return fmt.Errorf("password must be at least 8 characters")
			}

			if _, err := app.repos.Donors.GetByEmail(app.ctx, email); err == nil {
				return fmt.Errorf("%s is already registered as a donor", email)
			}

			hashed, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			admin := &models.Admin{Name: name, Email: email, HashedPass: hashed}
			if err := app.repos.Admins.Create(app.ctx, admin); err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			app.logger.Info("admin created", zap.String("admin_id", admin.ID), zap.String("email", email))
			fmt.Printf("Created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (min 8 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}
