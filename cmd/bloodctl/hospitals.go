package main

import (
	"fmt"

	"bloodlink/internal/config"
	"bloodlink/internal/services"

	"github.com/spf13/cobra"
)

func hospitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "Manage hospital reference data",
	}
	cmd.AddCommand(hospitalsSeedCmd())
	return cmd
}

func hospitalsSeedCmd() *cobra.Command {
	var file, mapsKey string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert hospitals from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hospitals, err := config.LoadHospitals(file)
			if err != nil {
				return err
			}

			var geocoder services.Geocoder
			if maps, err := services.NewMapsService(mapsKey); err == nil {
				geocoder = maps
			}

			svc := services.NewHospitalService(app.repos.Hospitals, app.repos.Appointments, geocoder, app.logger)
			n, err := svc.Seed(app.ctx, hospitals)
			if err != nil {
				return err
			}

			fmt.Printf("\nSeeded %d hospitals:\n\n", n)
			for _, h := range hospitals {
				fmt.Printf("- %s (%s) %s-%s %v\n", h.Name, h.ID, h.OpenTime, h.CloseTime, h.DonationDays)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "hospitals.yaml", "Path to the hospitals YAML file")
	cmd.Flags().StringVar(&mapsKey, "maps-key", "", "Google Maps API key for geocoding addresses")
	return cmd
}
