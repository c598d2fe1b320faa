package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"sourcing/internal/app"
)

func main() {
	root := &cobra.Command{
		Use:   "sourcing",
		Short: "B2B sourcing marketplace lifecycle engine",
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server with scheduled maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp()
			if err != nil {
				return err
			}
			a.Run()
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Run the project expiry sweep once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := a.Sweep(context.Background())
			if err != nil {
				return err
			}
			log.Printf("Expired %d projects", len(ids))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search indices from the store of record",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Reindex(context.Background())
		},
	})

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
