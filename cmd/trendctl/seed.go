package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	dbpkg "welltrend/internal/db"
)

type SeedCmd struct{}

func NewSeedCmd() *SeedCmd {
	return &SeedCmd{}
}

func (c *SeedCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FIXTURE.yaml...",
		Short: "Load nodes, catalog rows, facility tags and points from YAML fixtures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, log, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			for _, path := range args {
				f, err := dbpkg.LoadFixture(path)
				if err != nil {
					return err
				}
				if err := svc.DB.Seed(ctx, f); err != nil {
					return fmt.Errorf("seed %s: %w", path, err)
				}
				log.Info("Seeded fixture", "path", path,
					"nodes", len(f.Nodes), "catalog", len(f.Catalog), "facility_tags", len(f.FacilityTags),
					"live", len(f.Live), "archive", len(f.Archive))
			}
			return nil
		},
	}
}
