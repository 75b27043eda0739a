package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"welltrend/internal/catalog"
	"welltrend/internal/output"
)

type ItemsCmd struct{}

func NewItemsCmd() *ItemsCmd {
	return &ItemsCmd{}
}

func (c *ItemsCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the trend items of a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			standardType, err := cmd.Flags().GetInt("type")
			if err != nil {
				return fmt.Errorf("failed to get type flag: %w", err)
			}
			tgt, err := parseTarget(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, _, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var items []catalog.TrendItem
			if tgt.byAsset {
				items, err = svc.Engine.ResolveTrendItemsForAsset(ctx, tgt.assetID)
			} else {
				items, err = svc.Engine.ResolveTrendItems(ctx, tgt.nodeID)
			}
			if err != nil {
				return err
			}
			if standardType != 0 {
				items = catalog.FilterByType(items, standardType)
			}

			return emit(cmd, emitter{
				JSON: items,
				CSV:  func(w io.Writer) error { return output.WriteTrendItemsCSV(w, items) },
				Table: func(t *tablewriter.Table) {
					t.SetHeader([]string{"Description", "Standard Type", "Address", "Unit", "Source"})
					for _, it := range items {
						t.Append([]string{
							it.Description,
							strconv.Itoa(it.StandardType),
							strconv.Itoa(it.Address),
							strconv.Itoa(it.UnitType),
							it.Source.String(),
						})
					}
				},
			})
		},
	}
	addTargetFlags(cmd)
	cmd.Flags().Int("type", 0, "only items of this standard type")
	addOutputFlags(cmd)
	return cmd
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("node", "", "node id")
	cmd.Flags().String("asset", "", "asset id (UUID), resolved to its node")
	cmd.MarkFlagsMutuallyExclusive("node", "asset")
	cmd.MarkFlagsOneRequired("node", "asset")
}

type target struct {
	nodeID  string
	assetID uuid.UUID
	byAsset bool
}

// parseTarget reads --node or --asset.
func parseTarget(cmd *cobra.Command) (target, error) {
	nodeID, err := cmd.Flags().GetString("node")
	if err != nil {
		return target{}, fmt.Errorf("failed to get node flag: %w", err)
	}
	if nodeID != "" {
		return target{nodeID: nodeID}, nil
	}
	raw, err := cmd.Flags().GetString("asset")
	if err != nil {
		return target{}, fmt.Errorf("failed to get asset flag: %w", err)
	}
	assetID, err := uuid.Parse(raw)
	if err != nil {
		return target{}, fmt.Errorf("invalid asset id %q: %w", raw, err)
	}
	return target{assetID: assetID, byAsset: true}, nil
}
