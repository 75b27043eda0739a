package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"welltrend/internal/output"
	"welltrend/internal/trend"
)

type SeriesCmd struct{}

func NewSeriesCmd() *SeriesCmd {
	return &SeriesCmd{}
}

func (c *SeriesCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Fetch the merged series of a node",
		Long: "Fetch the merged live and archive series of a node by address, standard type or parameter name.\n" +
			"Parameter names: " + strings.Join(trend.ParameterNames(), ", ") + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := cmd.Flags().GetIntSlice("addresses")
			if err != nil {
				return fmt.Errorf("failed to get addresses flag: %w", err)
			}
			standardType, err := cmd.Flags().GetInt("type")
			if err != nil {
				return fmt.Errorf("failed to get type flag: %w", err)
			}
			param, err := cmd.Flags().GetString("param")
			if err != nil {
				return fmt.Errorf("failed to get param flag: %w", err)
			}
			start, end, err := seriesRange(cmd)
			if err != nil {
				return err
			}
			tgt, err := parseTarget(cmd)
			if err != nil {
				return err
			}
			if param != "" {
				st, ok := trend.ParameterType(param)
				if !ok {
					return fmt.Errorf("unknown parameter %q (want one of %s)", param, strings.Join(trend.ParameterNames(), ", "))
				}
				standardType = st
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, log, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			req := trend.SeriesRequest{
				NodeID:       tgt.nodeID,
				Addresses:    addresses,
				StandardType: standardType,
				Start:        start,
				End:          end,
			}
			var series []trend.ResolvedSeriesValue
			if tgt.byAsset {
				series, err = svc.Engine.GetSeriesForAsset(ctx, tgt.assetID, req)
			} else {
				series, err = svc.Engine.GetSeries(ctx, req)
			}
			if err != nil {
				return err
			}
			log.Debug("Fetched series", "points", len(series), "start", start, "end", end)

			return emit(cmd, emitter{
				JSON: series,
				CSV:  func(w io.Writer) error { return output.WriteSeriesCSV(w, series) },
				Table: func(t *tablewriter.Table) {
					t.SetHeader([]string{"Timestamp", "Address", "Value", "Manual", "Clamped"})
					for _, v := range series {
						t.Append([]string{
							v.Timestamp.UTC().Format(time.RFC3339),
							strconv.Itoa(v.Address),
							strconv.FormatFloat(v.Value, 'g', -1, 64),
							yesNo(v.IsManual),
							yesNo(v.Clamped),
						})
					}
				},
			})
		},
	}
	addTargetFlags(cmd)
	cmd.Flags().IntSlice("addresses", nil, "register addresses (comma separated)")
	cmd.Flags().Int("type", 0, "standard parameter type")
	cmd.Flags().String("param", "", "named parameter, overrides --type")
	cmd.Flags().String("from", "", "range start (RFC3339, inclusive)")
	cmd.Flags().String("to", "", "range end (RFC3339, inclusive); defaults to now")
	cmd.Flags().Duration("recent", 24*time.Hour, "range length ending at --to when --from is not set")
	addOutputFlags(cmd)
	return cmd
}

func seriesRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to get from flag: %w", err)
	}
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to get to flag: %w", err)
	}
	recent, err := cmd.Flags().GetDuration("recent")
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to get recent flag: %w", err)
	}

	end := time.Now().UTC()
	if to != "" {
		if end, err = time.Parse(time.RFC3339, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	start := end.Add(-recent)
	if from != "" {
		if start, err = time.Parse(time.RFC3339, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	return start, end, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
