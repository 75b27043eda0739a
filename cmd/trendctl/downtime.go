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

	"welltrend/internal/catalog"
	"welltrend/internal/downtime"
	"welltrend/internal/output"
)

type DowntimeCmd struct{}

func NewDowntimeCmd() *DowntimeCmd {
	return &DowntimeCmd{}
}

func (c *DowntimeCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downtime",
		Short: "Correlate downtime signals of rod pump, ESP and gas lift nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := cmd.Flags().GetStringSlice("nodes")
			if err != nil {
				return fmt.Errorf("failed to get nodes flag: %w", err)
			}
			windowDays, err := cmd.Flags().GetInt("window-days")
			if err != nil {
				return fmt.Errorf("failed to get window-days flag: %w", err)
			}
			field, err := cmd.Flags().GetString("field")
			if err != nil {
				return fmt.Errorf("failed to get field flag: %w", err)
			}
			var rodPumpField downtime.Field[downtime.RodPumpRecord]
			if field != "" {
				if rodPumpField, err = downtime.RodPumpField(field); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, _, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if windowDays == 0 {
				windowDays = svc.Config.Downtime.WindowDays
			}
			dt, err := svc.Downtime.GetDowntime(ctx, nodes, windowDays)
			if err != nil {
				return err
			}

			return emit(cmd, emitter{
				JSON: dt,
				CSV:  func(w io.Writer) error { return output.WriteDowntimeCSV(w, dt) },
				Table: func(t *tablewriter.Table) {
					if rodPumpField != nil {
						fieldTable(t, dt.RodPump, field, rodPumpField)
						return
					}
					downtimeTable(t, dt)
				},
			})
		},
	}
	cmd.Flags().StringSlice("nodes", nil, "node ids (comma separated)")
	cmd.Flags().Int("window-days", 0, "trailing window in days; 0 uses downtime.window_days")
	cmd.Flags().String("field", "", "show only this rod pump column ("+strings.Join(downtime.RodPumpFieldNames(), ", ")+")")
	addOutputFlags(cmd)
	_ = cmd.MarkFlagRequired("nodes")
	return cmd
}

func downtimeTable(t *tablewriter.Table, dt *downtime.Downtime) {
	t.SetHeader([]string{"Application", "Node", "Timestamp", "Runtime", "Idle Time", "Cycles", "Value"})
	for _, r := range dt.RodPump {
		t.Append([]string{
			catalog.ApplicationRodPump.String(), r.NodeID, r.Timestamp.UTC().Format(time.RFC3339),
			num(r.Runtime), num(r.IdleTime), num(r.Cycles), "",
		})
	}
	for _, group := range []struct {
		app  catalog.Application
		recs []downtime.RateRecord
	}{
		{catalog.ApplicationESP, dt.ESP},
		{catalog.ApplicationGasLift, dt.GasLift},
	} {
		for _, r := range group.recs {
			t.Append([]string{group.app.String(), r.NodeID, r.Timestamp.UTC().Format(time.RFC3339), "", "", "", num(r.Value)})
		}
	}
}

func fieldTable(t *tablewriter.Table, recs []downtime.RodPumpRecord, name string, f downtime.Field[downtime.RodPumpRecord]) {
	t.SetHeader([]string{"Node", "Timestamp", name})
	for i, v := range downtime.Values(recs, f) {
		t.Append([]string{recs[i].NodeID, recs[i].Timestamp.UTC().Format(time.RFC3339), num(v)})
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
