package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	analyticsapp "machine-insights/internal/analytics/application"
	apihttp "machine-insights/internal/api/http"
	"machine-insights/internal/report"
	telemetry "machine-insights/internal/telemetry/domain"
)

func newAlarmsCommand(a *app) *cobra.Command {
	var (
		day    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "alarms",
		Short: "Summarize the alarms of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, window, err := a.prepareDay(cmd, day)
			if err != nil {
				return err
			}
			result, err := svc.alarms.AnalyzeDay(cmd.Context(), window)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, result)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tMESSAGE\tOCCURRENCES")
			for _, row := range result.Summary {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", row.Code, row.Message, row.Occurrences)
			}
			fmt.Fprintf(tw, "\tTOTAL\t%d\n", result.Total)
			if result.Rejected > 0 {
				fmt.Fprintf(tw, "\tREJECTED SNAPSHOTS\t%d\n", result.Rejected)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "day to analyze, defaults to today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func newTimelineCommand(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the machine state intervals of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, window, err := a.prepareDay(cmd, day)
			if err != nil {
				return err
			}
			timeline, err := svc.operation.DayTimeline(cmd.Context(), window)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tSTATE\tDURATION")
			for _, interval := range timeline.Intervals {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					interval.Start.In(a.location).Format(time.DateTime),
					interval.End.In(a.location).Format(time.DateTime),
					interval.State,
					interval.Duration())
			}
			fmt.Fprintf(tw, "\t\tUTILIZATION\t%.1f%%\n", timeline.Utilization*100)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "day to analyze, defaults to today")
	return cmd
}

func newTemperaturesCommand(a *app) *cobra.Command {
	var (
		day        string
		width      time.Duration
		alignToDay bool
	)
	cmd := &cobra.Command{
		Use:   "temperatures",
		Short: "Resample motor temperatures of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, window, err := a.prepareDay(cmd, day)
			if err != nil {
				return err
			}
			result, err := svc.analytics.Temperatures(cmd.Context(), window, analyticsapp.TemperatureQuery{
				Width:      width,
				AlignToDay: alignToDay,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "day to analyze, defaults to today")
	cmd.Flags().DurationVarP(&width, "width", "w", 0, "bucket width, defaults to analysis.bucket_width")
	cmd.Flags().BoolVar(&alignToDay, "align-day", false, "pad buckets from the start of the day")
	return cmd
}

func newEnergyCommand(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Integrate spindle energy of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, window, err := a.prepareDay(cmd, day)
			if err != nil {
				return err
			}
			result, err := svc.analytics.Energy(cmd.Context(), window)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&day, "day", "d", "", "day to analyze, defaults to today")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		table       string
		ids         string
		limit       int
		oldestFirst bool
		out         string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump recent raw log rows to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			variableIDs, err := apihttp.ParseIDs(ids)
			if err != nil {
				return err
			}
			if len(variableIDs) == 0 {
				return errors.New("--ids is required")
			}
			query := telemetry.RecentQuery{
				Table:       telemetry.Table(table),
				VariableIDs: variableIDs,
				Limit:       limit,
				NewestFirst: !oldestFirst,
			}
			if !query.Table.IsValid() {
				return telemetry.ErrInvalidTable
			}
			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			rows, err := a.reader.Recent(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.logger.Warn().Str("table", table).Msg("no rows to export")
				return nil
			}

			if out == "" {
				out = fmt.Sprintf("%s_data_%s.csv", table, time.Now().Format("2006-01-02_15-04-05"))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteRawCSV(f, rows); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Info().Int("rows", len(rows)).Str("file", out).Msg("export written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", string(telemetry.TableFloat), "value table, float or string")
	cmd.Flags().StringVar(&ids, "ids", "", "comma separated variable ids")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "maximum number of rows")
	cmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "order rows oldest first within each variable")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, defaults to <table>_data_<timestamp>.csv")
	return cmd
}

func (a *app) prepareDay(cmd *cobra.Command, day string) (*services, telemetry.DayWindow, error) {
	window, err := telemetry.ParseDay(dayOrToday(day, a.location), a.location)
	if err != nil {
		return nil, telemetry.DayWindow{}, err
	}
	if err := a.openStore(cmd.Context()); err != nil {
		return nil, telemetry.DayWindow{}, err
	}
	svc, err := a.buildServices()
	if err != nil {
		return nil, telemetry.DayWindow{}, err
	}
	return svc, window, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
