package commands

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/claude/fitbuddy/internal/models"
	"github.com/claude/fitbuddy/internal/schedule"
	"github.com/claude/fitbuddy/internal/storage"
	"github.com/spf13/cobra"
)

func heatmapCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show the month calendar of completed workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if month != "" {
				params.Set("month", month)
			}
			var hm schedule.Heatmap
			if err := api.get(cmd.Context(), "/heatmap", params, &hm); err != nil {
				return err
			}

			fmt.Printf("%s %d: %d workouts\n", hm.MonthName, hm.Year, hm.Completed)
			fmt.Println(" Mo  Tu  We  Th  Fr  Sa  Su")
			for _, row := range hm.Rows {
				for _, cell := range row {
					switch {
					case cell.Day == 0:
						fmt.Print("    ")
					case cell.Completed:
						fmt.Printf(" %2d*", cell.Day)
					case cell.Today:
						fmt.Printf("[%2d]", cell.Day)
					default:
						fmt.Printf(" %2d ", cell.Day)
					}
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

func historyCmd() *cobra.Command {
	var start, end, exercise string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List submitted sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if start != "" {
				params.Set("start", start)
			}
			if end != "" {
				params.Set("end", end)
			}
			if exercise != "" {
				params.Set("exercise", exercise)
			}
			var rows []models.HistorySetRow
			if err := api.get(cmd.Context(), "/history", params, &rows); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tWORKOUT\tEXERCISE\tSET\tWEIGHT\tREPS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%g\t%d\n",
					r.CompletedAt.Local().Format("2006-01-02"), r.WorkoutID, r.ExerciseName, r.SetLabel, r.Weight, r.Reps)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date (default 30 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "end date (default now)")
	cmd.Flags().StringVar(&exercise, "exercise", "", "filter by exercise name")
	return cmd
}

func progressCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "progress [exercise]",
		Short: "Show top weight and estimated max per workout for an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("exercise", args[0])
			if start != "" {
				params.Set("start", start)
			}
			if end != "" {
				params.Set("end", end)
			}
			var p storage.ExerciseProgress
			if err := api.get(cmd.Context(), "/history/progress", params, &p); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE	SETS	REPS	TOP	VOLUME	EST. MAX")
			for _, w := range p.Workouts {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%g\t%g\n",
					w.CompletedAt.Local().Format("2006-01-02"), w.Sets, w.TotalReps, w.TopWeight, w.Volume, w.EstimatedMax)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("best %g kg, estimated max %g kg\n", p.BestWeight, p.BestEstimate)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date (default 30 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "end date (default now)")
	return cmd
}
