package commands

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/claude/fitbuddy/internal/models"
	"github.com/spf13/cobra"
)

func printDay(day models.DayPlan) {
	fmt.Println(day.DayOfWeek)
	if len(day.Exercises) == 0 {
		fmt.Println("  rest day")
		return
	}
	for _, ex := range day.Exercises {
		if ex.Duration > 0 {
			fmt.Printf("  %s: %g min\n", ex.Name, ex.Duration)
			continue
		}
		fmt.Printf("  %s: %d x %d\n", ex.Name, ex.Sets, ex.Reps)
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's scheduled workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Scheduled bool           `json:"scheduled"`
				Reason    string         `json:"reason"`
				Day       models.DayPlan `json:"day"`
			}
			if err := api.get(cmd.Context(), "/plan/today", nil, &resp); err != nil {
				return err
			}
			if !resp.Scheduled {
				fmt.Println("Nothing scheduled today:", resp.Reason)
				return nil
			}
			printDay(resp.Day)
			return nil
		},
	}
}

func weekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show this plan week",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Scheduled bool             `json:"scheduled"`
				Reason    string           `json:"reason"`
				Days      []models.DayPlan `json:"days"`
			}
			if err := api.get(cmd.Context(), "/plan/week", nil, &resp); err != nil {
				return err
			}
			if !resp.Scheduled {
				fmt.Println("Nothing scheduled this week:", resp.Reason)
				return nil
			}
			for _, day := range resp.Days {
				printDay(day)
			}
			return nil
		},
	}
}

func exercisesCmd() *cobra.Command {
	var (
		page  int
		query string
	)
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "Browse the exercise catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("page", strconv.Itoa(page))
			if query != "" {
				params.Set("q", query)
			}
			var resp struct {
				Page       int                      `json:"page"`
				TotalPages int                      `json:"total_pages"`
				Exercises  []models.CatalogExercise `json:"exercises"`
			}
			if err := api.get(cmd.Context(), "/exercises", params, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBODY PART\tTARGET\tEQUIPMENT")
			for _, ex := range resp.Exercises {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ex.Name, ex.BodyPart, ex.Target, ex.Equipment)
			}
			tw.Flush()
			fmt.Printf("page %d of %d\n", resp.Page, resp.TotalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "catalog page")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name")
	return cmd
}
