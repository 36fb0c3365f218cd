package commands

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/claude/fitbuddy/internal/session"
	"github.com/spf13/cobra"
)

func printSession(sum session.Summary) {
	if len(sum.Exercises) == 0 {
		fmt.Println("No exercises logged")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, ex := range sum.Exercises {
		fmt.Fprintf(tw, "[%d] %s\n", i, ex.Name)
		for j, set := range ex.Sets {
			done := " "
			if set.Done {
				done = "x"
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s kg\t%s reps\t[%s]\n", j, set.Label, set.Weight, set.Reps, done)
		}
	}
	tw.Flush()
	fmt.Printf("volume %g kg, time %s\n", sum.TotalVolume, sum.Duration)
}

// positions parses exercise and optional set positions from args.
func positions(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid position %q", a)
		}
		out[i] = n
	}
	return out, nil
}

// sessionCall sends a session mutation and prints the resulting session.
func sessionCall(cmd *cobra.Command, method, path string, in any) error {
	var sum session.Summary
	if err := api.do(cmd.Context(), method, "/session"+path, nil, in, &sum); err != nil {
		return err
	}
	printSession(sum)
	return nil
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show and edit the workout being logged",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, http.MethodGet, "/", nil)
		},
	}
	cmd.AddCommand(
		sessionAddCmd(), sessionRemoveCmd(), sessionMoveCmd(),
		setCmd(), sessionStartCmd(), sessionPauseCmd(),
		sessionSubmitCmd(), sessionDiscardCmd(),
	)
	return cmd
}

func sessionAddCmd() *cobra.Command {
	var details session.ExerciseDetails
	cmd := &cobra.Command{
		Use:   "add [exercise name]",
		Short: "Add an exercise with one empty set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details.Name = args[0]
			var resp struct {
				Session session.Summary `json:"session"`
			}
			if err := api.post(cmd.Context(), "/session/exercises", details, &resp); err != nil {
				return err
			}
			printSession(resp.Session)
			return nil
		},
	}
	cmd.Flags().StringVar(&details.BodyPart, "body-part", "", "body part")
	cmd.Flags().StringVar(&details.Target, "target", "", "target muscle")
	cmd.Flags().StringVar(&details.Equipment, "equipment", "", "equipment")
	return cmd
}

func sessionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [exercise]",
		Short: "Remove an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			return sessionCall(cmd, http.MethodDelete, fmt.Sprintf("/exercises/%d", pos[0]), nil)
		},
	}
}

func sessionMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv [from] [to]",
		Short: "Move an exercise to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			return sessionCall(cmd, http.MethodPut, "/order", map[string]int{"from": pos[0], "to": pos[1]})
		},
	}
}

func setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Edit the sets of an exercise",
	}

	add := &cobra.Command{
		Use:   "add [exercise]",
		Short: "Append a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			var resp struct {
				Session session.Summary `json:"session"`
			}
			if err := api.post(cmd.Context(), fmt.Sprintf("/session/exercises/%d/sets", pos[0]), nil, &resp); err != nil {
				return err
			}
			printSession(resp.Session)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [exercise] [set]",
		Short: "Remove a set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			return sessionCall(cmd, http.MethodDelete, fmt.Sprintf("/exercises/%d/sets/%d", pos[0], pos[1]), nil)
		},
	}

	var weight, reps string
	edit := &cobra.Command{
		Use:   "edit [exercise] [set]",
		Short: "Set weight and/or reps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			path := fmt.Sprintf("/session/exercises/%d/sets/%d", pos[0], pos[1])
			var resp struct {
				Accepted bool            `json:"accepted"`
				Session  session.Summary `json:"session"`
			}
			for _, f := range []struct {
				field session.Field
				value string
				set   bool
			}{
				{session.FieldWeight, weight, cmd.Flags().Changed("weight")},
				{session.FieldReps, reps, cmd.Flags().Changed("reps")},
			} {
				if !f.set {
					continue
				}
				body := map[string]string{"field": string(f.field), "value": f.value}
				if err := api.do(cmd.Context(), http.MethodPatch, path, nil, body, &resp); err != nil {
					return err
				}
				if !resp.Accepted {
					fmt.Fprintf(os.Stderr, "%s %q rejected\n", f.field, f.value)
				}
			}
			printSession(resp.Session)
			return nil
		},
	}
	edit.Flags().StringVarP(&weight, "weight", "w", "", "weight in kg")
	edit.Flags().StringVarP(&reps, "reps", "r", "", "repetitions")
	edit.MarkFlagsOneRequired("weight", "reps")

	done := &cobra.Command{
		Use:   "done [exercise] [set]",
		Short: "Toggle a set's completion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			return sessionCall(cmd, http.MethodPost, fmt.Sprintf("/exercises/%d/sets/%d/done", pos[0], pos[1]), nil)
		},
	}

	warmup := &cobra.Command{
		Use:   "warmup [exercise] [set]",
		Short: "Toggle a set between warm-up and working set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positions(args)
			if err != nil {
				return err
			}
			return sessionCall(cmd, http.MethodPost, fmt.Sprintf("/exercises/%d/sets/%d/kind", pos[0], pos[1]), nil)
		},
	}

	cmd.AddCommand(add, rm, edit, done, warmup)
	return cmd
}

func sessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start or resume the workout timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, http.MethodPost, "/focus", map[string]bool{"focused": true})
		},
	}
}

func sessionPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the workout timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, http.MethodPost, "/focus", map[string]bool{"focused": false})
		},
	}
}

func sessionSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit the workout to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				WorkoutID   int     `json:"workout_id"`
				Exercises   int     `json:"exercises"`
				Sets        int     `json:"sets"`
				TotalVolume float64 `json:"total_volume"`
				Duration    string  `json:"duration"`
			}
			if err := api.post(cmd.Context(), "/session/submit", nil, &result); err != nil {
				return err
			}
			fmt.Printf("Workout %d submitted: %d exercises, %d sets, %g kg in %s\n",
				result.WorkoutID, result.Exercises, result.Sets, result.TotalVolume, result.Duration)
			return nil
		},
	}
}

func sessionDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Throw away the workout being logged",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionCall(cmd, http.MethodPost, "/discard", nil)
		},
	}
}
