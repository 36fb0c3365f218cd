package commands

import (
	"fmt"

	"github.com/claude/fitbuddy/internal/auth"
	"github.com/claude/fitbuddy/internal/models"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [uid] [token]",
		Short: "Sign in with an identity-provider uid and bearer token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sess auth.Session
			body := map[string]string{"uid": args[0], "token": args[1]}
			if err := api.post(cmd.Context(), "/auth/signin", body, &sess); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", sess.UID)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the in-progress workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.post(cmd.Context(), "/auth/signout", nil, nil); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me struct {
				User    auth.Session `json:"user"`
				Tailnet struct {
					Login string `json:"login"`
				} `json:"tailnet"`
			}
			if err := api.get(cmd.Context(), "/me", nil, &me); err != nil {
				return err
			}
			fmt.Printf("uid:       %s\n", me.User.UID)
			fmt.Printf("signed in: %s\n", me.User.SignedInAt.Local().Format("2006-01-02 15:04"))
			fmt.Printf("tailnet:   %s\n", me.Tailnet.Login)
			return nil
		},
	}
}

func surveyCmd() *cobra.Command {
	var (
		s          models.Survey
		start, end string
	)
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Submit the onboarding survey so the backend generates a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				d, err := models.ParseDate(start)
				if err != nil {
					return err
				}
				s.StartDate = &d
			}
			if end != "" {
				d, err := models.ParseDate(end)
				if err != nil {
					return err
				}
				s.EndDate = &d
			}
			if err := api.post(cmd.Context(), "/survey", s, nil); err != nil {
				return err
			}
			fmt.Println("Survey submitted; your plan will be regenerated")
			return nil
		},
	}
	cmd.Flags().StringVar(&s.Goal, "goal", "", "goal (e.g. build-muscle, lose-weight)")
	cmd.Flags().StringVar(&s.Type, "type", "", "body type (endomorph, mesomorph, ectomorph, not-sure)")
	cmd.Flags().StringVar(&s.Level, "level", "", "fitness level (beginner, intermediate, advanced)")
	cmd.Flags().StringSliceVar(&s.Equipment, "equipment", nil, "available equipment, comma separated")
	cmd.Flags().StringVar(&start, "start", "", "plan start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "plan end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}
