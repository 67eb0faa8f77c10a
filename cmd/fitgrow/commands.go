package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/client"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/fitgrow/fitgrow-backend/internal/scanner"
	"github.com/spf13/cobra"
)

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (a *app) signupCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.client.Signup(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Session valid until %s\n", sess.User.Username, sess.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	for _, f := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and cache the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.client.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session and reset the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and today's dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if sess := a.client.Session(); sess != nil {
				fmt.Fprintf(out, "Logged in as %s <%s>\n", sess.User.Username, sess.User.Email)
			} else {
				fmt.Fprintln(out, "Not logged in")
			}
			printDashboard(out, a.client.Dashboard())
			return nil
		},
	}
}

func (a *app) goalsCmd() *cobra.Command {
	var goals models.Goals
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Update daily goals; unset flags keep the current goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := a.client.UpdateGoals(cmd.Context(), goals)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goals: %v kcal, %v steps, %vL water, %vh sleep\n",
				updated.Calories, updated.Steps, updated.Water, updated.Sleep)
			return nil
		},
	}
	cmd.Flags().Float64Var(&goals.Calories, "calories", 0, "calorie goal")
	cmd.Flags().Float64Var(&goals.Steps, "steps", 0, "step goal")
	cmd.Flags().Float64Var(&goals.Water, "water", 0, "water goal in litres")
	cmd.Flags().Float64Var(&goals.Sleep, "sleep", 0, "sleep goal in hours")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "add calories|steps|water|sleep",
		Short:     "Quick-add one increment to a dashboard card",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"calories", "steps", "water", "sleep"},
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := parseMetric(args[0])
			if err != nil {
				return err
			}
			d := a.client.Dashboard()
			d.QuickAdd(metric)
			if err := a.client.SaveDashboard(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%.0f%%)\n", metric, d.Format(metric), d.Progress(metric))
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset today's dashboard values",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.client.Dashboard().Reset()
			return a.client.SaveDashboard()
		},
	}
}

func (a *app) logCmd() *cobra.Command {
	var req client.ActivityRequest
	var duration float64
	cmd := &cobra.Command{
		Use:   "log TYPE VALUE",
		Short: "Log one activity (calories, steps, water, sleep or workout)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type = models.ActivityType(args[0])
			if !req.Type.Valid() {
				return fmt.Errorf("unknown activity type %q", args[0])
			}
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			req.Value = v
			if cmd.Flags().Changed("duration") {
				req.Duration = &duration
			}
			activity, err := a.client.LogActivity(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %v %s at %s\n", activity.Value, activity.Type, activity.Date.Local().Format(time.Kitchen))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.WorkoutType, "workout-type", "", "workout kind, e.g. running")
	cmd.Flags().Float64Var(&duration, "duration", 0, "workout duration in minutes")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	return cmd
}

func (a *app) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send dashboard calories to the server and reload today's totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Sync(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Data synced successfully!")
			printDashboard(cmd.OutOrStdout(), a.client.Dashboard())
			return nil
		},
	}
}

func (a *app) weeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Show calories of the last 7 days by weekday",
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := a.client.WeeklyStats(cmd.Context())
			if err != nil {
				return err
			}
			for i, v := range week {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %6.0f\n", weekdays[i], v)
			}
			return nil
		},
	}
}

func (a *app) mealCmd() *cobra.Command {
	var req client.MealRequest
	var mealType string
	cmd := &cobra.Command{
		Use:   "meal FOOD",
		Short: "Log a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.FoodName = args[0]
			req.MealType = models.MealType(mealType)
			meal, err := a.client.LogMeal(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%v kcal) as %s\n", meal.FoodName, meal.Calories, meal.MealType)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&req.Calories, "calories", 0, "calories")
	f.Float64Var(&req.Protein, "protein", 0, "protein in grams")
	f.Float64Var(&req.Carbs, "carbs", 0, "carbohydrates in grams")
	f.Float64Var(&req.Fat, "fat", 0, "fat in grams")
	f.Float64Var(&req.Fiber, "fiber", 0, "fiber in grams")
	f.Float64Var(&req.Sugar, "sugar", 0, "sugar in grams")
	f.Float64Var(&req.Sodium, "sodium", 0, "sodium in milligrams")
	f.StringVar(&req.ServingSize, "serving", "", "serving size")
	f.StringVar(&mealType, "meal-type", "", "breakfast, lunch, dinner or snack")
	_ = cmd.MarkFlagRequired("calories")
	return cmd
}

func (a *app) nutritionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nutrition",
		Short: "Show today's meals and macro totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			daily, err := a.client.DailyNutrition(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range daily.Meals {
				fmt.Fprintf(out, "%-10s %-24s %6.0f kcal\n", m.MealType, m.FoodName, m.Calories)
			}
			t := daily.Totals
			fmt.Fprintf(out, "Total: %.0f kcal, protein %.0fg, carbs %.0fg, fat %.0fg, fiber %.0fg, sugar %.0fg, sodium %.0fmg\n",
				t.Calories, t.Protein, t.Carbs, t.Fat, t.Fiber, t.Sugar, t.Sodium)
			return nil
		},
	}
}

func (a *app) scanCmd() *cobra.Command {
	var portion, slider float64
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "Log a food analysis answer saved to FILE (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			analysis, err := scanner.Parse(string(text))
			if err != nil {
				return err
			}
			p := scanner.Portion(portion)
			if cmd.Flags().Changed("slider") {
				p = scanner.FromSlider(slider)
			}

			meal := analysis.Scale(p)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) at %s: %.0f kcal, protein %.0fg, carbs %.0fg, fat %.0fg\n",
				meal.FoodName, meal.ServingSize, p, meal.Calories, meal.Protein, meal.Carbs, meal.Fat)
			if dryRun {
				return nil
			}
			if _, err := a.client.LogScannedFood(cmd.Context(), analysis, p); err != nil {
				return err
			}
			fmt.Fprintln(out, "Food logged successfully!")
			return nil
		},
	}
	cmd.Flags().Float64Var(&portion, "portion", 1, "portion multiplier (presets 0.5, 1, 1.5, 2)")
	cmd.Flags().Float64Var(&slider, "slider", 100, "portion as a percentage, overrides --portion")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the scaled values without logging")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import EXPORT_XML",
		Short: "Upload an Apple Health export.xml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.client.ImportAppleHealth(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records, skipped %d\n", res.Imported, res.Skipped)
			return nil
		},
	}
}

func parseMetric(s string) (client.Metric, error) {
	for _, m := range client.Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printDashboard(out io.Writer, d *client.Dashboard) {
	for _, m := range client.Metrics {
		fmt.Fprintf(out, "  %-9s %8s  %5.1f%%\n", m, d.Format(m), d.Progress(m))
	}
}
