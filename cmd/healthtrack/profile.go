// ABOUTME: CLI commands for viewing and editing the user profile.
// ABOUTME: profile set only changes the fields given as flags.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/harperreed/healthtrack/internal/models"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
	Long: `View or edit your personal information.

EXAMPLES:

  healthtrack profile show
  healthtrack profile set --name "Alex Doe" --age 34 --height 172`,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := appState.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		out := cmd.OutOrStdout()
		if p == nil {
			fmt.Fprintln(out, "No profile saved. Use 'healthtrack profile set' to add one.")
			return nil
		}
		printProfile(out, p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Long: `Update one or more profile fields. Fields you leave out keep their
saved values.

FLAGS:

  --name                 full name
  --age                  age in years
  --gender               gender
  --height               height in cm
  --conditions           medical conditions
  --emergency-contact    emergency contact`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var update models.Profile
		changed := false
		str := func(name string, dst **string) {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = &v
				changed = true
			}
		}
		str("name", &update.FullName)
		str("gender", &update.Gender)
		str("conditions", &update.MedicalConditions)
		str("emergency-contact", &update.EmergencyContact)
		if cmd.Flags().Changed("age") {
			v, _ := cmd.Flags().GetInt("age")
			if v < 0 {
				return fmt.Errorf("age must not be negative")
			}
			update.Age = &v
			changed = true
		}
		if cmd.Flags().Changed("height") {
			v, _ := cmd.Flags().GetFloat64("height")
			if v <= 0 {
				return fmt.Errorf("height must be positive")
			}
			update.Height = &v
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		p, err := appState.UpdateProfile(cmd.Context(), update)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		out := cmd.OutOrStdout()
		success(out, "Profile updated")
		printProfile(out, p)
		return nil
	},
}

func printProfile(w io.Writer, p *models.Profile) {
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", padRight(label, 20), value)
	}
	opt := func(s *string) string {
		if s == nil || *s == "" {
			return faint.Sprint("-")
		}
		return *s
	}

	row("Name", opt(p.FullName))
	age := faint.Sprint("-")
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	row("Age", age)
	row("Gender", opt(p.Gender))
	height := faint.Sprint("-")
	if p.Height != nil {
		height = fmt.Sprintf("%g cm", *p.Height)
	}
	row("Height", height)
	row("Medical conditions", truncate(opt(p.MedicalConditions), 60))
	row("Emergency contact", opt(p.EmergencyContact))
	if !p.UpdatedAt.IsZero() {
		row("Updated", faint.Sprint(p.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
}

func init() {
	profileSetCmd.Flags().String("name", "", "full name")
	profileSetCmd.Flags().Int("age", 0, "age in years")
	profileSetCmd.Flags().String("gender", "", "gender")
	profileSetCmd.Flags().Float64("height", 0, "height in cm")
	profileSetCmd.Flags().String("conditions", "", "medical conditions")
	profileSetCmd.Flags().String("emergency-contact", "", "emergency contact")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
