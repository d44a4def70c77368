package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/firmata"
	"github.com/muurk/firmata/internal/pinconfig"
	"github.com/muurk/firmata/internal/ui"
)

var (
	applyNoVerify bool
	applyRollback bool
	applyRetries  int
)

var applyCmd = &cobra.Command{
	Use:   "apply <profile.yaml>",
	Short: "Apply a YAML pin profile to the board",
	Long: `Apply a declarative pin profile. A profile names the modes, output
values, and reporting flags for a set of pins:

    name: bench
    sampling_interval_ms: 50
    pins:
      - pin: 13
        mode: output
        value: 1
      - pin: 14
        mode: analog
        report: true

The profile is validated against the board's reported capabilities,
applied pin by pin, and then verified by querying each pin's state
back. Verification retries with backoff to give slow boards time to
settle. With --rollback, the previous state of every touched pin is
captured first and restored if verification fails.`,
	Example: `  # Apply and verify
  firmatactl apply bench.yaml --port /dev/ttyACM0

  # Fire and forget, no verification
  firmatactl apply bench.yaml --no-verify

  # Restore previous pin states if verification fails
  firmatactl apply bench.yaml --rollback`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyNoVerify, "no-verify", false, "Skip pin state verification after applying")
	applyCmd.Flags().BoolVar(&applyRollback, "rollback", false, "Restore previous pin states if verification fails")
	applyCmd.Flags().IntVar(&applyRetries, "retries", 0, "Verification retries (0 = default)")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	profile, err := pinconfig.LoadProfile(args[0])
	if err != nil {
		if hint := pinconfig.GetTroubleshootingHint(err); hint != "" {
			return fmt.Errorf("%w\n%s", err, hint)
		}
		return err
	}

	return withClient(func(client *firmata.Client, target string) error {
		printer := ui.NewPrinter(nil)
		printer.PrintHeader("Apply Pin Profile", "firmatactl apply "+args[0], map[string]string{
			"Target":  target,
			"Profile": profile.Summary(),
		})

		applier := pinconfig.NewApplier(client)
		applier.QueryTimeout = opTimeout

		errs := pinconfig.ValidateProfile(profile)
		if caps, err := applier.QueryCapabilities(); err != nil {
			// Minimal firmwares skip the capability query; apply anyway.
			fmt.Printf("Warning: capability check skipped: %v\n\n", err)
		} else {
			errs = append(errs, pinconfig.ValidateAgainstCapabilities(profile, caps)...)
		}

		warnings, critical := pinconfig.SeparateWarningsAndErrors(errs)
		for _, warning := range warnings {
			fmt.Printf("Warning: %v\n", warning)
		}
		if len(warnings) > 0 {
			fmt.Println()
		}
		if len(critical) > 0 {
			err := fmt.Errorf("profile failed validation")
			printer.PrintError("Validation", err, validationTips(critical))
			return fmt.Errorf("%s:\n%s", err, pinconfig.FormatValidationErrors(critical))
		}

		fmt.Println(profile.FormatChanges())

		if applyNoVerify {
			if err := applier.Apply(profile); err != nil {
				printer.PrintError("Apply", err, []string{pinconfig.GetTroubleshootingHint(err)})
				return err
			}
			printer.PrintSuccess("Profile applied", map[string]string{
				"Pins":     fmt.Sprintf("%d", len(profile.Pins)),
				"Verified": "no (--no-verify)",
			})
			touchSavedBoard("")
			return nil
		}

		opts := pinconfig.DefaultVerificationOptions()
		if applyRetries > 0 {
			opts.MaxRetries = applyRetries
		}

		if applyRollback {
			return runSafeApply(printer, applier, profile, opts)
		}

		result := applier.ApplyAndVerify(profile, opts)
		if !result.Success {
			printer.PrintError("Apply", result.Error, applyTips(result))
			return fmt.Errorf("apply failed: %w", result.Error)
		}

		printer.PrintSuccess("Profile applied and verified", map[string]string{
			"Pins":     fmt.Sprintf("%d", len(profile.Pins)),
			"Attempts": fmt.Sprintf("%d", result.Attempts),
		})
		fmt.Println(pinconfig.FormatPinStates(result.ActualStates))
		touchSavedBoard("")
		return nil
	})
}

// runSafeApply is the --rollback path: snapshot, apply, verify, and
// restore the snapshot if verification fails.
func runSafeApply(printer *ui.Printer, applier *pinconfig.Applier, profile *pinconfig.Profile, opts *pinconfig.VerificationOptions) error {
	manager := pinconfig.NewRollbackManager(applier)
	result := manager.SafeApply(profile, opts, profile.Name)

	if !result.Success {
		printer.PrintError("Apply", result.Error, applyTips(result.ApplyResult))
		fmt.Println(result.String())
		return fmt.Errorf("apply failed: %w", result.Error)
	}

	printer.PrintSuccess("Profile applied and verified", map[string]string{
		"Pins":     fmt.Sprintf("%d", len(profile.Pins)),
		"Attempts": fmt.Sprintf("%d", result.ApplyResult.Attempts),
	})
	fmt.Println(pinconfig.FormatPinStates(result.ApplyResult.ActualStates))
	touchSavedBoard("")
	return nil
}

// validationTips builds troubleshooting lines from validation errors.
func validationTips(errs []error) []string {
	tips := make([]string, 0, len(errs))
	for _, err := range errs {
		if hint := pinconfig.GetTroubleshootingHint(err); hint != "" {
			tips = append(tips, hint)
		}
	}
	if len(tips) == 0 {
		tips = append(tips, "Check the profile against 'firmatactl capabilities' output")
	}
	return tips
}

// applyTips builds troubleshooting lines from a failed verification.
func applyTips(result *pinconfig.VerificationResult) []string {
	var tips []string
	if result != nil {
		for _, mismatch := range result.Mismatches {
			tips = append(tips, mismatch)
		}
		if hint := pinconfig.GetTroubleshootingHint(result.Error); hint != "" {
			tips = append(tips, hint)
		}
	}
	if len(tips) == 0 {
		tips = append(tips, "Run 'firmatactl pin state <pin>' to inspect the board directly")
	}
	return tips
}
