package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aouyang1/go-attribution/config"
	"github.com/aouyang1/go-attribution/pipeline"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var ErrUnknownProfile = errors.New("unknown profile mode")

var (
	runConfig     string
	runProfile    string
	runProfileDir string
	runSummary    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fit the model and write reports",
	Long: `Reads the configured data, validates and cleans it, applies the media transforms,
fits an elastic net with time series cross validation and writes contributions, roi and
diagnostics into the reports directory.`,
	RunE: runAttribution,
}

func init() {
	runCmd.Flags().StringVar(&runConfig, "config", "", "path to the YAML config")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "write a cpu or mem profile")
	runCmd.Flags().StringVar(&runProfileDir, "profile-dir", ".", "directory for profile output")
	runCmd.Flags().BoolVar(&runSummary, "summary", true, "print the model summary to stdout")
	runCmd.MarkFlagRequired("config")
}

func startProfile(mode, dir string) (interface{ Stop() }, error) {
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook), nil
	}
	return nil, fmt.Errorf("got %q, expected cpu or mem, %w", mode, ErrUnknownProfile)
}

func runAttribution(cmd *cobra.Command, args []string) error {
	prof, err := startProfile(runProfile, runProfileDir)
	if err != nil {
		return err
	}
	if prof != nil {
		defer prof.Stop()
	}

	cfg, err := config.Load(runConfig)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), cfg, runConfig)
	if err != nil {
		return err
	}

	if runSummary {
		if err := res.Model.TablePrint(os.Stdout, "", "  "); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "Wrote reports to: %s\n", res.ReportsDir)
	return nil
}
