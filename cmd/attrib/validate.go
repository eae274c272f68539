package main

import (
	"os"

	"github.com/aouyang1/go-attribution/config"
	"github.com/aouyang1/go-attribution/pipeline"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var validateConfig string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config and the data quality without fitting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfig)
		if err != nil {
			return err
		}
		_, rep, err := pipeline.ValidateOnly(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfig, "config", "", "path to the YAML config")
	validateCmd.MarkFlagRequired("config")
}
