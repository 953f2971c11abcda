package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Geocode a place and record its state, city and sibling links",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "geocode")
		if err != nil {
			return err
		}
		defer env.Close()

		res := env.Normalizer.Resolve(cmd.Context(), strings.Join(args, " "))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "geocode: write output")
		}
		if !res.Success {
			return eris.Wrap(res.Err(), "geocode")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
