package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/khanrumi/location-picker/internal/model"
)

var addressInput model.AddressInput

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage saved addresses",
}

var addressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save an address in an existing neighborhood",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		res := env.Service.SaveAddress(cmd.Context(), addressInput)
		if !res.Success {
			return eris.Wrap(res.Err(), "address add")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Data)
	},
}

func init() {
	f := addressAddCmd.Flags()
	f.StringVar(&addressInput.Address, "address", "", "street address")
	f.Int64Var(&addressInput.NeighborhoodID, "neighborhood-id", 0, "neighborhood the address belongs to")
	f.StringVar(&addressInput.Phone, "phone", "", "contact phone number")
	f.StringVar(&addressInput.GoogleSearch, "google-search", "", "optional search text the address was found with")
	_ = addressAddCmd.MarkFlagRequired("address")
	_ = addressAddCmd.MarkFlagRequired("neighborhood-id")
	_ = addressAddCmd.MarkFlagRequired("phone")

	addressCmd.AddCommand(addressAddCmd)
	rootCmd.AddCommand(addressCmd)
}
