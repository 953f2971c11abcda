package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/khanrumi/location-picker/internal/location"
	"github.com/khanrumi/location-picker/internal/model"
)

var listStateID int64

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the state, city and neighborhood tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		res := env.Service.Snapshot(cmd.Context())
		if !res.Success {
			return eris.Wrap(res.Err(), "list")
		}
		return renderTree(cmd.OutOrStdout(), res.Data, listStateID)
	},
}

// renderTree writes the hierarchy as an indented tree. A non-zero stateID
// limits the output to that state.
func renderTree(w io.Writer, snap *model.Snapshot, stateID int64) error {
	for _, st := range snap.States {
		if stateID != 0 && st.ID != stateID {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s (#%d)\n", st.Name, st.ID); err != nil {
			return err
		}
		for _, c := range location.CitiesOf(snap.Cities, st.ID) {
			if _, err := fmt.Fprintf(w, "  %s (#%d)\n", c.Name, c.ID); err != nil {
				return err
			}
			for _, n := range location.NeighborhoodsOf(snap.Neighborhoods, c.ID) {
				if _, err := fmt.Fprintf(w, "    %s (#%d)\n", n.Name, n.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() {
	listCmd.Flags().Int64Var(&listStateID, "state-id", 0, "only print this state")
	rootCmd.AddCommand(listCmd)
}
