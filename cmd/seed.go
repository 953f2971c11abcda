package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/khanrumi/location-picker/internal/location"
)

// seedFile is the YAML layout accepted by the seed command:
//
//	states:
//	  - name: Brazil
//	    cities:
//	      - name: Rio de Janeiro
//	        neighborhoods: [Ipanema, Leblon]
type seedFile struct {
	States []seedState `yaml:"states"`
}

type seedState struct {
	Name   string     `yaml:"name"`
	Cities []seedCity `yaml:"cities"`
}

type seedCity struct {
	Name          string   `yaml:"name"`
	Neighborhoods []string `yaml:"neighborhoods"`
}

type seedStats struct {
	States        int
	Cities        int
	Neighborhoods int
}

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a state/city/neighborhood hierarchy from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedPath)
		if err != nil {
			return eris.Wrap(err, "seed: open file")
		}
		defer f.Close() //nolint:errcheck

		env, err := initEnv(cmd.Context(), cfg, "store")
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := seedHierarchy(cmd.Context(), env.Service, f)
		if err != nil {
			return err
		}
		zap.L().Info("seed complete",
			zap.Int("states", stats.States),
			zap.Int("cities", stats.Cities),
			zap.Int("neighborhoods", stats.Neighborhoods),
		)
		return nil
	},
}

// seedHierarchy upserts every entry in r through svc. Upserts are idempotent,
// so a file can be loaded repeatedly.
func seedHierarchy(ctx context.Context, svc *location.Service, r io.Reader) (seedStats, error) {
	var file seedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return seedStats{}, eris.Wrap(err, "seed: parse yaml")
	}

	var stats seedStats
	for _, s := range file.States {
		st := svc.AddState(ctx, s.Name)
		if !st.Success {
			return stats, eris.Wrapf(st.Err(), "seed: state %q", s.Name)
		}
		stats.States++

		for _, c := range s.Cities {
			city := svc.AddCity(ctx, c.Name, st.Data.ID)
			if !city.Success {
				return stats, eris.Wrapf(city.Err(), "seed: city %q", c.Name)
			}
			stats.Cities++

			for _, n := range c.Neighborhoods {
				hood := svc.AddNeighborhood(ctx, n, city.Data.ID)
				if !hood.Success {
					return stats, eris.Wrapf(hood.Err(), "seed: neighborhood %q", n)
				}
				stats.Neighborhoods++
			}
		}
	}
	return stats, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "file", "", "path to the YAML hierarchy")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
