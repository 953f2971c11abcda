package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanrumi/location-picker/internal/model"
)

const seedYAML = `
states:
  - name: Brazil
    cities:
      - name: Rio de Janeiro
        neighborhoods: [Leblon, Ipanema]
      - name: Belem
  - name: Argentina
    cities:
      - name: Cordoba
        neighborhoods: [Nueva Cordoba]
`

func TestSeedHierarchy(t *testing.T) {
	env, err := initEnv(context.Background(), sqliteConfig(t), "store")
	require.NoError(t, err)
	defer env.Close()
	ctx := context.Background()

	stats, err := seedHierarchy(ctx, env.Service, strings.NewReader(seedYAML))
	require.NoError(t, err)
	assert.Equal(t, seedStats{States: 2, Cities: 3, Neighborhoods: 3}, stats)

	// Loading the same file again creates no new rows.
	_, err = seedHierarchy(ctx, env.Service, strings.NewReader(seedYAML))
	require.NoError(t, err)

	snap := env.Service.Snapshot(ctx)
	require.True(t, snap.Success)
	assert.Len(t, snap.Data.States, 2)
	assert.Len(t, snap.Data.Cities, 3)
	assert.Len(t, snap.Data.Neighborhoods, 3)

	var out bytes.Buffer
	require.NoError(t, renderTree(&out, snap.Data, 0))
	assert.Contains(t, out.String(), "Brazil")
	assert.Contains(t, out.String(), "    Ipanema")
}

func TestSeedHierarchy_Empty(t *testing.T) {
	env, err := initEnv(context.Background(), sqliteConfig(t), "store")
	require.NoError(t, err)
	defer env.Close()

	stats, err := seedHierarchy(context.Background(), env.Service, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestSeedHierarchy_BlankName(t *testing.T) {
	env, err := initEnv(context.Background(), sqliteConfig(t), "store")
	require.NoError(t, err)
	defer env.Close()

	_, err = seedHierarchy(context.Background(), env.Service, strings.NewReader("states:\n  - name: \"  \"\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSeedHierarchy_BadYAML(t *testing.T) {
	env, err := initEnv(context.Background(), sqliteConfig(t), "store")
	require.NoError(t, err)
	defer env.Close()

	_, err = seedHierarchy(context.Background(), env.Service, strings.NewReader("states: [name"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed: parse yaml")
}
