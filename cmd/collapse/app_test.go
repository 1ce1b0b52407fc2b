package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuesim/collapse/internal/storage"
	"github.com/rescuesim/collapse/internal/storage/memory"
	"github.com/rescuesim/collapse/pkg/core"
)

const testScenario = `name: north-road
buildings:
  - id: 1
    floors: 2
    code: wood
    edges:
      - [0, 0, 20000, 0]
      - [20000, 0, 20000, 10000]
      - [20000, 10000, 0, 10000]
      - [0, 10000, 0, 0]
roads:
  - id: 2
    edges:
      - [2000, 10500, 18000, 10500]
      - [18000, 10500, 18000, 12500]
      - [18000, 12500, 2000, 12500]
      - [2000, 12500, 2000, 10500]
`

const testConfig = `{
	"logsDir": %q,
	"random": { "seed": 7 },
	"storage": { "type": "memory", "memory": { "outputDir": %q, "compressOutput": false } },
	"collapse": {
		"wood":     { "p-destroyed": 1, "p-severe": 0, "p-moderate": 0, "p-slight": 0 },
		"steel":    { "p-destroyed": 1, "p-severe": 0, "p-moderate": 0, "p-slight": 0 },
		"concrete": { "p-destroyed": 1, "p-severe": 0, "p-moderate": 0, "p-slight": 0 },
		"slight":    { "mean": 20,  "sd": 0 },
		"moderate":  { "mean": 40,  "sd": 0 },
		"severe":    { "mean": 70,  "sd": 0 },
		"destroyed": { "mean": 100, "sd": 0 },
		"create-road-blockages": true,
		"floor-height": 3,
		"wall-extent": { "min": 0.5, "max": 0.5 }
	}
}`

func setupRun(t *testing.T) (options, string) {
	t.Helper()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	outDir := filepath.Join(dir, "runs")
	cfg := []byte(fmt.Sprintf(testConfig, filepath.Join(dir, "logs"), outDir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collapse.cfg.json"), cfg, 0644))
	scenarioPath := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(testScenario), 0644))

	return options{
		ConfigDir: dir,
		Scenario:  scenarioPath,
		Steps:     3,
		Console:   io.Discard,
	}, outDir
}

func TestRun_RecordsSteps(t *testing.T) {
	opts, _ := setupRun(t)

	a, err := newApp(t.Context(), opts)
	require.NoError(t, err)
	defer a.close()

	require.NoError(t, a.run(t.Context(), opts.Steps))

	b := a.world.Buildings()[0]
	assert.Equal(t, 100, b.BrokennessOrZero())

	road := a.world.Roads()[0]
	require.Len(t, road.Blockades, 1)
	e, ok := a.world.Entity(road.Blockades[0])
	require.True(t, ok)
	assert.Equal(t, 32, e.(*core.Blockade).RepairCost)

	mem, ok := a.backend.(*memory.Backend)
	require.True(t, ok)
	steps := mem.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, []core.BrokennessUpdate{{BuildingID: 1, Brokenness: 100}}, steps[0].BrokennessUpdates)
	assert.Len(t, steps[0].Blockades, 1)
	assert.Empty(t, steps[1].BrokennessUpdates)
	assert.Empty(t, steps[2].Blockades)
}

func TestRun_ExportsJSON(t *testing.T) {
	opts, _ := setupRun(t)

	a, err := newApp(t.Context(), opts)
	require.NoError(t, err)
	defer a.close()
	require.NoError(t, a.run(t.Context(), opts.Steps))

	exp, ok := a.backend.(storage.Exportable)
	require.True(t, ok)
	data, err := os.ReadFile(exp.ExportedFilePath())
	require.NoError(t, err)

	var out memory.RunExport
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "north-road", out.Name)
	assert.Equal(t, int64(7), out.Seed)
	require.Len(t, out.Steps, 3)
	require.Len(t, out.Steps[0].Blockades, 1)
	assert.Equal(t, int32(2), out.Steps[0].Blockades[0].Road)
}

func TestRun_NameOverride(t *testing.T) {
	opts, _ := setupRun(t)
	opts.Name = "override"

	a, err := newApp(t.Context(), opts)
	require.NoError(t, err)
	defer a.close()
	assert.Equal(t, "override", a.name)
}

func TestNewApp_MissingScenario(t *testing.T) {
	opts, _ := setupRun(t)
	opts.Scenario = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := newApp(t.Context(), opts)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewApp_MissingConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	_, err := newApp(t.Context(), options{ConfigDir: t.TempDir(), Console: io.Discard})
	assert.Error(t, err)
}
