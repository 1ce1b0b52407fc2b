package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuesim/collapse/pkg/core"
)

const fullConfig = `{
	"logLevel": "debug",
	"random": { "seed": 42 },
	"collapse": {
		"wood":     { "p-destroyed": 0.1,  "p-severe": 0.2,  "p-moderate": 0.3,  "p-slight": 0.2 },
		"steel":    { "p-destroyed": 0.05, "p-severe": 0.1,  "p-moderate": 0.2,  "p-slight": 0.3 },
		"concrete": { "p-destroyed": 0.01, "p-severe": 0.04, "p-moderate": 0.15, "p-slight": 0.3 },
		"slight":    { "mean": 15, "sd": 5 },
		"moderate":  { "mean": 35, "sd": 5 },
		"severe":    { "mean": 65, "sd": 5 },
		"destroyed": { "mean": 95, "sd": 5 },
		"create-road-blockages": true,
		"floor-height": 3,
		"wall-extent": { "min": 0.5, "max": 1.0 }
	}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, fullConfig)))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, int64(42), viper.GetInt64("random.seed"))
	assert.Equal(t, 0.1, viper.GetFloat64("collapse.wood.p-destroyed"))
	assert.True(t, viper.GetBool("collapse.create-road-blockages"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, 100.0, viper.GetFloat64("collapse.flatness"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./runs", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "collapse", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "collapse", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("geo.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetCollapseConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, fullConfig)))

	cfg, err := GetCollapseConfig()
	require.NoError(t, err)

	assert.Len(t, cfg.Stats, len(core.BuildingCodes))
	assert.Equal(t, 0.2, cfg.Stats[core.Wood].Severe)
	assert.Equal(t, 0.01, cfg.Stats[core.Concrete].Destroyed)
	assert.Equal(t, 35.0, cfg.Moderate.Mean)
	assert.Equal(t, 5.0, cfg.Destroyed.SD)
	assert.True(t, cfg.CreateRoadBlockage)
	assert.Equal(t, 3.0, cfg.FloorHeight)
	assert.Equal(t, 0.5, cfg.WallExtentMin)
	assert.Equal(t, 1.0, cfg.WallExtentMax)
	assert.Equal(t, 100.0, cfg.Flatness)
	assert.Equal(t, int64(42), cfg.Seed)

	p := cfg.DamageParams()
	assert.Equal(t, cfg.Stats, p.Stats)
	assert.Equal(t, cfg.Slight, p.Slight)
}

func TestGetCollapseConfig_MissingKeys(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"collapse": {"floor-height": 3}}`)))

	_, err := GetCollapseConfig()
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "collapse.wood.p-destroyed")
	assert.Contains(t, err.Error(), "collapse.wall-extent.max")
	assert.NotContains(t, err.Error(), "collapse.floor-height")
}

func TestGetCollapseConfig_InvertedExtent(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, fullConfig)))
	viper.Set("collapse.wall-extent.min", 2.0)

	_, err := GetCollapseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wall-extent")
}

func TestRequiredKeys(t *testing.T) {
	keys := RequiredKeys()
	assert.Len(t, keys, 4*len(core.BuildingCodes)+12)
	assert.Contains(t, keys, "collapse.steel.p-slight")
	assert.Contains(t, keys, "collapse.severe.sd")
	assert.Contains(t, keys, "collapse.create-road-blockages")
}

func TestGetStorageConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", "/tmp/c.db")
	viper.Set("storage.memory.outputDir", "/tmp/out")

	cfg := GetStorageConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "/tmp/c.db", cfg.SQLite.Path)
	assert.Equal(t, "/tmp/out", cfg.Memory.OutputDir)
	assert.False(t, cfg.Memory.CompressOutput)
}

func TestGetGeoConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("geo.enabled", true)
	viper.Set("geo.originX", 1000.5)

	cfg := GetGeoConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000.5, cfg.OriginX)
	assert.Equal(t, 0.0, cfg.OriginY)
}

func TestGetDBConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"db": {"host": "db.internal", "port": "6543"}}`)))

	cfg := GetDBConfig()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "6543", cfg.Port)
	assert.Equal(t, "postgres", cfg.Username)
	assert.Equal(t, "collapse", cfg.Database)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"influx": {"enabled": true, "protocol": "https"}}`)))

	cfg := GetInfluxConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://localhost:8086", cfg.URL())
	assert.Equal(t, "collapse", cfg.Bucket)
	assert.Equal(t, "rescue-sim", cfg.Org)
}

func TestGetGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("graylog.enabled", true)
	viper.Set("graylog.address", "gelf.internal:12201")

	cfg := GetGraylogConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "gelf.internal:12201", cfg.Address)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}
