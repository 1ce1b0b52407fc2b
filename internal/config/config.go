package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rescuesim/collapse/internal/damage"
	"github.com/rescuesim/collapse/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "collapse.cfg.json"

const prefix = "collapse."

// ErrMissingConfig is returned when a required collapse parameter is not set.
var ErrMissingConfig = errors.New("missing required config keys")

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("random.seed", 1)

	viper.SetDefault("collapse.flatness", 100.0)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./runs")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./runs/collapse.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "collapse")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "rescue-sim")
	viper.SetDefault("influx.bucket", "collapse")
	viper.SetDefault("influx.backupPath", "./logs/collapse_metrics.lp.gz")

	viper.SetDefault("geo.enabled", false)
	viper.SetDefault("geo.originX", 0.0)
	viper.SetDefault("geo.originY", 0.0)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// RequiredKeys lists the collapse parameters that have no default.
func RequiredKeys() []string {
	keys := make([]string, 0, 4*len(core.BuildingCodes)+12)
	for _, code := range core.BuildingCodes {
		for _, suffix := range []string{"p-destroyed", "p-severe", "p-moderate", "p-slight"} {
			keys = append(keys, prefix+code.String()+"."+suffix)
		}
	}
	for _, d := range []damage.CollapseDegree{damage.Slight, damage.Moderate, damage.Severe, damage.Destroyed} {
		keys = append(keys, prefix+d.Lower()+".mean", prefix+d.Lower()+".sd")
	}
	return append(keys,
		prefix+"create-road-blockages",
		prefix+"floor-height",
		prefix+"wall-extent.min",
		prefix+"wall-extent.max",
	)
}

// Validate fails if any required collapse parameter is missing.
func Validate() error {
	var missing []string
	for _, key := range RequiredKeys() {
		if !viper.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// CollapseConfig holds the collapse model parameters.
type CollapseConfig struct {
	Stats              map[core.BuildingCode]damage.Probabilities
	Slight             damage.Distribution
	Moderate           damage.Distribution
	Severe             damage.Distribution
	Destroyed          damage.Distribution
	CreateRoadBlockage bool
	FloorHeight        float64 // metres
	WallExtentMin      float64
	WallExtentMax      float64
	Flatness           float64 // millimetres
	Seed               int64
}

// GetCollapseConfig validates and returns the collapse parameters.
func GetCollapseConfig() (CollapseConfig, error) {
	if err := Validate(); err != nil {
		return CollapseConfig{}, err
	}
	cfg := CollapseConfig{
		Stats:              make(map[core.BuildingCode]damage.Probabilities, len(core.BuildingCodes)),
		Slight:             distribution(damage.Slight),
		Moderate:           distribution(damage.Moderate),
		Severe:             distribution(damage.Severe),
		Destroyed:          distribution(damage.Destroyed),
		CreateRoadBlockage: viper.GetBool(prefix + "create-road-blockages"),
		FloorHeight:        viper.GetFloat64(prefix + "floor-height"),
		WallExtentMin:      viper.GetFloat64(prefix + "wall-extent.min"),
		WallExtentMax:      viper.GetFloat64(prefix + "wall-extent.max"),
		Flatness:           viper.GetFloat64(prefix + "flatness"),
		Seed:               viper.GetInt64("random.seed"),
	}
	for _, code := range core.BuildingCodes {
		s := prefix + code.String()
		cfg.Stats[code] = damage.Probabilities{
			Destroyed: viper.GetFloat64(s + ".p-destroyed"),
			Severe:    viper.GetFloat64(s + ".p-severe"),
			Moderate:  viper.GetFloat64(s + ".p-moderate"),
			Slight:    viper.GetFloat64(s + ".p-slight"),
		}
	}
	if cfg.WallExtentMax < cfg.WallExtentMin {
		return CollapseConfig{}, fmt.Errorf("wall-extent.max (%v) is below wall-extent.min (%v)", cfg.WallExtentMax, cfg.WallExtentMin)
	}
	return cfg, nil
}

// DamageParams converts the config into damage model parameters.
func (c CollapseConfig) DamageParams() damage.Params {
	return damage.Params{
		Stats:     c.Stats,
		Slight:    c.Slight,
		Moderate:  c.Moderate,
		Severe:    c.Severe,
		Destroyed: c.Destroyed,
	}
}

func distribution(d damage.CollapseDegree) damage.Distribution {
	return damage.Distribution{
		Mean: viper.GetFloat64(prefix + d.Lower() + ".mean"),
		SD:   viper.GetFloat64(prefix + d.Lower() + ".sd"),
	}
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// URL returns the server address of the InfluxDB instance.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GraylogConfig holds the GELF sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GeoConfig holds the world georeference
type GeoConfig struct {
	Enabled bool
	OriginX float64
	OriginY float64
}

// GetGeoConfig returns the georeference settings.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		Enabled: viper.GetBool("geo.enabled"),
		OriginX: viper.GetFloat64("geo.originX"),
		OriginY: viper.GetFloat64("geo.originY"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
