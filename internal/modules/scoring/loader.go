package scoring

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Loader reads scoring configurations from TOML files.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "scoring_config_loader").Logger(),
	}
}

// LoadFromFile loads a scoring configuration from a TOML file. Sections
// absent from the file keep their documented defaults. The result is
// validated before it is returned, so a bad file fails here and never
// mid-batch.
func (l *Loader) LoadFromFile(configPath string) (Config, error) {
	l.log.Info().Str("path", configPath).Msg("Loading scoring configuration")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("scoring config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring config: %w", err)
	}

	config, err := l.LoadFromString(string(data))
	if err != nil {
		return Config{}, err
	}

	l.log.Info().
		Int("health_bands", len(config.HealthBands)).
		Int("urgency_horizon_days", config.UrgencyHorizonDays).
		Msg("Scoring configuration loaded")

	return config, nil
}

// LoadFromString loads a scoring configuration from a TOML string, filling
// omitted sections from the defaults.
func (l *Loader) LoadFromString(tomlString string) (Config, error) {
	var fileCfg Config
	meta, err := toml.Decode(tomlString, &fileCfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	config := Default()
	if meta.IsDefined("health_weights") {
		config.Health = fileCfg.Health
	}
	if meta.IsDefined("opportunity_weights") {
		config.Opportunity = fileCfg.Opportunity
	}
	if meta.IsDefined("health_bands") {
		config.HealthBands = fileCfg.HealthBands
	}
	if meta.IsDefined("alerts") {
		config.Alerts = fileCfg.Alerts
	}
	if meta.IsDefined("urgency_horizon_days") {
		config.UrgencyHorizonDays = fileCfg.UrgencyHorizonDays
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}
