package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

// Settings contains all settings of the fake entity server.
type Settings struct {
	Network struct {
		// Address is the address the server listens on, such as ":19132".
		Address string
		// Name is the name shown in the server list.
		Name string
	}
	Entities struct {
		// Count is the amount of fake entities spawned.
		Count int
		// Type is the entity type identifier of the entities, such as "minecraft:zombie".
		Type string
		// Global makes the entities visible to every player, regardless of distance.
		Global bool
		// ViewDistance is the distance in blocks within which players are shown an entity.
		ViewDistance float64
		// TickInterval is the interval in milliseconds between two movement updates.
		TickInterval int
		// Radius is the radius in blocks of the circle the entities walk.
		Radius float64
		// VelocityScale is the factor applied to movement deltas for velocity hints. Zero uses the default.
		VelocityScale float64
	}
	Debug struct {
		// LogLevel is one of "debug", "info", "warn" or "error".
		LogLevel string
		// StatsViewAddress enables the runtime statistics viewer on the address if not empty.
		StatsViewAddress string
		// SentryDSN enables error reporting to sentry if not empty.
		SentryDSN string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Network.Address = ":19132"
	s.Network.Name = "Fake Entities"

	s.Entities.Count = 4
	s.Entities.Type = "minecraft:zombie"
	s.Entities.ViewDistance = 64
	s.Entities.TickInterval = 50
	s.Entities.Radius = 6

	s.Debug.LogLevel = "info"
	return s
}

// Tick returns the entity tick interval as a time.Duration.
func (s Settings) Tick() time.Duration {
	if s.Entities.TickInterval <= 0 {
		return time.Second / 20
	}
	return time.Duration(s.Entities.TickInterval) * time.Millisecond
}

// Level returns the slog level matching the configured log level, defaulting to slog.LevelInfo.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.Debug.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %v", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %v", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their defaults.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	return settings, nil
}
