package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"nescore/emu/log"
)

type Config struct {
	General GeneralConfig `toml:"general"`
	Run     RunConfig     `toml:"run"`
	Trace   TraceConfig   `toml:"trace"`
}

type GeneralConfig struct {
	// LogModules lists the modules for which debug logs are enabled.
	LogModules []string `toml:"log_modules"`
}

// LogMask returns the mask of the configured log modules.
func (g GeneralConfig) LogMask() (log.ModuleMask, error) {
	var mask log.ModuleMask
	for _, name := range g.LogModules {
		mod, ok := log.ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %q", name)
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

type RunConfig struct {
	StartPC   *uint16 `toml:"start_pc"`   // if set, overrides the reset vector
	StopAddr  *uint16 `toml:"stop_addr"`  // if set, halt when PC reaches it
	MaxCycles int64   `toml:"max_cycles"` // 0 means no limit
	Nestest   bool    `toml:"nestest"`    // nestest automation mode
}

type TraceConfig struct {
	Enabled    bool   `toml:"enabled"`
	Output     string `toml:"output"` // FILE|stdout|stderr
	PPUColumns bool   `toml:"ppu_columns"`
}

// Nestest automation mode entry point and trap address.
const (
	NestestStart = 0xC000
	NestestStop  = 0x0800
)

func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			MaxCycles: 100_000_000,
		},
		Trace: TraceConfig{
			Output:     "stdout",
			PPUColumns: true,
		},
	}
}

const cfgFilename = "config.toml"

// ConfigPath returns the path of the configuration file, in the user
// configuration directory.
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nescore", cfgFilename), nil
}

// LoadConfig loads the configuration at path. Missing fields keep their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").
			String("key", key.String()).
			String("file", path).
			End()
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the nescore config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("failed to load config, using defaults").
				Error("err", err).
				End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg at path, creating the parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
