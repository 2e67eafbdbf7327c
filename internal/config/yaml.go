// SPDX-License-Identifier: MIT
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the file at path. If path is empty it
// searches the default locations ("swi_config.json", "swi_config.yaml"). If no
// file is found, it uses built-in defaults. After loading defaults or the file,
// it applies environment variable overrides and validates the final
// configuration.
//
// Files ending in .json are decoded as JSON, everything else as YAML.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"swi_config.json",
			"swi_config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w: %v", ErrInvalidConfiguration, err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	applog.Debugf("Config: Loaded %s", path)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies SWI_* environment variables on top of the loaded
// configuration. Unparseable values are ignored with a warning.
func (cfg *Config) applyEnvOverrides() {
	// SWI_USE_SPEAKER_OR_MIC
	if val, ok := os.LookupEnv("SWI_USE_SPEAKER_OR_MIC"); ok {
		cfg.UseSpeakerOrMic = val
		applog.Infof("Config: Overriding UseSpeakerOrMic from env: %s", val)
	}

	// SWI_INPUT_BLOCK_TIME
	if val, ok := os.LookupEnv("SWI_INPUT_BLOCK_TIME"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.InputBlockTimeInSeconds = fVal
			applog.Infof("Config: Overriding InputBlockTimeInSeconds from env: %v", fVal)
		} else {
			applog.Warnf("Config: Ignoring SWI_INPUT_BLOCK_TIME=%q: %v", val, err)
		}
	}

	// SWI_LOG_LEVEL
	if val, ok := os.LookupEnv("SWI_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}

	// SWI_{WEBSOCKET,UDP}_{...}
	// These are specific to the transport layer.

	if val, ok := os.LookupEnv("SWI_WEBSOCKET_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			applog.Infof("Config: Overriding Transport.WebSocketEnabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("SWI_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			applog.Infof("Config: Overriding Transport.UDPEnabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("SWI_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Infof("Config: Overriding Transport.UDPTargetAddress from env: %s", val)
	}
}
