package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/aelpxy/wikibak/pkg/models"
)

// EnvConfigPath overrides the location of the config file.
const EnvConfigPath = "WIKIBAK_CONFIG"

type ConfigManager struct {
	configPath string
	config     *models.GlobalConfig
}

func NewConfigManager() (*ConfigManager, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return NewConfigManagerAt(p)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewConfigManagerAt(filepath.Join(homeDir, ".wikibak", "config.toml"))
}

func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
	}

	if err := cm.Load(); err != nil {
		if os.IsNotExist(err) {
			cm.config = models.DefaultGlobalConfig()
			return cm, nil
		}
		return nil, err
	}

	return cm, nil
}

func (cm *ConfigManager) Load() error {
	if _, err := os.Stat(cm.configPath); err != nil {
		return err
	}

	config := models.DefaultGlobalConfig()
	if _, err := toml.DecodeFile(cm.configPath, config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	config.Fill()

	cm.config = config
	return nil
}

func (cm *ConfigManager) Save() error {
	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cm.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := utils.AtomicWriteFile(cm.configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (cm *ConfigManager) GetConfig() *models.GlobalConfig {
	return cm.config
}

func (cm *ConfigManager) Path() string {
	return cm.configPath
}
