package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Defaults struct {
		WorkspaceDir string `toml:"workspace_dir"`
		AutoApprove  bool   `toml:"auto_approve"`
	} `toml:"defaults"`
	Parser struct {
		// LooseFallback enables the eager last-resort extraction
		// strategy. On by default to match upstream behavior.
		LooseFallback bool `toml:"loose_fallback"`
	} `toml:"parser"`
	Audit struct {
		Enabled bool   `toml:"enabled"`
		DBPath  string `toml:"db_path"`
	} `toml:"audit"`
	Mirror struct {
		Watch bool `toml:"watch"`
	} `toml:"mirror"`
}

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fileops", "config.toml")
}

func Load() (*Config, error) {
	path := GetConfigPath()
	var cfg Config

	cfg.Defaults.WorkspaceDir = "."
	cfg.Defaults.AutoApprove = false
	cfg.Parser.LooseFallback = true
	cfg.Audit.Enabled = true
	cfg.Audit.DBPath = "fileops.db"
	cfg.Mirror.Watch = false

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return &cfg, err
}

func (c *Config) Save() error {
	path := GetConfigPath()
	os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
