package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Source struct {
		BoardURL       string  `yaml:"board_url"`
		PageSize       int     `yaml:"page_size"`
		MaxPages       int     `yaml:"max_pages"`
		MaxNewEntries  int     `yaml:"max_new_entries"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"source"`

	Feed struct {
		File        string `yaml:"file"`
		Title       string `yaml:"title"`
		Link        string `yaml:"link"`
		Description string `yaml:"description"`
		Language    string `yaml:"language"`
		SelfURL     string `yaml:"self_url"`
		MinTitleLen int    `yaml:"min_title_len"`
	} `yaml:"feed"`

	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
