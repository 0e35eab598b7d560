// Package config loads the hunter configuration: defaults first, then an
// optional YAML file, then environment overrides for secrets and
// deployment-specific values. A .env file is honored when present.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SMTP holds the notification sink settings. Sender credentials come from
// the environment, never from the YAML file.
type SMTP struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Sender    string `yaml:"-"`
	Password  string `yaml:"-"`
	Recipient string `yaml:"recipient"`
}

type Config struct {
	// Collection
	ScrapeURL      string   `yaml:"scrape_url"`
	ScrapeKeywords []string `yaml:"scrape_keywords"`
	UserAgent      string   `yaml:"user_agent"`

	// Match-stage vocabularies. These are distinct from ScrapeKeywords:
	// collection filters on the broad list, the match pipeline on the
	// role/entry-level/excluded sets.
	RoleKeywords       []string `yaml:"role_keywords"`
	EntryLevelKeywords []string `yaml:"entry_level_keywords"`
	ExcludedKeywords   []string `yaml:"excluded_keywords"`

	// Matching
	MatchThreshold         float64 `yaml:"match_threshold"`
	NgramMin               int     `yaml:"ngram_min"`
	NgramMax               int     `yaml:"ngram_max"`
	RetentionWindowSeconds int     `yaml:"retention_window_seconds"`

	// Reference dataset
	RosterPath          string `yaml:"roster_path"`
	RosterCompanyColumn string `yaml:"roster_company_column"`

	// Persistence: DatabaseURL selects the Postgres store when set,
	// otherwise records live in the JSON file at StatePath.
	StatePath   string `yaml:"state_path"`
	DatabaseURL string `yaml:"-"`

	// Scheduling and API
	Schedule   string `yaml:"schedule"`
	ListenAddr string `yaml:"listen_addr"`

	SMTP SMTP `yaml:"smtp"`
}

// Default returns the configuration the original deployment ran with.
func Default() *Config {
	return &Config{
		ScrapeURL: "https://www.linkedin.com/jobs/search/?f_TPR=r3600&f_E=1%2C2&keywords=data%20science%20entry%20level%20OR%20data%20analyst%20junior%20OR%20ML%20engineer%20new%20grad",
		ScrapeKeywords: []string{
			"data science", "data scientist", "data analyst", "machine learning",
			"ml engineer", "business analyst", "research analyst", "junior",
			"entry level", "new grad", "associate", "python", "sql", "analytics",
		},
		UserAgent: "sponsorhunt-bot/1.0",
		RoleKeywords: []string{
			"data scientist", "data science", "data analyst", "business analyst",
			"research analyst", "machine learning", "ml engineer", "ai engineer",
			"analytics", "statistician", "quantitative analyst", "insights analyst",
		},
		EntryLevelKeywords: []string{
			"entry level", "junior", "associate", "new grad", "graduate",
			"fresher", "trainee", "intern", "level 1", "i ", " i)", "entry-level",
		},
		ExcludedKeywords: []string{
			"senior", "sr.", "lead", "principal", "director", "manager", "head of",
			"5+ years", "4+ years", "3+ years", "experienced", "expert",
		},
		MatchThreshold:         0.5,
		NgramMin:               2,
		NgramMax:               4,
		RetentionWindowSeconds: 3600,
		RosterPath:             "data/sponsors.csv",
		RosterCompanyColumn:    "Employer (Petitioner) Name",
		StatePath:              "data/database.json",
		Schedule:               "@every 1h",
		ListenAddr:             ":8080",
		SMTP: SMTP{
			Host: "smtp.gmail.com",
			Port: 587,
		},
	}
}

// Load builds the effective configuration. A missing config file is fine;
// defaults plus environment carry a fresh checkout.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		cfg.SMTP.Sender = v
	}
	if v := os.Getenv("SENDER_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("RECIPIENT_EMAIL"); v != "" {
		cfg.SMTP.Recipient = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
}

func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("config: match_threshold %v outside [0,1]", c.MatchThreshold)
	}
	if c.NgramMin < 1 || c.NgramMax < c.NgramMin {
		return fmt.Errorf("config: invalid ngram range (%d, %d)", c.NgramMin, c.NgramMax)
	}
	if c.RetentionWindowSeconds <= 0 {
		return fmt.Errorf("config: retention_window_seconds must be positive")
	}
	if c.ScrapeURL == "" {
		return fmt.Errorf("config: scrape_url is required")
	}
	if c.RosterPath == "" {
		return fmt.Errorf("config: roster_path is required")
	}
	if c.DatabaseURL == "" && c.StatePath == "" {
		return fmt.Errorf("config: either state_path or DATABASE_URL is required")
	}
	return nil
}
