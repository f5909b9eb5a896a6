package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Host            string
	Port            int
	UpstreamURL     string
	UpstreamTimeout time.Duration
	Pace            time.Duration
	SeasonType      string
	PerMode         string
	RosterDB        string
	PlayersFile     string
	LogLevel        string
	Prod            bool
	SyncRoster      bool
	SyncSeason      string
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var envKeys = map[string]string{
	"host":             "HOST",
	"port":             "PORT",
	"upstream-url":     "NBA_STATS_URL",
	"upstream-timeout": "NBA_STATS_TIMEOUT",
	"pace":             "NBA_STATS_PACE",
	"season-type":      "NBA_SEASON_TYPE",
	"per-mode":         "NBA_PER_MODE",
	"roster-db":        "ROSTER_DB",
	"players-file":     "ROSTER_PLAYERS_FILE",
	"log-level":        "LOG_LEVEL",
	"prod":             "PROD",
	"sync-season":      "NBA_SYNC_SEASON",
}

var perModes = map[string]bool{
	"PerGame": true,
	"Totals":  true,
	"Per36":   true,
}

// LoadConfig resolves flags, then environment (including an optional .env
// file in the working directory), then defaults.
func LoadConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("courtside", flag.ContinueOnError)
	fs.String("host", "0.0.0.0", "listen host")
	fs.Int("port", 10000, "listen port")
	fs.String("upstream-url", "https://stats.nba.com/stats", "stats.nba.com base url")
	fs.Duration("upstream-timeout", 30*time.Second, "timeout for a single upstream request")
	fs.Duration("pace", time.Second, "minimum interval between upstream requests, 0 disables")
	fs.String("season-type", "Regular Season", "season type for team dashboards")
	fs.String("per-mode", "PerGame", "player stat mode: PerGame, Totals or Per36")
	fs.String("roster-db", "", "sqlite roster snapshot, empty uses the embedded snapshot")
	fs.String("players-file", "", "JSON player list in nba_api order, replaces the player roster when set")
	fs.String("log-level", "info", "log level")
	fs.BoolP("prod", "p", false, "designates production")
	fs.Bool("sync-roster", false, "refresh the player roster in --roster-db from stats.nba.com and exit")
	fs.String("sync-season", "2024-25", "season passed to commonallplayers during --sync-roster")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:            v.GetString("host"),
		Port:            v.GetInt("port"),
		UpstreamURL:     v.GetString("upstream-url"),
		UpstreamTimeout: v.GetDuration("upstream-timeout"),
		Pace:            v.GetDuration("pace"),
		SeasonType:      v.GetString("season-type"),
		PerMode:         v.GetString("per-mode"),
		RosterDB:        v.GetString("roster-db"),
		PlayersFile:     v.GetString("players-file"),
		LogLevel:        v.GetString("log-level"),
		Prod:            v.GetBool("prod"),
		SyncRoster:      v.GetBool("sync-roster"),
		SyncSeason:      v.GetString("sync-season"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Pace < 0 {
		return fmt.Errorf("invalid pace %s", c.Pace)
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("invalid upstream timeout %s", c.UpstreamTimeout)
	}
	if !perModes[c.PerMode] {
		return fmt.Errorf("invalid per mode %q", c.PerMode)
	}
	if c.SyncRoster && c.RosterDB == "" {
		return fmt.Errorf("--sync-roster needs --roster-db")
	}
	return nil
}
