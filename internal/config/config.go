package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Features toggles the optional panel inputs.
type Features struct {
	NameInput    bool
	MessageInput bool
}

// Config holds everything pushpanel needs at startup.
type Config struct {
	ServerURL    string
	PageURL      string
	WorkerScript string
	PushService  string
	StatePath    string
	LogFile      string
	Debug        bool
	Theme        string
	Features     Features
}

const (
	defaultConfigPath   = "~/.config/pushpanel/config.toml"
	defaultStatePath    = "~/.local/share/pushpanel/profile.toml"
	defaultLogFile      = "~/.local/share/pushpanel/pushpanel.log"
	defaultServerURL    = "http://127.0.0.1:3000"
	defaultWorkerScript = "./sw.js"
	defaultPushService  = "https://push.localhost/send"
	defaultTheme        = "Nightfox"
)

// logDisabled as log_file turns file logging off.
const logDisabled = "-"

// Environment variables that override file values.
const (
	EnvServerURL    = "PUSHPANEL_SERVER_URL"
	EnvPageURL      = "PUSHPANEL_PAGE_URL"
	EnvWorkerScript = "PUSHPANEL_WORKER_SCRIPT"
	EnvPushService  = "PUSHPANEL_PUSH_SERVICE"
	EnvStatePath    = "PUSHPANEL_STATE_PATH"
	EnvLogFile      = "PUSHPANEL_LOG_FILE"
	EnvDebug        = "PUSHPANEL_DEBUG"
	EnvTheme        = "PUSHPANEL_THEME"
	EnvNameInput    = "PUSHPANEL_NAME_INPUT"
	EnvMessageInput = "PUSHPANEL_MESSAGE_INPUT"
)

type fileConfig struct {
	ServerURL    string `toml:"server_url"`
	PageURL      string `toml:"page_url"`
	WorkerScript string `toml:"worker_script"`
	PushService  string `toml:"push_service"`
	StatePath    string `toml:"state_path"`
	LogFile      string `toml:"log_file"`
	Debug        bool   `toml:"debug"`
	Theme        string `toml:"theme"`
	Features     struct {
		NameInput    *bool `toml:"name_input"`
		MessageInput *bool `toml:"message_input"`
	} `toml:"features"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:    defaultServerURL,
		WorkerScript: defaultWorkerScript,
		PushService:  defaultPushService,
		StatePath:    defaultStatePath,
		LogFile:      defaultLogFile,
		Theme:        defaultTheme,
		Features:     Features{NameInput: true, MessageInput: true},
	}
}

// LoadDotenv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path (or the default location), applies
// environment overrides and normalizes the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if raw != nil {
		cfg.ServerURL = raw.ServerURL
		cfg.PageURL = raw.PageURL
		cfg.WorkerScript = raw.WorkerScript
		cfg.PushService = raw.PushService
		cfg.StatePath = raw.StatePath
		cfg.LogFile = raw.LogFile
		cfg.Debug = raw.Debug
		cfg.Theme = raw.Theme
		if raw.Features.NameInput != nil {
			cfg.Features.NameInput = *raw.Features.NameInput
		}
		if raw.Features.MessageInput != nil {
			cfg.Features.MessageInput = *raw.Features.MessageInput
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &raw, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvServerURL:    &cfg.ServerURL,
		EnvPageURL:      &cfg.PageURL,
		EnvWorkerScript: &cfg.WorkerScript,
		EnvPushService:  &cfg.PushService,
		EnvStatePath:    &cfg.StatePath,
		EnvLogFile:      &cfg.LogFile,
		EnvTheme:        &cfg.Theme,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		EnvDebug:        &cfg.Debug,
		EnvNameInput:    &cfg.Features.NameInput,
		EnvMessageInput: &cfg.Features.MessageInput,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

func (c *Config) normalize() error {
	c.ServerURL = orDefault(c.ServerURL, defaultServerURL)
	if !strings.Contains(c.ServerURL, "://") {
		c.ServerURL = "http://" + c.ServerURL
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if _, err := url.Parse(c.ServerURL); err != nil {
		return fmt.Errorf("parse server_url: %w", err)
	}

	// The worker is served alongside the page, which defaults to the server.
	c.PageURL = orDefault(c.PageURL, c.ServerURL)
	page, err := url.Parse(c.PageURL)
	if err != nil {
		return fmt.Errorf("parse page_url: %w", err)
	}
	if !page.IsAbs() {
		return fmt.Errorf("page_url %q must be absolute", c.PageURL)
	}

	c.WorkerScript = orDefault(c.WorkerScript, defaultWorkerScript)
	c.PushService = strings.TrimRight(orDefault(c.PushService, defaultPushService), "/")
	c.Theme = orDefault(c.Theme, defaultTheme)

	c.StatePath = mustExpand(orDefault(c.StatePath, defaultStatePath))
	switch strings.TrimSpace(c.LogFile) {
	case "":
		c.LogFile = mustExpand(defaultLogFile)
	case logDisabled:
		c.LogFile = ""
	default:
		c.LogFile = mustExpand(c.LogFile)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
