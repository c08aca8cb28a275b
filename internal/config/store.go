package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/hnrobert/ttylogin/internal/hostfs"
)

const envPrefix = "TTYLOGIN"

type Login struct {
	UserFile      string `mapstructure:"user_file"`
	ShadowFile    string `mapstructure:"shadow_file"`
	GroupFile     string `mapstructure:"group_file"`
	ShellsFile    string `mapstructure:"shells_file"`
	SessionFile   string `mapstructure:"session_file"`
	SelectionFile string `mapstructure:"selection_file"`
	SaveSelection bool   `mapstructure:"save_selection"`
	MinUID        int    `mapstructure:"min_uid"`
	IncludeRoot   bool   `mapstructure:"include_root"`
	SuFallback    bool   `mapstructure:"su_fallback"`
}

type Accounting struct {
	UtmpFile string `mapstructure:"utmp_file"`
	WtmpFile string `mapstructure:"wtmp_file"`
}

type Issue struct {
	File string `mapstructure:"file"`
}

type Log struct {
	// Dir enables daily log files under Dir/logs. Empty logs to stderr only.
	Dir string `mapstructure:"dir"`
}

type Launch struct {
	SpawnFailureDelay time.Duration `mapstructure:"spawn_failure_delay"`
	RegistryTimeout   time.Duration `mapstructure:"registry_timeout"`
}

type Config struct {
	Login      Login      `mapstructure:"login"`
	Accounting Accounting `mapstructure:"accounting"`
	Issue      Issue      `mapstructure:"issue"`
	Log        Log        `mapstructure:"log"`
	Launch     Launch     `mapstructure:"launch"`
}

// defaults are kept as plain values so the same table feeds viper and the
// generated config file.
var defaults = []struct {
	key   string
	value any
}{
	{"login.user_file", hostfs.EtcPasswd},
	{"login.shadow_file", hostfs.EtcShadow},
	{"login.group_file", hostfs.EtcGroup},
	{"login.shells_file", hostfs.EtcShells},
	{"login.session_file", hostfs.SessionsFile},
	{"login.selection_file", hostfs.SelectionFile},
	{"login.save_selection", true},
	{"login.min_uid", 1000},
	{"login.include_root", false},
	{"login.su_fallback", true},
	{"accounting.utmp_file", hostfs.RunUtmp},
	{"accounting.wtmp_file", hostfs.LogWtmp},
	{"issue.file", hostfs.IssueFile},
	{"log.dir", ""},
	{"launch.spawn_failure_delay", "1s"},
	{"launch.registry_timeout", "3s"},
}

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

func DefaultPath() string {
	return hostfs.ConfigFile
}

func (s *Store) Path() string { return s.path }

// Ensure writes the default configuration when no file exists yet.
func (s *Store) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hostfs.Exists(s.path) {
		return nil
	}
	b, err := DefaultTOML()
	if err != nil {
		return err
	}
	return hostfs.WriteFileAtomic(s.path, b, 0o644)
}

// Get loads the file layered over defaults and TTYLOGIN_* environment
// overrides (TTYLOGIN_LOGIN_MIN_UID and so on). A missing file yields the
// defaults.
func (s *Store) Get() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newViper()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", s.path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Login.MinUID < 0 {
		return errors.New("login.min_uid must not be negative")
	}
	if c.Launch.SpawnFailureDelay < 0 || c.Launch.RegistryTimeout < 0 {
		return errors.New("launch durations must not be negative")
	}
	return nil
}

// DefaultTOML renders the default configuration as a TOML document.
func DefaultTOML() ([]byte, error) {
	doc := map[string]map[string]any{}
	for _, d := range defaults {
		section, key, _ := strings.Cut(d.key, ".")
		if doc[section] == nil {
			doc[section] = map[string]any{}
		}
		doc[section][key] = d.value
	}
	return toml.Marshal(doc)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}
