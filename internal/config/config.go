package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/mediatypes"
)

// FileName is the default name of the roots config file.
const FileName = "config.yaml"

// Paths enables the well-known roots.
type Paths struct {
	Documents bool `yaml:"documents" json:"documents"`
	Downloads bool `yaml:"downloads" json:"downloads"`
	Music     bool `yaml:"music" json:"music"`
	Pictures  bool `yaml:"pictures" json:"pictures"`
	Videos    bool `yaml:"videos" json:"videos"`
}

// Enabled reports whether the well-known root name is enabled.
func (p Paths) Enabled(name media.RootName) bool {
	switch name {
	case media.RootDocuments:
		return p.Documents
	case media.RootDownloads:
		return p.Downloads
	case media.RootMusic:
		return p.Music
	case media.RootPictures:
		return p.Pictures
	case media.RootVideos:
		return p.Videos
	}
	return false
}

func (p *Paths) set(name media.RootName, enabled bool) bool {
	switch name {
	case media.RootDocuments:
		p.Documents = enabled
	case media.RootDownloads:
		p.Downloads = enabled
	case media.RootMusic:
		p.Music = enabled
	case media.RootPictures:
		p.Pictures = enabled
	case media.RootVideos:
		p.Videos = enabled
	default:
		return false
	}
	return true
}

// Config is the roots configuration.
type Config struct {
	Paths Paths    `yaml:"paths" json:"paths"`
	More  []string `yaml:"more,omitempty" json:"more,omitempty"`
	// Extensions overrides the default allow-list when non-empty.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{}
}

// DefaultPath returns the roots config location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "media-browser", FileName), nil
}

// Load reads the config at path, returning Default if it does not exist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("Config file %s not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path through a temporary file and a rename.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// Validate returns a copy of cfg with extra folders that are not existing
// directories removed, duplicates dropped, and extensions normalized.
func Validate(cfg Config) Config {
	out := Config{Paths: cfg.Paths}

	seen := make(map[string]bool)
	for _, dir := range cfg.More {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			logging.Warn("Dropping folder %q: %v", dir, err)
			continue
		}
		if seen[abs] {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			logging.Warn("Dropping folder %q: not an existing directory", dir)
			continue
		}
		seen[abs] = true
		out.More = append(out.More, abs)
	}

	if len(cfg.Extensions) > 0 {
		out.Extensions = mediatypes.NewAllowList(cfg.Extensions).Sorted()
	}
	return out
}

// AllowList returns the configured extensions, or the defaults.
func (c Config) AllowList() mediatypes.AllowList {
	if len(c.Extensions) > 0 {
		return mediatypes.NewAllowList(c.Extensions)
	}
	return mediatypes.NewAllowList(mediatypes.DefaultExtensions())
}

// Roots returns the enabled roots that exist: the well-known roots in
// media.KnownRoots order, then the extra folders. A directory is only
// returned once.
func (c Config) Roots() []media.Rooted {
	var roots []media.Rooted
	seen := make(map[string]bool)

	add := func(name media.RootName, dir string) {
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logging.Debug("Skipping root %s: not an existing directory", dir)
			return
		}
		seen[dir] = true
		roots = append(roots, media.NewRooted(name, dir))
	}

	for _, name := range media.KnownRoots {
		if !c.Paths.Enabled(name) {
			continue
		}
		dir, err := KnownRootDir(name)
		if err != nil {
			logging.Warn("Cannot locate %s folder: %v", name, err)
			continue
		}
		add(name, dir)
	}
	for _, dir := range c.More {
		add("", dir)
	}
	return roots
}

var xdgVariables = map[media.RootName]string{
	media.RootDocuments: "XDG_DOCUMENTS_DIR",
	media.RootDownloads: "XDG_DOWNLOAD_DIR",
	media.RootMusic:     "XDG_MUSIC_DIR",
	media.RootPictures:  "XDG_PICTURES_DIR",
	media.RootVideos:    "XDG_VIDEOS_DIR",
}

// KnownRootDir returns the folder of a well-known root: the XDG user
// directory variable if set, otherwise the capitalized name under the
// home directory.
func KnownRootDir(name media.RootName) (string, error) {
	variable, ok := xdgVariables[name]
	if !ok {
		return "", fmt.Errorf("unknown root %q", name)
	}
	if dir := os.Getenv(variable); dir != "" {
		return os.ExpandEnv(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	s := string(name)
	return filepath.Join(home, strings.ToUpper(s[:1])+s[1:]), nil
}

// Set changes one setting addressed by key:
//
//	paths.<root>  true|false
//	more          comma-separated folders ("" clears)
//	extensions    comma-separated extensions ("" restores the defaults)
func (c *Config) Set(key, value string) error {
	if name, ok := strings.CutPrefix(key, "paths."); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
		}
		if !c.Paths.set(media.RootName(name), enabled) {
			return fmt.Errorf("unknown root %q", name)
		}
		return nil
	}

	switch key {
	case "more":
		c.More = splitList(value)
	case "extensions":
		c.Extensions = splitList(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func splitList(value string) []string {
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
