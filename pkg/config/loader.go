package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	serrors "github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
)

// EnvPrefix is the prefix for configuration environment variables
const EnvPrefix = "SPECINIT_"

// LoadOptions controls which layers Load reads
type LoadOptions struct {
	// Root is the project root holding the optional .specinit.toml
	Root string
	// AnswersFile is an optional TOML or YAML file with pre-filled answers
	AnswersFile string
	// UserConfigPath overrides the XDG user config location
	UserConfigPath string
	// SkipUserConfig ignores the user config entirely
	SkipUserConfig bool
	// SkipEnv ignores SPECINIT_* environment variables
	SkipEnv bool
	// Overrides are flat koanf keys applied last (command-line flags)
	Overrides map[string]interface{}
}

// UserConfigPath returns $XDG_CONFIG_HOME/specinit/config.toml
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, "config.toml")
}

// Default returns the embedded defaults with no other layer applied
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipUserConfig: true, SkipEnv: true})
	if err != nil {
		// The embedded file is part of the binary; failing here is a build bug.
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load merges all configuration layers and unmarshals the result
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, serrors.Wrap(err, serrors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	if !opts.SkipUserConfig {
		path := opts.UserConfigPath
		if path == "" {
			path = UserConfigPath()
		}
		if err := loadOptionalFile(k, path); err != nil {
			return nil, err
		}
	}

	// 3. Project config
	if opts.Root != "" {
		if err := loadOptionalFile(k, filepath.Join(opts.Root, ProjectConfigFile)); err != nil {
			return nil, err
		}
	}

	// 4. Answers file
	if opts.AnswersFile != "" {
		if err := loadAnswersFile(k, opts.AnswersFile); err != nil {
			return nil, err
		}
	}

	// 5. Env vars
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, serrors.Wrap(err, serrors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 6. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, serrors.Wrap(err, serrors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, serrors.Wrap(err, serrors.ErrConfigParse, "failed to unmarshal configuration")
	}

	postProcessConfig(&cfg)

	logger.Debug().
		Int("tokens", len(cfg.Tokens)).
		Bool("legacy", cfg.Legacy.Enabled).
		Str("marker", cfg.Project.Marker).
		Msg("Configuration loaded")

	return &cfg, nil
}

// envKey maps SPECINIT_ANSWERS_AUTHOR_NAME to answers.author_name
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return serrors.Wrapf(err, serrors.ErrConfigLoad, "cannot access config %s", path)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return serrors.Wrapf(err, serrors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return nil
}

// loadAnswersFile accepts either a flat file of answer keys or a file with an
// [answers] table (which may also carry other config sections)
func loadAnswersFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return serrors.Newf(serrors.ErrConfigParse,
			"unsupported answers file %s (want .toml, .yaml or .yml)", path).WithDetail("path", path)
	}

	tmp := koanf.New(".")
	if err := tmp.Load(file.Provider(path), parser); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return serrors.Wrapf(err, serrors.ErrNotFound, "answers file %s not found", path)
		}
		return serrors.Wrapf(err, serrors.ErrConfigParse, "failed to parse answers file %s", path).
			WithDetail("path", path)
	}

	if tmp.Exists("answers") {
		return k.Merge(tmp)
	}
	return k.MergeAt(tmp, "answers")
}

func postProcessConfig(cfg *Config) {
	trim := func(a *Answers) {
		a.ProjectName = strings.TrimSpace(a.ProjectName)
		a.PackageName = strings.TrimSpace(a.PackageName)
		a.GithubOrg = strings.TrimSpace(a.GithubOrg)
		a.AuthorName = strings.TrimSpace(a.AuthorName)
		a.AuthorEmail = strings.TrimSpace(a.AuthorEmail)
		a.Year = strings.TrimSpace(a.Year)
	}
	trim(&cfg.Answers)
	trim(&cfg.Defaults)

	if cfg.Tokens == nil {
		cfg.Tokens = map[string]TokenConfig{}
	}
	if cfg.Scan.MaxFileSize <= 0 {
		cfg.Scan.MaxFileSize = 4 << 20
	}
}
