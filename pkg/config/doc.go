// Package config handles configuration management for specinit.
//
// Configuration is layered with koanf. Later layers override earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. user config ($XDG_CONFIG_HOME/specinit/config.toml)
//  3. project config (.specinit.toml in the project root)
//  4. answers file (--answers, TOML or YAML)
//  5. SPECINIT_* environment variables
//  6. command-line flags
//
// Environment variables map to keys by lowercasing and turning the first
// underscore after the prefix into a dot, so SPECINIT_ANSWERS_AUTHOR_NAME
// sets answers.author_name.
package config
