// Package prompt collects the replacement values for a run, either
// interactively through a Driver or from already-supplied answers.
package prompt

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/tokens"
)

type field struct {
	name    string
	message string
	help    string
	check   func(string) error
	get     func(*config.Answers) *string
}

var fields = []field{
	{
		name:    tokens.FieldProjectName,
		message: "Project name:",
		help:    "Human readable name, e.g. Beacon Spec",
		check:   tokens.ValidateProjectName,
		get:     func(a *config.Answers) *string { return &a.ProjectName },
	},
	{
		name:    tokens.FieldPackageName,
		message: "Package name:",
		help:    "Importable identifier: letters, digits and underscores",
		check:   tokens.ValidatePackageName,
		get:     func(a *config.Answers) *string { return &a.PackageName },
	},
	{
		name:    tokens.FieldGithubOrg,
		message: "GitHub organization:",
		help:    "Owner of the repository on GitHub",
		check:   tokens.ValidateGithubOrg,
		get:     func(a *config.Answers) *string { return &a.GithubOrg },
	},
	{
		name:    tokens.FieldAuthorName,
		message: "Author name:",
		check:   tokens.ValidateAuthorName,
		get:     func(a *config.Answers) *string { return &a.AuthorName },
	},
	{
		name:    tokens.FieldAuthorEmail,
		message: "Author email:",
		check:   tokens.ValidateAuthorEmail,
		get:     func(a *config.Answers) *string { return &a.AuthorEmail },
	},
	{
		name:    tokens.FieldYear,
		message: "Copyright year:",
		check:   tokens.ValidateYear,
		get:     func(a *config.Answers) *string { return &a.Year },
	},
}

// CollectConfiguration prompts for every answer in order. Valid seed values
// become the prompt defaults, otherwise defaults applies. When neither
// provides a package name it is derived from the project name just entered.
func CollectConfiguration(ctx context.Context, d Driver, seed, defaults config.Answers) (config.Answers, error) {
	logger := logging.GetLogger("prompt")

	var out config.Answers
	for _, f := range fields {
		def := *f.get(&seed)
		if def == "" || f.check(def) != nil {
			if def != "" {
				logger.Debug().Str("field", f.name).Str("value", def).Msg("Ignoring invalid seed value")
			}
			def = *f.get(&defaults)
		}
		if f.name == tokens.FieldPackageName && def == "" {
			if derived := tokens.DerivePackageName(out.ProjectName); derived != "" {
				def = derived
			}
		}

		value, err := d.Input(ctx, InputConfig{
			Message:   f.message,
			Default:   def,
			Help:      f.help,
			Validator: trimmed(f.check),
		})
		if err != nil {
			return config.Answers{}, translate(err)
		}
		*f.get(&out) = strings.TrimSpace(value)
	}

	if err := tokens.ValidateAnswers(out); err != nil {
		return config.Answers{}, err
	}
	return out, nil
}

// ResolveNonInteractive fills blank seed values from defaults and validates
// the result. A failure is INVALID_INPUT listing each bad field.
func ResolveNonInteractive(seed, defaults config.Answers) (config.Answers, error) {
	out := seed.Merge(defaults)
	if out.PackageName == "" {
		out.PackageName = tokens.DerivePackageName(out.ProjectName)
	}
	if err := tokens.ValidateAnswers(out); err != nil {
		return config.Answers{}, err
	}
	return out, nil
}

// ConfirmPlan shows the collected answers and asks whether to proceed.
// Declining returns false with a nil error.
func ConfirmPlan(ctx context.Context, d Driver, answers config.Answers) (bool, error) {
	if err := d.Info(ctx, Summary(answers)); err != nil {
		return false, translate(err)
	}
	ok, err := d.Confirm(ctx, ConfirmConfig{
		Message: "Proceed with setup?",
		Default: true,
	})
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// Summary renders the answers as aligned "field: value" lines
func Summary(a config.Answers) string {
	var b strings.Builder
	b.WriteString("Configuration summary:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "  %-20s %s\n", f.name+":", *f.get(&a))
	}
	return strings.TrimRight(b.String(), "\n")
}

func trimmed(check func(string) error) func(string) error {
	return func(v string) error {
		return check(strings.TrimSpace(v))
	}
}

func translate(err error) error {
	if stderrors.Is(err, ErrAborted) || stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.ErrCancelled, "setup cancelled")
	}
	return errors.Wrap(err, errors.ErrInternal, "prompt failed")
}
