// Package initializer runs a complete template initialization: it checks the
// project root, finds the files holding placeholder tokens, collects the
// replacement values, rewrites the files and finally removes itself.
package initializer

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/specforge/specinit/pkg/cleanup"
	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/prompt"
	"github.com/specforge/specinit/pkg/scanner"
	"github.com/specforge/specinit/pkg/substitute"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/specforge/specinit/pkg/types"
	"github.com/specforge/specinit/pkg/verify"
)

// Options configure a Run
type Options struct {
	// Root is the project root
	Root string
	FS   types.FS
	// Config is the merged configuration; nil loads it from Root
	Config *config.Config

	// Driver prompts for answers; nil means non-interactive
	Driver prompt.Driver
	// Yes skips the confirmation step
	Yes bool

	DryRun bool
	// Force bypasses the already-configured guard
	Force bool
	// Keep disables self-deletion
	Keep bool
	// Legacy also replaces the legacy literal values
	Legacy bool

	// Executable is the running binary, removed when it lives under Root
	Executable string
	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// Result aggregates everything a run did
type Result struct {
	Root    string
	Answers config.Answers
	Map     *tokens.Map

	Scan *scanner.TargetSet
	// Pending are the files that held tokens before substitution
	Pending []string
	Apply   *substitute.Result
	// Problems are structured files that no longer parse
	Problems []verify.Problem
	// Leftovers are files still holding tokens after substitution
	Leftovers map[string][]string
	Cleanup   *cleanup.Report

	AlreadyConfigured bool
	Cancelled         bool
}

// Err decides the outcome of a completed run: nil for success, a declined
// confirmation and already-configured projects; CANCELLED when substitution
// was interrupted; PARTIAL_FAILURE when any file could not be scanned or
// rewritten
func (r *Result) Err() error {
	if r == nil || r.Cancelled {
		return nil
	}

	var scanErrs int
	if r.Scan != nil {
		scanErrs = len(r.Scan.Errors)
	}
	var failures, modified int
	if r.Apply != nil {
		failures = len(r.Apply.Failures)
		modified = len(r.Apply.Modified)
	}

	if r.Apply != nil && r.Apply.Interrupted {
		return errors.Newf(errors.ErrCancelled, "setup interrupted after %d file(s); re-run specinit to finish", modified).
			WithDetail("modified", modified).
			WithDetail("failures", failures+scanErrs)
	}
	if failures+scanErrs == 0 {
		return nil
	}
	return errors.Newf(errors.ErrPartialFailure, "%d file(s) could not be processed", failures+scanErrs).
		WithDetail("scan_errors", scanErrs).
		WithDetail("failures", failures).
		WithDetail("modified", modified)
}

// incomplete reports whether any target was left unprocessed
func (r *Result) incomplete() bool {
	return len(r.Scan.Errors) > 0 || len(r.Apply.Failures) > 0 || r.Apply.Interrupted
}

// Run performs the initialization steps in order. Fatal problems are
// returned as errors before any file is written; per-file failures are
// reported through Result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("initializer")
	done := logging.LogOperationStart(logger, "run")
	defer done()

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid project root %q", opts.Root)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cfg := opts.Config
	if cfg == nil {
		cfg, err = config.Load(config.LoadOptions{Root: root})
		if err != nil {
			return nil, err
		}
	}

	if err := checkProjectRoot(opts.FS, root, cfg.Project.Marker); err != nil {
		return nil, err
	}

	result := &Result{Root: root}

	set, err := scanner.Scan(opts.FS, root, scanner.RulesFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	result.Scan = set

	defs := tokens.Definitions(cfg, opts.Legacy || cfg.Legacy.Enabled)
	probe, err := tokens.Probe(defs)
	if err != nil {
		return nil, err
	}
	result.Pending = pendingFiles(opts.FS, set, probe)

	if len(result.Pending) == 0 && !opts.Force {
		logger.Info().Msg("No placeholder tokens found, project already configured")
		result.AlreadyConfigured = true
		return result, nil
	}

	answers, proceed, err := collect(ctx, opts, cfg, root)
	if err != nil {
		return nil, err
	}
	if !proceed {
		logger.Info().Msg("Setup cancelled by user")
		result.Cancelled = true
		return result, nil
	}
	result.Answers = answers

	m, err := tokens.Build(defs, answers)
	if err != nil {
		return nil, err
	}
	result.Map = m

	result.Apply = substitute.Apply(ctx, opts.FS, m, root, set.Files, substitute.Options{DryRun: opts.DryRun})

	if !opts.DryRun {
		modified := make([]string, 0, len(result.Apply.Modified))
		for _, c := range result.Apply.Modified {
			modified = append(modified, c.Path)
		}
		result.Problems = verify.Check(opts.FS, root, modified)
		result.Leftovers = verify.Leftovers(opts.FS, root, set.Files, m)
	}

	if opts.DryRun || opts.Keep || result.incomplete() {
		logger.Debug().
			Bool("dry_run", opts.DryRun).
			Bool("keep", opts.Keep).
			Int("scan_errors", len(set.Errors)).
			Int("failures", len(result.Apply.Failures)).
			Msg("Skipping self-deletion")
		return result, nil
	}

	exe := ""
	if cfg.Cleanup.RemoveExecutable {
		exe = opts.Executable
	}
	result.Cleanup = cleanup.SelfDelete(opts.FS, root, cfg.Cleanup.Paths, exe)

	return result, nil
}

// Defaults returns the prompt defaults for root: configured defaults with the
// project name falling back to the directory name and the year to now
func Defaults(cfg *config.Config, root string, now time.Time) config.Answers {
	d := cfg.Defaults
	if d.ProjectName == "" {
		d.ProjectName = filepath.Base(root)
	}
	if d.Year == "" {
		d.Year = strconv.Itoa(now.Year())
	}
	return d
}

func checkProjectRoot(fsys types.FS, root, marker string) error {
	if marker == "" {
		return nil
	}
	info, err := fsys.Stat(filepath.Join(root, marker))
	if err == nil && !info.IsDir() {
		return nil
	}
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, errors.ErrNotProjectRoot, "cannot access %s", marker)
	}
	return errors.Newf(errors.ErrNotProjectRoot, "%s not found in %s; run specinit from the project root", marker, root).
		WithDetail("root", root).
		WithDetail("marker", marker)
}

// pendingFiles lists the target files holding at least one token. Files that
// cannot be read are left for substitution to report.
func pendingFiles(fsys types.FS, set *scanner.TargetSet, probe *tokens.Map) []string {
	var pending []string
	for _, rel := range set.Files {
		data, err := fsys.ReadFile(set.Abs(rel))
		if err != nil {
			continue
		}
		if len(probe.Contains(string(data))) > 0 {
			pending = append(pending, rel)
		}
	}
	return pending
}

// collect resolves the answers and, when interactive, asks for confirmation.
// proceed is false when the user declined or interrupted.
func collect(ctx context.Context, opts Options, cfg *config.Config, root string) (config.Answers, bool, error) {
	defaults := Defaults(cfg, root, opts.Now())

	if opts.Driver == nil {
		answers, err := prompt.ResolveNonInteractive(cfg.Answers, defaults)
		return answers, err == nil, err
	}

	answers, err := prompt.CollectConfiguration(ctx, opts.Driver, cfg.Answers, defaults)
	if errors.IsErrorCode(err, errors.ErrCancelled) {
		return config.Answers{}, false, nil
	}
	if err != nil {
		return config.Answers{}, false, err
	}
	if opts.Yes {
		return answers, true, nil
	}

	ok, err := prompt.ConfirmPlan(ctx, opts.Driver, answers)
	if errors.IsErrorCode(err, errors.ErrCancelled) {
		return config.Answers{}, false, nil
	}
	if err != nil {
		return config.Answers{}, false, err
	}
	return answers, ok, nil
}
