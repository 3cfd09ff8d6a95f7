package initializer

import (
	"path/filepath"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/scanner"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/specforge/specinit/pkg/types"
)

// CheckReport lists the files that still hold placeholder tokens
type CheckReport struct {
	Root    string
	Scanned int
	// Files are the paths holding tokens, in scan order
	Files  []string
	Tokens map[string][]string
	Errors []types.FileError
}

// Clean reports whether no token is left and every file could be scanned
func (r *CheckReport) Clean() bool {
	return len(r.Files) == 0 && len(r.Errors) == 0
}

// Check scans the project without modifying it and reports which files
// still hold tokens. Legacy literals are included when enabled.
func Check(fsys types.FS, root string, cfg *config.Config, legacy bool) (*CheckReport, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := checkProjectRoot(fsys, root, cfg.Project.Marker); err != nil {
		return nil, err
	}

	set, err := scanner.Scan(fsys, root, scanner.RulesFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	probe, err := tokens.Probe(tokens.Definitions(cfg, legacy || cfg.Legacy.Enabled))
	if err != nil {
		return nil, err
	}

	report := &CheckReport{
		Root:    root,
		Scanned: len(set.Files),
		Tokens:  make(map[string][]string),
		Errors:  set.Errors,
	}
	for _, rel := range set.Files {
		data, err := fsys.ReadFile(set.Abs(rel))
		if err != nil {
			report.Errors = append(report.Errors, types.FileError{Path: rel, Op: types.OpRead, Err: err})
			continue
		}
		if found := probe.Contains(string(data)); len(found) > 0 {
			report.Files = append(report.Files, rel)
			report.Tokens[rel] = found
		}
	}
	return report, nil
}
