// Package verify checks rewritten files after substitution: structured
// files must still parse and no placeholder token may be left behind.
package verify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/specforge/specinit/pkg/types"
)

// Problem is a file that no longer parses in its declared format
type Problem struct {
	Path   string
	Format string
	Err    error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", p.Path, p.Format, p.Err)
}

type parser struct {
	format string
	parse  func([]byte) error
}

var parsers = map[string]parser{
	".toml": {"TOML", parseTOML},
	".yaml": {"YAML", parseYAML},
	".yml":  {"YAML", parseYAML},
	".json": {"JSON", parseJSON},
	".xml":  {"XML", parseXML},
	".svg":  {"XML", parseXML},
}

// Supported reports whether Check knows how to parse rel
func Supported(rel string) bool {
	_, ok := parsers[strings.ToLower(path.Ext(rel))]
	return ok
}

// Check re-parses every structured file in paths. Unreadable files and
// unknown extensions are ignored; substitution already reported the former.
func Check(fsys types.FS, root string, paths []string) []Problem {
	logger := logging.GetLogger("verify")

	var problems []Problem
	for _, rel := range paths {
		p, ok := parsers[strings.ToLower(path.Ext(rel))]
		if !ok {
			continue
		}
		data, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			logger.Debug().Err(err).Str("path", rel).Msg("Skipping unreadable file")
			continue
		}
		if err := p.parse(data); err != nil {
			logger.Warn().Err(err).Str("path", rel).Str("format", p.format).Msg("File no longer parses")
			problems = append(problems, Problem{Path: rel, Format: p.format, Err: err})
		}
	}
	return problems
}

// Leftovers returns, per file, the tokens still present. Files that cannot
// be read are skipped.
func Leftovers(fsys types.FS, root string, files []string, m *tokens.Map) map[string][]string {
	out := make(map[string][]string)
	for _, rel := range files {
		data, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if found := m.Contains(string(data)); len(found) > 0 {
			out[rel] = found
		}
	}
	return out
}

func parseTOML(data []byte) error {
	var v map[string]interface{}
	return toml.Unmarshal(data, &v)
}

// parseYAML decodes into a node tree so application tags such as mkdocs'
// !!python/name: are accepted
func parseYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func parseJSON(data []byte) error {
	var v interface{}
	return json.Unmarshal(data, &v)
}

func parseXML(data []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	if doc.Root() == nil {
		return fmt.Errorf("no root element")
	}
	return nil
}
