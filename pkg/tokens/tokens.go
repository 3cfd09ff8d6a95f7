package tokens

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
)

// Definition declares one placeholder token. Value is a text/template
// rendered against config.Answers.
type Definition struct {
	Key   string
	Token string
	Value string
	Order int
}

// Binding is a token resolved to its replacement value for one run
type Binding struct {
	Key   string
	Token string
	Value string
}

// Map is an ordered set of bindings. The zero value replaces nothing.
type Map struct {
	bindings []Binding
	// byLength holds indices into bindings, longest token first
	byLength []int
	first    [256]bool
}

// Definitions returns the token table from the configuration, in display
// order. Legacy literals are appended when legacy is true.
func Definitions(cfg *config.Config, legacy bool) []Definition {
	defs := fromTable(cfg.Tokens)
	if legacy {
		defs = append(defs, fromTable(cfg.Legacy.Tokens)...)
	}
	return defs
}

func fromTable(table map[string]config.TokenConfig) []Definition {
	defs := make([]Definition, 0, len(table))
	for key, tc := range table {
		defs = append(defs, Definition{Key: key, Token: tc.Token, Value: tc.Value, Order: tc.Order})
	}
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].Key < defs[j].Key
	})
	return defs
}

// Build renders each definition against answers and returns the map
func Build(defs []Definition, answers config.Answers) (*Map, error) {
	bindings := make([]Binding, 0, len(defs))
	for _, def := range defs {
		value, err := render(def, answers)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Key: def.Key, Token: def.Token, Value: value})
	}
	return NewMap(bindings)
}

// Probe returns a map that only knows the tokens, for presence checks before
// any answers exist
func Probe(defs []Definition) (*Map, error) {
	bindings := make([]Binding, 0, len(defs))
	for _, def := range defs {
		bindings = append(bindings, Binding{Key: def.Key, Token: def.Token})
	}
	return NewMap(bindings)
}

// NewMap validates bindings and prepares them for matching
func NewMap(bindings []Binding) (*Map, error) {
	m := &Map{bindings: make([]Binding, 0, len(bindings))}
	seen := make(map[string]string, len(bindings))
	for _, b := range bindings {
		if b.Token == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "token %q has an empty marker", b.Key).
				WithDetail("key", b.Key)
		}
		if other, dup := seen[b.Token]; dup {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"token %q is declared by both %q and %q", b.Token, other, b.Key).
				WithDetail("token", b.Token)
		}
		seen[b.Token] = b.Key
		m.bindings = append(m.bindings, b)
		m.first[b.Token[0]] = true
	}

	m.byLength = make([]int, len(m.bindings))
	for i := range m.byLength {
		m.byLength[i] = i
	}
	sort.SliceStable(m.byLength, func(i, j int) bool {
		return len(m.bindings[m.byLength[i]].Token) > len(m.bindings[m.byLength[j]].Token)
	})
	return m, nil
}

func render(def Definition, answers config.Answers) (string, error) {
	if !strings.Contains(def.Value, "{{") {
		return def.Value, nil
	}
	tmpl, err := template.New(def.Key).Option("missingkey=error").Parse(def.Value)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplate, "invalid value template for token %q", def.Token).
			WithDetail("key", def.Key)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplate, "cannot render value for token %q", def.Token).
			WithDetail("key", def.Key)
	}
	return buf.String(), nil
}

// Bindings returns the bindings in declaration order
func (m *Map) Bindings() []Binding {
	out := make([]Binding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// Tokens returns the token markers in declaration order
func (m *Map) Tokens() []string {
	out := make([]string, len(m.bindings))
	for i, b := range m.bindings {
		out[i] = b.Token
	}
	return out
}

// Len returns the number of bindings
func (m *Map) Len() int {
	return len(m.bindings)
}

// match returns the index of the longest binding whose token starts at s[0]
func (m *Map) match(s string) int {
	if len(s) == 0 || !m.first[s[0]] {
		return -1
	}
	for _, idx := range m.byLength {
		if strings.HasPrefix(s, m.bindings[idx].Token) {
			return idx
		}
	}
	return -1
}

// Apply replaces every token occurrence in content. counts maps each token
// to the number of occurrences replaced; tokens that did not occur are absent.
func (m *Map) Apply(content string) (string, map[string]int) {
	counts := make(map[string]int)
	if len(m.bindings) == 0 {
		return content, counts
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(content); {
		idx := m.match(content[i:])
		if idx < 0 {
			i++
			continue
		}
		binding := m.bindings[idx]
		if len(counts) == 0 {
			b.Grow(len(content))
		}
		b.WriteString(content[last:i])
		b.WriteString(binding.Value)
		counts[binding.Token]++
		i += len(binding.Token)
		last = i
	}
	if len(counts) == 0 {
		return content, counts
	}
	b.WriteString(content[last:])
	return b.String(), counts
}

// Contains reports which tokens occur in content, in declaration order
func (m *Map) Contains(content string) []string {
	var found []string
	for _, b := range m.bindings {
		if strings.Contains(content, b.Token) {
			found = append(found, b.Token)
		}
	}
	return found
}
