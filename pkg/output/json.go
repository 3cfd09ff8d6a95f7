package output

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/initializer"
	"github.com/specforge/specinit/pkg/types"
)

// jsonRenderer provides JSON output for machine consumption
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &jsonRenderer{encoder: encoder}
}

type fileErrorView struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type changeView struct {
	Path   string         `json:"path"`
	Counts map[string]int `json:"counts"`
}

type problemView struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Error  string `json:"error"`
}

type runView struct {
	Root              string              `json:"root"`
	AlreadyConfigured bool                `json:"already_configured"`
	Cancelled         bool                `json:"cancelled"`
	DryRun            bool                `json:"dry_run"`
	Answers           interface{}         `json:"answers,omitempty"`
	Modified          []changeView        `json:"modified"`
	Unchanged         int                 `json:"unchanged"`
	ScanErrors        []fileErrorView     `json:"scan_errors,omitempty"`
	Failures          []fileErrorView     `json:"failures,omitempty"`
	Problems          []problemView       `json:"problems,omitempty"`
	Leftovers         map[string][]string `json:"leftovers,omitempty"`
	Removed           []string            `json:"removed,omitempty"`
	CleanupFailures   []fileErrorView     `json:"cleanup_failures,omitempty"`
	Success           bool                `json:"success"`
}

type checkView struct {
	Root    string              `json:"root"`
	Scanned int                 `json:"scanned"`
	Clean   bool                `json:"clean"`
	Files   map[string][]string `json:"files"`
	Errors  []fileErrorView     `json:"errors,omitempty"`
}

type tokenView struct {
	Key   string `json:"key"`
	Token string `json:"token"`
	Value string `json:"value"`
}

func (r *jsonRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *initializer.Result:
		return r.encoder.Encode(toRunView(v))
	case *initializer.CheckReport:
		return r.encoder.Encode(checkView{
			Root:    v.Root,
			Scanned: v.Scanned,
			Clean:   v.Clean(),
			Files:   v.Tokens,
			Errors:  toFileErrorViews(v.Errors),
		})
	case TokenList:
		return r.encoder.Encode(toTokenViews(v))
	case *TokenList:
		return r.encoder.Encode(toTokenViews(*v))
	default:
		return r.encoder.Encode(result)
	}
}

func (r *jsonRenderer) RenderError(err error) error {
	obj := map[string]string{"error": err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		obj["code"] = string(code)
	}
	return r.encoder.Encode(obj)
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

// RenderMarkdown is a no-op: prose has no place in machine output
func (r *jsonRenderer) RenderMarkdown(string) error {
	return nil
}

func toRunView(res *initializer.Result) runView {
	v := runView{
		Root:              res.Root,
		AlreadyConfigured: res.AlreadyConfigured,
		Cancelled:         res.Cancelled,
		Modified:          []changeView{},
		Success:           res.Err() == nil,
	}
	if res.Scan != nil {
		v.ScanErrors = toFileErrorViews(res.Scan.Errors)
	}
	if res.Apply != nil {
		v.Answers = res.Answers
		v.DryRun = res.Apply.DryRun
		v.Unchanged = res.Apply.Unchanged
		v.Failures = toFileErrorViews(res.Apply.Failures)
		for _, c := range res.Apply.Modified {
			v.Modified = append(v.Modified, changeView{Path: c.Path, Counts: c.Counts})
		}
	}
	for _, p := range res.Problems {
		v.Problems = append(v.Problems, problemView{Path: p.Path, Format: p.Format, Error: p.Err.Error()})
	}
	if len(res.Leftovers) > 0 {
		v.Leftovers = res.Leftovers
	}
	if res.Cleanup != nil {
		v.Removed = res.Cleanup.Removed
		v.CleanupFailures = toFileErrorViews(res.Cleanup.Failures)
	}
	return v
}

func toFileErrorViews(errs []types.FileError) []fileErrorView {
	if len(errs) == 0 {
		return nil
	}
	out := make([]fileErrorView, len(errs))
	for i, e := range errs {
		out[i] = fileErrorView{Path: e.Path, Op: string(e.Op), Error: rootCause(e.Err)}
		if code := errors.GetErrorCode(e.Err); code != errors.ErrUnknown {
			out[i].Code = string(code)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func toTokenViews(list TokenList) []tokenView {
	out := make([]tokenView, len(list.Definitions))
	for i, d := range list.Definitions {
		out[i] = tokenView{Key: d.Key, Token: d.Token, Value: d.Value}
	}
	return out
}
