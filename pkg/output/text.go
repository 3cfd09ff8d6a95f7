package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/initializer"
	"github.com/specforge/specinit/pkg/output/styles"
	"github.com/specforge/specinit/pkg/types"
)

const markdownWidth = 80

// textRenderer writes human readable output. When styled, semantic styles
// and glamour are applied; otherwise output is plain text.
type textRenderer struct {
	w      io.Writer
	styled bool
	lg     *lipgloss.Renderer
}

func newTextRenderer(w io.Writer, styled bool) *textRenderer {
	return &textRenderer{w: w, styled: styled, lg: lipgloss.NewRenderer(w)}
}

// s applies the named style when output is styled
func (r *textRenderer) s(style, text string) string {
	if !r.styled {
		return text
	}
	return styles.GetStyle(style).Renderer(r.lg).Render(text)
}

func (r *textRenderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *textRenderer) println(args ...interface{}) {
	_, _ = fmt.Fprintln(r.w, args...)
}

func (r *textRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *initializer.Result:
		return r.renderRun(v)
	case *initializer.CheckReport:
		return r.renderCheck(v)
	case TokenList:
		return r.renderTokens(v)
	case *TokenList:
		return r.renderTokens(*v)
	default:
		_, err := fmt.Fprintf(r.w, "%+v\n", result)
		return err
	}
}

func (r *textRenderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.w, r.s("Error", "Error:")+" "+err.Error())
	return werr
}

func (r *textRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *textRenderer) RenderMarkdown(md string) error {
	if r.styled {
		tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(markdownWidth))
		if err == nil {
			if out, err := tr.Render(md); err == nil {
				_, werr := io.WriteString(r.w, out)
				return werr
			}
		}
	}
	_, err := fmt.Fprintln(r.w, strings.TrimRight(md, "\n"))
	return err
}

func (r *textRenderer) renderRun(res *initializer.Result) error {
	switch {
	case res.AlreadyConfigured:
		r.println(r.s("Warning", "Project already configured:") + " no placeholder tokens found.")
		r.println(r.s("Muted", "Use --force to run anyway, or --legacy to look for literal template values."))
		if res.Scan != nil {
			r.fileErrors("Could not scan:", res.Scan.Errors)
		}
		return nil
	case res.Cancelled:
		r.println(r.s("Warning", "Setup cancelled.") + " No files were changed.")
		return nil
	}

	apply := res.Apply
	if apply == nil {
		return nil
	}
	if apply.DryRun {
		r.println(r.s("DryRunBanner", "DRY RUN - no files were written"))
	}

	if len(apply.Modified) > 0 {
		if err := r.modifiedTable(res); err != nil {
			return err
		}
	}

	verb := "Updated"
	if apply.DryRun {
		verb = "Would update"
	}
	r.printf("%s %s file(s), %d unchanged.\n", verb, r.s("Count", strconv.Itoa(apply.Count())), apply.Unchanged)

	r.fileErrors("Could not scan:", res.Scan.Errors)
	r.fileErrors("Failed to update:", apply.Failures)

	if len(res.Problems) > 0 {
		r.println()
		r.println(r.s("Warning", "Files that no longer parse:"))
		for _, p := range res.Problems {
			r.printf("  %s (%s): %v\n", r.s("FilePath", p.Path), p.Format, p.Err)
		}
	}

	if len(res.Leftovers) > 0 {
		r.println()
		r.println(r.s("Warning", "Unresolved tokens remain in:"))
		r.leftovers(res.Leftovers)
	}

	if res.Cleanup != nil {
		for _, p := range res.Cleanup.Removed {
			r.printf("%s %s\n", r.s("Muted", "Removed"), r.s("FilePath", p))
		}
		if len(res.Cleanup.Failures) > 0 {
			r.println()
			r.println(r.s("Warning", "Manual cleanup required:"))
			for _, f := range res.Cleanup.Failures {
				r.printf("  rm %s  %s\n", f.Path, r.s("Muted", "("+rootCause(f.Err)+")"))
			}
		}
	}

	if apply.Interrupted {
		r.println()
		r.println(r.s("Error", "Setup interrupted.") + " Some files were not processed; re-run specinit to finish.")
	} else if err := res.Err(); err != nil {
		r.println()
		r.println(r.s("Error", "Setup incomplete.") + " Fix the files above and re-run specinit; it is safe to run again.")
	} else if !apply.DryRun {
		r.println()
		r.println(r.s("Success", "Setup complete!"))
	}
	return nil
}

func (r *textRenderer) modifiedTable(res *initializer.Result) error {
	data := pterm.TableData{{"File", "Replacements", "Tokens"}}
	for _, c := range res.Apply.Modified {
		toks := make([]string, 0, len(c.Counts))
		for tok := range c.Counts {
			toks = append(toks, tok)
		}
		sort.Strings(toks)
		data = append(data, []string{c.Path, strconv.Itoa(c.Replacements()), strings.Join(toks, " ")})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !r.styled {
		plain := pterm.NewStyle()
		table = table.WithStyle(plain).WithHeaderStyle(plain).WithSeparatorStyle(plain)
	}
	out, err := table.Srender()
	if err != nil {
		return err
	}
	r.println(out)
	return nil
}

func (r *textRenderer) fileErrors(title string, errs []types.FileError) {
	if len(errs) == 0 {
		return
	}
	r.println()
	r.println(r.s("Error", title))
	for _, e := range errs {
		r.printf("  %s [%s] %s\n", r.s("FilePath", e.Path), e.Op, rootCause(e.Err))
	}
}

func (r *textRenderer) leftovers(left map[string][]string) {
	paths := make([]string, 0, len(left))
	for p := range left {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		toks := make([]string, len(left[p]))
		for i, t := range left[p] {
			toks[i] = r.s("Token", t)
		}
		r.printf("  %s: %s\n", r.s("FilePath", p), strings.Join(toks, ", "))
	}
}

func (r *textRenderer) renderCheck(rep *initializer.CheckReport) error {
	r.fileErrors("Could not scan:", rep.Errors)
	if len(rep.Files) == 0 {
		r.printf("%s no placeholder tokens in %d file(s).\n", r.s("Success", "Clean:"), rep.Scanned)
		return nil
	}
	r.printf("%s file(s) still contain placeholder tokens (%d scanned):\n",
		r.s("Warning", strconv.Itoa(len(rep.Files))), rep.Scanned)
	r.leftovers(rep.Tokens)
	return nil
}

func (r *textRenderer) renderTokens(list TokenList) error {
	data := pterm.TableData{{"Key", "Token", "Value"}}
	for _, d := range list.Definitions {
		data = append(data, []string{d.Key, r.s("Token", d.Token), d.Value})
	}
	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !r.styled {
		plain := pterm.NewStyle()
		table = table.WithStyle(plain).WithHeaderStyle(plain).WithSeparatorStyle(plain)
	}
	out, err := table.Srender()
	if err != nil {
		return err
	}
	r.println(out)
	if !list.Legacy {
		r.println(r.s("Muted", "Legacy literal values are not shown; use --legacy to include them."))
	}
	return nil
}

// rootCause returns the innermost message of err for compact listings
func rootCause(err error) string {
	if err == nil {
		return ""
	}
	for {
		if se, ok := err.(*errors.SpecinitError); ok && se.Wrapped == nil {
			return se.Message
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok || u.Unwrap() == nil {
			return err.Error()
		}
		err = u.Unwrap()
	}
}
