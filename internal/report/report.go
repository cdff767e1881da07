// Package report prints generation progress: one line per step, tagged
// [OK], [WARN], [ERROR] or [SUCCESS].
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Reporter writes progress lines to w. Paths under root are shown relative
// to it.
type Reporter struct {
	w    io.Writer
	root string

	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

// New returns a Reporter for w. Styling is detected from w itself, so a
// non-terminal writer gets plain text.
func New(w io.Writer, root string) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:       w,
		root:    root,
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		muted:   r.NewStyle().Faint(true),
	}
}

// Step prints an untagged progress line.
func (r *Reporter) Step(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Saved reports a written file.
func (r *Reporter) Saved(path string) {
	fmt.Fprintf(r.w, "%s Saved %s\n", r.ok.Render("[OK]"), r.Rel(path))
}

// Cached reports a file restored from the cache.
func (r *Reporter) Cached(path string) {
	fmt.Fprintf(r.w, "%s Saved %s %s\n", r.ok.Render("[OK]"), r.Rel(path), r.muted.Render("(cached)"))
}

// Warn reports a recoverable problem.
func (r *Reporter) Warn(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.warn.Render("[WARN]"), fmt.Sprintf(format, args...))
}

// Error reports a failure.
func (r *Reporter) Error(format string, args ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.err.Render("[ERROR]"), fmt.Sprintf(format, args...))
}

// Success prints the closing banner.
func (r *Reporter) Success(format string, args ...any) {
	fmt.Fprintf(r.w, "\n%s %s\n", r.success.Render("[SUCCESS]"), fmt.Sprintf(format, args...))
}

// Summary lists the generated files.
func (r *Reporter) Summary(paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(r.w, "\nGenerated files:")
	for _, p := range paths {
		fmt.Fprintf(r.w, "  - %s\n", r.Rel(p))
	}
}

// Rel shortens path to be relative to the project root, using forward
// slashes, when it lies inside it.
func (r *Reporter) Rel(path string) string {
	if r.root == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
