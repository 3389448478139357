package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/tasks"
)

// Printer writes styled output to w.
type Printer struct {
	w io.Writer

	header  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
}

// NewPrinter creates a Printer whose color profile follows w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w: w,
		header: r.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1),
		section: r.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true),
		label: r.NewStyle().
			Foreground(lipgloss.Color("45")),
		value: r.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("245")),
		ok: r.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true),
		fail: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
	}
}

// ScanResult prints the tasks of a scan. Verbose adds the rule label and
// source of each task.
func (p *Printer) ScanResult(res *tasks.Result, verbose bool) {
	if res.Empty() {
		fmt.Fprintln(p.w, p.warn.Render("No manual tasks found."))
		return
	}

	fmt.Fprintln(p.w, p.header.Render("Manual tasks"))
	if verbose {
		for i, f := range res.Findings {
			fmt.Fprintf(p.w, "%s %s\n", p.label.Render(fmt.Sprintf("%3d.", i+1)), p.value.Render(f.Task))
			fmt.Fprintf(p.w, "     %s\n", p.dim.Render(f.Label+" · "+f.Source))
		}
	} else {
		for i, task := range res.Tasks {
			fmt.Fprintf(p.w, "%s %s\n", p.label.Render(fmt.Sprintf("%3d.", i+1)), task)
		}
	}
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("%s from %s in %s",
		Plural(len(res.Tasks), "task"), Plural(res.Blocks, "block"), FormatDuration(res.Duration))))
}

// Report prints an agent report. Unparsed replies are printed raw.
func (p *Printer) Report(title string, r *agents.Report) {
	fmt.Fprintln(p.w, p.header.Render(title))
	if r.Subject != "" {
		fmt.Fprintln(p.w, p.dim.Render(r.Subject))
	}
	if !r.Parsed() {
		fmt.Fprintln(p.w, strings.TrimSpace(r.Raw))
		return
	}

	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.field(k, r.Data[k])
	}
}

func (p *Printer) field(key string, v any) {
	name := p.label.Render(humanize(key) + ":")
	switch val := v.(type) {
	case string:
		fmt.Fprintf(p.w, "%s %s\n", name, p.value.Render(val))
	case []any:
		fmt.Fprintln(p.w, name)
		for _, item := range val {
			fmt.Fprintf(p.w, "  - %s\n", scalar(item))
		}
	default:
		fmt.Fprintf(p.w, "%s %s\n", name, scalar(val))
	}
}

// AnalysisFailed prints a per-task failure inside a batch.
func (p *Printer) AnalysisFailed(task string, err error) {
	fmt.Fprintf(p.w, "%s %s: %v\n", p.fail.Render("✗"), task, err)
}

// Recommendations prints a numbered recommendation list.
func (p *Printer) Recommendations(recs []string) {
	fmt.Fprintln(p.w, p.header.Render("Recommendations"))
	for i, rec := range recs {
		fmt.Fprintf(p.w, "%s %s\n", p.label.Render(fmt.Sprintf("%d.", i+1)), rec)
	}
}

// Section prints a section title.
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w, p.section.Render("┃ "+title))
}

// KeyValue prints one aligned setting line.
func (p *Printer) KeyValue(key, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.label.Render(fmt.Sprintf("%-22s", key+":")), p.value.Render(value))
}

// Success prints a confirmation line.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.ok.Render("✓"), msg)
}

// Warning prints a warning line.
func (p *Printer) Warning(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.warn.Render("!"), msg)
}

// Plain prints text without styling.
func (p *Printer) Plain(text string) {
	fmt.Fprintln(p.w, text)
}

func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "-"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
