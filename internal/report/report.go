// Package report renders ResultRecords for people: display rounding,
// plain-text, Markdown and HTML views and a one-line event summary.
//
// Records keep full precision; rounding happens only here.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"

	"github.com/uro-calc-engine/internal/domain"
)

// NotAvailable is shown in place of an undefined metric.
const NotAvailable = "n/a"

// Format names a rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat returns the named format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Decimal places per metric name, then per unit.
var (
	namePrecision = map[string]int{
		"day_voids":     0,
		"night_voids":   0,
		"urgency_index": 1,
		"limit_ratio":   2,
		"egfr":          0,
	}
	unitPrecision = map[string]int{
		"points":        0,
		"%":             1,
		"mL":            1,
		"ng/mL":         1,
		"ng/mL/mL":      3,
		"ng/mL/yr":      2,
		"months":        1,
		"mL/min/1.73m²": 0,
	}
)

const defaultPrecision = 2

// Precision returns the number of decimals a metric is displayed with.
func Precision(m domain.Metric) int {
	if p, ok := namePrecision[m.Name]; ok {
		return p
	}
	if p, ok := unitPrecision[m.Unit]; ok {
		return p
	}
	return defaultPrecision
}

// FormatValue rounds a metric for display, without its unit.
func FormatValue(m domain.Metric) string {
	if !m.Defined {
		return NotAvailable
	}
	return strconv.FormatFloat(m.Value, 'f', Precision(m), 64)
}

// FormatMetric returns the display value followed by its unit.
func FormatMetric(m domain.Metric) string {
	v := FormatValue(m)
	if !m.Defined || m.Unit == "" {
		return v
	}
	return v + " " + m.Unit
}

// Render renders a record in the given format.
func Render(r *domain.ResultRecord, f Format) (string, error) {
	switch f {
	case FormatText:
		return Text(r), nil
	case FormatMarkdown:
		return Markdown(r), nil
	case FormatHTML:
		return HTML(r), nil
	default:
		return "", fmt.Errorf("unknown report format %q", f)
	}
}

// Text renders a record as aligned plain text.
func Text(r *domain.ResultRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Calculator)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(r.Calculator)))

	width := 0
	for _, m := range r.Metrics {
		width = max(width, len(m.Label))
	}
	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, m.Label, FormatMetric(m))
	}

	for _, c := range r.Classifications {
		fmt.Fprintf(&b, "\n[%s] %s (%s)\n", c.Dimension, c.Category.Label, c.Category.Severity)
		writeList(&b, "", c.Guidance.Interpretation, "  ")
		writeList(&b, "Recommendations", c.Guidance.Recommendations, "  - ")
		writeList(&b, "Treatment", c.Guidance.Treatment, "  - ")
		writeList(&b, "Follow-up", c.Guidance.FollowUp, "  - ")
	}

	if r.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Summary)
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string, prefix string) {
	if len(items) == 0 {
		return
	}
	if heading != "" {
		fmt.Fprintf(b, "  %s:\n", heading)
	}
	for _, item := range items {
		fmt.Fprintf(b, "%s%s\n", prefix, item)
	}
}

// Markdown renders a record as a Markdown document.
func Markdown(r *domain.ResultRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Calculator)
	if r.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Summary)
	}

	if len(r.Inputs) > 0 {
		b.WriteString("## Inputs\n\n| Field | Value |\n| --- | --- |\n")
		keys := make([]string, 0, len(r.Inputs))
		for k := range r.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, escapeCell(r.Inputs[k]))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Results\n\n| Metric | Value |\n| --- | --- |\n")
	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(m.Label), escapeCell(FormatMetric(m)))
	}

	for _, c := range r.Classifications {
		fmt.Fprintf(&b, "\n## %s: %s\n\n", c.Dimension, c.Category.Label)
		fmt.Fprintf(&b, "Severity: **%s**\n\n", c.Category.Severity)
		for _, line := range c.Guidance.Interpretation {
			fmt.Fprintf(&b, "%s\n\n", line)
		}
		writeSection(&b, "Recommendations", c.Guidance.Recommendations)
		writeSection(&b, "Treatment", c.Guidance.Treatment)
		writeSection(&b, "Follow-up", c.Guidance.FollowUp)
	}
	return b.String()
}

func writeSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML renders the Markdown view of a record as an HTML fragment.
func HTML(r *domain.ResultRecord) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(r)), p, renderer))
}

// Event is the analytics-style summary of one evaluation. It carries no
// input values.
type Event struct {
	ID              string `json:"id"`
	Calculator      string `json:"calculator"`
	PrimaryCategory string `json:"primary_category"`
	HighestSeverity string `json:"highest_severity"`
	Undefined       int    `json:"undefined_metrics"`
}

// NewEvent summarises a record under a fresh event ID.
func NewEvent(r *domain.ResultRecord) Event {
	undefined := 0
	for _, m := range r.Metrics {
		if !m.Defined {
			undefined++
		}
	}
	return Event{
		ID:              uuid.New().String(),
		Calculator:      r.Calculator,
		PrimaryCategory: r.Primary().Category.Code,
		HighestSeverity: string(r.HighestSeverity()),
		Undefined:       undefined,
	}
}

// String returns the event as a single log line.
func (e Event) String() string {
	return fmt.Sprintf("event=%s calculator=%s category=%s severity=%s undefined=%d",
		e.ID, e.Calculator, e.PrimaryCategory, e.HighestSeverity, e.Undefined)
}
