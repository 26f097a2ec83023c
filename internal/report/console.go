package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/analysis"
	"github.com/banshee-data/medevac-irr/internal/confidence"
	"github.com/banshee-data/medevac-irr/internal/survey"
)

const ruleWidth = 80

// Styles controls console colours. PlainStyles renders without any escape
// sequences.
type Styles struct {
	Banner  lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
	Header  lipgloss.Style
}

// DefaultStyles is the coloured terminal theme.
func DefaultStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Value:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// PlainStyles renders text only.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Banner: plain, Section: plain, Label: plain, Value: plain,
		Muted: plain, Border: plain, Header: plain.Padding(0, 1),
	}
}

// Console prints the analysis report.
type Console struct {
	Out    io.Writer
	Styles Styles
}

// NewConsole returns a Console writing to out with the default theme.
func NewConsole(out io.Writer) *Console {
	return &Console{Out: out, Styles: DefaultStyles()}
}

// Metric renders an optional value with the given number of decimals, or
// NaN when undefined.
func Metric(p *float64, decimals int) string {
	if p == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*p, 'f', decimals, 64)
}

// Percent renders an optional proportion as "0.429 (42.9%)".
func Percent(p *float64) string {
	if p == nil {
		return "NaN"
	}
	return fmt.Sprintf("%.3f (%.1f%%)", *p, *p*100)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Console) section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	c.printf("%s\n%s\n%s\n", c.Styles.Muted.Render(rule), c.Styles.Section.Render(title), c.Styles.Muted.Render(rule))
}

func (c *Console) kv(label, value string) {
	c.printf("%s %s\n", c.Styles.Label.Render(label+":"), c.Styles.Value.Render(value))
}

func (c *Console) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(c.Styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return c.Styles.Header
		})
	c.printf("%s\n", t.String())
}

// PrintResult prints every section of the report.
func (c *Console) PrintResult(res *analysis.Result) {
	c.printf("%s\n", c.Styles.Banner.Render("MEDEVAC INTERRATER RELIABILITY ANALYSIS"))
	c.printf("%s\n\n", c.Styles.Muted.Render("run "+res.RunID+" · "+res.Source))
	c.printf("  Loaded %d physicians\n", res.RawRows)
	c.printf("  Reshaped to %d physician-vignette pairs\n", len(res.Records))
	c.printf("  %d unique physicians\n", res.Summary.Physicians)
	c.printf("  %d unique questions\n\n", res.Summary.Questions)

	c.section("OVERALL AGREEMENT")
	c.kv("Overall Percentage Agreement", Percent(res.OverallPercentageAgreement))
	c.printf("\n")

	c.section("QUESTION-LEVEL METRICS")
	c.PrintQuestions(res.Questions)

	c.section("AGREEMENT BY VIGNETTE CLASS")
	c.PrintClasses(res.Classes)

	c.section("CONFIDENCE ANALYSIS")
	c.printf("Confidence by Decision:\n")
	c.PrintConfidence("decision", res.ConfidenceByDecision)
	c.printf("Confidence by Vignette Class:\n")
	c.PrintConfidence("vignette_class", res.ConfidenceByClass)

	c.section("SUMMARY STATISTICS")
	c.PrintSummary(res.Summary)
}

// PrintQuestions prints the per-question table with a kappa strength band.
func (c *Console) PrintQuestions(metrics []agreement.QuestionMetrics) {
	headers := []string{"question", "question_type", "class", "n", "pct_agree", "kappa", "strength", "M", "C", "R", "other"}
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			strconv.Itoa(m.QuestionID),
			m.QuestionType,
			m.VignetteClass,
			strconv.Itoa(m.NPhysicians),
			Metric(m.PercentageAgreement, 3),
			Metric(m.FleissKappa, 3),
			string(agreement.Interpret(m.FleissKappa)),
			strconv.Itoa(m.DecisionMedevac),
			strconv.Itoa(m.DecisionCommercial),
			strconv.Itoa(m.DecisionRemain),
			strconv.Itoa(m.DecisionOther),
		})
	}
	c.table(headers, rows)
}

// PrintClasses prints the per-class table.
func (c *Console) PrintClasses(metrics []agreement.ClassMetrics) {
	headers := []string{"vignette_class", "n_questions", "mean_pct_agree", "mean_kappa"}
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.VignetteClass,
			strconv.Itoa(m.NQuestions),
			Metric(m.MeanPercentageAgreement, 3),
			Metric(m.MeanFleissKappa, 3),
		})
	}
	c.table(headers, rows)
}

// PrintConfidence prints confidence summaries under groupColumn.
func (c *Console) PrintConfidence(groupColumn string, summaries []confidence.Summary) {
	headers := []string{groupColumn, "mean_confidence", "std_confidence", "n"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.Group, Metric(s.MeanConfidence, 2), Metric(s.StdConfidence, 2), strconv.Itoa(s.N)})
	}
	c.table(headers, rows)
}

// PrintSummary prints the headline statistics and decision distribution.
func (c *Console) PrintSummary(s analysis.Summary) {
	c.kv("Mean Percentage Agreement", Metric(s.MeanPercentageAgreement, 3))
	c.kv("Mean Fleiss' Kappa", Metric(s.MeanFleissKappa, 3))
	c.kv("Mean Confidence", Metric(s.Confidence.MeanConfidence, 2))
	c.kv("SD Confidence", Metric(s.Confidence.StdConfidence, 2))
	c.printf("\nDecision Distribution:\n")
	for _, d := range s.Decisions {
		c.printf("  %s: %d (%.1f%%)\n", d.Decision, d.Count, d.Share*100)
	}
	c.printf("\n")
}

// PrintProfile prints the raw-table overview used by `irr explore`.
func (c *Console) PrintProfile(p survey.Profile) {
	c.section("DATA STRUCTURE")
	c.kv("Rows", strconv.Itoa(p.Rows))
	c.kv("Columns", strconv.Itoa(p.Columns))
	c.printf("\n")

	c.section("DEMOGRAPHICS")
	rows := make([][]string, 0, len(p.Demographics))
	for _, d := range p.Demographics {
		sample := c.Styles.Muted.Render("(missing)")
		if d.Present {
			sample = strings.Join(d.Values, " | ")
		}
		rows = append(rows, []string{d.Header, sample})
	}
	c.table([]string{"column", "sample values"}, rows)

	c.section("QUESTIONS")
	c.printf("%d question columns\n", len(p.Questions))
	rows = rows[:0]
	for _, q := range p.Questions {
		rows = append(rows, []string{strconv.Itoa(q.Index), truncate(q.Header, 60), strings.Join(q.Values, " | ")})
	}
	c.table([]string{"col", "header", "values"}, rows)

	c.section("CONFIDENCE")
	c.printf("%d confidence columns\n", len(p.Confidence))
	rows = rows[:0]
	for _, cp := range p.Confidence {
		rows = append(rows, []string{strconv.Itoa(cp.Index), strings.Join(cp.Values, " ")})
	}
	c.table([]string{"col", "ratings"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
