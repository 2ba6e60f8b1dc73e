// Package report renders finished analyses: JSON for machines, Markdown for
// sharing, and console tables for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"sheetlens/internal/model"
)

// Renderer writes analysis output. The writer receives console output;
// file formats take explicit paths.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing console output to out, or stdout
// when out is nil.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// RenderJSON writes the full result as indented JSON.
func (r *Renderer) RenderJSON(result *model.HybridResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(result *model.HybridResult, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(result)), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Markdown builds the report body. Sections for a side that did not run are
// omitted rather than rendered empty.
func (r *Renderer) Markdown(result *model.HybridResult) string {
	var b strings.Builder
	rec := result.Contextual

	if rec != nil {
		fmt.Fprintf(&b, "# Analysis Report: %s\n\n", rec.File.Name)
		fmt.Fprintf(&b, "- **Run:** %s\n", rec.RunID)
		fmt.Fprintf(&b, "- **Provider:** %s\n", rec.Provider)
		fmt.Fprintf(&b, "- **Generated:** %s\n", rec.FinishedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "- **Items:** %d comments, %d questionnaire answers\n\n",
			rec.CommentCount, rec.QuestionCount)

		if rec.Summary != "" {
			b.WriteString("## Summary\n\n")
			b.WriteString(rec.Summary)
			b.WriteString("\n\n")
		}

		if len(rec.Progress) > 0 {
			b.WriteString("## Progress\n\n")
			b.WriteString("| Group | Yes | No | Total | Completion | Status |\n")
			b.WriteString("|---|---|---|---|---|---|\n")
			for _, m := range rec.Progress {
				fmt.Fprintf(&b, "| %s | %d | %d | %d | %.2f%% | %s |\n",
					m.GroupKey, m.YesCount, m.NoCount, m.TotalQuestions, m.Completion, m.Status)
			}
			fmt.Fprintf(&b, "\n**Overall completion:** %.2f%%\n\n", rec.OverallCompletion)
		}

		if len(rec.Findings) > 0 {
			b.WriteString("## Risk Findings\n\n")
			for _, f := range rec.Findings {
				fmt.Fprintf(&b, "### %s: %s\n\n", f.Level, f.Entity)
				fmt.Fprintf(&b, "%s\n\n", f.Description)
				if f.Mitigation != "" {
					fmt.Fprintf(&b, "*Mitigation:* %s\n\n", f.Mitigation)
				}
				if f.SourceField != "" {
					fmt.Fprintf(&b, "<sub>%s, %s row %d</sub>\n\n", f.SourceField, f.Sheet, f.Row)
				}
			}
		}

		writeList(&b, "Issues", rec.Issues)
		writeList(&b, "Blockers", rec.Blockers)

		if len(rec.Recommendations) > 0 {
			b.WriteString("## Recommendations\n\n")
			for i, item := range rec.Recommendations {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "## Sentiment\n\nAverage sentiment across commentary: %+.2f\n\n", rec.SentimentAverage)
	} else {
		b.WriteString("# Analysis Report\n\nContextual analysis was unavailable for this run.\n\n")
	}

	integrated := result.Integrated
	if integrated.SemanticUsed || len(integrated.Entities) > 0 {
		b.WriteString("## Integrated Insights\n\n")
		if len(integrated.Entities) > 0 {
			b.WriteString("| Entity | Risk Assessment | Matched Theme |\n")
			b.WriteString("|---|---|---|\n")
			for _, e := range integrated.Entities {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Name, e.RiskText, dash(e.MatchedTheme))
			}
			b.WriteString("\n")
		}
		if len(integrated.Themes) > 0 {
			b.WriteString("### Themes\n\n")
			for _, t := range integrated.Themes {
				fmt.Fprintf(&b, "- **%s** (%d comments): %s\n", t.Name, t.Count, strings.Join(t.Keywords, ", "))
			}
			b.WriteString("\n")
		}
	}
	for _, note := range integrated.Notes {
		fmt.Fprintf(&b, "> %s\n", note)
	}

	if rec != nil {
		fmt.Fprintf(&b, "\n---\n\nProvider calls: %d attempted, %d succeeded, %d failed, %d substituted.\n",
			rec.Telemetry.Attempted, rec.Telemetry.Succeeded, rec.Telemetry.Failed, rec.Telemetry.FellBack)
	}
	return b.String()
}

// RenderSummary prints the console overview.
func (r *Renderer) RenderSummary(result *model.HybridResult) {
	rec := result.Contextual

	if rec != nil {
		fmt.Fprintf(r.out, "\nAnalyzed %s (run %s, provider %s)\n\n", rec.File.Name, rec.RunID, rec.Provider)

		if len(rec.Progress) > 0 {
			tw := newTable(r.out)
			tw.AppendHeader(table.Row{"Group", "Completion", "Status"})
			for _, m := range rec.Progress {
				tw.AppendRow(table.Row{m.GroupKey, fmt.Sprintf("%.2f%%", m.Completion), string(m.Status)})
			}
			tw.AppendFooter(table.Row{"Overall", fmt.Sprintf("%.2f%%", rec.OverallCompletion), ""})
			tw.Render()
			fmt.Fprintln(r.out)
		}

		if len(rec.Findings) > 0 {
			tw := newTable(r.out)
			tw.AppendHeader(table.Row{"Level", "Entity", "Finding"})
			for _, f := range rec.Findings {
				tw.AppendRow(table.Row{f.Level.String(), f.Entity, clip(f.Description, 60)})
			}
			tw.Render()
			fmt.Fprintln(r.out)
		}

		if rec.Summary != "" {
			fmt.Fprintf(r.out, "%s\n\n", rec.Summary)
		}
		fmt.Fprintf(r.out, "Sentiment %+.2f | calls: %d attempted, %d substituted\n",
			rec.SentimentAverage, rec.Telemetry.Attempted, rec.Telemetry.FellBack)
	}

	for _, note := range result.Integrated.Notes {
		fmt.Fprintf(r.out, "note: %s\n", note)
	}
}

func newTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	return tw
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
