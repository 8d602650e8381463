// Package observability renders run artifacts as boxed summaries for verbose CLI output.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/types"
)

const (
	// boxWidth is the width of a rendered box including borders
	boxWidth = 72
	// maxItemsToShow caps list sections
	maxItemsToShow = 5
)

// Printer writes human-readable summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

//nolint:errcheck // terminal output; write errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", heading)
	for i, item := range items {
		if i == maxItemsToShow {
			fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
			break
		}
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	sb.WriteString("\n")
}

// PrintRubric shows categories with weights and must-have flags.
func (p *Printer) PrintRubric(r *types.Rubric) {
	if r == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role: %s\n\n", r.RoleTitle)
	for _, c := range r.Categories {
		flag := ""
		if c.MustHave {
			flag = "  [must-have]"
		}
		lo, hi := c.ScoreRange()
		fmt.Fprintf(&sb, "%-32s %4.0f%%  anchors %g-%g%s\n", truncate(c.Name, 32), c.Weight*100, lo, hi, flag)
	}
	p.printBox("EVALUATION RUBRIC", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReviews shows each agent's category scores side by side.
func (p *Printer) PrintReviews(r *types.Rubric, reviews []types.AgentReview) {
	if r == nil || len(reviews) == 0 {
		return
	}
	sorted := append([]types.AgentReview(nil), reviews...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AgentName < sorted[j].AgentName })

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-24s", "Category")
	for _, rv := range sorted {
		fmt.Fprintf(&sb, " %10s", truncate(rv.AgentName, 10))
	}
	sb.WriteString("\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&sb, "%-24s", truncate(c.Name, 24))
		for i := range sorted {
			if cs, ok := sorted[i].Score(c.Name); ok {
				fmt.Fprintf(&sb, " %10.1f", cs.Score)
			} else {
				fmt.Fprintf(&sb, " %10s", "-")
			}
		}
		sb.WriteString("\n")
	}
	p.printBox("PANEL SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecisionPacket shows the recommendation, disagreements and gaps.
func (p *Printer) PrintDecisionPacket(d *types.DecisionPacket) {
	if d == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:            %s\n", d.RoleTitle)
	fmt.Fprintf(&sb, "Recommendation:  %s\n", strings.ToUpper(strings.ReplaceAll(string(d.Recommendation), "_", " ")))
	fmt.Fprintf(&sb, "Fit score:       %.2f / 5\n", d.OverallFitScore)
	fmt.Fprintf(&sb, "Confidence:      %s\n\n", d.ConfidenceLevel)

	writeList(&sb, "Must-have gaps", d.MustHaveGaps)
	writeList(&sb, "Missing panel roles", d.MissingRoles)
	writeList(&sb, "Strengths", d.TopStrengths)
	writeList(&sb, "Risks", d.TopRisks)

	if len(d.Disagreements) > 0 {
		sb.WriteString("Disagreements:\n")
		for _, dis := range d.Disagreements {
			fmt.Fprintf(&sb, "  • %s (delta %.1f, %s)\n", dis.CategoryName, dis.ScoreDelta, dis.Severity)
			fmt.Fprintf(&sb, "    %s\n", dis.ResolutionApproach)
		}
	}
	p.printBox("DECISION PACKET", strings.TrimRight(sb.String(), "\n"))
}

// PrintInterviewPlan shows interviewers, their focus and time budget.
func (p *Printer) PrintInterviewPlan(plan *types.InterviewPlan) {
	if plan == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Focus: %s\n", plan.OverallFocus)
	fmt.Fprintf(&sb, "Total: %d minutes\n", plan.TotalTimeEstimateMinutes)
	for _, ip := range plan.Interviewers {
		fmt.Fprintf(&sb, "\n%s (%d min): %s\n", ip.InterviewerRole, ip.TimeEstimateMinutes, strings.Join(ip.PriorityAreas, ", "))
		for i, q := range ip.Questions {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, q.QuestionText)
		}
	}
	p.printBox("INTERVIEW PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTimeline shows stage events with durations and failures.
func (p *Printer) PrintTimeline(m state.Metadata) {
	if len(m.Events) == 0 {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s\n\n", m.RunID)
	for _, e := range m.Events {
		name := e.Stage
		if e.Agent != "" {
			name += "/" + e.Agent
		}
		fmt.Fprintf(&sb, "%-28s %-10s %8dms", name, e.Status, e.Duration().Milliseconds())
		if e.Error != "" {
			fmt.Fprintf(&sb, "  %s", e.Error)
		}
		sb.WriteString("\n")
	}
	p.printBox("RUN TIMELINE", strings.TrimSuffix(sb.String(), "\n"))
}
