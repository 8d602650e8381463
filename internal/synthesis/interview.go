package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/panel"
	"github.com/jonathan/hiring-panel/internal/types"
)

// Per-interviewer limits on memory-derived questions
const (
	maxPriorityAreas      = 3
	maxAmbiguityQuestions = 2
	maxMissingQuestions   = 2
	maxConflictQuestions  = 1
	clarificationCategory = "clarification"
)

var defaultFollowUps = []string{
	"What was your specific contribution compared with the rest of the team?",
	"How did you measure whether it worked?",
}

// buildInterviewPlan gives every reviewing role a plan targeting its weakest and most
// disputed categories plus the open questions in its working memory.
func buildInterviewPlan(rubric *types.Rubric, reviews []types.AgentReview, memory map[string]types.WorkingMemory, packet *types.DecisionPacket, cfg config.SynthesisConfig) *types.InterviewPlan {
	plan := &types.InterviewPlan{
		OverallFocus: overallFocus(packet),
		Interviewers: []types.InterviewerPlan{},
	}
	for _, r := range reviews {
		mem := memory[r.AgentName]
		ip := interviewerPlan(rubric, r, mem, packet, cfg)
		plan.TotalTimeEstimateMinutes += ip.TimeEstimateMinutes
		plan.Interviewers = append(plan.Interviewers, ip)
	}
	return plan
}

func overallFocus(p *types.DecisionPacket) string {
	switch {
	case len(p.MustHaveGaps) > 0:
		return "Verify must-have requirements: " + strings.Join(p.MustHaveGaps, ", ")
	case len(p.Disagreements) > 0:
		names := make([]string, 0, len(p.Disagreements))
		for _, d := range p.Disagreements {
			names = append(names, d.CategoryName)
		}
		return "Resolve panel disagreements on " + strings.Join(names, ", ")
	case len(p.TopRisks) > 0:
		return "Probe top risks: " + strings.Join(p.TopRisks, "; ")
	default:
		return "Confirm strengths and culture fit"
	}
}

func interviewerPlan(rubric *types.Rubric, r types.AgentReview, mem types.WorkingMemory, packet *types.DecisionPacket, cfg config.SynthesisConfig) types.InterviewerPlan {
	areas := priorityAreas(rubric, r, packet)
	qs := &questionSet{limit: cfg.MaxQuestionsPerInterviewer, items: []types.InterviewQuestion{}, seen: map[string]bool{}}

	for _, name := range areas {
		c, _ := rubric.Category(name)
		cs, _ := r.Score(name)
		qs.add(categoryQuestion(c, cs, disagreementFor(packet, name)))
	}

	for i, a := range mem.Ambiguities {
		if i >= maxAmbiguityQuestions {
			break
		}
		qs.add(types.InterviewQuestion{
			QuestionText:    fmt.Sprintf("Can you clarify the following from your resume: %s?", strings.TrimRight(strings.TrimSpace(a), "?.")),
			CategoryProbed:  clarificationCategory,
			WhatToListenFor: []string{"A specific, verifiable answer", "Consistency with the rest of the resume"},
			RedFlags:        []string{"Vague or shifting explanation"},
			FollowUpPrompts: []string{"Who else could confirm this?"},
		})
	}
	for i, m := range mem.MissingInformation {
		if i >= maxMissingQuestions {
			break
		}
		qs.add(types.InterviewQuestion{
			QuestionText:    fmt.Sprintf("The resume does not mention %s. Can you describe your experience with it?", strings.TrimRight(strings.TrimSpace(m), ".")),
			CategoryProbed:  clarificationCategory,
			WhatToListenFor: []string{"Concrete examples with scope and outcome"},
			RedFlags:        []string{"No hands-on experience behind the claim"},
			FollowUpPrompts: defaultFollowUps,
		})
	}
	for i, cr := range mem.Contradictions() {
		if i >= maxConflictQuestions {
			break
		}
		qs.add(types.InterviewQuestion{
			QuestionText:    fmt.Sprintf("Your %s seems to conflict with the requirement \"%s\". How do you reconcile the two?", cr.ResumeSection, cr.JDRequirement),
			CategoryProbed:  clarificationCategory,
			WhatToListenFor: []string{"Honest acknowledgement of the gap", "A credible plan to close it"},
			RedFlags:        []string{"Denial of an evident mismatch"},
			FollowUpPrompts: []string{"What would you need in the first 90 days to close it?"},
		})
	}
	for _, q := range r.FollowUpQuestions {
		qs.add(types.InterviewQuestion{
			QuestionText:    strings.TrimSpace(q),
			CategoryProbed:  clarificationCategory,
			WhatToListenFor: []string{"Specific examples"},
			RedFlags:        []string{"Generic answers"},
			FollowUpPrompts: defaultFollowUps,
		})
	}

	return types.InterviewerPlan{
		InterviewerRole:     roleTitle(r.AgentName),
		TimeEstimateMinutes: cfg.BaseMinutesPerInterviewer + cfg.MinutesPerQuestion*len(qs.items),
		PriorityAreas:       areas,
		Questions:           qs.items,
	}
}

// priorityAreas picks the categories this interviewer should own: must-have gaps first,
// then disputed categories by delta, then the agent's lowest scores below the top anchor.
func priorityAreas(rubric *types.Rubric, r types.AgentReview, packet *types.DecisionPacket) []string {
	var areas []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] && len(areas) < maxPriorityAreas {
			seen[name] = true
			areas = append(areas, name)
		}
	}

	for _, g := range packet.MustHaveGaps {
		add(g)
	}

	disputed := append([]types.Disagreement(nil), packet.Disagreements...)
	sort.SliceStable(disputed, func(i, j int) bool { return disputed[i].ScoreDelta > disputed[j].ScoreDelta })
	for _, d := range disputed {
		if _, ok := d.AgentScores[r.AgentName]; ok {
			add(d.CategoryName)
		}
	}

	type weak struct {
		name     string
		gap      float64
		mustHave bool
	}
	var low []weak
	for _, c := range rubric.Categories {
		cs, ok := r.Score(c.Name)
		if !ok {
			continue
		}
		_, hi := c.ScoreRange()
		if cs.Score < hi {
			low = append(low, weak{c.Name, hi - cs.Score, c.MustHave})
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		if low[i].gap != low[j].gap {
			return low[i].gap > low[j].gap
		}
		if low[i].mustHave != low[j].mustHave {
			return low[i].mustHave
		}
		return low[i].name < low[j].name
	})
	for _, w := range low {
		add(w.name)
	}
	if areas == nil {
		areas = []string{}
	}
	return areas
}

func categoryQuestion(c types.RubricCategory, cs types.CategoryScore, d *types.Disagreement) types.InterviewQuestion {
	top := c.HighestAnchor()
	bottom := c.LowestAnchor()

	text := fmt.Sprintf("Walk me through a specific project that shows %s.", lowerFirst(strings.TrimRight(c.Description, ".")))
	if len(cs.Gaps) > 0 {
		text = fmt.Sprintf("We could not find evidence of %s on your resume. Tell me about a time you did this.", strings.TrimRight(cs.Gaps[0], "."))
	}

	listen := append([]string{top.Description}, top.Indicators...)
	flags := append([]string{bottom.Description}, bottom.Indicators...)
	followUps := append([]string(nil), defaultFollowUps...)
	if d != nil {
		followUps = append([]string{fmt.Sprintf("Panel scores diverged by %.1f here; ask for evidence that settles it.", d.ScoreDelta)}, followUps...)
	}

	return types.InterviewQuestion{
		QuestionText:    text,
		CategoryProbed:  c.Name,
		WhatToListenFor: listen,
		RedFlags:        flags,
		FollowUpPrompts: followUps,
	}
}

func disagreementFor(p *types.DecisionPacket, category string) *types.Disagreement {
	for i := range p.Disagreements {
		if p.Disagreements[i].CategoryName == category {
			return &p.Disagreements[i]
		}
	}
	return nil
}

type questionSet struct {
	limit int
	items []types.InterviewQuestion
	seen  map[string]bool
}

func (q *questionSet) add(iq types.InterviewQuestion) {
	key := normalize(iq.QuestionText)
	if key == "" || q.seen[key] || len(q.items) >= q.limit {
		return
	}
	q.seen[key] = true
	q.items = append(q.items, iq)
}

func roleTitle(agent string) string {
	if role, ok := panel.RoleByName(agent); ok {
		return role.Title
	}
	if agent == "" {
		return agent
	}
	return strings.ToUpper(agent[:1]) + agent[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
