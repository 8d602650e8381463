package panel

import "strings"

// Role describes one panel seat
type Role struct {
	// Name is the agent name used as the key in workflow state
	Name string
	// Title is the human-readable interviewer role
	Title string
	Focus []string
}

// Built-in panel roles
var (
	HR = Role{
		Name:  "hr",
		Title: "HR",
		Focus: []string{
			"Seniority signals: does the experience match the claimed level",
			"Leadership and collaboration: team leadership, mentorship, cross-functional work",
			"Communication clarity: is the resume clear and professional",
			"Career trajectory: does the progression make sense, any red flags",
			"Cultural fit indicators: alignment with company values, work style, domain interest",
		},
	}
	Technical = Role{
		Name:  "technical",
		Title: "Technical",
		Focus: []string{
			"Technical depth: framework expertise, system design, performance work",
			"Production readiness: deployment practices, monitoring, scale, error handling",
			"Reliability and guardrails: robustness, fallback strategies, observability",
			"Orchestration depth: coordination of services or agents, state management, complex workflows",
			"Practical experience: hands-on implementation rather than toy demos",
		},
	}
	Compliance = Role{
		Name:  "compliance",
		Title: "Compliance",
		Focus: []string{
			"PII handling awareness: privacy considerations in the systems the candidate built",
			"Bias risk identification: awareness of fairness and ethical concerns",
			"Security posture: data protection, access controls, secure practices",
			"Data retention practices: data lifecycle and regulatory requirements",
			"Risk assessment: compliance or ethical risks in past work. This is a risk review, not legal advice",
		},
	}
	Product = Role{
		Name:  "product",
		Title: "Product",
		Focus: []string{
			"Product sense: understanding of users, problems and outcomes",
			"Impact: measurable results tied to business goals",
			"Prioritization: trade-offs between scope, quality and time",
			"Stakeholder work: collaboration with design, sales and customers",
		},
	}
)

// Roles returns the configured panel in a fixed order.
func Roles(includeProduct bool) []Role {
	roles := []Role{HR, Technical, Compliance}
	if includeProduct {
		roles = append(roles, Product)
	}
	return roles
}

// RoleByName finds a built-in role by agent name.
func RoleByName(name string) (Role, bool) {
	for _, r := range Roles(true) {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// FocusText renders the focus list as prompt bullets.
func (r Role) FocusText() string {
	return "- " + strings.Join(r.Focus, "\n- ")
}
