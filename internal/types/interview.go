package types

// InterviewQuestion is a targeted question for one interviewer
type InterviewQuestion struct {
	QuestionText    string   `json:"question_text"`
	CategoryProbed  string   `json:"category_probed"`
	WhatToListenFor []string `json:"what_to_listen_for"`
	RedFlags        []string `json:"red_flags"`
	FollowUpPrompts []string `json:"follow_up_prompts"`
}

// InterviewerPlan is the portion of the interview owned by one panel role
type InterviewerPlan struct {
	InterviewerRole     string              `json:"interviewer_role"`
	TimeEstimateMinutes int                 `json:"time_estimate_minutes"`
	PriorityAreas       []string            `json:"priority_areas"`
	Questions           []InterviewQuestion `json:"questions"`
}

// InterviewPlan is the role-by-role follow-up interview derived from synthesis
type InterviewPlan struct {
	OverallFocus             string            `json:"overall_focus"`
	TotalTimeEstimateMinutes int               `json:"total_time_estimate_minutes"`
	Interviewers             []InterviewerPlan `json:"interviewers"`
}
