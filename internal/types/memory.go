package types

import (
	"slices"
	"time"
)

// Importance levels for key observations
const (
	ImportanceMinor    = "minor"
	ImportanceModerate = "moderate"
	ImportanceCritical = "critical"
)

// Alignment types for cross references
const (
	AlignmentSupported          = "supported"
	AlignmentPartiallySupported = "partially_supported"
	AlignmentContradictory      = "contradictory"
	AlignmentUnverifiable       = "unverifiable"
)

// CrossReference links a resume section to a job requirement
type CrossReference struct {
	ResumeSection string `json:"resume_section" validate:"required"`
	JDRequirement string `json:"jd_requirement" validate:"required"`
	AlignmentType string `json:"alignment_type" validate:"oneof=supported partially_supported contradictory unverifiable"`
}

// KeyObservation is a single first-pass finding tied to a rubric category
type KeyObservation struct {
	Category         string           `json:"category" validate:"required"`
	ObservationText  string           `json:"observation_text" validate:"required"`
	Importance       string           `json:"importance" validate:"oneof=minor moderate critical"`
	EvidenceLocation string           `json:"evidence_location,omitempty"`
	CrossReferences  []CrossReference `json:"cross_references,omitempty" validate:"dive"`
}

// WorkingMemory holds an agent's first-pass structured notes.
// It is produced once per agent and read only by that agent's second pass.
type WorkingMemory struct {
	AgentName          string           `json:"agent_name" validate:"required"`
	KeyObservations    []KeyObservation `json:"key_observations" validate:"min=1,dive"`
	MissingInformation []string         `json:"missing_information,omitempty"`
	Ambiguities        []string         `json:"ambiguities,omitempty"`
	TimelineNotes      []string         `json:"timeline_notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at,omitempty"`
}

// ObservationsFor returns the observations recorded for a category, in order.
func (m *WorkingMemory) ObservationsFor(category string) []KeyObservation {
	var out []KeyObservation
	for _, o := range m.KeyObservations {
		if o.Category == category {
			out = append(out, o)
		}
	}
	return out
}

// Contradictions returns every cross reference marked contradictory.
func (m *WorkingMemory) Contradictions() []CrossReference {
	var out []CrossReference
	for _, o := range m.KeyObservations {
		for _, cr := range o.CrossReferences {
			if cr.AlignmentType == AlignmentContradictory {
				out = append(out, cr)
			}
		}
	}
	return out
}

// Clone returns a deep copy.
func (m WorkingMemory) Clone() WorkingMemory {
	out := m
	out.KeyObservations = slices.Clone(m.KeyObservations)
	for i := range out.KeyObservations {
		out.KeyObservations[i].CrossReferences = slices.Clone(out.KeyObservations[i].CrossReferences)
	}
	out.MissingInformation = slices.Clone(m.MissingInformation)
	out.Ambiguities = slices.Clone(m.Ambiguities)
	out.TimelineNotes = slices.Clone(m.TimelineNotes)
	return out
}
