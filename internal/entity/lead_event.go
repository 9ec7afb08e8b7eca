package entity

import "time"

type LeadEventType string

const (
	LeadSubmitted     LeadEventType = "lead.submitted"
	LeadStatusChanged LeadEventType = "lead.status_changed"
)

// LeadEvent is published after a lead is created or changes status.
type LeadEvent struct {
	Type            LeadEventType `json:"type"`
	LeadID          string        `json:"lead_id"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Country         string        `json:"country,omitempty"`
	Status          Status        `json:"status"`
	VisasOfInterest []VisaType    `json:"visas_of_interest,omitempty"`
	ResumeURL       string        `json:"resume_url,omitempty"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

func NewLeadEvent(t LeadEventType, lead Lead, at time.Time) LeadEvent {
	lead = lead.Clone()
	return LeadEvent{
		Type:            t,
		LeadID:          lead.ID,
		FirstName:       lead.FirstName,
		LastName:        lead.LastName,
		Email:           lead.Email,
		Country:         lead.Country,
		Status:          lead.Status,
		VisasOfInterest: lead.VisasOfInterest,
		ResumeURL:       lead.ResumeURL,
		OccurredAt:      at,
	}
}
