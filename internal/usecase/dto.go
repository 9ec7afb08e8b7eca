package usecase

import (
	"strings"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// SubmitLeadInput is the candidate lead sent by the intake form.
type SubmitLeadInput struct {
	FirstName             string            `json:"firstName"`
	LastName              string            `json:"lastName"`
	Email                 string            `json:"email"`
	LinkedInProfile       string            `json:"linkedInProfile"`
	VisasOfInterest       []entity.VisaType `json:"visasOfInterest"`
	AdditionalInformation string            `json:"additionalInformation,omitempty"`
	Country               string            `json:"country,omitempty"`

	// Resume arrives out of band (multipart upload), never in the JSON body.
	Resume *entity.Attachment `json:"-"`
}

// Normalize trims text fields and drops repeated visa categories, keeping
// the first occurrence of each.
func (in SubmitLeadInput) Normalize() SubmitLeadInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.LinkedInProfile = strings.TrimSpace(in.LinkedInProfile)
	in.AdditionalInformation = strings.TrimSpace(in.AdditionalInformation)
	in.Country = strings.TrimSpace(in.Country)

	if in.VisasOfInterest != nil {
		seen := make(map[entity.VisaType]bool, len(in.VisasOfInterest))
		visas := make([]entity.VisaType, 0, len(in.VisasOfInterest))
		for _, v := range in.VisasOfInterest {
			v = entity.VisaType(strings.TrimSpace(string(v)))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			visas = append(visas, v)
		}
		in.VisasOfInterest = visas
	}
	return in
}

type UpdateLeadStatusInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
