package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidStatus     = errors.New("invalid status")
)

// UnknownCountry is stored when the submitter did not pick a country.
const UnknownCountry = "Unknown"

type VisaType string

const (
	VisaO1     VisaType = "O-1"
	VisaEB1A   VisaType = "EB-1A"
	VisaEB2NIW VisaType = "EB-2 NIW"
	VisaUnsure VisaType = "I don't know"
)

// VisaTypes lists the categories offered on the intake form, in display order.
var VisaTypes = []VisaType{VisaO1, VisaEB1A, VisaEB2NIW, VisaUnsure}

func (v VisaType) IsValid() bool {
	for _, known := range VisaTypes {
		if v == known {
			return true
		}
	}
	return false
}

type Lead struct {
	ID                    string     `json:"id"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	Email                 string     `json:"email"`
	LinkedInProfile       string     `json:"linkedInProfile"`
	VisasOfInterest       []VisaType `json:"visasOfInterest"`
	ResumeURL             string     `json:"resumeUrl,omitempty"`
	AdditionalInformation string     `json:"additionalInformation,omitempty"`
	Status                Status     `json:"status"`
	SubmittedAt           time.Time  `json:"submittedAt"`
	Country               string     `json:"country,omitempty"`
}

// Clone returns a copy that shares no mutable state with l.
func (l Lead) Clone() Lead {
	if l.VisasOfInterest != nil {
		visas := make([]VisaType, len(l.VisasOfInterest))
		copy(visas, l.VisasOfInterest)
		l.VisasOfInterest = visas
	}
	return l
}

func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// Attachment is a file received with a submission, before it is uploaded.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// LeadRepositoryInterface is the single owner of the lead collection.
// Create assigns ID, Status and SubmittedAt on the given lead.
type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindAll(ctx context.Context) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error)
	Ping(ctx context.Context) error
}
