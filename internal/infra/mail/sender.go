package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/xavierca1/visa-leads/internal/entity"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("mail").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.html"),
)

const submittedAtLayout = "Jan 2, 2006, 3:04 PM MST"

// Dialer delivers messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From       string
	AdminEmail string
	Dialer     Dialer
}

func NewEmailSender(cfg Config) *EmailSender {
	return &EmailSender{
		From:       cfg.From,
		AdminEmail: cfg.AdminEmail,
		Dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendNewLeadNotification tells the admin inbox that a lead came in.
func (s *EmailSender) SendNewLeadNotification(ctx context.Context, event entity.LeadEvent) error {
	if s.AdminEmail == "" {
		return nil
	}
	data := NewLeadEmailData{
		FullName:    strings.TrimSpace(event.FirstName + " " + event.LastName),
		Email:       event.Email,
		Country:     countryName(event.Country),
		Visas:       visaNames(event.VisasOfInterest),
		ResumeURL:   event.ResumeURL,
		SubmittedAt: event.OccurredAt.Format(submittedAtLayout),
	}
	subject := fmt.Sprintf("New lead: %s", data.FullName)
	return s.send(ctx, s.AdminEmail, subject, "new_lead.html", data)
}

// SendLeadConfirmation thanks the submitter.
func (s *EmailSender) SendLeadConfirmation(ctx context.Context, event entity.LeadEvent) error {
	data := ConfirmationEmailData{
		FirstName: event.FirstName,
		Visas:     visaNames(event.VisasOfInterest),
		ReplyTo:   s.From,
	}
	return s.send(ctx, event.Email, "We received your information", "confirmation.html", data)
}

// SendPendingDigest lists leads that have stayed Pending for longer than minAge.
func (s *EmailSender) SendPendingDigest(ctx context.Context, leads []entity.Lead, minAge time.Duration) error {
	if s.AdminEmail == "" {
		return errors.New("admin e-mail not configured")
	}
	data := DigestEmailData{Count: len(leads), MinAge: minAge.String()}
	for _, l := range leads {
		data.Leads = append(data.Leads, DigestRow{
			Name:        l.FullName(),
			Email:       l.Email,
			Country:     countryName(l.Country),
			SubmittedAt: l.SubmittedAt.Format(submittedAtLayout),
		})
	}
	subject := fmt.Sprintf("%d lead(s) waiting for outreach", len(leads))
	return s.send(ctx, s.AdminEmail, subject, "digest.html", data)
}

func (s *EmailSender) send(ctx context.Context, to, subject, tmpl string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp mail: %w", err)
	}
	return nil
}

func countryName(code string) string {
	if label, ok := entity.CountryLabel(code); ok {
		return label
	}
	if code == "" {
		return entity.UnknownCountry
	}
	return code
}

func visaNames(visas []entity.VisaType) []string {
	out := make([]string, 0, len(visas))
	for _, v := range visas {
		out = append(out, string(v))
	}
	return out
}
