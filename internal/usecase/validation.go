package usecase

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/visa-leads/internal/entity"
)

const (
	FieldFirstName             = "firstName"
	FieldLastName              = "lastName"
	FieldEmail                 = "email"
	FieldCountry               = "country"
	FieldLinkedInProfile       = "linkedInProfile"
	FieldVisasOfInterest       = "visasOfInterest"
	FieldAdditionalInformation = "additionalInformation"
	FieldResume                = "resume"
)

const (
	RuleRequired = "required"
	RuleFormat   = "format"
	RuleLength   = "length"
)

// MaxResumeBytes bounds the accepted resume upload.
const MaxResumeBytes = 10 << 20

// LeadFields is the order in which a batch validation reports errors.
var LeadFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldCountry,
	FieldLinkedInProfile,
	FieldVisasOfInterest,
	FieldAdditionalInformation,
	FieldResume,
}

var fieldTitles = map[string]string{
	FieldFirstName:             "First Name",
	FieldLastName:              "Last Name",
	FieldEmail:                 "Email",
	FieldCountry:               "Country of Citizenship",
	FieldLinkedInProfile:       "LinkedIn / Personal Website URL",
	FieldVisasOfInterest:       "Visa Categories of Interest",
	FieldAdditionalInformation: "Additional Information",
	FieldResume:                "Resume",
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	linkedInPattern = regexp.MustCompile(`(?i)^(https?://)?([a-z]{2,3}\.)?linkedin\.com/(in|pub)/[\w\-%.]+/?$`)
	websitePattern  = regexp.MustCompile(`(?i)^(https?://)?([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}(:\d{1,5})?(/\S*)?$`)
)

var resumeContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

type ValidationError struct {
	Field   string
	Message string
	Rule    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationRules switches the optional rules of the intake form.
type ValidationRules struct {
	RequireCountry bool
}

func IsLeadField(field string) bool {
	_, ok := fieldTitles[field]
	return ok
}

// ValidateLeadInput validates every field and returns the complete error set.
func ValidateLeadInput(input SubmitLeadInput, rules ValidationRules) []ValidationError {
	var errors []ValidationError
	for _, field := range LeadFields {
		if ve := ValidateLeadField(field, input, rules); ve != nil {
			errors = append(errors, *ve)
		}
	}
	return errors
}

// ValidateLeadField applies the rule of a single field, as the form does on
// change or blur. It returns nil when the field is valid or unknown.
func ValidateLeadField(field string, input SubmitLeadInput, rules ValidationRules) *ValidationError {
	switch field {
	case FieldFirstName:
		return validateText(field, input.FirstName, 100, true)
	case FieldLastName:
		return validateText(field, input.LastName, 100, true)
	case FieldEmail:
		if ve := validateText(field, input.Email, 254, true); ve != nil {
			return ve
		}
		if !emailPattern.MatchString(strings.TrimSpace(input.Email)) {
			return &ValidationError{Field: field, Message: "Please enter a valid email address", Rule: RuleFormat}
		}
	case FieldCountry:
		country := strings.TrimSpace(input.Country)
		if country == "" && !rules.RequireCountry {
			return nil
		}
		if !entity.IsValidCountry(country) {
			rule := RuleFormat
			if country == "" {
				rule = RuleRequired
			}
			return &ValidationError{Field: field, Message: "Please select your country of citizenship", Rule: rule}
		}
	case FieldLinkedInProfile:
		if ve := validateText(field, input.LinkedInProfile, 2048, true); ve != nil {
			return ve
		}
		profile := strings.TrimSpace(input.LinkedInProfile)
		if !linkedInPattern.MatchString(profile) && !websitePattern.MatchString(profile) {
			return &ValidationError{Field: field, Message: "Please enter a valid LinkedIn profile URL or website URL", Rule: RuleFormat}
		}
	case FieldVisasOfInterest:
		if len(input.VisasOfInterest) == 0 {
			return required(field)
		}
		for _, v := range input.VisasOfInterest {
			if !entity.VisaType(strings.TrimSpace(string(v))).IsValid() {
				return &ValidationError{Field: field, Message: "Please select valid visa categories", Rule: RuleFormat}
			}
		}
	case FieldAdditionalInformation:
		return validateText(field, input.AdditionalInformation, 5000, false)
	case FieldResume:
		return validateResume(input.Resume)
	}
	return nil
}

// ValidationErrorsToMap keys the messages by field, keeping the first one per field.
func ValidationErrorsToMap(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, ve := range errs {
		if _, exists := out[ve.Field]; !exists {
			out[ve.Field] = ve.Message
		}
	}
	return out
}

func validateText(field, value string, maxLen int, mandatory bool) *ValidationError {
	value = strings.TrimSpace(value)
	if value == "" {
		if mandatory {
			return required(field)
		}
		return nil
	}
	if utf8.RuneCountInString(value) > maxLen {
		return &ValidationError{Field: field, Message: fieldTitles[field] + " is too long", Rule: RuleLength}
	}
	return nil
}

func validateResume(file *entity.Attachment) *ValidationError {
	if file == nil {
		return nil
	}
	if len(file.Data) == 0 {
		return &ValidationError{Field: FieldResume, Message: "Resume file is empty", Rule: RuleRequired}
	}
	if len(file.Data) > MaxResumeBytes {
		return &ValidationError{Field: FieldResume, Message: "Resume must be 10 MB or smaller", Rule: RuleLength}
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(file.ContentType, ";", 2)[0]))
	ext := strings.ToLower(filepath.Ext(file.Name))
	if !resumeContentTypes[ct] && !resumeExtensions[ext] {
		return &ValidationError{Field: FieldResume, Message: "Resume must be a PDF or Word document", Rule: RuleFormat}
	}
	return nil
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fieldTitles[field] + " is required", Rule: RuleRequired}
}
