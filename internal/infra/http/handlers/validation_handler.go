package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/visa-leads/internal/usecase"
)

// ValidationHandler checks a form as the user fills it in, without storing anything.
type ValidationHandler struct {
	Rules usecase.ValidationRules
}

func NewValidationHandler(rules usecase.ValidationRules) *ValidationHandler {
	return &ValidationHandler{Rules: rules}
}

type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields"`
}

// Handle validates the whole form, or only the field named by ?field=.
func (h *ValidationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input = input.Normalize()

	fields := map[string]string{}
	if field := r.URL.Query().Get("field"); field != "" {
		if !usecase.IsLeadField(field) {
			writeErrorResponse(w, http.StatusBadRequest, "Unknown field")
			return
		}
		if ve := usecase.ValidateLeadField(field, input, h.Rules); ve != nil {
			fields[ve.Field] = ve.Message
		}
	} else {
		fields = usecase.ValidationErrorsToMap(usecase.ValidateLeadInput(input, h.Rules))
	}

	writeJSON(w, http.StatusOK, ValidationResponse{Valid: len(fields) == 0, Fields: fields})
}
