package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// respondError maps use case and entity errors to HTTP responses. Anything it
// does not recognise is logged and answered with a generic 500.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var vfe *usecase.ValidationFailedError
	switch {
	case errors.As(err, &vfe):
		message := "Validation failed"
		if vfe.MissingRequired() {
			message = "Missing required fields"
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Fields: vfe.Fields()})
	case errors.Is(err, entity.ErrLeadNotFound):
		writeErrorResponse(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, entity.ErrInvalidStatus):
		writeErrorResponse(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, entity.ErrIllegalTransition):
		writeErrorResponse(w, http.StatusBadRequest, "Invalid status transition")
	case usecase.HasCode(err, usecase.CodeUploadTimeout):
		log.Warn().Err(err).Msg("resume upload timed out")
		writeErrorResponse(w, http.StatusGatewayTimeout, "Resume upload timed out")
	case usecase.HasCode(err, usecase.CodeUploadFailed):
		log.Error().Err(err).Msg("resume upload failed")
		writeErrorResponse(w, http.StatusBadGateway, "Resume upload failed")
	default:
		log.Error().Err(err).Msg("request failed")
		writeErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
