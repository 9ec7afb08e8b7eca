package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/http/middleware"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

// maxSubmissionBytes leaves room for the form fields around the largest resume.
const maxSubmissionBytes = usecase.MaxResumeBytes + 1<<20

type LeadHandler struct {
	Submit       *usecase.SubmitLeadUseCase
	UpdateStatus *usecase.UpdateLeadStatusUseCase
	View         *usecase.ListLeadsUseCase
	Repo         entity.LeadRepositoryInterface
	RateLimiter  *RateLimiter
	Log          zerolog.Logger
}

func NewLeadHandler(
	submit *usecase.SubmitLeadUseCase,
	updateStatus *usecase.UpdateLeadStatusUseCase,
	view *usecase.ListLeadsUseCase,
	repo entity.LeadRepositoryInterface,
	rateLimiter *RateLimiter,
	log zerolog.Logger,
) *LeadHandler {
	return &LeadHandler{
		Submit:       submit,
		UpdateStatus: updateStatus,
		View:         view,
		Repo:         repo,
		RateLimiter:  rateLimiter,
		Log:          log.With().Str("component", "lead_handler").Logger(),
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HandleCreate accepts a JSON body or a multipart form with a "lead" JSON part
// and an optional "resume" file.
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.RateLimiter.Allow(clientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	input, status, message := decodeSubmission(r)
	if status != 0 {
		writeErrorResponse(w, status, message)
		return
	}

	lead, err := h.Submit.Execute(r.Context(), input)
	if err != nil {
		switch {
		case usecase.HasCode(err, usecase.CodeUploadTimeout):
			middleware.RecordResumeUpload("timeout")
		case usecase.HasCode(err, usecase.CodeUploadFailed):
			middleware.RecordResumeUpload("failed")
		}
		respondError(w, h.Log, err)
		return
	}

	middleware.RecordLeadSubmitted()
	if lead.ResumeURL != "" {
		middleware.RecordResumeUpload("ok")
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Repo.FindAll(r.Context())
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	lead, err := h.UpdateStatus.Execute(r.Context(), usecase.UpdateLeadStatusInput{
		ID:     chi.URLParam(r, "id"),
		Status: req.Status,
	})
	if err != nil {
		respondError(w, h.Log, err)
		return
	}

	middleware.RecordLeadStatusChange(string(lead.Status))
	writeJSON(w, http.StatusOK, lead)
}

// HandleView returns one page of the admin dashboard table.
func (h *LeadHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status, err := usecase.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}
	sortRule, err := usecase.ParseSortRule(q.Get("sort"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid sort")
		return
	}
	page, err := intParam(q.Get("page"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid page")
		return
	}
	pageSize, err := intParam(q.Get("pageSize"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid pageSize")
		return
	}

	view, err := h.View.Execute(r.Context(), usecase.LeadQuery{
		Search:   q.Get("search"),
		Status:   status,
		Sort:     sortRule,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeSubmission returns a non-zero status when the request cannot be read.
func decodeSubmission(r *http.Request) (usecase.SubmitLeadInput, int, string) {
	var input usecase.SubmitLeadInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			status, message := bodyErrorStatus(err)
			return input, status, message
		}
		return input, 0, ""
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		status, message := bodyErrorStatus(err)
		if status == http.StatusBadRequest {
			message = "Invalid multipart form"
		}
		return input, status, message
	}

	if err := json.Unmarshal([]byte(r.FormValue("lead")), &input); err != nil {
		return input, http.StatusBadRequest, "Invalid JSON"
	}

	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return input, 0, ""
	}
	if err != nil {
		return input, http.StatusBadRequest, "Invalid multipart form"
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return input, http.StatusBadRequest, "Invalid multipart form"
	}
	input.Resume = &entity.Attachment{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return input, 0, ""
}

func bodyErrorStatus(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "Request body too large"
	}
	return http.StatusBadRequest, "Invalid JSON"
}

func intParam(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// clientIP reads RemoteAddr, which chi's RealIP middleware has already
// replaced with the forwarded address when there is one.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
