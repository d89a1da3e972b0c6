package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// visitHeaders are copied into domain.Visit for the locator
var visitHeaders = []string{headerCFCountry, headerCountry, headerCity}

type HTTPHandler struct {
	service  ports.LinkService
	shortURL func(code string) string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHTTPHandler(service ports.LinkService, shortURL func(code string) string, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		service:  service,
		shortURL: shortURL,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL     string `json:"original_url" validate:"required,max=2048"`
	CustomCode      string `json:"custom_code,omitempty" validate:"omitempty,alphanum,min=3,max=20"`
	ValidityMinutes int    `json:"validity_minutes,omitempty"`
}

// LinkResponse is a link plus the fields derived from it
type LinkResponse struct {
	domain.ShortenedLink
	ShortURL  string    `json:"short_url"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

type StatsResponse struct {
	Summary domain.ClickSummary  `json:"summary"`
	Clicks  []domain.ClickRecord `json:"clicks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		msg, kind := describeValidation(err)
		linksCreated.WithLabelValues(kind).Inc()
		writeError(w, http.StatusBadRequest, msg, kind)
		return
	}

	link, err := h.service.Shorten(r.Context(), domain.CreateLinkInput{
		OriginalURL:     req.OriginalURL,
		CustomCode:      req.CustomCode,
		ValidityMinutes: req.ValidityMinutes,
	})
	if err != nil {
		kind := domain.ErrorKind(err)
		linksCreated.WithLabelValues(kind).Inc()
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("create link failed", slog.String("error", err.Error()))
		}
		writeError(w, statusFor(err), err.Error(), kind)
		return
	}

	linksCreated.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, h.toResponse(*link))
}

// List Links in insertion order
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	links := h.service.ListLinks(r.Context())

	resp := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, h.toResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  resp,
		"total": len(resp),
	})
}

// Delete Link. Unknown ids succeed as well.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id missing", "invalid_request")
		return
	}

	if !h.service.DeleteLink(r.Context(), id) {
		h.logger.Debug("delete of unknown link", slog.String("id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get Stats for a Link
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	clicks, summary := h.service.GetLinkStats(r.Context(), code)
	writeJSON(w, http.StatusOK, StatsResponse{Summary: summary, Clicks: clicks})
}

// Get Dashboard
func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetDashboard(r.Context()))
}

// Redirect to original URL. The click is recorded before the redirect is written.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "short code missing", "invalid_request")
		return
	}

	res := h.service.Resolve(r.Context(), code, visitFrom(r))
	resolutions.WithLabelValues(res.State.String()).Inc()

	switch res.State {
	case domain.StateRedirecting:
		http.Redirect(w, r, res.Target, http.StatusFound)
	case domain.StateFoundExpired:
		writeJSON(w, http.StatusGone, map[string]interface{}{
			"error":      "short URL has expired",
			"kind":       res.State.String(),
			"short_code": code,
			"expired_at": res.Link.ExpiresAt(),
		})
	default:
		writeError(w, http.StatusNotFound, "short URL not found", domain.StateNotFound.String())
	}
}

func (h *HTTPHandler) toResponse(l domain.ShortenedLink) LinkResponse {
	return LinkResponse{
		ShortenedLink: l,
		ShortURL:      h.shortURL(l.ShortCode),
		ExpiresAt:     l.ExpiresAt(),
		Expired:       h.service.IsExpired(l),
	}
}

func visitFrom(r *http.Request) domain.Visit {
	v := domain.Visit{
		Referrer:   r.Referer(),
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Headers:    make(map[string]string, len(visitHeaders)),
	}
	for _, name := range visitHeaders {
		if val := r.Header.Get(name); val != "" {
			v.Headers[name] = val
		}
	}
	return v
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrInvalidShortCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateShortCode):
		return http.StatusConflict
	case errors.Is(err, domain.ErrActiveLinkLimitExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func describeValidation(err error) (string, string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request", "invalid_request"
	}
	switch verrs[0].Field() {
	case "OriginalURL":
		return domain.ErrInvalidURL.Error(), domain.ErrorKind(domain.ErrInvalidURL)
	case "CustomCode":
		return domain.ErrInvalidShortCode.Error(), domain.ErrorKind(domain.ErrInvalidShortCode)
	default:
		return "invalid request", "invalid_request"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: kind})
}
