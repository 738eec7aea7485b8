package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joinportal/intake/internal/handler/dto"
	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/middleware"
	"github.com/joinportal/intake/internal/model"
	"github.com/joinportal/intake/internal/service"
)

// ApplicationSubmitter accepts join applications.
type ApplicationSubmitter interface {
	Submit(ctx context.Context, input service.SubmitApplicationInput) (*model.Application, error)
}

// ApplicationHandler handles the public intake endpoint.
type ApplicationHandler struct {
	svc     ApplicationSubmitter
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc ApplicationSubmitter, logger *slog.Logger, recorder metrics.Recorder) *ApplicationHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ApplicationHandler{
		svc:     svc,
		logger:  logger,
		metrics: recorder,
	}
}

// Submit handles POST /submit-application.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.IncApplicationRejected(metrics.ReasonInvalidBody)

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: dto.MsgPayloadTooLarge})
			return
		}

		// An unreadable body is not a field failure; it gets the generic 500.
		h.logger.Error("invalid_body",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternal})
		return
	}

	app, err := h.svc.Submit(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("application_submitted",
		"application_id", app.ID,
		"has_experience", app.HasExperience(),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.SubmitApplicationResponse{
		Success: true,
		ID:      app.ID,
	})
}

// handleServiceError maps service errors to HTTP responses.
// Only the rejected field name is logged, never applicant data.
func (h *ApplicationHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.logger.Info("application_rejected",
			"reason", metrics.ReasonValidation,
			"field", vErr.Field,
			"request_id", requestID,
		)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: vErr.Message(), Field: vErr.Field})

	case errors.Is(err, service.ErrDuplicateApplication):
		h.logger.Info("application_rejected",
			"reason", metrics.ReasonDuplicate,
			"request_id", requestID,
		)
		writeJSON(w, http.StatusConflict, dto.DuplicateError())

	case errors.Is(err, service.ErrStorage):
		h.logger.Error("storage_error",
			"error", err.Error(),
			"request_id", requestID,
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgSubmitFailed})

	default:
		h.logger.Error("unexpected error",
			"error", err.Error(),
			"request_id", requestID,
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: dto.MsgInternal})
	}
}
