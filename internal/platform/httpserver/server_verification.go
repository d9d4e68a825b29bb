package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzentities "carebridge/contexts/identity-access/authorization-service/domain/entities"
	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	verificationerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
	verificationhttp "carebridge/contexts/trust-safety/verification-service/transport/http"
)

func submissionActor(identity authzentities.Identity) ports.Actor {
	linked := make([]string, 0, len(identity.Linked))
	for id := range identity.Linked {
		linked = append(linked, id)
	}
	return ports.Actor{ID: identity.ID, Role: string(identity.Role), Linked: linked}
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req verificationhttp.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.verification.Handler.CreateSubmissionHandler(r.Context(), submissionActor(identity), req)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	filter := ports.ListFilter{
		Status:      entities.SubmissionStatus(query.Get("status")),
		Type:        entities.SubmissionType(query.Get("type")),
		SubmitterID: query.Get("submitter_id"),
	}
	resp, err := s.verification.Handler.ListSubmissionsHandler(r.Context(), submissionActor(identity), filter)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.verification.Handler.GetSubmissionHandler(r.Context(), submissionActor(identity), r.PathValue("submission_id"))
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req verificationhttp.RecommendSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.verification.Handler.RecommendSubmissionHandler(
		r.Context(),
		submissionActor(identity),
		r.PathValue("submission_id"),
		req,
	)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecideSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req verificationhttp.DecideSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.verification.Handler.DecideSubmissionHandler(
		r.Context(),
		submissionActor(identity),
		r.PathValue("submission_id"),
		req,
	)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSubmissionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, verificationerrors.ErrForbidden):
		writeForbidden(w)
	case errors.Is(err, verificationerrors.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, verificationerrors.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, verificationerrors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, verificationerrors.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate_submission", err.Error())
	case errors.Is(err, verificationerrors.ErrNotAssignedModerator):
		writeError(w, http.StatusConflict, "not_assigned_moderator", err.Error())
	case errors.Is(err, verificationerrors.ErrConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, verificationerrors.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
