package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzentities "carebridge/contexts/identity-access/authorization-service/domain/entities"
	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	disputeerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	disputehttp "carebridge/contexts/trust-safety/dispute-service/transport/http"
)

func disputeActor(identity authzentities.Identity) ports.Actor {
	linked := make([]string, 0, len(identity.Linked))
	for id := range identity.Linked {
		linked = append(linked, id)
	}
	return ports.Actor{ID: identity.ID, Role: string(identity.Role), Linked: linked}
}

func (s *Server) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req disputehttp.RaiseDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.disputes.Handler.RaiseDisputeHandler(r.Context(), disputeActor(identity), req)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListDisputes(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	filter := ports.ListFilter{
		Status:     entities.DisputeStatus(query.Get("status")),
		Type:       entities.DisputeType(query.Get("type")),
		JobID:      query.Get("job_id"),
		RaisedByID: query.Get("raised_by_id"),
	}
	resp, err := s.disputes.Handler.ListDisputesHandler(r.Context(), disputeActor(identity), filter)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDispute(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.disputes.Handler.GetDisputeHandler(r.Context(), disputeActor(identity), r.PathValue("dispute_id"))
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignModerator(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.disputes.Handler.AssignModeratorHandler(r.Context(), disputeActor(identity), r.PathValue("dispute_id"))
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEscalateDispute(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req disputehttp.EscalateDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.disputes.Handler.EscalateDisputeHandler(
		r.Context(),
		disputeActor(identity),
		r.PathValue("dispute_id"),
		req,
	)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	var req disputehttp.ResolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.disputes.Handler.ResolveDisputeHandler(
		r.Context(),
		disputeActor(identity),
		r.PathValue("dispute_id"),
		req,
	)
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseDispute(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.resolveIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.disputes.Handler.CloseDisputeHandler(r.Context(), disputeActor(identity), r.PathValue("dispute_id"))
	if err != nil {
		writeDisputeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDisputeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, disputeerrors.ErrForbidden):
		writeForbidden(w)
	case errors.Is(err, disputeerrors.ErrDisputeNotFound):
		writeError(w, http.StatusNotFound, "dispute_not_found", err.Error())
	case errors.Is(err, disputeerrors.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, disputeerrors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, disputeerrors.ErrDuplicateDispute):
		writeError(w, http.StatusConflict, "duplicate_dispute", err.Error())
	case errors.Is(err, disputeerrors.ErrDisputeWindowClosed):
		writeError(w, http.StatusUnprocessableEntity, "dispute_window_closed", err.Error())
	case errors.Is(err, disputeerrors.ErrEscalationRequired):
		writeError(w, http.StatusConflict, "escalation_required", err.Error())
	case errors.Is(err, disputeerrors.ErrNotAssignedModerator):
		writeError(w, http.StatusConflict, "not_assigned_moderator", err.Error())
	case errors.Is(err, disputeerrors.ErrConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, disputeerrors.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
