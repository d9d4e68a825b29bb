package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	application "carebridge/contexts/identity-access/authorization-service/application"
	"carebridge/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "carebridge/contexts/identity-access/authorization-service/domain/errors"
	"carebridge/contexts/identity-access/authorization-service/domain/services"
	httptransport "carebridge/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to the authorization gate.
type Handler struct {
	Gate   application.AuthorizeUseCase
	Logger *slog.Logger
}

func (h Handler) CheckAccessHandler(
	ctx context.Context,
	actor entities.Identity,
	request httptransport.CheckAccessRequest,
) (httptransport.CheckAccessResponse, error) {
	if strings.TrimSpace(request.Resource) == "" || strings.TrimSpace(request.Action) == "" {
		return httptransport.CheckAccessResponse{}, domainerrors.ErrInvalidRequest
	}

	decision := h.Gate.Execute(ctx, application.AuthorizeRequest{
		Identity: actor,
		Resource: services.Resource(request.Resource),
		Action:   services.Action(request.Action),
		OwnerID:  request.OwnerID,
	})
	return httptransport.CheckAccessResponse{
		Allowed:   decision.Allowed,
		CheckedAt: decision.CheckedAt,
	}, nil
}
