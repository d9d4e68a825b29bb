package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"carebridge/contexts/trust-safety/dispute-service/application/commands"
	"carebridge/contexts/trust-safety/dispute-service/application/queries"
	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	httptransport "carebridge/contexts/trust-safety/dispute-service/transport/http"
)

// Handler maps HTTP DTOs to the dispute workflow use cases. Routing and
// error-to-status mapping live in the platform http server.
type Handler struct {
	Raise    commands.RaiseDisputeUseCase
	Assign   commands.AssignModeratorUseCase
	Escalate commands.EscalateDisputeUseCase
	Resolve  commands.ResolveDisputeUseCase
	Close    commands.CloseDisputeUseCase
	Queries  queries.DisputeQueries
	Logger   *slog.Logger
}

func (h Handler) RaiseDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	request httptransport.RaiseDisputeRequest,
) (httptransport.DisputeResponse, error) {
	amount := decimal.Zero
	if strings.TrimSpace(request.Amount) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(request.Amount))
		if err != nil {
			return httptransport.DisputeResponse{}, fmt.Errorf("%w: amount %q is not a valid decimal", domainerrors.ErrValidation, request.Amount)
		}
		amount = parsed
	}
	dispute, err := h.Raise.Execute(ctx, commands.RaiseDisputeInput{
		Actor:          actor,
		Type:           entities.DisputeType(request.Type),
		JobID:          request.JobID,
		AgainstID:      request.AgainstID,
		Description:    request.Description,
		Evidence:       request.Evidence,
		Amount:         amount,
		JobCompletedAt: request.JobCompletedAt,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) AssignModeratorHandler(
	ctx context.Context,
	actor ports.Actor,
	disputeID string,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Assign.Execute(ctx, commands.AssignModeratorInput{
		Actor:     actor,
		DisputeID: disputeID,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) EscalateDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	disputeID string,
	request httptransport.EscalateDisputeRequest,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Escalate.Execute(ctx, commands.EscalateDisputeInput{
		Actor:     actor,
		DisputeID: disputeID,
		Notes:     request.Notes,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) ResolveDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	disputeID string,
	request httptransport.ResolveDisputeRequest,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Resolve.Execute(ctx, commands.ResolveDisputeInput{
		Actor:      actor,
		DisputeID:  disputeID,
		Resolution: entities.Resolution(request.Resolution),
		Notes:      request.Notes,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) CloseDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	disputeID string,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Close.Execute(ctx, commands.CloseDisputeInput{
		Actor:     actor,
		DisputeID: disputeID,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) GetDisputeHandler(
	ctx context.Context,
	actor ports.Actor,
	disputeID string,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Queries.GetDispute(ctx, actor, disputeID)
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return toDisputeResponse(dispute), nil
}

func (h Handler) ListDisputesHandler(
	ctx context.Context,
	actor ports.Actor,
	filter ports.ListFilter,
) (httptransport.ListDisputesResponse, error) {
	items, err := h.Queries.ListDisputes(ctx, actor, filter)
	if err != nil {
		return httptransport.ListDisputesResponse{}, err
	}
	response := httptransport.ListDisputesResponse{
		Items: make([]httptransport.DisputeResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Items = append(response.Items, toDisputeResponse(item))
	}
	return response, nil
}

func toDisputeResponse(dispute entities.Dispute) httptransport.DisputeResponse {
	amount := ""
	if dispute.Amount.IsPositive() {
		amount = dispute.Amount.String()
	}
	return httptransport.DisputeResponse{
		DisputeID:       dispute.DisputeID,
		Type:            string(dispute.Type),
		Severity:        string(dispute.Severity),
		JobID:           dispute.JobID,
		RaisedByID:      dispute.RaisedByID,
		AgainstID:       dispute.AgainstID,
		Description:     dispute.Description,
		Evidence:        dispute.Evidence,
		Amount:          amount,
		Status:          string(dispute.Status),
		ModeratorID:     dispute.ModeratorID,
		EscalationNotes: dispute.EscalationNotes,
		Resolution:      string(dispute.Resolution),
		ResolutionNotes: dispute.ResolutionNotes,
		ResolvedByID:    dispute.ResolvedByID,
		EscrowHoldUntil: dispute.EscrowHoldUntil,
		FundsReleased:   dispute.FundsReleased,
		RaisedAt:        dispute.RaisedAt,
		ResolvedAt:      dispute.ResolvedAt,
		ClosedAt:        dispute.ClosedAt,
		UpdatedAt:       dispute.UpdatedAt,
	}
}
