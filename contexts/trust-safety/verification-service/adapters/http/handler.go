package httpadapter

import (
	"context"
	"log/slog"

	"carebridge/contexts/trust-safety/verification-service/application/commands"
	"carebridge/contexts/trust-safety/verification-service/application/queries"
	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	"carebridge/contexts/trust-safety/verification-service/ports"
	httptransport "carebridge/contexts/trust-safety/verification-service/transport/http"
)

// Handler maps HTTP DTOs to the submission workflow use cases. Routing and
// error-to-status mapping live in the platform http server.
type Handler struct {
	Create    commands.CreateSubmissionUseCase
	Recommend commands.RecommendSubmissionUseCase
	Decide    commands.DecideSubmissionUseCase
	Queries   queries.SubmissionQueries
	Logger    *slog.Logger
}

func (h Handler) CreateSubmissionHandler(
	ctx context.Context,
	actor ports.Actor,
	request httptransport.CreateSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Create.Execute(ctx, commands.CreateSubmissionInput{
		Actor: actor,
		Type:  entities.SubmissionType(request.Type),
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return toSubmissionResponse(submission), nil
}

func (h Handler) RecommendSubmissionHandler(
	ctx context.Context,
	actor ports.Actor,
	submissionID string,
	request httptransport.RecommendSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Recommend.Execute(ctx, commands.RecommendSubmissionInput{
		Actor:          actor,
		SubmissionID:   submissionID,
		Recommendation: entities.Recommendation(request.Recommendation),
		Notes:          request.Notes,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return toSubmissionResponse(submission), nil
}

func (h Handler) DecideSubmissionHandler(
	ctx context.Context,
	actor ports.Actor,
	submissionID string,
	request httptransport.DecideSubmissionRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Decide.Execute(ctx, commands.DecideSubmissionInput{
		Actor:        actor,
		SubmissionID: submissionID,
		Decision:     entities.AdminDecision(request.Decision),
		Feedback:     request.Feedback,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return toSubmissionResponse(submission), nil
}

func (h Handler) GetSubmissionHandler(
	ctx context.Context,
	actor ports.Actor,
	submissionID string,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Queries.GetSubmission(ctx, actor, submissionID)
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return toSubmissionResponse(submission), nil
}

func (h Handler) ListSubmissionsHandler(
	ctx context.Context,
	actor ports.Actor,
	filter ports.ListFilter,
) (httptransport.ListSubmissionsResponse, error) {
	items, err := h.Queries.ListSubmissions(ctx, actor, filter)
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	response := httptransport.ListSubmissionsResponse{
		Items: make([]httptransport.SubmissionResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Items = append(response.Items, toSubmissionResponse(item))
	}
	return response, nil
}

func toSubmissionResponse(submission entities.Submission) httptransport.SubmissionResponse {
	return httptransport.SubmissionResponse{
		SubmissionID:   submission.SubmissionID,
		Type:           string(submission.Type),
		SubmitterID:    submission.SubmitterID,
		Status:         string(submission.Status),
		ModeratorID:    submission.ModeratorID,
		Recommendation: string(submission.Recommendation),
		ModeratorNotes: submission.ModeratorNotes,
		AdminDecision:  string(submission.AdminDecision),
		AdminFeedback:  submission.AdminFeedback,
		ReviewCycle:    submission.ReviewCycle,
		SubmittedAt:    submission.SubmittedAt,
		ReviewedAt:     submission.ReviewedAt,
		DecidedAt:      submission.DecidedAt,
		UpdatedAt:      submission.UpdatedAt,
	}
}
