package authorizationservice

import (
	"log/slog"

	httpadapter "carebridge/contexts/identity-access/authorization-service/adapters/http"
	"carebridge/contexts/identity-access/authorization-service/application"
	"carebridge/internal/shared/audit"
)

type Module struct {
	Gate    application.AuthorizeUseCase
	Handler httpadapter.Handler
}

type Dependencies struct {
	Audit   audit.Sink
	Metrics application.Metrics
	Clock   application.Clock
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gate := application.AuthorizeUseCase{
		Audit:   deps.Audit,
		Metrics: deps.Metrics,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
	}
	return Module{
		Gate: gate,
		Handler: httpadapter.Handler{
			Gate:   gate,
			Logger: deps.Logger,
		},
	}
}
