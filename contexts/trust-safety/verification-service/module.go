package verificationservice

import (
	"log/slog"
	"time"

	httpadapter "carebridge/contexts/trust-safety/verification-service/adapters/http"
	memoryadapter "carebridge/contexts/trust-safety/verification-service/adapters/memory"
	"carebridge/contexts/trust-safety/verification-service/application/commands"
	"carebridge/contexts/trust-safety/verification-service/application/queries"
	"carebridge/contexts/trust-safety/verification-service/ports"
	"carebridge/internal/shared/locking"
)

const defaultLockWait = 2 * time.Second

type Module struct {
	Create    commands.CreateSubmissionUseCase
	Recommend commands.RecommendSubmissionUseCase
	Decide    commands.DecideSubmissionUseCase
	Queries   queries.SubmissionQueries
	Handler   httpadapter.Handler
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Gate       ports.AccessGate
	Publisher  ports.NotificationPublisher
	Metrics    ports.Metrics
	Locks      *locking.KeyedLocks
	LockWait   time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Locks == nil {
		deps.Locks = locking.NewKeyedLocks()
	}
	if deps.LockWait <= 0 {
		deps.LockWait = defaultLockWait
	}

	create := commands.CreateSubmissionUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDs,
		Gate:        deps.Gate,
		Publisher:   deps.Publisher,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	recommend := commands.RecommendSubmissionUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Gate:       deps.Gate,
		Locks:      deps.Locks,
		LockWait:   deps.LockWait,
		Publisher:  deps.Publisher,
		IDs:        deps.IDs,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
	decide := commands.DecideSubmissionUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Gate:       deps.Gate,
		Locks:      deps.Locks,
		LockWait:   deps.LockWait,
		Publisher:  deps.Publisher,
		IDs:        deps.IDs,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}
	submissionQueries := queries.SubmissionQueries{
		Repository: deps.Repository,
		Gate:       deps.Gate,
		Logger:     deps.Logger,
	}

	return Module{
		Create:    create,
		Recommend: recommend,
		Decide:    decide,
		Queries:   submissionQueries,
		Handler: httpadapter.Handler{
			Create:    create,
			Recommend: recommend,
			Decide:    decide,
			Queries:   submissionQueries,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on the in-memory store for local runs
// and tests. The store doubles as clock and id generator.
func NewInMemoryModule(gate ports.AccessGate, publisher ports.NotificationPublisher, metrics ports.Metrics, logger *slog.Logger) (Module, *memoryadapter.Store) {
	store := memoryadapter.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		IDs:        store,
		Gate:       gate,
		Publisher:  publisher,
		Metrics:    metrics,
		Logger:     logger,
	})
	return module, store
}
