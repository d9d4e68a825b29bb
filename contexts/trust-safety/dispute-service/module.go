package disputeservice

import (
	"log/slog"
	"time"

	httpadapter "carebridge/contexts/trust-safety/dispute-service/adapters/http"
	memoryadapter "carebridge/contexts/trust-safety/dispute-service/adapters/memory"
	"carebridge/contexts/trust-safety/dispute-service/application/commands"
	"carebridge/contexts/trust-safety/dispute-service/application/queries"
	"carebridge/contexts/trust-safety/dispute-service/application/workers"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/locking"
)

const (
	defaultLockWait      = 2 * time.Second
	defaultEscrowHold    = 48 * time.Hour
	defaultPaymentWindow = 7 * 24 * time.Hour
)

type Module struct {
	Raise         commands.RaiseDisputeUseCase
	Assign        commands.AssignModeratorUseCase
	Escalate      commands.EscalateDisputeUseCase
	Resolve       commands.ResolveDisputeUseCase
	Close         commands.CloseDisputeUseCase
	Queries       queries.DisputeQueries
	EscrowRelease workers.EscrowReleaseJob
	Handler       httpadapter.Handler
}

type Dependencies struct {
	Repository    ports.Repository
	Clock         ports.Clock
	IDs           ports.IDGenerator
	Gate          ports.AccessGate
	Publisher     ports.NotificationPublisher
	Metrics       ports.Metrics
	Locks         *locking.KeyedLocks
	LockWait      time.Duration
	EscrowHold    time.Duration
	PaymentWindow time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Locks == nil {
		deps.Locks = locking.NewKeyedLocks()
	}
	if deps.LockWait <= 0 {
		deps.LockWait = defaultLockWait
	}
	if deps.EscrowHold <= 0 {
		deps.EscrowHold = defaultEscrowHold
	}
	if deps.PaymentWindow <= 0 {
		deps.PaymentWindow = defaultPaymentWindow
	}

	raise := commands.RaiseDisputeUseCase{
		Repository:    deps.Repository,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDs,
		Gate:          deps.Gate,
		Publisher:     deps.Publisher,
		Metrics:       deps.Metrics,
		PaymentWindow: deps.PaymentWindow,
		EscrowHold:    deps.EscrowHold,
		Logger:        deps.Logger,
	}
	assign := commands.AssignModeratorUseCase{
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
	escalate := commands.EscalateDisputeUseCase{
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
	resolve := commands.ResolveDisputeUseCase{
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
	closeDispute := commands.CloseDisputeUseCase{
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
	disputeQueries := queries.DisputeQueries{
		Repository: deps.Repository,
		Gate:       deps.Gate,
		Logger:     deps.Logger,
	}

	return Module{
		Raise:    raise,
		Assign:   assign,
		Escalate: escalate,
		Resolve:  resolve,
		Close:    closeDispute,
		Queries:  disputeQueries,
		EscrowRelease: workers.EscrowReleaseJob{
			Repository: deps.Repository,
			Clock:      deps.Clock,
			IDs:        deps.IDs,
			Publisher:  deps.Publisher,
			Logger:     deps.Logger,
		},
		Handler: httpadapter.Handler{
			Raise:    raise,
			Assign:   assign,
			Escalate: escalate,
			Resolve:  resolve,
			Close:    closeDispute,
			Queries:  disputeQueries,
			Logger:   deps.Logger,
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
