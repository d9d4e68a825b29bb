package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carebridge/contexts/trust-safety/dispute-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/dispute-service/domain/errors"
	"carebridge/contexts/trust-safety/dispute-service/ports"
	"carebridge/internal/shared/audit"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateDispute(ctx context.Context, dispute entities.Dispute, entry audit.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var openCount int64
		if err := tx.
			Model(&disputeModel{}).
			Where("job_id = ?", strings.TrimSpace(dispute.JobID)).
			Where("raised_by_id = ?", strings.TrimSpace(dispute.RaisedByID)).
			Where("against_id = ?", strings.TrimSpace(dispute.AgainstID)).
			Where("status NOT IN ?", []string{
				string(entities.DisputeStatusResolved),
				string(entities.DisputeStatusClosed),
			}).
			Count(&openCount).
			Error; err != nil {
			return err
		}
		if openCount > 0 {
			return domainerrors.ErrDuplicateDispute
		}

		row := disputeModelFromEntity(dispute)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateDispute
			}
			return err
		}
		return tx.Create(auditModelFromEntry(entry)).Error
	})
}

func (r *Repository) GetDispute(ctx context.Context, disputeID string) (entities.Dispute, error) {
	var row disputeModel
	err := r.db.WithContext(ctx).
		Where("dispute_id = ?", strings.TrimSpace(disputeID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Dispute{}, domainerrors.ErrDisputeNotFound
		}
		return entities.Dispute{}, err
	}
	return row.toEntity(), nil
}

// SaveDispute applies a version-guarded update and writes the audit entry
// inside the same transaction.
func (r *Repository) SaveDispute(ctx context.Context, dispute entities.Dispute, expectedVersion int64, entry audit.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&disputeModel{}).
			Where("dispute_id = ?", strings.TrimSpace(dispute.DisputeID)).
			Where("version = ?", expectedVersion).
			Updates(disputeUpdatesFromEntity(dispute))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existsCount int64
			if err := tx.
				Model(&disputeModel{}).
				Where("dispute_id = ?", strings.TrimSpace(dispute.DisputeID)).
				Count(&existsCount).
				Error; err != nil {
				return err
			}
			if existsCount == 0 {
				return domainerrors.ErrDisputeNotFound
			}
			return domainerrors.ErrConflict
		}
		return tx.Create(auditModelFromEntry(entry)).Error
	})
}

func (r *Repository) ListDisputes(ctx context.Context, filter ports.ListFilter) ([]entities.Dispute, error) {
	tx := r.db.WithContext(ctx).Model(&disputeModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		tx = tx.Where("dispute_type = ?", string(filter.Type))
	}
	if strings.TrimSpace(filter.JobID) != "" {
		tx = tx.Where("job_id = ?", strings.TrimSpace(filter.JobID))
	}
	if strings.TrimSpace(filter.RaisedByID) != "" {
		tx = tx.Where("raised_by_id = ?", strings.TrimSpace(filter.RaisedByID))
	}

	var rows []disputeModel
	if err := tx.Order("raised_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Dispute, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListDueEscrowRelease(ctx context.Context, now time.Time, limit int) ([]entities.Dispute, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []disputeModel
	if err := r.db.WithContext(ctx).
		Where("dispute_type = ?", string(entities.DisputeTypePayment)).
		Where("funds_released = false").
		Where("status IN ?", []string{
			string(entities.DisputeStatusResolved),
			string(entities.DisputeStatusClosed),
		}).
		Where("escrow_hold_until IS NOT NULL").
		Where("escrow_hold_until <= ?", now.UTC()).
		Order("escrow_hold_until ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Dispute, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type disputeModel struct {
	DisputeID       string          `gorm:"column:dispute_id;primaryKey"`
	DisputeType     string          `gorm:"column:dispute_type"`
	Severity        string          `gorm:"column:severity"`
	JobID           string          `gorm:"column:job_id"`
	RaisedByID      string          `gorm:"column:raised_by_id"`
	AgainstID       string          `gorm:"column:against_id"`
	Description     string          `gorm:"column:description"`
	Evidence        []string        `gorm:"column:evidence;type:jsonb;serializer:json"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric"`
	Status          string          `gorm:"column:status"`
	ModeratorID     string          `gorm:"column:moderator_id"`
	ModeratorNotes  string          `gorm:"column:moderator_notes"`
	EscalationNotes string          `gorm:"column:escalation_notes"`
	Resolution      string          `gorm:"column:resolution"`
	ResolutionNotes string          `gorm:"column:resolution_notes"`
	ResolvedByID    string          `gorm:"column:resolved_by_id"`
	EscrowHoldUntil *time.Time      `gorm:"column:escrow_hold_until"`
	FundsReleased   bool            `gorm:"column:funds_released"`
	Version         int64           `gorm:"column:version"`
	RaisedAt        time.Time       `gorm:"column:raised_at"`
	ReviewStartedAt *time.Time      `gorm:"column:review_started_at"`
	EscalatedAt     *time.Time      `gorm:"column:escalated_at"`
	ResolvedAt      *time.Time      `gorm:"column:resolved_at"`
	ClosedAt        *time.Time      `gorm:"column:closed_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (disputeModel) TableName() string {
	return "disputes"
}

func disputeModelFromEntity(item entities.Dispute) disputeModel {
	return disputeModel{
		DisputeID:       strings.TrimSpace(item.DisputeID),
		DisputeType:     string(item.Type),
		Severity:        string(item.Severity),
		JobID:           strings.TrimSpace(item.JobID),
		RaisedByID:      strings.TrimSpace(item.RaisedByID),
		AgainstID:       strings.TrimSpace(item.AgainstID),
		Description:     strings.TrimSpace(item.Description),
		Evidence:        item.Evidence,
		Amount:          item.Amount,
		Status:          string(item.Status),
		ModeratorID:     strings.TrimSpace(item.ModeratorID),
		ModeratorNotes:  strings.TrimSpace(item.ModeratorNotes),
		EscalationNotes: strings.TrimSpace(item.EscalationNotes),
		Resolution:      string(item.Resolution),
		ResolutionNotes: strings.TrimSpace(item.ResolutionNotes),
		ResolvedByID:    strings.TrimSpace(item.ResolvedByID),
		EscrowHoldUntil: normalizeOptionalTime(item.EscrowHoldUntil),
		FundsReleased:   item.FundsReleased,
		Version:         item.Version,
		RaisedAt:        item.RaisedAt.UTC(),
		ReviewStartedAt: normalizeOptionalTime(item.ReviewStartedAt),
		EscalatedAt:     normalizeOptionalTime(item.EscalatedAt),
		ResolvedAt:      normalizeOptionalTime(item.ResolvedAt),
		ClosedAt:        normalizeOptionalTime(item.ClosedAt),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func disputeUpdatesFromEntity(item entities.Dispute) map[string]any {
	row := disputeModelFromEntity(item)
	return map[string]any{
		"status":            row.Status,
		"moderator_id":      row.ModeratorID,
		"moderator_notes":   row.ModeratorNotes,
		"escalation_notes":  row.EscalationNotes,
		"resolution":        row.Resolution,
		"resolution_notes":  row.ResolutionNotes,
		"resolved_by_id":    row.ResolvedByID,
		"escrow_hold_until": row.EscrowHoldUntil,
		"funds_released":    row.FundsReleased,
		"version":           row.Version,
		"review_started_at": row.ReviewStartedAt,
		"escalated_at":      row.EscalatedAt,
		"resolved_at":       row.ResolvedAt,
		"closed_at":         row.ClosedAt,
		"updated_at":        row.UpdatedAt,
	}
}

func (m disputeModel) toEntity() entities.Dispute {
	return entities.Dispute{
		DisputeID:       m.DisputeID,
		Type:            entities.DisputeType(m.DisputeType),
		Severity:        entities.Severity(m.Severity),
		JobID:           m.JobID,
		RaisedByID:      m.RaisedByID,
		AgainstID:       m.AgainstID,
		Description:     m.Description,
		Evidence:        m.Evidence,
		Amount:          m.Amount,
		Status:          entities.DisputeStatus(m.Status),
		ModeratorID:     m.ModeratorID,
		ModeratorNotes:  m.ModeratorNotes,
		EscalationNotes: m.EscalationNotes,
		Resolution:      entities.Resolution(m.Resolution),
		ResolutionNotes: m.ResolutionNotes,
		ResolvedByID:    m.ResolvedByID,
		EscrowHoldUntil: normalizeOptionalTime(m.EscrowHoldUntil),
		FundsReleased:   m.FundsReleased,
		Version:         m.Version,
		RaisedAt:        m.RaisedAt.UTC(),
		ReviewStartedAt: normalizeOptionalTime(m.ReviewStartedAt),
		EscalatedAt:     normalizeOptionalTime(m.EscalatedAt),
		ResolvedAt:      normalizeOptionalTime(m.ResolvedAt),
		ClosedAt:        normalizeOptionalTime(m.ClosedAt),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type auditModel struct {
	EntryID     string    `gorm:"column:entry_id;primaryKey"`
	ActorID     string    `gorm:"column:actor_id"`
	ActorRole   string    `gorm:"column:actor_role"`
	Action      string    `gorm:"column:action"`
	EntityType  string    `gorm:"column:entity_type"`
	EntityID    string    `gorm:"column:entity_id"`
	PriorStatus string    `gorm:"column:prior_status"`
	NewStatus   string    `gorm:"column:new_status"`
	Reason      string    `gorm:"column:reason"`
	OccurredAt  time.Time `gorm:"column:occurred_at"`
}

func (auditModel) TableName() string {
	return "audit_entries"
}

func auditModelFromEntry(entry audit.Entry) *auditModel {
	return &auditModel{
		EntryID:     strings.TrimSpace(entry.EntryID),
		ActorID:     strings.TrimSpace(entry.ActorID),
		ActorRole:   strings.TrimSpace(entry.ActorRole),
		Action:      strings.TrimSpace(entry.Action),
		EntityType:  strings.TrimSpace(entry.EntityType),
		EntityID:    strings.TrimSpace(entry.EntityID),
		PriorStatus: entry.PriorStatus,
		NewStatus:   entry.NewStatus,
		Reason:      strings.TrimSpace(entry.Reason),
		OccurredAt:  entry.OccurredAt.UTC(),
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
