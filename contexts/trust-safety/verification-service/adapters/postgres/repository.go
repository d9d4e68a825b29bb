package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"carebridge/contexts/trust-safety/verification-service/domain/entities"
	domainerrors "carebridge/contexts/trust-safety/verification-service/domain/errors"
	"carebridge/contexts/trust-safety/verification-service/ports"
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

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission, entry audit.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var openCount int64
		if err := tx.
			Model(&submissionModel{}).
			Where("submitter_id = ?", strings.TrimSpace(submission.SubmitterID)).
			Where("submission_type = ?", string(submission.Type)).
			Where("status NOT IN ?", []string{
				string(entities.SubmissionStatusApproved),
				string(entities.SubmissionStatusRejected),
			}).
			Count(&openCount).
			Error; err != nil {
			return err
		}
		if openCount > 0 {
			return domainerrors.ErrDuplicateSubmission
		}

		row := submissionModelFromEntity(submission)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateSubmission
			}
			return err
		}
		return tx.Create(auditModelFromEntry(entry)).Error
	})
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error) {
	var row submissionModel
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", strings.TrimSpace(submissionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, err
	}
	return row.toEntity(), nil
}

// SaveSubmission applies a version-guarded update and writes the audit
// entry inside the same transaction. A missed guard is either a stale
// version or a deleted row; the follow-up count disambiguates.
func (r *Repository) SaveSubmission(ctx context.Context, submission entities.Submission, expectedVersion int64, entry audit.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&submissionModel{}).
			Where("submission_id = ?", strings.TrimSpace(submission.SubmissionID)).
			Where("version = ?", expectedVersion).
			Updates(submissionUpdatesFromEntity(submission))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var existsCount int64
			if err := tx.
				Model(&submissionModel{}).
				Where("submission_id = ?", strings.TrimSpace(submission.SubmissionID)).
				Count(&existsCount).
				Error; err != nil {
				return err
			}
			if existsCount == 0 {
				return domainerrors.ErrSubmissionNotFound
			}
			return domainerrors.ErrConflict
		}
		return tx.Create(auditModelFromEntry(entry)).Error
	})
}

func (r *Repository) ListSubmissions(ctx context.Context, filter ports.ListFilter) ([]entities.Submission, error) {
	tx := r.db.WithContext(ctx).Model(&submissionModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		tx = tx.Where("submission_type = ?", string(filter.Type))
	}
	if strings.TrimSpace(filter.SubmitterID) != "" {
		tx = tx.Where("submitter_id = ?", strings.TrimSpace(filter.SubmitterID))
	}

	var rows []submissionModel
	if err := tx.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type submissionModel struct {
	SubmissionID   string     `gorm:"column:submission_id;primaryKey"`
	SubmissionType string     `gorm:"column:submission_type"`
	SubmitterID    string     `gorm:"column:submitter_id"`
	Status         string     `gorm:"column:status"`
	ModeratorID    string     `gorm:"column:moderator_id"`
	Recommendation string     `gorm:"column:recommendation"`
	ModeratorNotes string     `gorm:"column:moderator_notes"`
	AdminDecision  string     `gorm:"column:admin_decision"`
	AdminFeedback  string     `gorm:"column:admin_feedback"`
	ReviewCycle    int        `gorm:"column:review_cycle"`
	Version        int64      `gorm:"column:version"`
	SubmittedAt    time.Time  `gorm:"column:submitted_at"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	DecidedAt      *time.Time `gorm:"column:decided_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (submissionModel) TableName() string {
	return "verification_submissions"
}

func submissionModelFromEntity(item entities.Submission) submissionModel {
	return submissionModel{
		SubmissionID:   strings.TrimSpace(item.SubmissionID),
		SubmissionType: string(item.Type),
		SubmitterID:    strings.TrimSpace(item.SubmitterID),
		Status:         string(item.Status),
		ModeratorID:    strings.TrimSpace(item.ModeratorID),
		Recommendation: string(item.Recommendation),
		ModeratorNotes: strings.TrimSpace(item.ModeratorNotes),
		AdminDecision:  string(item.AdminDecision),
		AdminFeedback:  strings.TrimSpace(item.AdminFeedback),
		ReviewCycle:    item.ReviewCycle,
		Version:        item.Version,
		SubmittedAt:    item.SubmittedAt.UTC(),
		ReviewedAt:     normalizeOptionalTime(item.ReviewedAt),
		DecidedAt:      normalizeOptionalTime(item.DecidedAt),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}
}

func submissionUpdatesFromEntity(item entities.Submission) map[string]any {
	row := submissionModelFromEntity(item)
	return map[string]any{
		"status":          row.Status,
		"moderator_id":    row.ModeratorID,
		"recommendation":  row.Recommendation,
		"moderator_notes": row.ModeratorNotes,
		"admin_decision":  row.AdminDecision,
		"admin_feedback":  row.AdminFeedback,
		"review_cycle":    row.ReviewCycle,
		"version":         row.Version,
		"reviewed_at":     row.ReviewedAt,
		"decided_at":      row.DecidedAt,
		"updated_at":      row.UpdatedAt,
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:   m.SubmissionID,
		Type:           entities.SubmissionType(m.SubmissionType),
		SubmitterID:    m.SubmitterID,
		Status:         entities.SubmissionStatus(m.Status),
		ModeratorID:    m.ModeratorID,
		Recommendation: entities.Recommendation(m.Recommendation),
		ModeratorNotes: m.ModeratorNotes,
		AdminDecision:  entities.AdminDecision(m.AdminDecision),
		AdminFeedback:  m.AdminFeedback,
		ReviewCycle:    m.ReviewCycle,
		Version:        m.Version,
		SubmittedAt:    m.SubmittedAt.UTC(),
		ReviewedAt:     normalizeOptionalTime(m.ReviewedAt),
		DecidedAt:      normalizeOptionalTime(m.DecidedAt),
		UpdatedAt:      m.UpdatedAt.UTC(),
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
