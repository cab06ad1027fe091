package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.CashSession) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) CloseSession(ctx context.Context, db *gorm.DB, session *domain.CashSession, expectedVersion int64) error {
	result := db.WithContext(ctx).Model(&domain.CashSession{}).
		Where("id = ? AND org_id = ? AND version = ? AND status = ?", session.ID, session.OrgID, expectedVersion, domain.SessionStatusOpen).
		Updates(map[string]any{
			"status":             session.Status,
			"expected_amount":    session.ExpectedAmount,
			"counted_amount":     session.CountedAmount,
			"difference":         session.Difference,
			"difference_percent": session.DifferencePercent,
			"alert":              session.Alert,
			"closed_by":          session.ClosedBy,
			"notes":              session.Notes,
			"closed_at":          session.ClosedAt,
			"version":            expectedVersion + 1,
			"updated_at":         session.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	session.Version = expectedVersion + 1
	return nil
}

func (r *repo) ClaimOpenSession(ctx context.Context, db *gorm.DB, session *domain.CashSession) error {
	result := db.WithContext(ctx).Model(&domain.CashSession{}).
		Where("id = ? AND org_id = ? AND status = ?", session.ID, session.OrgID, domain.SessionStatusOpen).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": session.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSessionClosed
	}
	return nil
}

func (r *repo) FindSession(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.CashSession, error) {
	var session domain.CashSession
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) FindOpenSession(ctx context.Context, db *gorm.DB, orgID snowflake.ID, registerID string) (*domain.CashSession, error) {
	var session domain.CashSession
	err := db.WithContext(ctx).
		Where("org_id = ? AND register_id = ? AND status = ?", orgID, registerID, domain.SessionStatusOpen).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) InsertMovement(ctx context.Context, db *gorm.DB, movement *domain.CashMovement) error {
	return db.WithContext(ctx).Create(movement).Error
}

func (r *repo) ListMovements(ctx context.Context, db *gorm.DB, orgID, sessionID snowflake.ID) ([]domain.CashMovement, error) {
	var movements []domain.CashMovement
	err := db.WithContext(ctx).
		Where("org_id = ? AND session_id = ?", orgID, sessionID).
		Order("occurred_at ASC, id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repo) ListMovementsBetween(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]domain.CashMovement, error) {
	var movements []domain.CashMovement
	err := db.WithContext(ctx).
		Where("org_id = ? AND occurred_at >= ? AND occurred_at < ?", orgID, from, to).
		Order("occurred_at ASC, id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
