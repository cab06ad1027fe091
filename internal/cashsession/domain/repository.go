package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSession(ctx context.Context, db *gorm.DB, session *CashSession) error
	// CloseSession persists the closing fields when the stored version matches.
	CloseSession(ctx context.Context, db *gorm.DB, session *CashSession, expectedVersion int64) error
	// ClaimOpenSession bumps the version of a still open session so a
	// concurrent close loses its version check. It returns ErrSessionClosed
	// when the session is no longer open.
	ClaimOpenSession(ctx context.Context, db *gorm.DB, session *CashSession) error
	FindSession(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*CashSession, error)
	FindOpenSession(ctx context.Context, db *gorm.DB, orgID snowflake.ID, registerID string) (*CashSession, error)
	InsertMovement(ctx context.Context, db *gorm.DB, movement *CashMovement) error
	ListMovements(ctx context.Context, db *gorm.DB, orgID, sessionID snowflake.ID) ([]CashMovement, error)
	ListMovementsBetween(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]CashMovement, error)
}
