package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Event describes a domain event to store in the outbox.
type Event struct {
	OrgID     snowflake.ID
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// OutboxEvent is a stored, not yet relayed event.
type OutboxEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	OrgID       snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_outbox_events_dedupe,priority:1"`
	EventType   string            `gorm:"type:text;not null;index"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb;not null"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex:ux_outbox_events_dedupe,priority:2"`
	Published   bool              `gorm:"not null;default:false;index"`
	PublishedAt *time.Time
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OutboxEvent) TableName() string { return "outbox_events" }

// Outbox inserts domain events into the outbox_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	if o == nil {
		return errors.New("outbox_unavailable")
	}
	return o.publish(ctx, o.db, event)
}

// PublishTx stores an event using an existing transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	return o.publish(ctx, tx, event)
}

// Pending returns unpublished events in insertion order.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []OutboxEvent
	err := o.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkPublished flags relayed events.
func (o *Outbox) MarkPublished(ctx context.Context, ids []snowflake.ID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	at = at.UTC()
	return o.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"published": true, "published_at": at}).Error
}

func (o *Outbox) publish(ctx context.Context, db *gorm.DB, event Event) error {
	if o == nil || db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	if event.OrgID == 0 {
		return errors.New("invalid_org_id")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	var dedupe *string
	if key := strings.TrimSpace(event.DedupeKey); key != "" {
		dedupe = &key
	}

	row := OutboxEvent{
		ID:        o.genID.Generate(),
		OrgID:     event.OrgID,
		EventType: name,
		Payload:   payload,
		DedupeKey: dedupe,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "dedupe_key"}},
			DoNothing: true,
		}).
		Create(&row).Error
}
