package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/auditcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return s.AuditLogTx(ctx, s.db, orgID, actorType, actorID, action, targetType, targetID, metadata)
}

func (s *Service) AuditLogTx(ctx context.Context, tx *gorm.DB, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		return auditdomain.ErrInvalidTargetType
	}

	ctxActorType, ctxActorID := auditcontext.ActorFromContext(ctx)
	if strings.TrimSpace(actorType) == "" {
		actorType = ctxActorType
	}
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}
	if actorID == nil && ctxActorID != "" {
		actorID = &ctxActorID
	}

	payload := datatypes.JSONMap{}
	for key, value := range metadata {
		payload[key] = value
	}
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   payload,
		IPAddress:  optionalString(auditcontext.IPAddressFromContext(ctx)),
		UserAgent:  optionalString(auditcontext.UserAgentFromContext(ctx)),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, tx, entry); err != nil {
		s.log.Error("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
