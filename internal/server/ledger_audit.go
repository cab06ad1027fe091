package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/audit/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
)

type auditLogResponse struct {
	ID         string         `json:"id"`
	ActorType  string         `json:"actor_type"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   *string        `json:"target_id,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type listAuditLogsRequest struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	Limit      int    `form:"limit"`
}

// @Summary      Ledger account balances
// @Tags         ledger
// @Produce      json
// @Router       /api/ledger/balances [get]
func (s *Server) LedgerBalances(c *gin.Context) {
	orgID, err := orgcontext.Require(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balances, err := s.ledgerSvc.Balances(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": balances})
}

// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Param        action       query  string  false  "Action"
// @Param        target_type  query  string  false  "Target type"
// @Param        target_id    query  string  false  "Target ID"
// @Param        limit        query  int     false  "Max entries"
// @Param        start_at     query  string  false  "RFC3339 or YYYY-MM-DD"
// @Param        end_at       query  string  false  "RFC3339 or YYYY-MM-DD"
// @Router       /api/audit-logs [get]
func (s *Server) ListAuditLogs(c *gin.Context) {
	orgID, err := orgcontext.Require(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req listAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	startAt, err := parseOptionalTime(c.Query("start_at"))
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseOptionalTime(c.Query("end_at"))
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	entries, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		OrgID:      orgID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    startAt,
		EndAt:      endAt,
		Limit:      req.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]auditLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, auditLogResponse{
			ID:         entry.ID.String(),
			ActorType:  entry.ActorType,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   entry.TargetID,
			Metadata:   entry.Metadata,
			IPAddress:  entry.IPAddress,
			CreatedAt:  entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
