package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/context"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
)

// OrgRequired binds the organization named by the X-Org-Id header to the
// request context. Authenticating the caller against it happens upstream.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, ErrMissingOrgID)
			return
		}
		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID <= 0 {
			AbortWithError(c, newValidationError(HeaderOrg, "invalid_organization", "invalid organization id"))
			return
		}

		c.Set("org_id", orgID.String())
		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
