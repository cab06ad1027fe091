package context

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestIDFromGin prefers the request context and falls back to the value
// the logging middleware stores on the gin context.
func RequestIDFromGin(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	if value := RequestIDFromContext(c.Request.Context()); value != "" {
		return value
	}
	return strings.TrimSpace(c.GetString("request_id"))
}

// OrgIDFromGin returns the organization bound by the org middleware, or ""
// on routes that are not organization scoped.
func OrgIDFromGin(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	if value := OrgIDFromContext(c.Request.Context()); value != "" {
		return value
	}
	return strings.TrimSpace(c.GetString("org_id"))
}
