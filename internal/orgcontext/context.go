package orgcontext

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrMissingOrganization = errors.New("missing_organization")

type contextKey struct{}

func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	if orgID == 0 {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, orgID)
}

func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	orgID, ok := ctx.Value(contextKey{}).(snowflake.ID)
	return orgID, ok && orgID != 0
}

// Require returns the organization bound to ctx or ErrMissingOrganization.
func Require(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := OrgIDFromContext(ctx)
	if !ok {
		return 0, ErrMissingOrganization
	}
	return orgID, nil
}
