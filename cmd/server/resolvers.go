package main

import (
	"context"
	"fmt"

	"gatehouse/internal/graphql"
	"gatehouse/pkg/email"
	"gatehouse/pkg/requestcontext"
)

// registerResolvers binds the built-in root fields. The guard runs before
// these, so me always sees a current user.
func registerResolvers(engine *graphql.Engine) error {
	if err := engine.Register("me", func(ctx context.Context, _ map[string]any) (any, error) {
		cu := requestcontext.CurrentUser(ctx)
		return fmt.Sprintf("%s <%s>", email.DeriveNameFromEmail(cu.Email), cu.Email), nil
	}); err != nil {
		return err
	}
	return engine.Register("status", func(context.Context, map[string]any) (any, error) {
		return "ok", nil
	})
}
