package graphql_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gatehouse/internal/graphql"
	"gatehouse/pkg/domain"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

const testSchema = `
type Query {
  me: String @requireAuth
  adminReport: String @requireAuth(roles: ["admin"])
  staffReport: String @requireAuth(roles: ["admin", "support"])
  publicStatus: String @skipAuth
  implicitlyGuarded: String
}

type Mutation {
  deleteEverything(confirm: Boolean!): String @requireAuth(roles: "admin")
}
`

type EngineSuite struct {
	suite.Suite
	engine *graphql.Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := graphql.NewEngine(testSchema, logger)
	s.Require().NoError(err)
	s.engine = engine

	echo := func(value string) graphql.ResolverFunc {
		return func(context.Context, map[string]any) (any, error) {
			return value, nil
		}
	}
	s.Require().NoError(engine.Register("me", echo("it's you")))
	s.Require().NoError(engine.Register("adminReport", echo("secret numbers")))
	s.Require().NoError(engine.Register("staffReport", echo("queue depth")))
	s.Require().NoError(engine.Register("publicStatus", echo("all good")))
	s.Require().NoError(engine.Register("implicitlyGuarded", echo("default deny")))
	s.Require().NoError(engine.Register("deleteEverything",
		func(_ context.Context, args map[string]any) (any, error) {
			if confirm, _ := args["confirm"].(bool); !confirm {
				return nil, dErrors.New(dErrors.CodeBadRequest, "confirmation required")
			}
			return "done", nil
		}))
}

func asUser(roles domain.Roles) context.Context {
	return requestcontext.WithCurrentUser(context.Background(),
		&domain.CurrentUser{ID: 7, Email: "ana@example.com", Roles: roles})
}

func (s *EngineSuite) execute(ctx context.Context, query string) *graphql.Response {
	return s.engine.Execute(ctx, graphql.Request{Query: query})
}

func (s *EngineSuite) TestSkipAuthFieldIsOpen() {
	resp := s.execute(context.Background(), `{ publicStatus }`)
	s.Empty(resp.Errors)
	s.Equal("all good", resp.Data["publicStatus"])
}

func (s *EngineSuite) TestUndirectedFieldRequiresAuthentication() {
	resp := s.execute(context.Background(), `{ implicitlyGuarded }`)
	s.Require().Len(resp.Errors, 1)
	s.Equal("You don't have permission to do that.", resp.Errors[0].Message)
	s.Equal(string(dErrors.CodeUnauthorized), resp.Errors[0].Extensions["code"])

	resp = s.execute(asUser(domain.NoRoles()), `{ implicitlyGuarded }`)
	s.Empty(resp.Errors)
}

func (s *EngineSuite) TestRoleConstrainedField() {
	resp := s.execute(asUser(domain.Role("support")), `{ adminReport }`)
	s.Require().Len(resp.Errors, 1)
	s.Equal("You don't have access to do that.", resp.Errors[0].Message)
	s.Equal(string(dErrors.CodeForbidden), resp.Errors[0].Extensions["code"])

	resp = s.execute(asUser(domain.Role("admin")), `{ adminReport }`)
	s.Empty(resp.Errors)
	s.Equal("secret numbers", resp.Data["adminReport"])
}

func (s *EngineSuite) TestRoleListMatchesAnyRole() {
	resp := s.execute(asUser(domain.Role("support")), `{ staffReport }`)
	s.Empty(resp.Errors)
	s.Equal("queue depth", resp.Data["staffReport"])
}

func (s *EngineSuite) TestPartialResultsWhenOneFieldIsDenied() {
	resp := s.execute(asUser(domain.Role("support")), `{ publicStatus adminReport }`)
	s.Require().Len(resp.Errors, 1)
	s.Equal([]string{"adminReport"}, resp.Errors[0].Path)
	s.Equal("all good", resp.Data["publicStatus"])
	s.Nil(resp.Data["adminReport"])
}

func (s *EngineSuite) TestMutationWithArgumentsAndSingleRoleString() {
	resp := s.engine.Execute(asUser(domain.Role("admin")), graphql.Request{
		Query: `mutation Wipe($ok: Boolean!) { deleteEverything(confirm: $ok) }`,
		Variables: map[string]any{"ok": true},
	})
	s.Empty(resp.Errors)
	s.Equal("done", resp.Data["deleteEverything"])

	resp = s.engine.Execute(asUser(domain.Role("intern")), graphql.Request{
		Query: `mutation { deleteEverything(confirm: true) }`,
	})
	s.Require().Len(resp.Errors, 1)
	s.Equal(string(dErrors.CodeForbidden), resp.Errors[0].Extensions["code"])
}

func (s *EngineSuite) TestInvalidQueryReportsValidationError() {
	resp := s.execute(context.Background(), `{ noSuchField }`)
	s.Require().NotEmpty(resp.Errors)
	s.Equal("GRAPHQL_VALIDATION_FAILED", resp.Errors[0].Extensions["code"])
}

func (s *EngineSuite) TestRootFragmentsAreRejected() {
	resp := s.execute(context.Background(),
		`query { ...Status } fragment Status on Query { publicStatus }`)
	s.Require().Len(resp.Errors, 1)
	s.Equal("GRAPHQL_VALIDATION_FAILED", resp.Errors[0].Extensions["code"])
	s.Nil(resp.Data)

	resp = s.execute(context.Background(), `{ ... on Query { publicStatus } }`)
	s.Require().Len(resp.Errors, 1)
	s.Equal("GRAPHQL_VALIDATION_FAILED", resp.Errors[0].Extensions["code"])
}

func (s *EngineSuite) TestRegisterRejectsUnknownField() {
	err := s.engine.Register("bogus", func(context.Context, map[string]any) (any, error) {
		return nil, nil
	})
	require.Error(s.T(), err)
}

func (s *EngineSuite) TestAliasedField() {
	resp := s.execute(asUser(domain.NoRoles()), `{ whoami: me }`)
	s.Empty(resp.Errors)
	s.Equal("it's you", resp.Data["whoami"])
}
