// Package graphql executes operations against an SDL schema whose fields are
// guarded by @requireAuth and @skipAuth directives. The schema drives the
// guard; resolvers are plain Go functions registered by field name.
package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"gatehouse/pkg/domain"
)

// guardDirectives is prepended to every schema so deployments only write
// their own types.
const guardDirectives = `
directive @requireAuth(roles: [String!]) on FIELD_DEFINITION
directive @skipAuth on FIELD_DEFINITION
`

// fieldRule is the access rule for one root field. The default, when a field
// carries neither directive, is requireAuth with no role constraint: fields
// are private unless annotated open.
type fieldRule struct {
	skipAuth bool
	roles    domain.Roles
}

func loadSchema(sdl string) (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(
		&ast.Source{Name: "guard.graphql", Input: guardDirectives, BuiltIn: true},
		&ast.Source{Name: "schema.graphql", Input: sdl},
	)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return schema, nil
}

// extractRules walks the root types and records each field's guard rule.
func extractRules(schema *ast.Schema) map[string]fieldRule {
	rules := make(map[string]fieldRule)
	for _, root := range []*ast.Definition{schema.Query, schema.Mutation} {
		if root == nil {
			continue
		}
		for _, field := range root.Fields {
			rules[field.Name] = ruleFor(field)
		}
	}
	return rules
}

func ruleFor(field *ast.FieldDefinition) fieldRule {
	if field.Directives.ForName("skipAuth") != nil {
		return fieldRule{skipAuth: true}
	}
	rule := fieldRule{roles: domain.NoRoles()}
	directive := field.Directives.ForName("requireAuth")
	if directive == nil {
		return rule
	}
	arg := directive.Arguments.ForName("roles")
	if arg == nil || arg.Value == nil {
		return rule
	}
	switch arg.Value.Kind {
	case ast.StringValue:
		rule.roles = domain.Role(arg.Value.Raw)
	case ast.ListValue:
		names := make([]string, 0, len(arg.Value.Children))
		for _, child := range arg.Value.Children {
			names = append(names, child.Value.Raw)
		}
		rule.roles = domain.RoleList(names...)
	}
	return rule
}
