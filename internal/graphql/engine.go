package graphql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"gatehouse/internal/auth/authorize"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/requestcontext"
)

// ResolverFunc resolves one root field. args are the coerced field
// arguments; the current user, when any, rides in on the context.
type ResolverFunc func(ctx context.Context, args map[string]any) (any, error)

// Request is a standard GraphQL POST body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is the standard GraphQL response envelope.
type Response struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors []*Error       `json:"errors,omitempty"`
}

// Error is one entry in the response errors array.
type Error struct {
	Message    string         `json:"message"`
	Path       []string       `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Engine validates operations against the schema and dispatches root fields
// to registered resolvers, enforcing each field's guard rule first.
type Engine struct {
	schema    *ast.Schema
	rules     map[string]fieldRule
	resolvers map[string]ResolverFunc
	logger    *slog.Logger
}

// NewEngine parses the SDL and extracts guard rules. Fields without a
// directive require authentication.
func NewEngine(sdl string, logger *slog.Logger) (*Engine, error) {
	schema, err := loadSchema(sdl)
	if err != nil {
		return nil, err
	}
	return &Engine{
		schema:    schema,
		rules:     extractRules(schema),
		resolvers: make(map[string]ResolverFunc),
		logger:    logger,
	}, nil
}

// Register binds a resolver to a root field name. Registering a field the
// schema does not declare is a wiring bug, reported at startup.
func (e *Engine) Register(field string, fn ResolverFunc) error {
	if _, ok := e.rules[field]; !ok {
		return fmt.Errorf("register %q: field not declared in schema", field)
	}
	e.resolvers[field] = fn
	return nil
}

// Execute runs one request. Guard and resolver failures surface in the
// errors array; data carries whatever fields did resolve.
func (e *Engine) Execute(ctx context.Context, req Request) *Response {
	doc, listErr := gqlparser.LoadQuery(e.schema, req.Query)
	if len(listErr) > 0 {
		resp := &Response{}
		for _, gqlErr := range listErr {
			resp.Errors = append(resp.Errors, &Error{
				Message:    gqlErr.Message,
				Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"},
			})
		}
		return resp
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		return &Response{Errors: []*Error{{
			Message:    fmt.Sprintf("operation %q not found", req.OperationName),
			Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"},
		}}}
	}

	// Fragments at the root would bypass the per-field dispatch below, so
	// they are rejected outright rather than silently dropped.
	for _, sel := range op.SelectionSet {
		if _, ok := sel.(*ast.Field); !ok {
			return &Response{Errors: []*Error{{
				Message:    "fragments are not supported at the operation root",
				Extensions: map[string]any{"code": "GRAPHQL_VALIDATION_FAILED"},
			}}}
		}
	}

	resp := &Response{Data: make(map[string]any)}
	for _, sel := range op.SelectionSet {
		field := sel.(*ast.Field)
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		value, err := e.resolveField(ctx, field, req.Variables)
		if err != nil {
			resp.Errors = append(resp.Errors, &Error{
				Message: dErrors.MessageOf(err),
				Path:    []string{key},
				Extensions: map[string]any{
					"code": string(dErrors.CodeOf(err)),
				},
			})
			resp.Data[key] = nil
			continue
		}
		resp.Data[key] = value
	}
	return resp
}

func (e *Engine) resolveField(ctx context.Context, field *ast.Field, variables map[string]any) (any, error) {
	rule, ok := e.rules[field.Name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("unknown field %q", field.Name))
	}
	if !rule.skipAuth {
		if err := authorize.RequireAuth(requestcontext.CurrentUser(ctx), rule.roles); err != nil {
			return nil, err
		}
	}

	resolver, ok := e.resolvers[field.Name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("no resolver for field %q", field.Name))
	}

	args := make(map[string]any, len(field.Arguments))
	for _, arg := range field.Arguments {
		value, err := arg.Value.Value(variables)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest,
				fmt.Sprintf("invalid value for argument %q", arg.Name))
		}
		args[arg.Name] = value
	}

	value, err := resolver(ctx, args)
	if err != nil {
		e.logger.WarnContext(ctx, "resolver failed", "field", field.Name, "error", err)
		return nil, err
	}
	return value, nil
}
