package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/graphql"
	dErrors "gatehouse/pkg/domain-errors"
)

// GraphQLHandler serves the guarded GraphQL endpoint. Guard failures come
// back inside the GraphQL errors array with HTTP 200, per convention.
type GraphQLHandler struct {
	engine *graphql.Engine
	logger *slog.Logger
}

func NewGraphQLHandler(engine *graphql.Engine, logger *slog.Logger) *GraphQLHandler {
	return &GraphQLHandler{engine: engine, logger: logger}
}

func (h *GraphQLHandler) Register(r chi.Router) {
	r.Post("/graphql", h.handleQuery)
}

func (h *GraphQLHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Query == "" {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query is required"))
		return
	}
	WriteJSON(w, http.StatusOK, h.engine.Execute(r.Context(), req))
}
