package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/errors"
	"finance-tracker/internal/graph"
	"finance-tracker/internal/services"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/labstack/echo/v4"
)

type graphQLRequest struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// GraphQLHandler serves the GraphQL endpoint over HTTP
type GraphQLHandler struct {
	schema  graphql.Schema
	session *config.SessionConfig
	metrics services.MetricsRecorderInterface
	logger  *slog.Logger
}

// NewGraphQLHandler creates a new GraphQL handler. metrics may be nil.
func NewGraphQLHandler(schema graphql.Schema, session *config.SessionConfig, metrics services.MetricsRecorderInterface, logger *slog.Logger) *GraphQLHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphQLHandler{
		schema:  schema,
		session: session,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes a query or mutation. POST carries the request as JSON; GET
// carries it in the query string and may only run queries.
func (h *GraphQLHandler) Handle(c echo.Context) error {
	req, err := h.readRequest(c)
	if err != nil {
		return err
	}
	if req == nil {
		return nil
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationMissingQuery)
	}

	name, kind := describeOperation(req.Query, req.OperationName)
	if c.Request().Method == http.MethodGet && kind == ast.OperationTypeMutation {
		return SendError(c, errors.SystemMethodNotAllowed,
			errors.WithDetails("mutations must be sent with POST"),
		)
	}

	ctx := graph.WithSessionWriter(c.Request().Context(), &cookieSessionWriter{c: c, cfg: h.session})

	start := time.Now()
	result := graph.Execute(ctx, h.schema, graph.Request{
		Query:         req.Query,
		Variables:     req.Variables,
		OperationName: req.OperationName,
	})
	h.record(name, result, time.Since(start))

	if result.HasErrors() {
		h.logger.DebugContext(ctx, "graphql operation returned errors",
			"trace_id", getTraceID(c),
			"operation", name,
			"errors", len(result.Errors),
		)
	}

	return c.JSON(http.StatusOK, result)
}

// readRequest returns nil with a nil error when an error response has
// already been written.
func (h *GraphQLHandler) readRequest(c echo.Context) (*graphQLRequest, error) {
	req := &graphQLRequest{}

	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if raw := c.QueryParam("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return nil, SendError(c, errors.ValidationInvalidBody,
					errors.WithDetails("variables must be a JSON object"),
				)
			}
		}
		return req, nil
	}

	if err := c.Bind(req); err != nil {
		return nil, SendError(c, errors.ValidationInvalidBody)
	}
	return req, nil
}

func (h *GraphQLHandler) record(operation string, result *graphql.Result, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}

	status := "success"
	if result.HasErrors() {
		status = "error"
	}
	h.metrics.IncrementCounter(services.MetricGraphQLOperation, map[string]string{
		"operation": operation,
		"status":    status,
	})
	h.metrics.RecordProcessingTime(services.MetricGraphQLDuration, elapsed)
}

// describeOperation returns a metrics label for the operation that will run
// and whether it is a query or a mutation. Unparseable documents are left to
// the executor to report.
func describeOperation(query, operationName string) (name, kind string) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return "invalid", ""
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}

		opName := ""
		if op.Name != nil {
			opName = op.Name.Value
		}
		if operationName != "" && opName != operationName {
			continue
		}

		if opName == "" {
			opName = firstFieldName(op)
		}
		return opName, op.Operation
	}

	return "unknown", ""
}

func firstFieldName(op *ast.OperationDefinition) string {
	if op.SelectionSet == nil {
		return "anonymous"
	}
	for _, sel := range op.SelectionSet.Selections {
		if field, ok := sel.(*ast.Field); ok && field.Name != nil {
			return field.Name.Value
		}
	}
	return "anonymous"
}

// cookieSessionWriter sets and clears the session cookie on the response
type cookieSessionWriter struct {
	c   echo.Context
	cfg *config.SessionConfig
}

func (w *cookieSessionWriter) SetSession(token string, expiresAt time.Time) {
	w.c.SetCookie(&http.Cookie{
		Name:     w.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(w.cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   w.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w *cookieSessionWriter) ClearSession() {
	w.c.SetCookie(&http.Cookie{
		Name:     w.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   w.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
