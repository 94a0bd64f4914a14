package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/njchilds90/geosymbol"
	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/service"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RunsResponse is the body of GET /v1/runs.
type RunsResponse struct {
	Runs  []service.Summary `json:"runs"`
	Count int               `json:"count"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.svc.HasStore()})
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(geosymbol.MCPToolSpec()))
}

func (s *Server) handleRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   s.svc.RuleNames(),
		"available": geosymbol.RuleNames(geosymbol.ExtendedRules()),
	})
}

// handleSolve handles POST /v1/solve.
//
//	200 OK: service.Result
//	400 Bad Request: malformed body, no facts or unknown rule
//	500 Internal Server Error: a rule panicked or the store failed
func (s *Server) handleSolve(c *gin.Context) {
	requestID := getRequestID(c)

	var req service.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "INVALID_REQUEST", err)
		return
	}

	res, err := s.svc.Solve(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	logging.NewEvent(s.logger.Debug()).
		Add(logging.RequestID(requestID)).
		Add(logging.RunID(res.ID)).
		Msg("solve served")
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.badRequest(c, "INVALID_LIMIT", errors.Errorf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = min(n, maxListLimit)
	}
	runs, err := s.svc.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if runs == nil {
		runs = []service.Summary{}
	}
	c.JSON(http.StatusOK, RunsResponse{Runs: runs, Count: len(runs)})
}

func (s *Server) handleGetRun(c *gin.Context) {
	res, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeleteRun(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleTool handles POST /tool, the MCP-style single-call interface.
func (s *Server) handleTool(c *gin.Context) {
	var req geosymbol.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, geosymbol.ToolResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	resp := s.callTool(req)
	if resp.Error != "" {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// callTool runs a tool call, reporting a rule panic as an error response.
func (s *Server) callTool(req geosymbol.ToolRequest) (resp geosymbol.ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = geosymbol.ToolResponse{Error: errors.Wrapf(service.ErrRulePanic, "%v", r).Error()}
		}
	}()
	return geosymbol.HandleToolCall(req)
}

func (s *Server) badRequest(c *gin.Context, code string, err error) {
	logging.NewEvent(s.logger.Warn()).
		Add(logging.RequestID(getRequestID(c))).
		Add(logging.ErrorField(err)).
		Msg("bad request")
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: code, RequestID: getRequestID(c)})
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, service.ErrEmptyFacts):
		status, code = http.StatusBadRequest, "EMPTY_FACTS"
	case errors.Is(err, service.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrNoStore):
		status, code = http.StatusNotImplemented, "NO_STORE"
	case errors.Is(err, service.ErrRulePanic):
		code = "RULE_PANIC"
	}

	ev := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.logger.Error()
	}
	logging.NewEvent(ev).
		Add(logging.RequestID(getRequestID(c))).
		Add(logging.Str("code", code)).
		Add(logging.ErrorField(err)).
		Msg("request failed")
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, RequestID: getRequestID(c)})
}
