// Package service exposes the expression engine over HTTP.
package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lemonberrylabs/lazyexpr/pkg/config"
	"github.com/lemonberrylabs/lazyexpr/pkg/expr"
	"github.com/lemonberrylabs/lazyexpr/pkg/store"
)

// constants seeded into every environment; they are not part of a
// session's user-visible variable set
var seededNames = map[string]bool{
	"e": true, "PI": true, "TRUE": true, "FALSE": true, "NULL": true,
}

// session keeps variable bindings alive between evaluations.
type session struct {
	mu   sync.Mutex
	vars map[string]expr.LazyValue
}

// Server is the HTTP evaluation service.
type Server struct {
	app   *fiber.App
	store store.Store
	cfg   *config.Config
	log   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// New creates a new evaluation server.
func New(s store.Store, cfg *config.Config, logger zerolog.Logger) *Server {
	srv := &Server{
		store:    s,
		cfg:      cfg,
		log:      logger,
		sessions: make(map[string]*session),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Post("/v1/eval", srv.evalOnce)
	app.Post("/v1/sessions", srv.createSession)
	app.Post("/v1/sessions/:id/eval", srv.evalInSession)
	app.Get("/v1/sessions/:id/vars", srv.sessionVars)
	app.Delete("/v1/sessions/:id", srv.deleteSession)
	app.Get("/v1/history", srv.history)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

type evalRequest struct {
	Expression string            `json:"expression"`
	Vars       map[string]string `json:"vars"`
}

type evalResponse struct {
	Result string   `json:"result"`
	Type   string   `json:"type"`
	Logs   []string `json:"logs,omitempty"`
}

func errorJSON(c *fiber.Ctx, code int, status, format string, args ...any) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": fmt.Sprintf(format, args...),
			"status":  status,
		},
	})
}

// newExpression builds an expression configured per the service config.
func (s *Server) newExpression(src string, vars map[string]string) *expr.Expression {
	e := expr.New(src)
	e.SetPrecision(s.cfg.Precision)
	e.SetLegacyInequality(s.cfg.LegacyInequality)
	for name, text := range s.cfg.Variables {
		e.SetVariableText(name, text)
	}
	for name, text := range vars {
		e.SetVariableText(name, text)
	}
	return e
}

// evaluate runs the expression, records the outcome, and writes the
// response. sess may be nil for one-shot evaluations.
func (s *Server) evaluate(c *fiber.Ctx, sessionID string, sess *session, req evalRequest) error {
	if req.Expression == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "expression is required")
	}

	e := s.newExpression(req.Expression, req.Vars)

	var logs []string
	e.SetLogger(func(line string) { logs = append(logs, line) })

	if sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		for name, lv := range sess.vars {
			e.Env().Set(name, lv)
		}
	}

	rec := store.NewRecord(sessionID, req.Expression)
	v, err := e.Eval()
	rec.Logs = logs
	if err != nil {
		rec.Error = err.Error()
		if serr := s.store.Add(rec); serr != nil {
			s.log.Error().Err(serr).Msg("recording failed evaluation")
		}
		s.log.Debug().Str("expression", req.Expression).Err(err).Msg("evaluation failed")

		var lexErr *expr.LexError
		var synErr *expr.SyntaxError
		var evalErr *expr.EvalError
		switch {
		case errors.As(err, &lexErr), errors.As(err, &synErr):
			return errorJSON(c, 400, "INVALID_ARGUMENT", "%v", err)
		case errors.As(err, &evalErr):
			return errorJSON(c, 422, "FAILED_PRECONDITION", "%v", err)
		}
		return errorJSON(c, 500, "INTERNAL", "%v", err)
	}

	if sess != nil {
		// persist every binding the evaluation left behind
		for _, name := range e.Env().Names() {
			if seededNames[name] {
				continue
			}
			if lv, ok := e.Env().Get(name); ok {
				sess.vars[name] = lv
			}
		}
	}

	rec.Result = v.String()
	rec.Type = v.TypeName()
	if serr := s.store.Add(rec); serr != nil {
		s.log.Error().Err(serr).Msg("recording evaluation")
	}
	s.log.Debug().
		Str("expression", req.Expression).
		Str("result", rec.Result).
		Str("type", rec.Type).
		Msg("evaluated")

	return c.JSON(evalResponse{Result: rec.Result, Type: rec.Type, Logs: logs})
}

func (s *Server) evalOnce(c *fiber.Ctx) error {
	var req evalRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}
	return s.evaluate(c, "", nil, req)
}

func (s *Server) createSession(c *fiber.Ctx) error {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &session{vars: make(map[string]expr.LazyValue)}
	s.mu.Unlock()

	s.log.Info().Str("session", id).Msg("session created")
	return c.Status(201).JSON(fiber.Map{"id": id})
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) evalInSession(c *fiber.Ctx) error {
	sess, ok := s.session(c.Params("id"))
	if !ok {
		return errorJSON(c, 404, "NOT_FOUND", "session '%s' not found", c.Params("id"))
	}

	var req evalRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid request body: %v", err)
	}
	return s.evaluate(c, c.Params("id"), sess, req)
}

func (s *Server) sessionVars(c *fiber.Ctx) error {
	sess, ok := s.session(c.Params("id"))
	if !ok {
		return errorJSON(c, 404, "NOT_FOUND", "session '%s' not found", c.Params("id"))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	vars := make(map[string]fiber.Map, len(sess.vars))
	for name, lv := range sess.vars {
		v, err := lv.Force()
		if err != nil {
			return errorJSON(c, 500, "INTERNAL", "forcing '%s': %v", name, err)
		}
		vars[name] = fiber.Map{"value": v.String(), "type": v.TypeName()}
	}
	return c.JSON(fiber.Map{"vars": vars})
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errorJSON(c, 404, "NOT_FOUND", "session '%s' not found", id)
	}
	s.log.Info().Str("session", id).Msg("session deleted")
	return c.JSON(fiber.Map{})
}

func (s *Server) history(c *fiber.Ctx) error {
	limit := 0
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return errorJSON(c, 400, "INVALID_ARGUMENT", "invalid limit: %q", q)
		}
		limit = n
	}

	recs, err := s.store.History(c.Query("session"), limit)
	if err != nil {
		return errorJSON(c, 500, "INTERNAL", "%v", err)
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	return c.JSON(fiber.Map{"records": recs})
}
