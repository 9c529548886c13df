// Package server exposes the orchestration surface over HTTP: agent
// management, pool execution, pipeline runs, memory inspection and the
// evaluation report. Handlers are thin translations between JSON and the
// façade; no orchestration logic lives here.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/swarmforge/swarmforge"
	"github.com/swarmforge/swarmforge/agent"
	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/memory"
	"github.com/swarmforge/swarmforge/swarm"
)

// defaultPool is the pool the HTTP surface manages. The API deliberately
// exposes a single-pool view; multi-pool topologies are built in code.
const defaultPool = "main"

// Server wires the façade to a mux router with CORS enabled.
type Server struct {
	forge  *swarmforge.SwarmForge
	router *mux.Router
	logger logging.Logger
}

// Options configure the Server.
type Options struct {
	// AllowedOrigins defaults to all origins.
	AllowedOrigins []string
	// Logger defaults to the façade's logger.
	Logger logging.Logger
}

// New constructs a Server over the given façade.
func New(forge *swarmforge.SwarmForge, optFns ...func(o *Options)) *Server {
	opts := Options{
		AllowedOrigins: []string{"*"},
		Logger:         forge.Logger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		forge:  forge,
		router: mux.NewRouter(),
		logger: opts.Logger,
	}
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	s.router.Use(c.Handler)
	s.router.Use(requestID)
	s.registerRoutes()
	return s
}

// requestID tags every response with a fresh X-Request-ID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", core.NewID())
		next.ServeHTTP(w, r)
	})
}

// Handler returns the fully configured HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)

	s.router.HandleFunc("/api/agents/add", s.handleAddAgent).Methods(http.MethodPost)
	s.router.HandleFunc("/api/agents/list", s.handleListAgents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/agents/stats", s.handleAgentStats).Methods(http.MethodGet)
	s.router.HandleFunc("/api/agents/{name}", s.handleRemoveAgent).Methods(http.MethodDelete)

	s.router.HandleFunc("/api/execute", s.handleExecute).Methods(http.MethodPost)
	s.router.HandleFunc("/api/execute/history", s.handleExecutionHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/pipeline/run", s.handlePipelineRun).Methods(http.MethodPost)

	s.router.HandleFunc("/api/memory/stats", s.handleMemoryStats).Methods(http.MethodGet)
	s.router.HandleFunc("/api/memory/search", s.handleMemorySearch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/evaluation/report", s.handleEvaluationReport).Methods(http.MethodGet)

	s.router.HandleFunc("/api/tools/list", s.handleListTools).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	stats := s.forge.Orchestrator().GetOrchestrationStats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"pools":                   stats.TotalPools,
		"execution_history_count": stats.TotalExecutions,
	})
}

type addAgentRequest struct {
	Name  string   `json:"name"`
	Role  string   `json:"role"`
	Tools []string `json:"tools,omitempty"`
}

func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var req addAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	role, err := agent.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	pool := s.defaultPool()
	if _, err := pool.AddAgent(agent.NewConfig(req.Name, role, agent.WithTools(req.Tools...))); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("agent added", "agent", req.Name, "role", req.Role)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "added",
		"agent":  req.Name,
		"role":   req.Role,
	})
}

type agentView struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Tools      []string `json:"tools"`
	State      string   `json:"state"`
	Executions int      `json:"executions"`
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	pool, ok := s.forge.Pool(defaultPool)
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]any{"agents": []agentView{}})
		return
	}
	views := make([]agentView, 0, pool.Size())
	for _, name := range pool.AgentNames() {
		a, ok := pool.Agent(name)
		if !ok {
			continue
		}
		cfg := a.Config()
		views = append(views, agentView{
			Name:       cfg.Name,
			Role:       cfg.Role.String(),
			Tools:      cfg.Tools,
			State:      a.State().String(),
			Executions: len(a.ExecutionLog()),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"agents": views})
}

func (s *Server) handleRemoveAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	pool, ok := s.forge.Pool(defaultPool)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.NewNotFoundError("agent", name))
		return
	}
	if _, ok := pool.Agent(name); !ok {
		s.writeError(w, http.StatusNotFound, core.NewNotFoundError("agent", name))
		return
	}
	pool.RemoveAgent(name)
	s.logger.Info("agent removed", "agent", name)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "agent": name})
}

func (s *Server) handleAgentStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.forge.Orchestrator().GetOrchestrationStats())
}

type executeRequest struct {
	Task          string `json:"task"`
	ExecutionMode string `json:"execution_mode,omitempty"`
	AgentCount    int    `json:"agent_count,omitempty"`
}

type executeResponse struct {
	Status    string       `json:"status"`
	Task      string       `json:"task"`
	Result    swarm.Result `json:"result"`
	Duration  float64      `json:"duration"`
	Timestamp time.Time    `json:"timestamp"`
}

// handleExecute runs a task through the managed pool, seeding default agents
// on first use so the API is usable without prior setup.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Task == "" {
		s.writeError(w, http.StatusBadRequest, core.NewConfigError("task must not be empty"))
		return
	}

	pool := s.defaultPool()
	if pool.Size() == 0 {
		if err := seedDefaultAgents(pool, req.AgentCount); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if req.ExecutionMode != "" {
		mode, err := swarm.ParseMode(req.ExecutionMode)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := pool.SetMode(mode); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	record, err := s.forge.ExecuteTask(r.Context(), defaultPool, req.Task)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, executeResponse{
		Status:    "success",
		Task:      record.Task,
		Result:    record.Result,
		Duration:  record.Duration.Seconds(),
		Timestamp: record.Timestamp,
	})
}

func (s *Server) handleExecutionHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, core.NewConfigError("invalid limit: %s", raw))
			return
		}
		limit = n
	}
	history := s.forge.Orchestrator().History(limit)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"history": history,
		"total":   s.forge.Orchestrator().GetOrchestrationStats().TotalExecutions,
	})
}

type pipelineRequest struct {
	Task string `json:"task"`
}

func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Task == "" {
		s.writeError(w, http.StatusBadRequest, core.NewConfigError("task must not be empty"))
		return
	}
	state, err := s.forge.RunPipeline(r.Context(), req.Task)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleMemoryStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"memory": s.forge.Memory().GetStats()})
}

func (s *Server) handleMemorySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, core.NewConfigError("query must not be empty"))
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "general"
	}
	hits := s.forge.Memory().Search(query, category)
	if hits == nil {
		hits = []memory.SearchHit{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
	})
}

func (s *Server) handleEvaluationReport(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"report": s.forge.Evaluator().Report()})
}

type toolView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	tools := s.forge.Tools().Select()
	views := make([]toolView, 0, len(tools))
	for _, t := range tools {
		views = append(views, toolView{Name: t.Name(), Description: t.Description()})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tools": views})
}

// defaultPool returns the managed pool, creating it on first use.
func (s *Server) defaultPool() *swarm.Pool {
	if pool, ok := s.forge.Pool(defaultPool); ok {
		return pool
	}
	return s.forge.CreatePool(defaultPool)
}

// seedDefaultAgents populates an empty pool with up to three agents cycling
// through the researcher, analyzer and synthesizer roles.
func seedDefaultAgents(pool *swarm.Pool, count int) error {
	if count <= 0 || count > 3 {
		count = 3
	}
	roles := []agent.Role{agent.RoleResearcher, agent.RoleAnalyzer, agent.RoleSynthesizer}
	for i := 0; i < count; i++ {
		cfg := agent.NewConfig(fmt.Sprintf("agent_%d", i), roles[i%len(roles)], agent.WithMaxIterations(3))
		if _, err := pool.AddAgent(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}
