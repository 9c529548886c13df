package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swarmforge/swarmforge"
	"github.com/swarmforge/swarmforge/agent"
	"github.com/swarmforge/swarmforge/config"
	"github.com/swarmforge/swarmforge/server"
	"github.com/swarmforge/swarmforge/swarm"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("swarmforge %s\n", version)
	case "demo":
		if err := runDemo(); err != nil {
			fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "serve failed: %v\n", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: swarmforge <command>\n\nCommands:\n  demo       Run the built-in workflow demo\n  serve      Start the HTTP API server\n  version    Print version\n")
}

// runDemo exercises the three execution modes and a pipeline run against the
// local configuration, printing a short report of each step.
func runDemo() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	forge, err := swarmforge.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()

	fmt.Println("== Agent pool demo ==")
	pool := forge.CreatePool("demo")
	configs := []agent.Config{
		agent.NewConfig("researcher_1", agent.RoleResearcher),
		agent.NewConfig("analyzer_1", agent.RoleAnalyzer),
		agent.NewConfig("synthesizer_1", agent.RoleSynthesizer),
	}
	for _, c := range configs {
		if _, err := pool.AddAgent(c); err != nil {
			return err
		}
		fmt.Printf("  added %s (%s)\n", c.Name, c.Role)
	}

	task := "Summarize the benefits of multi-agent systems"
	for _, mode := range []swarm.Mode{swarm.ModeSequential, swarm.ModeParallel, swarm.ModeHierarchical} {
		if err := pool.SetMode(mode); err != nil {
			return err
		}
		fmt.Printf("\n  executing in %s mode...\n", mode)
		record, err := forge.ExecuteTask(ctx, "demo", task)
		if err != nil {
			return err
		}
		for name, slot := range record.Result.Agents {
			fmt.Printf("    %s: %s\n", name, slot.Status)
		}
		if record.Result.Coordinator != nil {
			fmt.Printf("    coordinator %s: %.60s\n", record.Result.Coordinator.Agent, record.Result.Coordinator.Result)
		}
		for name, slot := range record.Result.Workers {
			fmt.Printf("    worker %s: %s\n", name, slot.Status)
		}
	}

	fmt.Println("\n== Pipeline demo ==")
	state, err := forge.RunPipeline(ctx, task)
	if err != nil {
		return err
	}
	fmt.Printf("  status: %s\n", state.Status)
	if state.EvaluationResults != nil {
		fmt.Printf("  overall score: %.2f\n", state.EvaluationResults.OverallScore)
	}

	fmt.Println("\n== Stats ==")
	memStats := forge.Memory().GetStats()
	fmt.Printf("  short-term entries: %d\n", memStats.ShortTermSize)
	fmt.Printf("  long-term categories: %v\n", memStats.LongTermCategories)
	fmt.Printf("  long-term entries: %d\n", memStats.LongTermTotal)
	fmt.Printf("  %s\n", forge.Evaluator().Report())

	orchStats := forge.Orchestrator().GetOrchestrationStats()
	fmt.Printf("  pools: %d, executions: %d\n", orchStats.TotalPools, orchStats.TotalExecutions)
	return nil
}

// runServe starts the HTTP API and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	forge, err := swarmforge.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	logger := forge.Logger()

	srv := server.New(forge, func(o *server.Options) {
		o.AllowedOrigins = cfg.Server.AllowedOrigins
	})
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
