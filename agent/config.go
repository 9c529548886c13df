package agent

import (
	"time"

	"github.com/swarmforge/swarmforge/core"
)

// Role categorizes an agent's specialization within a pool.
type Role int

const (
	// RoleResearcher gathers information.
	RoleResearcher Role = iota
	// RoleAnalyzer inspects and interprets gathered material.
	RoleAnalyzer
	// RoleSynthesizer combines intermediate results into a coherent output.
	RoleSynthesizer
	// RoleExecutor carries out concrete actions.
	RoleExecutor
	// RoleCoordinator directs other agents in hierarchical execution.
	RoleCoordinator
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleResearcher:
		return "researcher"
	case RoleAnalyzer:
		return "analyzer"
	case RoleSynthesizer:
		return "synthesizer"
	case RoleExecutor:
		return "executor"
	case RoleCoordinator:
		return "coordinator"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name to its Role. Unknown names yield a ConfigError.
func ParseRole(name string) (Role, error) {
	switch name {
	case "researcher":
		return RoleResearcher, nil
	case "analyzer":
		return RoleAnalyzer, nil
	case "synthesizer":
		return RoleSynthesizer, nil
	case "executor":
		return RoleExecutor, nil
	case "coordinator":
		return RoleCoordinator, nil
	default:
		return 0, core.NewConfigError("unknown agent role %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler so roles serialize by name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

const (
	defaultMaxIterations = 5
	defaultTimeout       = 30 * time.Second
)

// Config is the immutable descriptor of an agent. Construct it once via
// NewConfig and never mutate it after handing it to a pool.
type Config struct {
	Name          string        `json:"name"`
	Role          Role          `json:"role"`
	Tools         []string      `json:"tools,omitempty"`
	MemoryEnabled bool          `json:"memory_enabled"`
	MaxIterations int           `json:"max_iterations"`
	Timeout       time.Duration `json:"timeout"`
}

// NewConfig builds a Config with defaults (memory enabled, 5 iterations,
// 30 second timeout) applied before the option functions run.
func NewConfig(name string, role Role, optFns ...func(c *Config)) Config {
	cfg := Config{
		Name:          name,
		Role:          role,
		MemoryEnabled: true,
		MaxIterations: defaultMaxIterations,
		Timeout:       defaultTimeout,
	}
	for _, fn := range optFns {
		fn(&cfg)
	}
	return cfg
}

// WithTools sets the named tools the agent may use.
func WithTools(tools ...string) func(c *Config) {
	return func(c *Config) { c.Tools = tools }
}

// WithMemoryEnabled toggles the agent's private memory.
func WithMemoryEnabled(enabled bool) func(c *Config) {
	return func(c *Config) { c.MemoryEnabled = enabled }
}

// WithMaxIterations overrides the iteration budget.
func WithMaxIterations(n int) func(c *Config) {
	return func(c *Config) { c.MaxIterations = n }
}

// WithTimeout overrides the per-execution wall-clock budget.
func WithTimeout(d time.Duration) func(c *Config) {
	return func(c *Config) { c.Timeout = d }
}

// Validate checks the descriptor's structural invariants.
func (c Config) Validate() error {
	if c.Name == "" {
		return core.NewConfigError("agent name must not be empty")
	}
	if c.Role < RoleResearcher || c.Role > RoleCoordinator {
		return core.NewConfigError("invalid agent role %d", int(c.Role))
	}
	if c.MaxIterations <= 0 {
		return core.NewConfigError("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Timeout <= 0 {
		return core.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
