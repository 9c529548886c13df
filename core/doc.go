// Package core holds the shared contracts of the SwarmForge module: the
// tagged Value payload type used by memory stores and result maps, the error
// taxonomy (model, tool, config, not-found, timeout) and small identity
// helpers. Higher-level packages (agent, swarm, pipeline, memory, evaluation)
// depend on core; core depends on nothing above the standard library and the
// uuid generator.
package core
