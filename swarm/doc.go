// Package swarm coordinates agents at two levels. A Pool owns a named set of
// agents and fans one task out across them under an execution mode:
// sequential (one at a time, insertion order), parallel (all at once, join on
// completion) or hierarchical (a coordinator first, then the remaining
// workers concurrently). An Orchestrator owns named pools, routes task
// requests to them and records every execution in an append-only history.
//
// A single agent's failure is always isolated at the pool layer: it lands in
// that agent's slot of the result map and never aborts sibling agents or the
// pool call itself. Parallel fan-out joins on all agents before returning and
// cancellation of one agent never cancels its siblings.
package swarm
