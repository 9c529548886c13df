// Package memory contains the two-tier in-process memory store used by the
// pipeline and exposed through the API surface. The short-term tier is a flat
// overwrite cache; the long-term tier is category-partitioned with an
// append-only key index suitable for audit trails.
//
// Persistence across process restarts is out of scope: the store is
// in-memory only. Swap in a durable backend at wiring time if you need one.
package memory
