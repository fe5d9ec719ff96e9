// Package dag validates an evaluation graph before it is executed.
//
// Nodes wire their own edges at construction, so a graph is fully described
// by its root. Build walks it once, assigns every node a stable address for
// logs, traces and errors, and checks the structural properties the executor
// relies on: every reachable node can actually receive all of its declared
// incoming edges, there are no cycles, and nothing has been executed yet.
package dag
