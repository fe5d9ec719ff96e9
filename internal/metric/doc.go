// Package metric exposes an evaluation graph as a scoring metric.
//
// A DAG metric rebuilds its graph for every Measure call, because graphs keep
// per-pass state on their nodes and are single-use. The score comes from the
// Verdict node the traversal reached; the metric applies its threshold and
// strict mode on top.
package metric
