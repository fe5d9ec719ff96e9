// Package executor runs an evaluation graph.
//
// Every visit of a node goes through the same steps: record the arrival on
// the node's join counter and return silently unless it was the last one,
// prune Verdict nodes whose label does not match their judgement, then run the
// node body selected by its Kind and hand its children to the scheduler at
// the next depth.
package executor
