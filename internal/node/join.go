package node

import "sync/atomic"

// Join is the per-node arrival counter that decides when a node reached
// through several incoming edges may run.
//
// The counter has two states. Before the first arrival it is pending with the
// total number of declared edges; afterwards it holds the number of edges that
// have not arrived yet. Arrive is a single atomic increment, so when several
// branches race on a shared node exactly one of them observes the last
// arrival.
type Join struct {
	total    int32
	arrivals atomic.Int32
}

// JoinState is a snapshot of a Join counter.
type JoinState struct {
	// Pending is true until the first arrival.
	Pending bool
	// Total is the number of declared incoming edges.
	Total int
	// Remaining is the number of edges that still have to arrive.
	Remaining int
}

// add registers one more incoming edge. Only called during construction.
func (j *Join) add() {
	j.total++
}

// Total returns the number of declared incoming edges.
func (j *Join) Total() int {
	return int(j.total)
}

// Arrive records one visit and reports whether it was the last expected one.
// A node without incoming edges (the root) proceeds on its first visit.
// Arrivals beyond the expected count never report true.
func (j *Join) Arrive() bool {
	expected := j.total
	if expected == 0 {
		expected = 1
	}
	return j.arrivals.Add(1) == expected
}

// State returns a snapshot of the counter.
func (j *Join) State() JoinState {
	arrived := int(j.arrivals.Load())
	if arrived == 0 {
		return JoinState{Pending: true, Total: int(j.total), Remaining: int(j.total)}
	}
	remaining := int(j.total) - arrived
	if remaining < 0 {
		remaining = 0
	}
	return JoinState{Total: int(j.total), Remaining: remaining}
}
