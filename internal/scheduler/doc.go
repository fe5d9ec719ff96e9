// Package scheduler decides how the children of an executed node are visited.
//
// Sequential visits them one after the other, each to completion, and stops
// at the first failure. Parallel visits them all at once (optionally bounded)
// and waits for every sibling before reporting the first failure. Both
// strategies drive the same visit function, so they produce the same score,
// reason and audit log content for the same graph; only log order may differ.
package scheduler
