// Package testcase defines the input case a DAG metric is evaluated against:
// the fixed set of semantic roles (input, actual output, context, tool calls,
// ...) that nodes may reference as evaluation parameters, and the loader for
// YAML case files.
package testcase
