// Package node defines the vertices of an evaluation DAG.
//
// There are four variants, tagged by Kind: Task nodes produce an intermediate
// text artifact, BinaryJudgement and NonBinaryJudgement nodes classify the
// case into one of their Verdict children, and Verdict nodes are terminal and
// carry the score of the branch they represent.
//
// Edges are wired by the constructors. Creating a parent registers it on each
// child's ParentLink and bumps the child's Join counter once per edge, so a
// graph is complete (and immutable) as soon as its root has been constructed.
// Transient execution fields (task output, resolved verdicts, join arrivals,
// state) are written during a single evaluation pass and never reset; a graph
// is single-use.
package node
