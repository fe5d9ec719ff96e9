package node

import "sync/atomic"

// Kind tags the concrete variant of a Node.
type Kind int

const (
	KindTask Kind = iota
	KindBinaryJudgement
	KindNonBinaryJudgement
	KindVerdict
)

// String returns the display name used in audit logs.
func (k Kind) String() string {
	switch k {
	case KindTask:
		return "TaskNode"
	case KindBinaryJudgement:
		return "BinaryJudgementNode"
	case KindNonBinaryJudgement:
		return "NonBinaryJudgementNode"
	case KindVerdict:
		return "VerdictNode"
	default:
		return "UnknownNode"
	}
}

// Slug returns the lower-case identifier used in graph addresses and HCL blocks.
func (k Kind) Slug() string {
	switch k {
	case KindTask:
		return "task"
	case KindBinaryJudgement:
		return "binary_judgement"
	case KindNonBinaryJudgement:
		return "non_binary_judgement"
	case KindVerdict:
		return "verdict"
	default:
		return "unknown"
	}
}

// IsJudgement reports whether nodes of this kind resolve a verdict.
func (k Kind) IsJudgement() bool {
	return k == KindBinaryJudgement || k == KindNonBinaryJudgement
}

// State represents the execution state of a node within one evaluation pass.
type State int32

const (
	// Unvisited indicates the node is still waiting on at least one incoming edge.
	Unvisited State = iota
	// Entered indicates the last incoming edge has arrived.
	Entered
	// Pruned indicates a Verdict node whose label did not match its judgement.
	Pruned
	// Executing indicates the node body is running.
	Executing
	// Executed indicates the node body has completed.
	Executed
	// Failed indicates the node body returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Entered:
		return "entered"
	case Pruned:
		return "pruned"
	case Executing:
		return "executing"
	case Executed:
		return "executed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Node is a vertex of the evaluation graph. The interface is sealed; the only
// implementations are *Task, *BinaryJudgement, *NonBinaryJudgement and *Verdict.
type Node interface {
	Kind() Kind
	// Name is an optional human label. It is used to build graph addresses.
	Name() string
	Parents() *ParentLink
	Children() []Node
	Join() *Join
	State() State
	SetState(s State)

	attach(parent Node)
}

// base carries the fields shared by every variant.
type base struct {
	name  string
	link  ParentLink
	join  Join
	state atomic.Int32
}

func (b *base) Name() string         { return b.name }
func (b *base) Parents() *ParentLink { return &b.link }
func (b *base) Join() *Join          { return &b.join }

// State atomically retrieves the node's execution state.
func (b *base) State() State {
	return State(b.state.Load())
}

// SetState atomically sets the node's execution state.
func (b *base) SetState(s State) {
	b.state.Store(int32(s))
}

// attach records one incoming edge from parent.
func (b *base) attach(parent Node) {
	b.link.add(parent)
	b.join.add()
}

// link wires parent -> child edges for every child.
func link(parent Node, children []Node) {
	for _, child := range children {
		child.attach(parent)
	}
}
