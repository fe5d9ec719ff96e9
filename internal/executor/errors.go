package executor

import (
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/node"
)

// NodeError attributes a traversal failure to the node whose body failed.
type NodeError struct {
	Address string
	Kind    node.Kind
	Depth   int
	Err     error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s %s (level %d): %v", e.Kind, e.Address, e.Depth, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
