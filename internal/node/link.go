package node

// LinkMode tells whether a node keeps one parent reference or the ordered
// list of all of them.
type LinkMode int

const (
	// LinkSingle keeps a single parent reference. A later edge replaces it.
	LinkSingle LinkMode = iota
	// LinkJoined keeps every parent in edge-insertion order.
	LinkJoined
)

// ParentLink is the parent side of a node's edges. It is populated only while
// the graph is being constructed and is read-only afterwards.
type ParentLink struct {
	mode   LinkMode
	single Node
	joined []Node
}

func singleLink() ParentLink { return ParentLink{mode: LinkSingle} }
func joinedLink() ParentLink { return ParentLink{mode: LinkJoined} }

// Mode reports which variant the link is.
func (l *ParentLink) Mode() LinkMode { return l.mode }

// Single returns the parent of a LinkSingle node, or nil.
func (l *ParentLink) Single() Node {
	if l.mode != LinkSingle {
		return nil
	}
	return l.single
}

// Joined returns the parents of a LinkJoined node in edge order.
func (l *ParentLink) Joined() []Node {
	if l.mode != LinkJoined {
		return nil
	}
	return l.joined
}

// All returns every recorded parent regardless of mode.
func (l *ParentLink) All() []Node {
	if l.mode == LinkSingle {
		if l.single == nil {
			return nil
		}
		return []Node{l.single}
	}
	return l.joined
}

func (l *ParentLink) add(parent Node) {
	if l.mode == LinkSingle {
		l.single = parent
		return
	}
	l.joined = append(l.joined, parent)
}
