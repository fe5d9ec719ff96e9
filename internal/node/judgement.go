package node

import (
	"sync"

	"github.com/specialistvlad/dagjudge/internal/testcase"
)

// BinaryVerdict is the resolved outcome of a BinaryJudgement.
type BinaryVerdict struct {
	Verdict bool   `json:"verdict"`
	Reason  string `json:"reason"`
}

// NonBinaryVerdict is the resolved outcome of a NonBinaryJudgement.
type NonBinaryVerdict struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason"`
}

// Judgement is implemented by the two judgement variants so the executor can
// gate Verdict children without knowing which one it is looking at.
type Judgement interface {
	Node
	// Resolved returns the verdict chosen by the judge and whether one has
	// been chosen yet.
	Resolved() (VerdictValue, bool)
	Criteria() string
	EvaluationParams() []testcase.Param
	Verdicts() []*Verdict
}

// BinaryJudgementSpec describes a BinaryJudgement node.
type BinaryJudgementSpec struct {
	Name             string
	Criteria         string
	EvaluationParams []testcase.Param
	Children         []*Verdict
}

// BinaryJudgement classifies the case as true or false against Criteria.
type BinaryJudgement struct {
	base
	criteria string
	params   []testcase.Param
	verdicts []*Verdict

	mu      sync.RWMutex
	verdict *BinaryVerdict
}

var _ Judgement = (*BinaryJudgement)(nil)

// NewBinaryJudgement validates spec and wires the judgement to its children.
// It requires exactly two boolean Verdict children, one true and one false.
func NewBinaryJudgement(spec BinaryJudgementSpec) (*BinaryJudgement, error) {
	if len(spec.Children) != 2 {
		return nil, invalidf(KindBinaryJudgement, spec.Name, "must have exactly 2 children, got %d", len(spec.Children))
	}
	var trues, falses int
	for i, child := range spec.Children {
		if child == nil {
			return nil, invalidf(KindBinaryJudgement, spec.Name, "child %d is nil", i)
		}
		if !child.Value.IsBool() {
			return nil, invalidf(KindBinaryJudgement, spec.Name, "all children must have a boolean verdict, child %d has %q", i, child.Value.Label())
		}
		if child.Value.Bool() {
			trues++
		} else {
			falses++
		}
	}
	if trues != 1 || falses != 1 {
		return nil, invalidf(KindBinaryJudgement, spec.Name, "must have one true and one false VerdictNode child")
	}
	if err := checkParams(KindBinaryJudgement, spec.Name, spec.EvaluationParams); err != nil {
		return nil, err
	}

	j := &BinaryJudgement{
		base:     base{name: spec.Name, link: joinedLink()},
		criteria: spec.Criteria,
		params:   append([]testcase.Param(nil), spec.EvaluationParams...),
		verdicts: append([]*Verdict(nil), spec.Children...),
	}
	link(j, j.Children())
	return j, nil
}

func (j *BinaryJudgement) Kind() Kind                          { return KindBinaryJudgement }
func (j *BinaryJudgement) Criteria() string                    { return j.criteria }
func (j *BinaryJudgement) EvaluationParams() []testcase.Param { return j.params }
func (j *BinaryJudgement) Verdicts() []*Verdict               { return j.verdicts }
func (j *BinaryJudgement) Children() []Node                   { return verdictNodes(j.verdicts) }

// Verdict returns the stored outcome, or nil before the judge has answered.
func (j *BinaryJudgement) Verdict() *BinaryVerdict {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.verdict
}

// SetVerdict stores the judge's outcome.
func (j *BinaryJudgement) SetVerdict(v BinaryVerdict) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.verdict = &v
}

func (j *BinaryJudgement) Resolved() (VerdictValue, bool) {
	v := j.Verdict()
	if v == nil {
		return VerdictValue{}, false
	}
	return BoolVerdict(v.Verdict), true
}

// NonBinaryJudgementSpec describes a NonBinaryJudgement node.
type NonBinaryJudgementSpec struct {
	Name             string
	Criteria         string
	EvaluationParams []testcase.Param
	Children         []*Verdict
}

// NonBinaryJudgement classifies the case into one of the labels of its
// Verdict children.
type NonBinaryJudgement struct {
	base
	criteria string
	params   []testcase.Param
	verdicts []*Verdict
	options  []string
	accepted map[string]struct{}

	mu      sync.RWMutex
	verdict *NonBinaryVerdict
}

var _ Judgement = (*NonBinaryJudgement)(nil)

// NewNonBinaryJudgement validates spec and wires the judgement to its
// children. It requires at least one Verdict child; all labels must be
// non-empty, distinct strings. The label set is fixed here for the node's lifetime.
func NewNonBinaryJudgement(spec NonBinaryJudgementSpec) (*NonBinaryJudgement, error) {
	if len(spec.Children) == 0 {
		return nil, invalidf(KindNonBinaryJudgement, spec.Name, "must have at least one child")
	}
	options := make([]string, 0, len(spec.Children))
	accepted := make(map[string]struct{}, len(spec.Children))
	for i, child := range spec.Children {
		if child == nil {
			return nil, invalidf(KindNonBinaryJudgement, spec.Name, "child %d is nil", i)
		}
		if child.Value.IsBool() {
			return nil, invalidf(KindNonBinaryJudgement, spec.Name, "the verdict of all children must be a string, child %d is %s", i, child.Value)
		}
		label := child.Value.Label()
		if label == "" {
			return nil, invalidf(KindNonBinaryJudgement, spec.Name, "child %d has an empty verdict", i)
		}
		if _, dup := accepted[label]; dup {
			return nil, invalidf(KindNonBinaryJudgement, spec.Name, "duplicate verdict found: %q", label)
		}
		accepted[label] = struct{}{}
		options = append(options, label)
	}
	if err := checkParams(KindNonBinaryJudgement, spec.Name, spec.EvaluationParams); err != nil {
		return nil, err
	}

	j := &NonBinaryJudgement{
		base:     base{name: spec.Name, link: joinedLink()},
		criteria: spec.Criteria,
		params:   append([]testcase.Param(nil), spec.EvaluationParams...),
		verdicts: append([]*Verdict(nil), spec.Children...),
		options:  options,
		accepted: accepted,
	}
	link(j, j.Children())
	return j, nil
}

func (j *NonBinaryJudgement) Kind() Kind                          { return KindNonBinaryJudgement }
func (j *NonBinaryJudgement) Criteria() string                    { return j.criteria }
func (j *NonBinaryJudgement) EvaluationParams() []testcase.Param { return j.params }
func (j *NonBinaryJudgement) Verdicts() []*Verdict               { return j.verdicts }
func (j *NonBinaryJudgement) Children() []Node                   { return verdictNodes(j.verdicts) }

// VerdictOptions returns the accepted labels in declaration order.
func (j *NonBinaryJudgement) VerdictOptions() []string {
	return append([]string(nil), j.options...)
}

// Accepts reports whether label is one of the accepted labels.
func (j *NonBinaryJudgement) Accepts(label string) bool {
	_, ok := j.accepted[label]
	return ok
}

// Verdict returns the stored outcome, or nil before the judge has answered.
func (j *NonBinaryJudgement) Verdict() *NonBinaryVerdict {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.verdict
}

// SetVerdict stores the judge's outcome.
func (j *NonBinaryJudgement) SetVerdict(v NonBinaryVerdict) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.verdict = &v
}

func (j *NonBinaryJudgement) Resolved() (VerdictValue, bool) {
	v := j.Verdict()
	if v == nil {
		return VerdictValue{}, false
	}
	return LabelVerdict(v.Verdict), true
}

func verdictNodes(vs []*Verdict) []Node {
	out := make([]Node, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func checkParams(kind Kind, name string, params []testcase.Param) error {
	for _, p := range params {
		if !p.Valid() {
			return invalidf(kind, name, "unknown evaluation parameter %q", p)
		}
	}
	return nil
}
