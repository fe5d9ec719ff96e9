package node

import "github.com/specialistvlad/dagjudge/internal/geval"

// MaxScore is the upper bound of a deterministic verdict score.
const MaxScore = 10

// VerdictSpec describes a Verdict node. Exactly one of Score and GEval must be set.
type VerdictSpec struct {
	Name  string
	Value VerdictValue
	Score *int
	GEval *geval.Spec
}

// Verdict is a terminal node. It fires only when its judgement parent chose
// Value, and then fixes the metric's score either from Score or by running a
// nested GEval evaluator.
type Verdict struct {
	base
	Value VerdictValue
	score *int
	geval *geval.Spec
}

var _ Node = (*Verdict)(nil)

// NewVerdict validates spec. Verdict nodes keep a single parent reference,
// which is set when a judgement adopts them.
func NewVerdict(spec VerdictSpec) (*Verdict, error) {
	switch {
	case spec.Score != nil && spec.GEval != nil:
		return nil, invalidf(KindVerdict, spec.Name, "a VerdictNode can have either a 'score' or a 'geval', but not both")
	case spec.Score == nil && spec.GEval == nil:
		return nil, invalidf(KindVerdict, spec.Name, "a VerdictNode must have either a 'score' or a 'geval'")
	}
	if spec.Score != nil && (*spec.Score < 0 || *spec.Score > MaxScore) {
		return nil, invalidf(KindVerdict, spec.Name, "the score must be between 0 and %d, inclusive, got %d", MaxScore, *spec.Score)
	}
	if spec.GEval != nil {
		if err := spec.GEval.Validate(); err != nil {
			return nil, invalidf(KindVerdict, spec.Name, "invalid geval: %v", err)
		}
	}

	v := &Verdict{
		base:  base{name: spec.Name, link: singleLink()},
		Value: spec.Value,
	}
	if spec.Score != nil {
		s := *spec.Score
		v.score = &s
	}
	if spec.GEval != nil {
		g := spec.GEval.Clone()
		v.geval = &g
	}
	return v, nil
}

func (v *Verdict) Kind() Kind        { return KindVerdict }
func (v *Verdict) Children() []Node { return nil }

// Score returns the deterministic score and whether one is configured.
func (v *Verdict) Score() (int, bool) {
	if v.score == nil {
		return 0, false
	}
	return *v.score, true
}

// NormalizedScore maps the deterministic score onto [0, 1].
func (v *Verdict) NormalizedScore() (float64, bool) {
	s, ok := v.Score()
	if !ok {
		return 0, false
	}
	return float64(s) / MaxScore, true
}

// GEval returns the nested evaluator description, or nil.
func (v *Verdict) GEval() *geval.Spec { return v.geval }

// ScoringMode names how the verdict resolves its score.
func (v *Verdict) ScoringMode() string {
	if v.geval != nil {
		return "GEval"
	}
	return "Deterministic"
}

// Parent returns the node that most recently adopted this verdict.
func (v *Verdict) Parent() Node { return v.link.Single() }

// Ptr is a convenience for filling optional integer fields in specs.
func Ptr(i int) *int { return &i }
