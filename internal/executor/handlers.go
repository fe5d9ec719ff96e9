package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/dagjudge/internal/auditlog"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/prompts"
	"github.com/specialistvlad/dagjudge/internal/testcase"
)

func (e *Executor) runTask(ctx context.Context, n node.Node, depth int) ([]node.Node, error) {
	t := n.(*node.Task)
	prompt := prompts.TaskOutput(t.Instructions, e.contextText(t, t.EvaluationParams))

	out, cost, err := judge.Text(ctx, e.eval.Judge, prompt)
	e.eval.AddCost(cost)
	if err != nil {
		return nil, err
	}
	t.SetOutput(out)

	e.eval.Log().Append(auditlog.Entry{
		Kind:         node.KindTask,
		Address:      e.graph.Address(t),
		Depth:        depth,
		Instructions: t.Instructions,
		OutputLabel:  t.OutputLabel,
		Output:       out,
	})
	return t.Children(), nil
}

func (e *Executor) runBinaryJudgement(ctx context.Context, n node.Node, depth int) ([]node.Node, error) {
	j := n.(*node.BinaryJudgement)
	prompt := prompts.BinaryVerdict(j.Criteria(), e.contextText(j, j.EvaluationParams()))

	var v node.BinaryVerdict
	cost, err := judge.Structured(ctx, e.eval.Judge, prompt, judge.BinaryVerdictSchema(), &v)
	e.eval.AddCost(cost)
	if err != nil {
		return nil, err
	}
	j.SetVerdict(v)

	e.logJudgement(j, depth, node.BoolVerdict(v.Verdict), v.Reason)
	return j.Children(), nil
}

func (e *Executor) runNonBinaryJudgement(ctx context.Context, n node.Node, depth int) ([]node.Node, error) {
	j := n.(*node.NonBinaryJudgement)
	options := j.VerdictOptions()
	prompt := prompts.NonBinaryVerdict(j.Criteria(), e.contextText(j, j.EvaluationParams()), options)

	var v node.NonBinaryVerdict
	cost, err := judge.Structured(ctx, e.eval.Judge, prompt, judge.NonBinaryVerdictSchema(options), &v)
	e.eval.AddCost(cost)
	if err != nil {
		return nil, err
	}
	if !j.Accepts(v.Verdict) {
		return nil, &judge.ExtractionError{Raw: v.Verdict, Err: fmt.Errorf("verdict %q is not one of [%s]", v.Verdict, strings.Join(options, ", "))}
	}
	j.SetVerdict(v)

	e.logJudgement(j, depth, node.LabelVerdict(v.Verdict), v.Reason)
	return j.Children(), nil
}

func (e *Executor) logJudgement(j node.Judgement, depth int, verdict node.VerdictValue, reason string) {
	e.eval.Log().Append(auditlog.Entry{
		Kind:     j.Kind(),
		Address:  e.graph.Address(j),
		Depth:    depth,
		Criteria: j.Criteria(),
		Verdict:  verdict.String(),
		Reason:   reason,
	})
}

type reasonAnswer struct {
	Reason string `json:"reason"`
}

func (e *Executor) runVerdict(ctx context.Context, n node.Node, depth int) ([]node.Node, error) {
	v := n.(*node.Verdict)
	addr := e.graph.Address(v)
	e.eval.Log().Append(auditlog.Entry{
		Kind:        node.KindVerdict,
		Address:     addr,
		Depth:       depth,
		Verdict:     v.Value.String(),
		ScoringMode: v.ScoringMode(),
	})

	if spec := v.GEval(); spec != nil {
		sub := e.eval.GEval(*spec, e.eval.Judge, e.eval.IncludeReason)
		out, err := sub.Measure(ctx, e.eval.TestCase)
		e.eval.AddCost(out.Cost)
		if err != nil {
			return nil, err
		}
		e.eval.SetScore(out.Score, addr)
		if e.eval.IncludeReason {
			e.eval.SetReason(out.Reason)
		}
		return nil, nil
	}

	score, _ := v.NormalizedScore()
	e.eval.SetScore(score, addr)
	if !e.eval.IncludeReason {
		return nil, nil
	}

	prompt := prompts.Reason(e.eval.Log().Render(), score, e.eval.MetricName)
	var ans reasonAnswer
	cost, err := judge.Structured(ctx, e.eval.Judge, prompt, judge.ReasonSchema(), &ans)
	e.eval.AddCost(cost)
	if err != nil {
		return nil, err
	}
	e.eval.SetReason(ans.Reason)
	return nil, nil
}

// contextText renders the outputs of Task parents, in edge order, followed by
// the requested test case parameters.
func (e *Executor) contextText(n node.Node, params []testcase.Param) string {
	var sb strings.Builder
	for _, p := range n.Parents().Joined() {
		t, ok := p.(*node.Task)
		if !ok {
			continue
		}
		out, _ := t.Output()
		fmt.Fprintf(&sb, "%s:\n%s\n\n", t.OutputLabel, out)
	}
	for _, p := range params {
		value, _ := e.eval.TestCase.Value(p)
		fmt.Fprintf(&sb, "%s:\n%s\n", p.Label(), value)
	}
	return sb.String()
}
