// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns decoded blocks into node graphs and metrics.
package dagdef

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/dag"
	"github.com/specialistvlad/dagjudge/internal/geval"
	"github.com/specialistvlad/dagjudge/internal/hclutil"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/metric"
	"github.com/specialistvlad/dagjudge/internal/node"
	"github.com/specialistvlad/dagjudge/internal/testcase"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Definitions is a validated, immutable set of decoded blocks.
type Definitions struct {
	metrics     map[string]*hclMetric
	metricOrder []string
	tasks       map[string]*hclTask
	binaries    map[string]*hclJudgement
	nonBinaries map[string]*hclJudgement
	verdicts    map[string]*hclVerdict
	ranges      map[string]hcl.Range
}

// MetricSettings are the metric-level attributes of a metric block.
type MetricSettings struct {
	Name          string
	Root          string
	Threshold     *float64
	IncludeReason *bool
	StrictMode    *bool
}

// MetricNames returns the declared metrics in declaration order.
func (d *Definitions) MetricNames() []string {
	return append([]string(nil), d.metricOrder...)
}

// Metric returns the settings of the named metric.
func (d *Definitions) Metric(name string) (MetricSettings, error) {
	m, ok := d.metrics[name]
	if !ok {
		return MetricSettings{}, fmt.Errorf("metric %q is not defined", name)
	}
	root, diags := hclutil.ReferenceFor(m.Root)
	if diags.HasErrors() {
		return MetricSettings{}, fmt.Errorf("metric %q: %w", name, diags)
	}
	return MetricSettings{
		Name:          m.Name,
		Root:          root.Key,
		Threshold:     m.Threshold,
		IncludeReason: m.IncludeReason,
		StrictMode:    m.StrictMode,
	}, nil
}

// Build constructs a fresh node graph for the named metric and returns its root.
func (d *Definitions) Build(name string) (node.Node, error) {
	m, ok := d.metrics[name]
	if !ok {
		return nil, fmt.Errorf("metric %q is not defined", name)
	}
	root, diags := hclutil.ReferenceFor(m.Root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("metric %q: %w", name, diags)
	}
	b := &builder{defs: d, built: make(map[string]node.Node), building: make(map[string]bool)}
	return b.node(root)
}

// NewMetric returns a DAG metric for the named metric block. Options given
// here are applied after the block's own attributes.
func (d *Definitions) NewMetric(name string, j judge.Judge, extra ...metric.Option) (*metric.DAG, error) {
	settings, err := d.Metric(name)
	if err != nil {
		return nil, err
	}
	var opts []metric.Option
	if settings.Threshold != nil {
		opts = append(opts, metric.WithThreshold(*settings.Threshold))
	}
	if settings.IncludeReason != nil {
		opts = append(opts, metric.WithReason(*settings.IncludeReason))
	}
	if settings.StrictMode != nil {
		opts = append(opts, metric.WithStrictMode(*settings.StrictMode))
	}
	opts = append(opts, extra...)
	return metric.New(name, func() (node.Node, error) { return d.Build(name) }, j, opts...)
}

// Validate builds every metric once and checks the resulting graphs.
// Blocks no metric can reach are reported as warnings.
func (d *Definitions) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	reachable := make(map[string]bool)
	for _, name := range d.metricOrder {
		root, err := d.Build(name)
		if err != nil {
			return err
		}
		g, err := dag.Build(ctx, root)
		if err != nil {
			return fmt.Errorf("metric %q: %w", name, err)
		}
		for _, n := range g.Nodes() {
			if n.Name() != "" {
				reachable[n.Kind().Slug()+"."+n.Name()] = true
			}
		}
	}

	var unused []string
	for key := range d.ranges {
		kind, _, _ := strings.Cut(key, ".")
		if kind == "metric" || reachable[key] {
			continue
		}
		unused = append(unused, key)
	}
	sort.Strings(unused)
	for _, key := range unused {
		logger.Warn("Block is not reachable from any metric.", "block", key, "range", d.ranges[key].String())
	}
	return nil
}

// builder constructs one graph. Shared references resolve to the same node.
type builder struct {
	defs     *Definitions
	built    map[string]node.Node
	building map[string]bool
}

func (b *builder) node(ref hclutil.Reference) (node.Node, error) {
	if n, ok := b.built[ref.Key]; ok {
		return n, nil
	}
	if b.building[ref.Key] {
		return nil, fmt.Errorf("%s: %w through %s", ref.Range, dag.ErrCycle, ref.Key)
	}
	b.building[ref.Key] = true
	defer delete(b.building, ref.Key)

	var (
		n   node.Node
		err error
	)
	switch ref.Kind {
	case node.KindTask.Slug():
		n, err = b.task(ref)
	case node.KindBinaryJudgement.Slug():
		n, err = b.binary(ref)
	case node.KindNonBinaryJudgement.Slug():
		n, err = b.nonBinary(ref)
	case node.KindVerdict.Slug():
		n, err = b.verdict(ref)
	default:
		err = fmt.Errorf("%s: unknown block type %q in reference %s", ref.Range, ref.Kind, ref.Key)
	}
	if err != nil {
		return nil, err
	}
	b.built[ref.Key] = n
	return n, nil
}

func undefined(ref hclutil.Reference) error {
	return fmt.Errorf("%s: reference to undefined block %s", ref.Range, ref.Key)
}

func (b *builder) task(ref hclutil.Reference) (node.Node, error) {
	blk, ok := b.defs.tasks[ref.Name]
	if !ok {
		return nil, undefined(ref)
	}
	params, err := testcase.ParseParams(blk.EvaluationParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.Key, err)
	}
	refs, diags := hclutil.ReferenceList(blk.Children)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", ref.Key, diags)
	}
	children := make([]node.Node, 0, len(refs))
	for _, r := range refs {
		child, err := b.node(r)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return node.NewTask(node.TaskSpec{
		Name:             blk.Name,
		Instructions:     blk.Instructions,
		OutputLabel:      blk.OutputLabel,
		EvaluationParams: params,
		Children:         children,
	})
}

func (b *builder) binary(ref hclutil.Reference) (node.Node, error) {
	blk, ok := b.defs.binaries[ref.Name]
	if !ok {
		return nil, undefined(ref)
	}
	params, children, err := b.judgementParts(ref, blk)
	if err != nil {
		return nil, err
	}
	return node.NewBinaryJudgement(node.BinaryJudgementSpec{
		Name:             blk.Name,
		Criteria:         blk.Criteria,
		EvaluationParams: params,
		Children:         children,
	})
}

func (b *builder) nonBinary(ref hclutil.Reference) (node.Node, error) {
	blk, ok := b.defs.nonBinaries[ref.Name]
	if !ok {
		return nil, undefined(ref)
	}
	params, children, err := b.judgementParts(ref, blk)
	if err != nil {
		return nil, err
	}
	return node.NewNonBinaryJudgement(node.NonBinaryJudgementSpec{
		Name:             blk.Name,
		Criteria:         blk.Criteria,
		EvaluationParams: params,
		Children:         children,
	})
}

func (b *builder) judgementParts(ref hclutil.Reference, blk *hclJudgement) ([]testcase.Param, []*node.Verdict, error) {
	params, err := testcase.ParseParams(blk.EvaluationParams)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ref.Key, err)
	}
	refs, diags := hclutil.ReferenceList(blk.Children)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("%s: %w", ref.Key, diags)
	}
	children := make([]*node.Verdict, 0, len(refs))
	for _, r := range refs {
		if r.Kind != node.KindVerdict.Slug() {
			return nil, nil, fmt.Errorf("%s: %s may only have verdict children, got %s", r.Range, ref.Key, r.Key)
		}
		child, err := b.node(r)
		if err != nil {
			return nil, nil, err
		}
		children = append(children, child.(*node.Verdict))
	}
	return params, children, nil
}

func (b *builder) verdict(ref hclutil.Reference) (node.Node, error) {
	blk, ok := b.defs.verdicts[ref.Name]
	if !ok {
		return nil, undefined(ref)
	}
	value, err := verdictValue(blk.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.Key, err)
	}
	spec := node.VerdictSpec{Name: blk.Name, Value: value, Score: blk.Score}
	if g := blk.GEval; g != nil {
		params, err := testcase.ParseParams(g.EvaluationParams)
		if err != nil {
			return nil, fmt.Errorf("%s: geval: %w", ref.Key, err)
		}
		spec.GEval = &geval.Spec{
			Name:             g.Name,
			EvaluationSteps:  g.EvaluationSteps,
			EvaluationParams: params,
		}
		if g.Criteria != nil {
			spec.GEval.Criteria = *g.Criteria
		}
	}
	return node.NewVerdict(spec)
}

// verdictValue evaluates a verdict's value attribute, which must be a
// literal bool or string.
func verdictValue(expr hcl.Expression) (node.VerdictValue, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return node.VerdictValue{}, diags
	}
	if v.IsNull() || !v.IsKnown() {
		return node.VerdictValue{}, fmt.Errorf("%s: verdict value must be set", expr.Range())
	}
	switch v.Type() {
	case cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return node.VerdictValue{}, err
		}
		return node.BoolVerdict(b), nil
	case cty.String:
		var s string
		if err := gocty.FromCtyValue(v, &s); err != nil {
			return node.VerdictValue{}, err
		}
		return node.LabelVerdict(s), nil
	default:
		return node.VerdictValue{}, fmt.Errorf("%s: verdict value must be a bool or a string, got %s", expr.Range(), v.Type().FriendlyName())
	}
}
