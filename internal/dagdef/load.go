// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file discovers definition files and decodes them into a Definitions set.
package dagdef

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/fsutil"
	"github.com/specialistvlad/dagjudge/internal/hclutil"
)

// Extension is the suffix of definition files.
const Extension = ".hcl"

// Load reads a definition file, or every definition file below a directory,
// and validates every metric it declares.
func Load(ctx context.Context, path string) (*Definitions, error) {
	logger := ctxlog.FromContext(ctx)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access definitions path %s: %w", path, err)
	}

	paths := []string{path}
	if info.IsDir() {
		paths, err = fsutil.FindFiles(path, Extension)
		if err != nil {
			return nil, fmt.Errorf("failed to find definition files in %s: %w", path, err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no %s files found in %s", Extension, path)
		}
	}
	logger.Debug("Found definition files.", "count", len(paths))

	parser := hclparse.NewParser()
	files := make([]*hcl.File, 0, len(paths))
	for _, p := range paths {
		logger.Debug("Parsing definition file.", "path", p)
		f, diags := parser.ParseHCLFile(p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", p, diags)
		}
		files = append(files, f)
	}

	defs, err := decode(files)
	if err != nil {
		return nil, err
	}
	if err := defs.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Info("Loaded definitions.", "metrics", len(defs.metricOrder), "files", len(files))
	return defs, nil
}

// Parse decodes definitions from in-memory source and validates them.
func Parse(ctx context.Context, filename string, src []byte) (*Definitions, error) {
	f, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	defs, err := decode([]*hcl.File{f})
	if err != nil {
		return nil, err
	}
	if err := defs.Validate(ctx); err != nil {
		return nil, err
	}
	return defs, nil
}

func decode(files []*hcl.File) (*Definitions, error) {
	var diags hcl.Diagnostics
	seen := make(map[string]hcl.Range)
	for _, f := range files {
		diags = append(diags, hclutil.BlockRanges(f.Body, seen)...)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode definitions: %w", diags)
	}

	var parsed hclDefinitionFile
	if diags := gohcl.DecodeBody(hcl.MergeFiles(files), nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode definitions: %w", diags)
	}

	d := &Definitions{
		metrics:     make(map[string]*hclMetric, len(parsed.Metrics)),
		tasks:       make(map[string]*hclTask, len(parsed.Tasks)),
		binaries:    make(map[string]*hclJudgement, len(parsed.BinaryJudgements)),
		nonBinaries: make(map[string]*hclJudgement, len(parsed.NonBinaryJudgement)),
		verdicts:    make(map[string]*hclVerdict, len(parsed.Verdicts)),
		ranges:      seen,
	}
	for _, m := range parsed.Metrics {
		d.metrics[m.Name] = m
		d.metricOrder = append(d.metricOrder, m.Name)
	}
	for _, t := range parsed.Tasks {
		d.tasks[t.Name] = t
	}
	for _, j := range parsed.BinaryJudgements {
		d.binaries[j.Name] = j
	}
	for _, j := range parsed.NonBinaryJudgement {
		d.nonBinaries[j.Name] = j
	}
	for _, v := range parsed.Verdicts {
		d.verdicts[v.Name] = v
	}
	if len(d.metricOrder) == 0 {
		return nil, fmt.Errorf("no metric blocks defined")
	}
	return d, nil
}
