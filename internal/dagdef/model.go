// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the HCL shapes of the blocks a definition file may contain.
package dagdef

import "github.com/hashicorp/hcl/v2"

// hclDefinitionFile represents the top-level structure of a definition file for decoding.
type hclDefinitionFile struct {
	Metrics            []*hclMetric    `hcl:"metric,block"`
	Tasks              []*hclTask      `hcl:"task,block"`
	BinaryJudgements   []*hclJudgement `hcl:"binary_judgement,block"`
	NonBinaryJudgement []*hclJudgement `hcl:"non_binary_judgement,block"`
	Verdicts           []*hclVerdict   `hcl:"verdict,block"`
}

type hclMetric struct {
	Name          string         `hcl:"name,label"`
	Root          hcl.Expression `hcl:"root,attr"`
	Threshold     *float64       `hcl:"threshold,optional"`
	IncludeReason *bool          `hcl:"include_reason,optional"`
	StrictMode    *bool          `hcl:"strict_mode,optional"`
}

type hclTask struct {
	Name             string         `hcl:"name,label"`
	Instructions     string         `hcl:"instructions,attr"`
	OutputLabel      string         `hcl:"output_label,attr"`
	EvaluationParams []string       `hcl:"evaluation_params,optional"`
	Children         hcl.Expression `hcl:"children,optional"`
}

type hclJudgement struct {
	Name             string         `hcl:"name,label"`
	Criteria         string         `hcl:"criteria,attr"`
	EvaluationParams []string       `hcl:"evaluation_params,optional"`
	Children         hcl.Expression `hcl:"children,attr"`
}

type hclVerdict struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value,attr"`
	Score *int           `hcl:"score,optional"`
	GEval *hclGEval      `hcl:"geval,block"`
}

type hclGEval struct {
	Name             string   `hcl:"name,attr"`
	Criteria         *string  `hcl:"criteria,optional"`
	EvaluationSteps  []string `hcl:"evaluation_steps,optional"`
	EvaluationParams []string `hcl:"evaluation_params,attr"`
}
