// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package dagdef loads evaluation graphs from HCL.
//
// A definition set is made of labeled blocks spread over any number of .hcl
// files. Nodes reference their children with bare traversals, and a metric
// block names the root of its graph:
//
//	metric "summary_length" {
//	  root      = task.summarize
//	  threshold = 0.5
//	}
//
//	task "summarize" {
//	  instructions      = "Summarize the actual output in one sentence."
//	  output_label      = "Summary"
//	  evaluation_params = ["actual_output"]
//	  children          = [non_binary_judgement.length]
//	}
//
//	non_binary_judgement "length" {
//	  criteria = "How long is the summary?"
//	  children = [verdict.short, verdict.long]
//	}
//
//	verdict "short" {
//	  value = "short"
//	  score = 10
//	}
//
// Definitions are immutable once loaded. Every Build call constructs a new
// node graph from them, so one definition set can back any number of passes.
package dagdef
