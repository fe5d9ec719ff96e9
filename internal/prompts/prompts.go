// Package prompts holds the prompt templates sent to judges.
package prompts

import (
	"fmt"
	"strings"
)

// TaskOutput asks the judge to carry out a task node's instructions on text.
func TaskOutput(instructions, text string) string {
	return fmt.Sprintf(`Given the following instructions, generate an output.

%s

%s

===END OF INPUT===

**
IMPORTANT: Only return the output for the instructions, nothing else. Do not add any explanation or surrounding text.
**

Output:
`, instructions, text)
}

// BinaryVerdict asks for a true/false verdict on criteria.
func BinaryVerdict(criteria, text string) string {
	return fmt.Sprintf(`%s

%s

**
IMPORTANT: Please make sure to only return a json with two keys: 'verdict' (true or false), and the 'reason' for the verdict.
The 'reason' must be concise, directly referencing the text above to explain the verdict.
Example JSON:
{
    "reason": "The text satisfies the criteria because ...",
    "verdict": true
}
**

JSON:
`, criteria, text)
}

// NonBinaryVerdict asks the judge to pick exactly one of options.
func NonBinaryVerdict(criteria, text string, options []string) string {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	example := `""`
	if len(quoted) > 0 {
		example = quoted[0]
	}
	return fmt.Sprintf(`%s

%s

**
IMPORTANT: Please make sure to only return a json with two keys: 'verdict' (%s), and the 'reason' for the verdict.
The 'verdict' must be exactly one of the options above. The 'reason' must be concise, directly referencing the text above to explain the verdict.
Example JSON:
{
    "reason": "The text matches this option because ...",
    "verdict": %s
}
**

JSON:
`, criteria, text, strings.Join(quoted, " or "), example)
}

// Reason asks for a concise justification of a deterministic score given the
// rendered audit log of the evaluation.
func Reason(verboseSteps string, score float64, metricName string) string {
	return fmt.Sprintf(`Given the metric name, the DAG structure that was traversed, and the final score, generate a reason for why the score is %.2f.
The DAG is a sequence of judgements and tasks; each block shows the node type, its depth, and what it decided.

Metric Name:
%s

DAG Traversal:
%s

Score: %.2f

**
IMPORTANT: Please make sure to only return a json with one key: 'reason'.
Example JSON:
{
    "reason": "The score is <score> because <your_reason>."
}
**

JSON:
`, score, metricName, verboseSteps, score)
}

// EvaluationSteps asks for the steps used to grade params against criteria.
func EvaluationSteps(criteria, params string) string {
	return fmt.Sprintf(`Given an evaluation criteria which outlines how you should judge the %s, generate 3-4 concise evaluation steps based on the criteria below. You MUST make it clear how to evaluate %s in relation to one another.

Evaluation Criteria:
%s

**
IMPORTANT: Please make sure to only return in JSON format, with the "steps" key as a list of strings. No words or explanation is needed.
Example JSON:
{
    "steps": ["step one", "step two"]
}
**

JSON:
`, params, params, criteria)
}

// GEvalScore asks for a 0-10 score of text following steps.
func GEvalScore(steps []string, text, params string) string {
	var numbered strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, s)
	}
	return fmt.Sprintf(`Given the evaluation steps, return a JSON with two keys: 1) a 'score' key ranging from 0 - 10, with 10 being that it follows the criteria outlined in the steps and 0 being that it does not, and 2) a 'reason' key, a reason for the given score, but DO NOT QUOTE THE SCORE in your reason. Please mention specific information from %s in your reason, but be very concise with it!

Evaluation Steps:
%s
%s

**
IMPORTANT: Please make sure to only return in JSON format, with the "score" and "reason" key. No words or explanation is needed.
Example JSON:
{
    "score": 7,
    "reason": "The text does not follow the evaluation steps because ..."
}
**

JSON:
`, params, numbered.String(), text)
}
