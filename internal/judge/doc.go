// Package judge defines how the engine talks to a generative model.
//
// A Judge produces text for a prompt, optionally constrained by a Schema.
// Native judges (NativeJudge) always honor the schema and report the cost of
// each call. Generic judges may reject a schema with ErrSchemaUnsupported;
// Structured then retries exactly once without the schema and recovers the
// JSON object from the free-form reply.
package judge
