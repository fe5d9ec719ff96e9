package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., task.summarize
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// Reference is a resolved "<kind>.<name>" reference to another block.
type Reference struct {
	Kind  string
	Name  string
	Key   string
	Range hcl.Range
}

// ReferenceFor decodes expr as a reference of the form <kind>.<name>.
func ReferenceFor(expr hcl.Expression) (Reference, hcl.Diagnostics) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return Reference{}, diags
	}
	attr, ok := traversalAttr(traversal)
	if !ok {
		return Reference{}, hcl.Diagnostics{&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   "A reference must have the form <block_type>.<name>, for example task.summarize.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return Reference{
		Kind:  traversal.RootName(),
		Name:  attr,
		Key:   TraversalKey(traversal),
		Range: expr.Range(),
	}, nil
}

// ReferenceList decodes expr as a static list of references. An omitted
// optional attribute yields an empty list.
func ReferenceList(expr hcl.Expression) ([]Reference, hcl.Diagnostics) {
	if expr == nil || IsNull(expr) {
		return nil, nil
	}
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	refs := make([]Reference, 0, len(items))
	for _, item := range items {
		ref, refDiags := ReferenceFor(item)
		diags = append(diags, refDiags...)
		if refDiags.HasErrors() {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, diags
}

// IsNull reports whether expr is a constant null, which is what gohcl hands
// out for an omitted optional attribute of type hcl.Expression.
func IsNull(expr hcl.Expression) bool {
	if len(expr.Variables()) > 0 {
		return false
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

func traversalAttr(t hcl.Traversal) (string, bool) {
	if len(t) != 2 {
		return "", false
	}
	attr, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}
