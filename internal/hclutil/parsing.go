package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// BlockRanges maps "<type>.<label>" to the definition range of every labeled
// block in a native-syntax body. The first definition wins; later duplicates
// are reported as diagnostics.
func BlockRanges(body hcl.Body, seen map[string]hcl.Range) hcl.Diagnostics {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	var diags hcl.Diagnostics
	for _, block := range syntaxBody.Blocks {
		if len(block.Labels) != 1 {
			continue
		}
		key := block.Type + "." + block.Labels[0]
		if first, dup := seen[key]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate \"" + block.Type + "\" block",
				Detail:   "A " + block.Type + " named \"" + block.Labels[0] + "\" was already defined at " + first.String() + ".",
				Subject:  block.DefRange().Ptr(),
			})
			continue
		}
		seen[key] = block.DefRange()
	}
	return diags
}
