// Package hclutil holds small helpers shared by the HCL definition loader.
package hclutil
