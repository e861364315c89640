// Package render contains presentation adapters for resolved production
// chains: an indented text printer, the merged graph view, and the composed
// calculate response shared by the HTTP and MCP surfaces. Adapters treat
// trees and totals as read-only and never re-derive quantities.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/arcaneering/planner-server/pkg/planner"
)

// WriteChain pretty-prints a production chain to w, one indent level per
// tree depth.
func WriteChain(w io.Writer, node *planner.ProductionNode) {
	writeChain(w, node, 0)
}

func writeChain(w io.Writer, node *planner.ProductionNode, indent int) {
	prefix := strings.Repeat("  ", indent)

	if node.Recipe == nil {
		fmt.Fprintf(w, "%s[%s] %s: %.2f/min\n\n", prefix, node.BuildingType, node.Resource, node.QuantityPerMinute)
		return
	}

	fmt.Fprintf(w, "%s[%s] x%.2f\n", prefix, node.BuildingType, node.BuildingCount)
	fmt.Fprintf(w, "%sRecipe: %s\n", prefix, node.Recipe.DisplayName)
	fmt.Fprintf(w, "%s  %s -> %s\n", prefix, formatStacks(node.Recipe.Inputs), formatStacks(node.Recipe.Outputs))
	fmt.Fprintf(w, "%s  Produces: %.2f %s/min\n\n", prefix, node.QuantityPerMinute, node.Resource)

	for _, child := range node.Children {
		writeChain(w, child, indent+1)
	}
}

func formatStacks(stacks []planner.Stack) string {
	parts := make([]string, 0, len(stacks))
	for _, st := range stacks {
		parts = append(parts, fmt.Sprintf("%dx %s", st.Quantity, st.Resource))
	}
	return strings.Join(parts, " + ")
}
