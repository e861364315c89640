package render

import (
	"github.com/arcaneering/planner-server/pkg/planner"
)

// Namer resolves resource identifiers to display names.
type Namer interface {
	DisplayName(resource string) string
}

// BuildGraphView collapses a production tree into an aggregated graph:
// every occurrence of the same recipe merges into one production node, all
// draws of the same raw resource merge into one raw node, and parallel
// edges between the same pair of nodes merge their rates.
func BuildGraphView(root *planner.ProductionNode, names Namer) *planner.GraphView {
	view := &planner.GraphView{
		Nodes: make(map[string]*planner.GraphNode),
	}

	type edgeKey struct{ from, to string }
	merged := make(map[edgeKey]*planner.GraphEdge)
	var edgeOrder []edgeKey

	addEdge := func(from, to, resource string, rate float64) {
		key := edgeKey{from, to}
		if e, ok := merged[key]; ok {
			e.Rate += rate
			return
		}
		merged[key] = &planner.GraphEdge{From: from, To: to, Resource: resource, Rate: rate}
		edgeOrder = append(edgeOrder, key)
	}

	var traverse func(node *planner.ProductionNode, parentKey string)
	traverse = func(node *planner.ProductionNode, parentKey string) {
		if node.Recipe == nil {
			key := "raw:" + node.Resource
			gn, ok := view.Nodes[key]
			if !ok {
				gn = &planner.GraphNode{
					Type:     "raw",
					Resource: names.DisplayName(node.Resource),
				}
				view.Nodes[key] = gn
			}
			gn.Rate += node.QuantityPerMinute
			if parentKey != "" {
				addEdge(key, parentKey, gn.Resource, node.QuantityPerMinute)
			}
			return
		}

		key := node.BuildingType + ":" + node.Recipe.ID
		gn, ok := view.Nodes[key]
		if !ok {
			gn = &planner.GraphNode{
				Type:           "production",
				Building:       node.BuildingType,
				Recipe:         node.Recipe.DisplayName,
				OutputResource: names.DisplayName(node.Resource),
				Inputs:         make(map[string]float64),
				Outputs:        make(map[string]float64),
			}
			view.Nodes[key] = gn
		}
		gn.BuildingCount += node.BuildingCount
		gn.OutputRate += node.QuantityPerMinute

		outputAmount := node.Recipe.OutputQuantity(node.Resource)
		for _, in := range node.Recipe.Inputs {
			if in.Resource == planner.PlaceholderResource {
				continue
			}
			inputRate := float64(in.Quantity) / float64(outputAmount) * node.QuantityPerMinute
			gn.Inputs[names.DisplayName(in.Resource)] += inputRate
		}
		outputDisplay := names.DisplayName(node.Resource)
		gn.Outputs[outputDisplay] += node.QuantityPerMinute

		if parentKey != "" {
			addEdge(key, parentKey, outputDisplay, node.QuantityPerMinute)
		}

		for _, child := range node.Children {
			traverse(child, key)
		}
	}
	traverse(root, "")

	view.Edges = make([]*planner.GraphEdge, 0, len(edgeOrder))
	for _, key := range edgeOrder {
		view.Edges = append(view.Edges, merged[key])
	}

	return view
}
