package engine

import (
	"sort"

	"github.com/arcaneering/planner-server/pkg/planner"
)

// TotalRequirements walks a resolved tree once and rolls it up into total
// raw resource draw, building counts, and the alternate recipes used.
// The tree is never mutated; summation order does not affect the result.
//
// Cycle and no-recipe terminals contribute nothing: they represent unmet
// demand, not satisfied demand.
func (e *Engine) TotalRequirements(root *planner.ProductionNode) planner.Totals {
	rawResources := make(map[string]float64)
	buildings := make(map[string]float64)
	alternateSet := make(map[string]struct{})

	var traverse func(n *planner.ProductionNode)
	traverse = func(n *planner.ProductionNode) {
		if n.Recipe == nil {
			if IsBaseResource(n.Resource) {
				rawResources[e.DisplayName(n.Resource)] += n.QuantityPerMinute
			}
		} else {
			buildings[n.BuildingType] += n.BuildingCount
			if n.Recipe.AlternateRecipe {
				alternateSet[n.Recipe.DisplayName] = struct{}{}
			}
		}
		for _, child := range n.Children {
			traverse(child)
		}
	}
	traverse(root)

	alternates := make([]string, 0, len(alternateSet))
	for name := range alternateSet {
		alternates = append(alternates, name)
	}
	sort.Strings(alternates)

	return planner.Totals{
		RawResources:     rawResources,
		Buildings:        buildings,
		AlternateRecipes: alternates,
	}
}
