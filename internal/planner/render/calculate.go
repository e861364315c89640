package render

import (
	"fmt"
	"math"

	"github.com/arcaneering/planner-server/internal/planner/engine"
	"github.com/arcaneering/planner-server/pkg/planner"
)

// ComposeCalculateResponse bundles a resolved chain with its totals, graph
// view, and a warning when the root itself is unresolvable. Both the HTTP
// and MCP surfaces serve this shape.
func ComposeCalculateResponse(eng *engine.Engine, chain *planner.ProductionNode, maxPhase int) *planner.CalculateResponse {
	totals := eng.TotalRequirements(chain)

	var warning string
	if chain.BuildingType == planner.BuildingNoRecipe {
		warning = fmt.Sprintf("%s has no recipe available in phase %d. Try selecting a higher phase.",
			eng.DisplayName(chain.Resource), maxPhase)
	}

	return &planner.CalculateResponse{
		Chain:            ChainJSON(chain),
		RawResources:     totals.RawResources,
		Buildings:        totals.Buildings,
		AlternateRecipes: totals.AlternateRecipes,
		Graph:            BuildGraphView(chain, eng),
		Warning:          warning,
	}
}

// ChainJSON converts a production tree to its wire form, rounding rates and
// building counts to two decimals.
func ChainJSON(node *planner.ProductionNode) *planner.ChainNode {
	out := &planner.ChainNode{
		Resource:          node.Resource,
		QuantityPerMinute: round2(node.QuantityPerMinute),
		BuildingType:      node.BuildingType,
		BuildingCount:     round2(node.BuildingCount),
		RecipeInputs:      map[string]int{},
		RecipeOutputs:     map[string]int{},
		Depth:             node.Depth,
		Children:          []*planner.ChainNode{},
	}
	if node.Recipe != nil {
		out.RecipeName = node.Recipe.DisplayName
		for _, st := range node.Recipe.Inputs {
			out.RecipeInputs[st.Resource] = st.Quantity
		}
		for _, st := range node.Recipe.Outputs {
			out.RecipeOutputs[st.Resource] = st.Quantity
		}
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, ChainJSON(child))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
