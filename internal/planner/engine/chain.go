package engine

import (
	"github.com/arcaneering/planner-server/pkg/planner"
)

// CalculateProductionChain resolves the full production tree needed to
// sustain perMinute units of the target resource per minute. The returned
// tree is freshly built per call and owned by the caller; for a fixed
// catalog and arguments the result is identical on every call.
func (e *Engine) CalculateProductionChain(resource string, perMinute float64, opts planner.ResolveOptions) *planner.ProductionNode {
	return e.buildChain(resource, perMinute, map[string]struct{}{}, 0, opts)
}

// buildChain classifies one resource and recurses into its inputs.
//
// visited is the set of resources on the path from the root to this node.
// Every child descends with its own copy, so a resource may be required
// independently by sibling branches; only a true ancestor marks a cycle.
func (e *Engine) buildChain(resource string, perMinute float64, visited map[string]struct{}, depth int, opts planner.ResolveOptions) *planner.ProductionNode {
	if IsBaseResource(resource) {
		return terminalNode(resource, perMinute, depth, planner.BuildingMinerExtractor)
	}

	if _, onPath := visited[resource]; onPath {
		return terminalNode(resource, perMinute, depth, planner.BuildingCircular)
	}

	recipe := e.BestRecipe(resource, opts)
	if recipe == nil {
		return terminalNode(resource, perMinute, depth, planner.BuildingNoRecipe)
	}

	outputAmount := recipe.OutputQuantity(resource)
	cyclesPerMinute := 60.0 / recipe.ProductionTime
	perBuilding := float64(outputAmount) * cyclesPerMinute
	buildingCount := perMinute / perBuilding

	path := copyWith(visited, resource)

	var children []*planner.ProductionNode
	for _, in := range recipe.Inputs {
		if in.Resource == planner.PlaceholderResource {
			continue
		}
		childPerMinute := float64(in.Quantity) / float64(outputAmount) * perMinute
		children = append(children, e.buildChain(in.Resource, childPerMinute, copyWith(path, ""), depth+1, opts))
	}

	// A recipe whose inputs were all placeholders produced no children;
	// demote it rather than report a building with no supply chain.
	if len(children) == 0 {
		return terminalNode(resource, perMinute, depth, planner.BuildingNoRecipe)
	}

	return &planner.ProductionNode{
		Resource:          resource,
		QuantityPerMinute: perMinute,
		Recipe:            recipe,
		BuildingType:      recipe.BuildingType,
		BuildingCount:     buildingCount,
		Depth:             depth,
		Children:          children,
	}
}

func terminalNode(resource string, perMinute float64, depth int, building string) *planner.ProductionNode {
	return &planner.ProductionNode{
		Resource:          resource,
		QuantityPerMinute: perMinute,
		BuildingType:      building,
		Depth:             depth,
	}
}
