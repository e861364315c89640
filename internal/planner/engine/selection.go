package engine

import (
	"github.com/arcaneering/planner-server/pkg/planner"
)

// unreachableCost is the raw-cost sentinel for cycles, missing recipes,
// and recipes with no usable inputs. Effectively infinite: any candidate
// carrying it loses the efficiency ranking.
const unreachableCost = 999999.0

// BestRecipe returns the best recipe for producing a resource under the
// given constraints, or nil if no candidate qualifies. The selection is
// deterministic and side-effect-free; it is re-derived at every chain node.
func (e *Engine) BestRecipe(resource string, opts planner.ResolveOptions) *planner.Recipe {
	return e.bestRecipe(resource, opts.MaxPhase, opts.PreferEfficient, opts.AllowAlternate, opts.AllowedAlternates, map[string]struct{}{})
}

// visited carries the resources already on the evaluation path so that the
// producibility and ranking probes terminate on cyclic recipe graphs
// instead of chasing the cycle forever.
func (e *Engine) bestRecipe(resource string, maxPhase int, preferEfficient, allowAlternate bool, allowedAlternates []string, visited map[string]struct{}) *planner.Recipe {
	var candidates []*planner.Recipe
	for _, r := range e.byOutput[resource] {
		if r.Phase > maxPhase {
			continue
		}
		if !allowAlternate {
			if r.AlternateRecipe {
				continue
			}
		} else if allowedAlternates != nil && r.AlternateRecipe && !containsID(allowedAlternates, r.ID) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}

	// Discard candidates with an input nothing can supply; a recipe with
	// an unproducible ingredient must never win over a producible one,
	// whatever their raw costs. The reachability probe ignores the
	// alternate allow-list on purpose: any alternate counts as a supply.
	var valid []*planner.Recipe
	for _, r := range candidates {
		producible := true
		for _, in := range r.Inputs {
			if !e.reachable(in.Resource, maxPhase, allowAlternate, copyWith(visited, resource)) {
				producible = false
				break
			}
		}
		if producible {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	if preferEfficient && len(valid) > 1 {
		best := valid[0]
		bestCost := -1.0
		for _, r := range valid {
			outputAmount := r.OutputQuantity(resource)
			cost := 0.0
			for _, in := range r.Inputs {
				if in.Resource == planner.PlaceholderResource {
					continue
				}
				perOutput := float64(in.Quantity) / float64(outputAmount)
				if IsBaseResource(in.Resource) {
					cost += perOutput
				} else {
					cost += perOutput * e.rawCost(in.Resource, maxPhase, allowAlternate, allowedAlternates, copyWith(visited, resource))
				}
			}
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				best = r
			}
		}
		return best
	}

	return valid[0]
}

// reachable reports whether some chain of phase-eligible recipes can
// supply the resource. A resource already on the evaluation path counts
// as reachable: the chain builder reports cycles as CIRCULAR terminals,
// so a cyclic supply is not grounds for discarding a candidate outright.
// A recipe with no non-placeholder inputs supplies nothing.
func (e *Engine) reachable(resource string, maxPhase int, allowAlternate bool, visited map[string]struct{}) bool {
	if resource == planner.PlaceholderResource || IsBaseResource(resource) {
		return true
	}
	if _, onPath := visited[resource]; onPath {
		return true
	}

	path := copyWith(visited, resource)
	for _, r := range e.byOutput[resource] {
		if r.Phase > maxPhase {
			continue
		}
		if !allowAlternate && r.AlternateRecipe {
			continue
		}

		realInputs := 0
		supplied := true
		for _, in := range r.Inputs {
			if in.Resource == planner.PlaceholderResource {
				continue
			}
			realInputs++
			if !e.reachable(in.Resource, maxPhase, allowAlternate, copyWith(path, "")) {
				supplied = false
				break
			}
		}
		if supplied && realInputs > 0 {
			return true
		}
	}
	return false
}

// rawCost estimates the base-resource-equivalents needed to produce one
// unit of a resource. It is used only to rank candidate recipes; it
// recomputes from scratch on every call.
//
// visited holds the resources on the current recursion path. Each input
// branch descends with its own copy, so siblings never see each other's
// markers, only true ancestors.
func (e *Engine) rawCost(resource string, maxPhase int, allowAlternate bool, allowedAlternates []string, visited map[string]struct{}) float64 {
	if IsBaseResource(resource) {
		return 1.0
	}
	if _, onPath := visited[resource]; onPath {
		return unreachableCost
	}

	path := copyWith(visited, resource)

	recipe := e.bestRecipe(resource, maxPhase, false, allowAlternate, allowedAlternates, path)
	if recipe == nil {
		return unreachableCost
	}

	outputAmount := recipe.OutputQuantity(resource)

	total := 0.0
	validInputs := 0
	for _, in := range recipe.Inputs {
		if in.Resource == planner.PlaceholderResource {
			continue
		}
		validInputs++
		perOutput := float64(in.Quantity) / float64(outputAmount)
		total += perOutput * e.rawCost(in.Resource, maxPhase, allowAlternate, allowedAlternates, copyWith(path, ""))
	}

	// A recipe with no usable inputs cannot legitimately produce from
	// nothing; treat it as unreachable rather than free.
	if validInputs == 0 {
		return unreachableCost
	}

	return total
}

// copyWith returns a copy of the set with the given resource added.
// An empty resource just copies.
func copyWith(set map[string]struct{}, resource string) map[string]struct{} {
	out := make(map[string]struct{}, len(set)+1)
	for k := range set {
		out[k] = struct{}{}
	}
	if resource != "" {
		out[resource] = struct{}{}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
