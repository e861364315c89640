// Package planner contains the core types for the production planner server.
package planner

// ============================================
// CATALOG TYPES
// ============================================

// Stack is one resource/quantity entry in a recipe. Recipes keep their
// inputs and outputs as ordered slices so that resolution is deterministic.
type Stack struct {
	Resource string `json:"resource"`
	Quantity int    `json:"quantity"`
}

// Recipe represents a single production recipe. Energy and mana consumption
// are carried through for display only; resolution never reads them.
type Recipe struct {
	ID                string  `json:"id"`
	DisplayName       string  `json:"display_name"`
	Inputs            []Stack `json:"inputs"`
	Outputs           []Stack `json:"outputs"`
	ProductionTime    float64 `json:"production_time"`
	BuildingType      string  `json:"building_type"`
	RequiredResearch  string  `json:"required_research,omitempty"`
	EnergyConsumption int     `json:"energy_consumption"`
	ManaConsumption   float64 `json:"mana_consumption"`
	Phase             int     `json:"phase"`
	AlternateRecipe   bool    `json:"alternate_recipe"`
}

// OutputQuantity returns how many units of the given resource one cycle of
// the recipe produces. Defaults to 1 when the resource is not among the
// outputs, matching the resolver's per-node view of multi-output recipes.
func (r *Recipe) OutputQuantity(resource string) int {
	for _, s := range r.Outputs {
		if s.Resource == resource {
			return s.Quantity
		}
	}
	return 1
}

// InputQuantity returns the per-cycle quantity of the given input resource,
// or 0 if the recipe does not consume it.
func (r *Recipe) InputQuantity(resource string) int {
	for _, s := range r.Inputs {
		if s.Resource == resource {
			return s.Quantity
		}
	}
	return 0
}

// PlaceholderResource is the "no resource" slot some recipes carry in their
// input table. It is skipped everywhere.
const PlaceholderResource = "NONE"

// ============================================
// RESOLUTION TYPES
// ============================================

// Building labels for terminal nodes that have no resolved recipe.
const (
	BuildingMinerExtractor = "Miner/Extractor"
	BuildingCircular       = "CIRCULAR"
	BuildingNoRecipe       = "NO RECIPE"
)

// ProductionNode is one resolved step in a production chain. A node with a
// nil Recipe is terminal: a base resource draw, a cycle sentinel, or an
// unresolvable resource, distinguished by BuildingType.
type ProductionNode struct {
	Resource          string            `json:"resource"`
	QuantityPerMinute float64           `json:"quantity_per_minute"`
	Recipe            *Recipe           `json:"recipe,omitempty"`
	BuildingType      string            `json:"building_type"`
	BuildingCount     float64           `json:"building_count"`
	Depth             int               `json:"depth"`
	Children          []*ProductionNode `json:"children,omitempty"`
}

// ResolveOptions constrain recipe selection for a resolution query.
type ResolveOptions struct {
	// MaxPhase is the highest unlocked phase; recipes above it are ignored.
	MaxPhase int
	// AllowAlternate permits alternate recipes at all.
	AllowAlternate bool
	// AllowedAlternates, when non-nil, restricts which alternate recipe IDs
	// are eligible. Non-alternate recipes are never filtered by it.
	AllowedAlternates []string
	// PreferEfficient ranks competing candidates by estimated raw cost per
	// unit instead of taking the first in catalog order.
	PreferEfficient bool
}

// DefaultResolveOptions returns the options used when a caller supplies none.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		MaxPhase:        1,
		AllowAlternate:  true,
		PreferEfficient: true,
	}
}

// Totals is the whole-chain rollup produced by the aggregator.
type Totals struct {
	// RawResources maps base resource display names to units per minute.
	RawResources map[string]float64 `json:"raw_resources"`
	// Buildings maps building types to summed fractional building counts.
	Buildings map[string]float64 `json:"buildings"`
	// AlternateRecipes lists the display names of alternate recipes used
	// anywhere in the chain, sorted.
	AlternateRecipes []string `json:"alternate_recipes"`
}

// ============================================
// REQUEST/RESPONSE TYPES
// ============================================

// CalculateRequest is the input for a production chain calculation.
// Quantity and Phase are pointers so absent fields pick up defaults
// (1.0 per minute, phase 1) without treating explicit zeros as absent.
type CalculateRequest struct {
	Resource          string   `json:"resource" validate:"required"`
	Quantity          *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Phase             *int     `json:"phase,omitempty" validate:"omitempty,gte=1"`
	AllowAlternate    *bool    `json:"allow_alternate,omitempty"`
	AllowedAlternates []string `json:"allowed_alternates,omitempty"`
}

// CalculateResponse bundles the resolved chain with its totals, the merged
// graph view, and a warning when the target itself could not be resolved.
type CalculateResponse struct {
	Chain            *ChainNode         `json:"chain"`
	RawResources     map[string]float64 `json:"raw_resources"`
	Buildings        map[string]float64 `json:"buildings"`
	AlternateRecipes []string           `json:"alternate_recipes"`
	Graph            *GraphView         `json:"graph"`
	Warning          string             `json:"warning,omitempty"`
}

// ChainNode is the wire form of a ProductionNode. Rates and counts are
// rounded to two decimals; recipe inputs/outputs are flattened to maps.
type ChainNode struct {
	Resource          string         `json:"resource"`
	QuantityPerMinute float64        `json:"quantity_per_minute"`
	BuildingType      string         `json:"building_type"`
	BuildingCount     float64        `json:"building_count"`
	RecipeName        string         `json:"recipe_name,omitempty"`
	RecipeInputs      map[string]int `json:"recipe_inputs"`
	RecipeOutputs     map[string]int `json:"recipe_outputs"`
	Depth             int            `json:"depth"`
	Children          []*ChainNode   `json:"children"`
}

// GraphView is the aggregated graph form of a chain: parallel production of
// the same recipe collapses into one node, parallel edges merge their rates.
type GraphView struct {
	Nodes map[string]*GraphNode `json:"nodes"`
	Edges []*GraphEdge          `json:"edges"`
}

// GraphNode is either a production node (Type "production") or a raw
// resource draw (Type "raw").
type GraphNode struct {
	Type           string             `json:"type"`
	Building       string             `json:"building,omitempty"`
	Recipe         string             `json:"recipe,omitempty"`
	OutputResource string             `json:"output_resource,omitempty"`
	OutputRate     float64            `json:"output_rate,omitempty"`
	BuildingCount  float64            `json:"building_count,omitempty"`
	Inputs         map[string]float64 `json:"inputs,omitempty"`
	Outputs        map[string]float64 `json:"outputs,omitempty"`
	Resource       string             `json:"resource,omitempty"`
	Rate           float64            `json:"rate,omitempty"`
}

// GraphEdge is a merged flow of one resource between two graph nodes.
type GraphEdge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Resource string  `json:"resource"`
	Rate     float64 `json:"rate"`
}

// ResourceInfo pairs a resource identifier with its display name.
type ResourceInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// AlternateInfo describes one alternate recipe for selection UIs.
type AlternateInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Building    string `json:"building"`
}

// RecipeLookupRequest is the input for the recipe_lookup operation.
type RecipeLookupRequest struct {
	RecipeID string `json:"recipe_id" validate:"required"`
}

// RecipeLookupResponse is the output for the recipe_lookup operation.
type RecipeLookupResponse struct {
	Recipe *Recipe `json:"recipe,omitempty"`
	Found  bool    `json:"found"`
}
