package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/arcaneering/planner-server/internal/planner/render"
	"github.com/arcaneering/planner-server/pkg/planner"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		calculateChainTool(),
		resourceListTool(),
		recipeLookupTool(),
		alternateRecipesTool(),
	}
}

func calculateChainTool() ToolDefinition {
	minQty := 0.0
	minPhase := 1.0

	return ToolDefinition{
		Name:        "calculate_production_chain",
		Description: "Resolve the full production chain for a target resource and rate. Returns the chain tree, total raw resources and buildings needed, the alternate recipes used, and an aggregated graph view.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"resource": {
					Type:        "string",
					Description: "Target resource identifier",
				},
				"quantity": {
					Type:        "number",
					Description: "Desired output in units per minute",
					Default:     1.0,
					Minimum:     &minQty,
				},
				"phase": {
					Type:        "integer",
					Description: "Highest unlocked phase; recipes above it are ignored",
					Default:     1,
					Minimum:     &minPhase,
				},
				"allow_alternate": {
					Type:        "boolean",
					Description: "Permit alternate recipes",
					Default:     true,
				},
				"allowed_alternates": {
					Type:        "array",
					Description: "Restrict eligible alternate recipes to these IDs",
					Items:       &Property{Type: "string"},
				},
			},
			Required: []string{"resource"},
		},
	}
}

func resourceListTool() ToolDefinition {
	return ToolDefinition{
		Name:        "resource_list",
		Description: "List all craftable resources with display names, excluding raw base resources.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

func recipeLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "recipe_lookup",
		Description: "Look up the full definition of a recipe by ID, including inputs, outputs, timing, phase, and energy/mana consumption.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"recipe_id": {
					Type:        "string",
					Description: "Exact recipe ID to look up",
				},
			},
			Required: []string{"recipe_id"},
		},
	}
}

func alternateRecipesTool() ToolDefinition {
	minPhase := 1.0

	return ToolDefinition{
		Name:        "alternate_recipes",
		Description: "List alternate recipes available for selection, sorted by display name.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"phase": {
					Type:        "integer",
					Description: "Only include alternates at or below this phase",
					Minimum:     &minPhase,
				},
			},
		},
	}
}

// Tool handlers

func (s *Server) toolCalculateChain(_ context.Context, args json.RawMessage) (any, error) {
	var req planner.CalculateRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	if req.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, fmt.Errorf("quantity must be finite and >= 0")
	}

	opts := planner.DefaultResolveOptions()
	if req.Phase != nil {
		if *req.Phase < 1 {
			return nil, fmt.Errorf("phase must be >= 1")
		}
		opts.MaxPhase = *req.Phase
	}
	if req.AllowAlternate != nil {
		opts.AllowAlternate = *req.AllowAlternate
	}
	opts.AllowedAlternates = req.AllowedAlternates

	eng := s.holder.Engine()
	chain := eng.CalculateProductionChain(strings.ToUpper(req.Resource), quantity, opts)
	return render.ComposeCalculateResponse(eng, chain, opts.MaxPhase), nil
}

func (s *Server) toolResourceList(_ context.Context, _ json.RawMessage) (any, error) {
	return s.holder.Engine().CraftableResources(), nil
}

func (s *Server) toolRecipeLookup(_ context.Context, args json.RawMessage) (any, error) {
	var req planner.RecipeLookupRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, err
	}
	if req.RecipeID == "" {
		return nil, fmt.Errorf("recipe_id is required")
	}

	recipe := s.holder.Engine().Recipe(req.RecipeID)
	return planner.RecipeLookupResponse{
		Recipe: recipe,
		Found:  recipe != nil,
	}, nil
}

func (s *Server) toolAlternateRecipes(_ context.Context, args json.RawMessage) (any, error) {
	var req struct {
		Phase int `json:"phase"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, err
		}
	}
	return s.holder.Engine().AlternateRecipes(req.Phase), nil
}
