package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcaneering/planner-server/internal/planner/catalog"
	"github.com/arcaneering/planner-server/internal/planner/engine"
	"github.com/arcaneering/planner-server/pkg/planner"
)

func testRecipes() []planner.Recipe {
	return []planner.Recipe{
		{
			ID:             "part",
			DisplayName:    "Part",
			Inputs:         []planner.Stack{{Resource: "ORE", Quantity: 1}},
			Outputs:        []planner.Stack{{Resource: "PART", Quantity: 1}},
			ProductionTime: 1,
			BuildingType:   "Assembler",
			Phase:          1,
		},
		{
			ID:             "frame",
			DisplayName:    "Frame",
			Inputs:         []planner.Stack{{Resource: "PART", Quantity: 2}},
			Outputs:        []planner.Stack{{Resource: "FRAME", Quantity: 1}},
			ProductionTime: 1,
			BuildingType:   "Assembler",
			Phase:          1,
		},
		{
			ID:             "gadget",
			DisplayName:    "Gadget",
			Inputs:         []planner.Stack{{Resource: "PART", Quantity: 1}, {Resource: "FRAME", Quantity: 1}},
			Outputs:        []planner.Stack{{Resource: "GADGET", Quantity: 1}},
			ProductionTime: 1,
			BuildingType:   "Assembler",
			Phase:          1,
		},
	}
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(catalog.New(testRecipes(), nil))
	require.NoError(t, err)
	return eng
}

func TestWriteChain(t *testing.T) {
	eng := newTestEngine(t)
	chain := eng.CalculateProductionChain("PART", 30, planner.DefaultResolveOptions())

	var buf strings.Builder
	WriteChain(&buf, chain)
	out := buf.String()

	assert.Contains(t, out, "[Assembler] x0.50")
	assert.Contains(t, out, "Recipe: Part")
	assert.Contains(t, out, "1x ORE -> 1x PART")
	assert.Contains(t, out, "Produces: 30.00 PART/min")
	assert.Contains(t, out, "  [Miner/Extractor] ORE: 30.00/min")
}

func TestWriteChainTerminal(t *testing.T) {
	eng := newTestEngine(t)
	chain := eng.CalculateProductionChain("UNKNOWN", 5, planner.DefaultResolveOptions())

	var buf strings.Builder
	WriteChain(&buf, chain)

	assert.Equal(t, "[NO RECIPE] UNKNOWN: 5.00/min\n\n", buf.String())
}

func TestBuildGraphViewMergesSharedIntermediates(t *testing.T) {
	eng := newTestEngine(t)

	// The gadget tree needs parts twice (directly and via frames); the
	// graph must fold both into one Part node and one ore draw.
	chain := eng.CalculateProductionChain("GADGET", 60, planner.DefaultResolveOptions())
	view := BuildGraphView(chain, eng)

	require.Len(t, view.Nodes, 4)

	part := view.Nodes["Assembler:part"]
	require.NotNil(t, part)
	assert.Equal(t, "production", part.Type)
	assert.InDelta(t, 180.0, part.OutputRate, 1e-9)
	assert.InDelta(t, 3.0, part.BuildingCount, 1e-9)
	assert.InDelta(t, 180.0, part.Inputs["Ore"], 1e-9)

	raw := view.Nodes["raw:ORE"]
	require.NotNil(t, raw)
	assert.Equal(t, "raw", raw.Type)
	assert.Equal(t, "Ore", raw.Resource)
	assert.InDelta(t, 180.0, raw.Rate, 1e-9)

	gadget := view.Nodes["Assembler:gadget"]
	require.NotNil(t, gadget)
	assert.InDelta(t, 60.0, gadget.Outputs["Gadget"], 1e-9)
	assert.InDelta(t, 60.0, gadget.Inputs["Part"], 1e-9)
	assert.InDelta(t, 60.0, gadget.Inputs["Frame"], 1e-9)
}

func TestBuildGraphViewMergesParallelEdges(t *testing.T) {
	eng := newTestEngine(t)

	chain := eng.CalculateProductionChain("GADGET", 60, planner.DefaultResolveOptions())
	view := BuildGraphView(chain, eng)

	// part -> gadget (60 direct), part -> frame (120), frame -> gadget
	// (60), ore -> part (180, merged across both part occurrences).
	require.Len(t, view.Edges, 4)

	rates := make(map[string]float64, len(view.Edges))
	for _, e := range view.Edges {
		rates[e.From+">"+e.To] = e.Rate
	}
	assert.InDelta(t, 60.0, rates["Assembler:part>Assembler:gadget"], 1e-9)
	assert.InDelta(t, 120.0, rates["Assembler:part>Assembler:frame"], 1e-9)
	assert.InDelta(t, 60.0, rates["Assembler:frame>Assembler:gadget"], 1e-9)
	assert.InDelta(t, 180.0, rates["raw:ORE>Assembler:part"], 1e-9)
}

func TestChainJSONRoundsAndFlattensRecipes(t *testing.T) {
	eng := newTestEngine(t)

	chain := eng.CalculateProductionChain("PART", 10, planner.DefaultResolveOptions())
	node := ChainJSON(chain)

	// 10/min over a 60/min assembler rounds to 0.17.
	assert.Equal(t, 0.17, node.BuildingCount)
	assert.Equal(t, 10.0, node.QuantityPerMinute)
	assert.Equal(t, "Part", node.RecipeName)
	assert.Equal(t, map[string]int{"ORE": 1}, node.RecipeInputs)
	assert.Equal(t, map[string]int{"PART": 1}, node.RecipeOutputs)

	require.Len(t, node.Children, 1)
	ore := node.Children[0]
	assert.Equal(t, "ORE", ore.Resource)
	assert.Empty(t, ore.RecipeInputs)
	assert.Empty(t, ore.Children)
}

func TestComposeCalculateResponse(t *testing.T) {
	eng := newTestEngine(t)

	chain := eng.CalculateProductionChain("FRAME", 30, planner.DefaultResolveOptions())
	resp := ComposeCalculateResponse(eng, chain, 1)

	require.NotNil(t, resp.Chain)
	assert.Empty(t, resp.Warning)
	assert.InDelta(t, 60.0, resp.RawResources["Ore"], 1e-9)
	assert.NotNil(t, resp.Graph)
	assert.Empty(t, resp.AlternateRecipes)
}

func TestComposeCalculateResponseWarnsOnUnresolvableRoot(t *testing.T) {
	eng := newTestEngine(t)

	chain := eng.CalculateProductionChain("WIDGET", 10, planner.DefaultResolveOptions())
	resp := ComposeCalculateResponse(eng, chain, 1)

	assert.Equal(t, "Widget has no recipe available in phase 1. Try selecting a higher phase.", resp.Warning)
}
