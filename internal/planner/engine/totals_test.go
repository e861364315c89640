package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcaneering/planner-server/pkg/planner"
)

func TestTotalRequirementsRollsUpChain(t *testing.T) {
	eng := newTestEngine(t, testRecipes(), nil)

	chain := eng.CalculateProductionChain("IRON_PLATE", 10, planner.DefaultResolveOptions())
	totals := eng.TotalRequirements(chain)

	require.Len(t, totals.RawResources, 1)
	assert.InDelta(t, 20.0, totals.RawResources["Ore"], 1e-9)

	require.Len(t, totals.Buildings, 2)
	assert.InDelta(t, 10.0/15.0, totals.Buildings["Assembler"], 1e-9)
	assert.InDelta(t, 20.0/30.0, totals.Buildings["Smelter"], 1e-9)

	assert.Empty(t, totals.AlternateRecipes)
}

func TestTotalRequirementsSumsSharedIntermediates(t *testing.T) {
	recipes := []planner.Recipe{
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
	eng := newTestEngine(t, recipes, nil)

	// 60 gadgets/min: 60 parts direct + 60 frames needing 120 parts,
	// so 180 ore/min, and 1+1+1+2 assemblers.
	chain := eng.CalculateProductionChain("GADGET", 60, planner.DefaultResolveOptions())
	totals := eng.TotalRequirements(chain)

	assert.InDelta(t, 180.0, totals.RawResources["Ore"], 1e-9)
	assert.InDelta(t, 5.0, totals.Buildings["Assembler"], 1e-9)
}

func TestTotalRequirementsReportsAlternates(t *testing.T) {
	recipes := []planner.Recipe{
		{
			ID:             "plate_default",
			DisplayName:    "Plate",
			Inputs:         []planner.Stack{{Resource: "ORE", Quantity: 4}},
			Outputs:        []planner.Stack{{Resource: "PLATE", Quantity: 1}},
			ProductionTime: 4,
			BuildingType:   "Assembler",
			Phase:          1,
		},
		{
			ID:              "plate_cheap",
			DisplayName:     "Cheap Plate",
			Inputs:          []planner.Stack{{Resource: "ORE", Quantity: 1}},
			Outputs:         []planner.Stack{{Resource: "PLATE", Quantity: 1}},
			ProductionTime:  4,
			BuildingType:    "Assembler",
			Phase:           1,
			AlternateRecipe: true,
		},
	}
	eng := newTestEngine(t, recipes, nil)

	chain := eng.CalculateProductionChain("PLATE", 15, planner.DefaultResolveOptions())
	totals := eng.TotalRequirements(chain)

	assert.Equal(t, []string{"Cheap Plate"}, totals.AlternateRecipes)
	assert.InDelta(t, 15.0, totals.RawResources["Ore"], 1e-9)
	assert.InDelta(t, 1.0, totals.Buildings["Assembler"], 1e-9)
}

func TestTotalRequirementsIgnoreUnmetDemand(t *testing.T) {
	eng := newTestEngine(t, testRecipes(), nil)

	chain := eng.CalculateProductionChain("UNOBTAINIUM", 10, planner.DefaultResolveOptions())
	totals := eng.TotalRequirements(chain)

	assert.Empty(t, totals.RawResources)
	assert.Empty(t, totals.Buildings)
	assert.Empty(t, totals.AlternateRecipes)
}

func TestTotalRequirementsStableAcrossRuns(t *testing.T) {
	eng := newTestEngine(t, testRecipes(), nil)

	chain := eng.CalculateProductionChain("IRON_PLATE", 10, planner.DefaultResolveOptions())
	first := eng.TotalRequirements(chain)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, eng.TotalRequirements(chain))
	}
}
