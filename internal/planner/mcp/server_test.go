package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
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
			ID:             "iron_ingot",
			DisplayName:    "Iron Ingot",
			Inputs:         []planner.Stack{{Resource: "ORE", Quantity: 1}},
			Outputs:        []planner.Stack{{Resource: "IRON_INGOT", Quantity: 1}},
			ProductionTime: 2,
			BuildingType:   "Smelter",
			Phase:          1,
		},
		{
			ID:              "iron_ingot_coke",
			DisplayName:     "Coke-Fired Ingot",
			Inputs:          []planner.Stack{{Resource: "ORE", Quantity: 1}, {Resource: "COAL", Quantity: 1}},
			Outputs:         []planner.Stack{{Resource: "IRON_INGOT", Quantity: 2}},
			ProductionTime:  2,
			BuildingType:    "Smelter",
			Phase:           2,
			AlternateRecipe: true,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := engine.New(catalog.New(testRecipes(), nil))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(engine.NewHolder(eng), logger)
}

// roundTrip feeds newline-delimited requests through serve and decodes the
// responses in order.
func roundTrip(t *testing.T, s *Server, requests ...string) []Response {
	t.Helper()
	input := strings.Join(requests, "\n") + "\n"
	var out strings.Builder
	require.NoError(t, s.serve(context.Background(), strings.NewReader(input), &out))

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 1, "method": "initialize"}`)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)

	result, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	var init InitializeResult
	require.NoError(t, json.Unmarshal(result, &init))
	assert.Equal(t, "arcaneering-planner", init.ServerInfo.Name)
	assert.Equal(t, "2024-11-05", init.ProtocolVersion)
	assert.NotNil(t, init.Capabilities.Tools)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}`)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)

	result, err := json.Marshal(resps[0].Result)
	require.NoError(t, err)
	var list ToolsListResult
	require.NoError(t, json.Unmarshal(result, &list))

	names := make([]string, len(list.Tools))
	for i, tool := range list.Tools {
		names[i] = tool.Name
	}
	assert.Equal(t, []string{
		"calculate_production_chain",
		"resource_list",
		"recipe_lookup",
		"alternate_recipes",
	}, names)
}

func TestMethodNotFound(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 3, "method": "nope"}`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, ErrCodeMethodNotFound, resps[0].Error.Code)
}

func TestParseError(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc":`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, ErrCodeParse, resps[0].Error.Code)
}

// callToolResult extracts and decodes the single text content block of a
// tools/call response into dst.
func callToolResult(t *testing.T, resp Response, dst any) {
	t.Helper()
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result ToolCallResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), dst))
}

func TestToolCalculateChain(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 4, "method": "tools/call", "params": {"name": "calculate_production_chain", "arguments": {"resource": "iron_ingot", "quantity": 30}}}`)
	require.Len(t, resps, 1)

	var calc planner.CalculateResponse
	callToolResult(t, resps[0], &calc)
	require.NotNil(t, calc.Chain)
	assert.Equal(t, "IRON_INGOT", calc.Chain.Resource)
	assert.Equal(t, 1.0, calc.Chain.BuildingCount)
	assert.Equal(t, 30.0, calc.RawResources["Ore"])
}

func TestToolCalculateChainRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"missing resource", `{"quantity": 5}`},
		{"negative quantity", `{"resource": "IRON_INGOT", "quantity": -1}`},
		{"zero phase", `{"resource": "IRON_INGOT", "phase": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			req := `{"jsonrpc": "2.0", "id": 5, "method": "tools/call", "params": {"name": "calculate_production_chain", "arguments": ` + tt.args + `}}`
			resps := roundTrip(t, s, req)
			require.Len(t, resps, 1)
			assert.NotNil(t, resps[0].Error)
		})
	}
}

func TestToolResourceList(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 6, "method": "tools/call", "params": {"name": "resource_list", "arguments": {}}}`)
	require.Len(t, resps, 1)

	var infos []planner.ResourceInfo
	callToolResult(t, resps[0], &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, "IRON_INGOT", infos[0].ID)
}

func TestToolRecipeLookup(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 7, "method": "tools/call", "params": {"name": "recipe_lookup", "arguments": {"recipe_id": "iron_ingot_coke"}}}`)
	require.Len(t, resps, 1)

	var lookup planner.RecipeLookupResponse
	callToolResult(t, resps[0], &lookup)
	assert.True(t, lookup.Found)
	require.NotNil(t, lookup.Recipe)
	assert.Equal(t, "Coke-Fired Ingot", lookup.Recipe.DisplayName)

	resps = roundTrip(t, s, `{"jsonrpc": "2.0", "id": 8, "method": "tools/call", "params": {"name": "recipe_lookup", "arguments": {"recipe_id": "nope"}}}`)
	lookup = planner.RecipeLookupResponse{}
	callToolResult(t, resps[0], &lookup)
	assert.False(t, lookup.Found)
	assert.Nil(t, lookup.Recipe)
}

func TestToolAlternateRecipes(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 9, "method": "tools/call", "params": {"name": "alternate_recipes", "arguments": {}}}`)
	require.Len(t, resps, 1)

	var infos []planner.AlternateInfo
	callToolResult(t, resps[0], &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, "iron_ingot_coke", infos[0].ID)

	// A phase filter below the alternate's phase hides it.
	resps = roundTrip(t, s, `{"jsonrpc": "2.0", "id": 10, "method": "tools/call", "params": {"name": "alternate_recipes", "arguments": {"phase": 1}}}`)
	callToolResult(t, resps[0], &infos)
	assert.Empty(t, infos)
}

func TestUnknownTool(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s, `{"jsonrpc": "2.0", "id": 11, "method": "tools/call", "params": {"name": "nope", "arguments": {}}}`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Contains(t, resps[0].Error.Message, "unknown tool")
}
