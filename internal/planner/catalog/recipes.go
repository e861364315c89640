package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arcaneering/planner-server/pkg/planner"
)

// RecipeStore handles recipe data access.
type RecipeStore struct {
	db *DB
}

// NewRecipeStore creates a new RecipeStore.
func NewRecipeStore(db *DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// GetRecipe retrieves a single recipe by ID with its inputs and outputs.
// Returns nil when the recipe does not exist.
func (s *RecipeStore) GetRecipe(ctx context.Context, id string) (*planner.Recipe, error) {
	recipe := &planner.Recipe{ID: id}

	var alternate int
	err := s.db.QueryRowContext(ctx, `
		SELECT display_name, production_time, building_type, required_research,
		       energy_consumption, mana_consumption, phase, alternate_recipe
		FROM recipes WHERE id = ?
	`, id).Scan(
		&recipe.DisplayName,
		&recipe.ProductionTime,
		&recipe.BuildingType,
		&recipe.RequiredResearch,
		&recipe.EnergyConsumption,
		&recipe.ManaConsumption,
		&recipe.Phase,
		&alternate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying recipe: %w", err)
	}
	recipe.AlternateRecipe = alternate != 0

	if recipe.Inputs, err = s.getStacks(ctx, "recipe_inputs", id); err != nil {
		return nil, err
	}
	if recipe.Outputs, err = s.getStacks(ctx, "recipe_outputs", id); err != nil {
		return nil, err
	}

	return recipe, nil
}

// getStacks retrieves the ordered input or output stacks for a recipe.
func (s *RecipeStore) getStacks(ctx context.Context, table, recipeID string) ([]planner.Stack, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT resource, quantity FROM %s
		WHERE recipe_id = ? ORDER BY slot
	`, table), recipeID)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var stacks []planner.Stack
	for rows.Next() {
		var st planner.Stack
		if err := rows.Scan(&st.Resource, &st.Quantity); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		stacks = append(stacks, st)
	}

	return stacks, rows.Err()
}

// GetAllRecipes retrieves every recipe in catalog order with its stacks.
func (s *RecipeStore) GetAllRecipes(ctx context.Context) ([]planner.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, production_time, building_type, required_research,
		       energy_consumption, mana_consumption, phase, alternate_recipe
		FROM recipes
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []planner.Recipe
	for rows.Next() {
		var r planner.Recipe
		var alternate int
		if err := rows.Scan(
			&r.ID,
			&r.DisplayName,
			&r.ProductionTime,
			&r.BuildingType,
			&r.RequiredResearch,
			&r.EnergyConsumption,
			&r.ManaConsumption,
			&r.Phase,
			&alternate,
		); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		r.AlternateRecipe = alternate != 0
		recipes = append(recipes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if recipes[i].Inputs, err = s.getStacks(ctx, "recipe_inputs", recipes[i].ID); err != nil {
			return nil, fmt.Errorf("loading inputs for %s: %w", recipes[i].ID, err)
		}
		if recipes[i].Outputs, err = s.getStacks(ctx, "recipe_outputs", recipes[i].ID); err != nil {
			return nil, fmt.Errorf("loading outputs for %s: %w", recipes[i].ID, err)
		}
	}

	return recipes, nil
}

// CountRecipes returns the total number of recipes.
func (s *RecipeStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}

// ReplaceAllRecipes replaces the entire recipe table in one transaction.
// The slice order becomes the catalog order.
func (s *RecipeStore) ReplaceAllRecipes(ctx context.Context, recipes []planner.Recipe) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Stack tables are cleared explicitly rather than relying on
		// cascade, so a replace works even on a connection without
		// foreign key enforcement.
		for _, table := range []string{"recipe_inputs", "recipe_outputs", "recipes"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		recipeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recipes
			(id, display_name, production_time, building_type, required_research,
			 energy_consumption, mana_consumption, phase, alternate_recipe, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe statement: %w", err)
		}
		defer func() { _ = recipeStmt.Close() }()

		inputStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recipe_inputs (recipe_id, slot, resource, quantity)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing input statement: %w", err)
		}
		defer func() { _ = inputStmt.Close() }()

		outputStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recipe_outputs (recipe_id, slot, resource, quantity)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing output statement: %w", err)
		}
		defer func() { _ = outputStmt.Close() }()

		for i, r := range recipes {
			alternate := 0
			if r.AlternateRecipe {
				alternate = 1
			}
			_, err := recipeStmt.ExecContext(ctx,
				r.ID, r.DisplayName, r.ProductionTime, r.BuildingType,
				r.RequiredResearch, r.EnergyConsumption, r.ManaConsumption,
				r.Phase, alternate, i,
			)
			if err != nil {
				return fmt.Errorf("inserting recipe %s: %w", r.ID, err)
			}

			for slot, st := range r.Inputs {
				if _, err := inputStmt.ExecContext(ctx, r.ID, slot, st.Resource, st.Quantity); err != nil {
					return fmt.Errorf("inserting input for %s: %w", r.ID, err)
				}
			}
			for slot, st := range r.Outputs {
				if _, err := outputStmt.ExecContext(ctx, r.ID, slot, st.Resource, st.Quantity); err != nil {
					return fmt.Errorf("inserting output for %s: %w", r.ID, err)
				}
			}
		}

		return nil
	})
}

// GetDisplayNames retrieves the resource display name table.
func (s *RecipeStore) GetDisplayNames(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT resource, display_name FROM display_names`)
	if err != nil {
		return nil, fmt.Errorf("querying display names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make(map[string]string)
	for rows.Next() {
		var resource, name string
		if err := rows.Scan(&resource, &name); err != nil {
			return nil, fmt.Errorf("scanning display name: %w", err)
		}
		names[resource] = name
	}

	return names, rows.Err()
}

// ReplaceDisplayNames replaces the display name table in one transaction.
func (s *RecipeStore) ReplaceDisplayNames(ctx context.Context, names map[string]string) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM display_names`); err != nil {
			return fmt.Errorf("clearing display names: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO display_names (resource, display_name) VALUES (?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing display name statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for resource, name := range names {
			if _, err := stmt.ExecContext(ctx, resource, name); err != nil {
				return fmt.Errorf("inserting display name for %s: %w", resource, err)
			}
		}

		return nil
	})
}
