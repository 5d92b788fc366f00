package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

var scenarioDir = filepath.Join("..", "..", "..", "..", "examples", "two_echelon")

func TestLoadScenarioEnv_Defaults(t *testing.T) {
	env, err := loadScenarioEnv(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "1", env.costs.ProductionPerUnit.String())
	assert.Equal(t, 100.0, env.costs.UnitsPerHour)
	assert.Equal(t, 0.5, env.costs.DefaultChangeoverHours)
	assert.Equal(t, 17, env.shelfLife.AmbientDays)
	assert.Equal(t, 120, env.shelfLife.FrozenDays)
}

func TestLoadScenarioEnv_ProcessEnvWins(t *testing.T) {
	t.Setenv("BAKEPLAN_SHELF_AMBIENT_DAYS", "21")
	t.Setenv("BAKEPLAN_UNITS_PER_HOUR", "80")

	env, err := loadScenarioEnv(scenarioDir)
	require.NoError(t, err)
	assert.Equal(t, 21, env.shelfLife.AmbientDays)
	assert.Equal(t, 80.0, env.costs.UnitsPerHour)
}

func TestLoadScenarioEnv_RejectsBadValue(t *testing.T) {
	t.Setenv("BAKEPLAN_WASTE_MULTIPLIER", "lots")

	_, err := loadScenarioEnv(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAKEPLAN_WASTE_MULTIPLIER")
}

func TestResolveInputFiles(t *testing.T) {
	cmd := NewPlanCommand(Config{ScenarioDir: scenarioDir})

	files, err := cmd.resolveInputFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "Products")
	assert.Contains(t, files, "Trucks")
	assert.Contains(t, files, "Inventory")

	missing := NewPlanCommand(Config{ScenarioDir: t.TempDir()})
	_, err = missing.resolveInputFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadInput_FromScenario(t *testing.T) {
	cmd := NewPlanCommand(Config{ScenarioDir: scenarioDir})
	files, err := cmd.resolveInputFiles()
	require.NoError(t, err)
	env, err := loadScenarioEnv(scenarioDir)
	require.NoError(t, err)

	input, err := cmd.loadInput(files, env)
	require.NoError(t, err)
	require.NoError(t, input.Validate())

	// Horizon derived from labor calendar start and last forecast date
	assert.Equal(t, entities.NewDate(2025, time.June, 2), input.Horizon.Start)
	assert.Equal(t, entities.NewDate(2025, time.June, 10), input.Horizon.End)

	assert.Len(t, input.Products, 2)
	assert.Len(t, input.Trucks, 2)
	assert.NotEmpty(t, input.Routes[entities.LocationID("BR1")])
	assert.NotEmpty(t, input.Routes[entities.LocationID("BR2")])

	key := entities.CohortKey{
		Location:    "HUB",
		Product:     "GF-WHITE",
		ProduceDate: entities.NewDate(2025, time.May, 28),
		CurrentDate: input.Horizon.Start,
		State:       entities.Frozen,
	}
	assert.Equal(t, 400.0, input.Initial[key])
}

func TestResolveHorizon_ExplicitFlagsWin(t *testing.T) {
	cmd := NewPlanCommand(Config{
		ScenarioDir: scenarioDir,
		Start:       "2025-06-03",
		End:         "2025-06-08",
	})
	files, err := cmd.resolveInputFiles()
	require.NoError(t, err)
	env, err := loadScenarioEnv(scenarioDir)
	require.NoError(t, err)

	input, err := cmd.loadInput(files, env)
	require.NoError(t, err)
	assert.Equal(t, entities.NewDate(2025, time.June, 3), input.Horizon.Start)
	assert.Equal(t, entities.NewDate(2025, time.June, 8), input.Horizon.End)
}

func TestBuildSolver(t *testing.T) {
	cmd := NewPlanCommand(Config{SolverBinary: "/usr/bin/cbc"})
	s, err := cmd.buildSolver(scenarioEnv{})
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = NewPlanCommand(Config{}).buildSolver(scenarioEnv{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no solver configured")

	_, err = NewPlanCommand(Config{SolverBinary: "x", SolverFlavor: "gurobi"}).buildSolver(scenarioEnv{})
	require.Error(t, err)
}
