package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/bakeplan/bakeplan/pkg/domain/entities"
)

// scenarioEnv carries the scenario parameters that come from the
// environment rather than the CSV files.
type scenarioEnv struct {
	costs        *entities.CostStructure
	shelfLife    entities.ShelfLife
	solverBinary string
	solverFlavor string
}

// loadScenarioEnv loads scenario.env from the scenario directory (when
// present) into the process environment, then reads the parameters.
// Variables already set in the environment win over the file.
func loadScenarioEnv(scenarioDir string) (scenarioEnv, error) {
	envPath := filepath.Join(scenarioDir, "scenario.env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return scenarioEnv{}, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	production, err := envDecimal("BAKEPLAN_PRODUCTION_COST_PER_UNIT", "1.0")
	if err != nil {
		return scenarioEnv{}, err
	}
	frozen, err := envDecimal("BAKEPLAN_STORAGE_FROZEN_PER_DAY", "0.05")
	if err != nil {
		return scenarioEnv{}, err
	}
	ambient, err := envDecimal("BAKEPLAN_STORAGE_AMBIENT_PER_DAY", "0.01")
	if err != nil {
		return scenarioEnv{}, err
	}
	waste, err := envDecimal("BAKEPLAN_WASTE_MULTIPLIER", "1.5")
	if err != nil {
		return scenarioEnv{}, err
	}
	penalty, err := envDecimal("BAKEPLAN_SHORTAGE_PENALTY_PER_UNIT", "10.0")
	if err != nil {
		return scenarioEnv{}, err
	}
	unitsPerHour, err := envFloat("BAKEPLAN_UNITS_PER_HOUR", 100)
	if err != nil {
		return scenarioEnv{}, err
	}
	changeover, err := envFloat("BAKEPLAN_CHANGEOVER_HOURS", 0.5)
	if err != nil {
		return scenarioEnv{}, err
	}

	costs, err := entities.NewCostStructure(production, frozen, ambient, waste, penalty, unitsPerHour)
	if err != nil {
		return scenarioEnv{}, err
	}
	costs.DefaultChangeoverHours = changeover

	shelfLife := entities.DefaultShelfLife()
	if shelfLife.AmbientDays, err = envInt("BAKEPLAN_SHELF_AMBIENT_DAYS", shelfLife.AmbientDays); err != nil {
		return scenarioEnv{}, err
	}
	if shelfLife.FrozenDays, err = envInt("BAKEPLAN_SHELF_FROZEN_DAYS", shelfLife.FrozenDays); err != nil {
		return scenarioEnv{}, err
	}
	if shelfLife.MinRemainingDays, err = envInt("BAKEPLAN_SHELF_MIN_REMAINING_DAYS", shelfLife.MinRemainingDays); err != nil {
		return scenarioEnv{}, err
	}
	if shelfLife.AmbientDays <= 0 || shelfLife.FrozenDays < shelfLife.AmbientDays {
		return scenarioEnv{}, fmt.Errorf("shelf life must satisfy 0 < ambient <= frozen, got ambient=%d frozen=%d",
			shelfLife.AmbientDays, shelfLife.FrozenDays)
	}

	return scenarioEnv{
		costs:        costs,
		shelfLife:    shelfLife,
		solverBinary: os.Getenv("BAKEPLAN_SOLVER_BINARY"),
		solverFlavor: os.Getenv("BAKEPLAN_SOLVER_FLAVOR"),
	}, nil
}

func envDecimal(name, fallback string) (decimal.Decimal, error) {
	raw := os.Getenv(name)
	if raw == "" {
		raw = fallback
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
