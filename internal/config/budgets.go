package config

import (
	"fmt"

	"github.com/spf13/viper"

	"expenses/internal/core"
)

type budgetsFile struct {
	Categories []struct {
		Name   string `mapstructure:"name"`
		Budget string `mapstructure:"budget"`
	} `mapstructure:"categories"`
}

// LoadBudgetTable reads a category table from a YAML, JSON or TOML file:
//
//	categories:
//	  - name: Food
//	    budget: 300
//
// An empty path yields core.DefaultBudgetTable.
func LoadBudgetTable(path string) (core.BudgetTable, error) {
	if path == "" {
		return core.DefaultBudgetTable(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading budgets file, %w", err)
	}

	var raw budgetsFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode budgets file, %w", err)
	}

	table := make(core.BudgetTable, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		budget, err := core.ParseBudget(c.Budget)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		table = append(table, core.CategoryBudget{Name: c.Name, Budget: budget})
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("budgets file %s: %w", path, err)
	}
	return table, nil
}
