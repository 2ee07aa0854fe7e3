package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WritePlan writes a plan to a YAML file.
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if plan.Version != PlanVersion {
		return nil, fmt.Errorf("plan %s: unsupported version %q", path, plan.Version)
	}
	return &plan, nil
}
