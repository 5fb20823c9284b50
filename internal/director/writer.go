package director

import (
	"encoding/json"
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
	return &plan, nil
}

// MarshalPlanJSON encodes a plan as indented JSON and checks it against the
// plan schema.
func MarshalPlanJSON(plan *Plan) ([]byte, error) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan json: %w", err)
	}
	if err := ValidatePlanJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}

// WritePlanJSON writes the schema-checked JSON form of a plan.
func WritePlanJSON(plan *Plan, path string) error {
	data, err := MarshalPlanJSON(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
