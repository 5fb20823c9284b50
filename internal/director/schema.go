package director

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed plan.schema.json
var planSchemaJSON string

// ErrInvalidPlan wraps schema violations found by ValidatePlanJSON.
var ErrInvalidPlan = errors.New("plan does not match schema")

var (
	schemaOnce sync.Once
	planSchema *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		planSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchemaJSON))
	})
	return planSchema, schemaErr
}

// ValidatePlanJSON checks an encoded plan against the embedded schema.
func ValidatePlanJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load plan schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(msgs, "; "))
}
