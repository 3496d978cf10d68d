package template

import (
	"fmt"
	"math"
)

// VariableSchema declares the variables a template accepts. The schema is
// additive: supplying a variable it does not declare is not an error.
type VariableSchema struct {
	Properties map[string]VariableSpec `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

type VariableSpec struct {
	Type    string        `json:"type"`
	Enum    []interface{} `json:"enum,omitempty"`
	Default interface{}   `json:"default,omitempty"`
}

// Validation is the typed result of a variable-validation pass.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CheckVariables validates vars against schema. It is a pure function of
// (schema, vars); a nil schema accepts everything.
func CheckVariables(schema *VariableSchema, vars map[string]interface{}) Validation {
	errs := []string{}

	if schema == nil {
		return Validation{Valid: true, Errors: errs}
	}

	for _, field := range schema.Required {
		if _, ok := vars[field]; !ok {
			errs = append(errs, fmt.Sprintf("required field missing: %s", field))
		}
	}

	for name, value := range vars {
		spec, ok := schema.Properties[name]
		if !ok {
			continue
		}

		switch spec.Type {
		case "string":
			if _, ok := value.(string); !ok {
				errs = append(errs, fmt.Sprintf("field %s must be a string", name))
			}
		case "integer":
			if !isInteger(value) {
				errs = append(errs, fmt.Sprintf("field %s must be an integer", name))
			}
		}

		if len(spec.Enum) > 0 && !enumContains(spec.Enum, value) {
			errs = append(errs, fmt.Sprintf("field %s must be one of: %v", name, spec.Enum))
		}
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// isInteger accepts native ints plus the float64 form JSON decoding produces,
// as long as the value is integral.
func isInteger(v interface{}) bool {
	switch n := v.(type) {
	case int, int32, int64, uint, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n)
	default:
		return false
	}
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, candidate := range enum {
		if fmt.Sprint(candidate) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}

// applyDefaults returns vars extended with schema defaults for any declared
// variable the caller did not supply. The input map is not mutated.
func applyDefaults(schema *VariableSchema, vars map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		merged[k] = v
	}

	if schema == nil {
		return merged
	}

	for name, spec := range schema.Properties {
		if _, ok := merged[name]; !ok && spec.Default != nil {
			merged[name] = spec.Default
		}
	}
	return merged
}
