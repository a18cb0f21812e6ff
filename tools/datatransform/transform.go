// Package datatransform implements the one capability that runs
// in-process rather than over the bridge: structured-data operations
// (stats, filter, sort, validate, aggregate) on JSON arrays.
package datatransform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/polyglot-agents/webkernel/core/protocol"
	"github.com/polyglot-agents/webkernel/tools"
)

// Language tags the implementing runtime in status updates.
const Language = "go"

// Tool returns the data_transform tool spec offered to the model.
func Tool() protocol.Tool {
	return protocol.Tool{
		Name:        "data_transform",
		Description: "Process structured data: stats, filter, sort, validate, aggregate. Runs in-process at native speed.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operation": map[string]any{
					"type": "string",
					"enum": []string{"stats", "filter", "sort", "validate", "aggregate"},
				},
				"data":  map[string]any{"type": "array", "description": "Data to process"},
				"field": map[string]any{"type": "string", "description": "Field name for numeric operations"},
				"where": map[string]any{"type": "object", "description": "Filter clause: {field, op, value}"},
				"compute": map[string]any{
					"type":        "array",
					"description": "Aggregate operations: sum, mean, min, max",
				},
				"schema": map[string]any{"type": "object", "description": "JSON Schema for the validate operation"},
			},
			"required": []string{"operation"},
		},
	}
}

// Entry returns the registry entry for the data_transform capability.
func Entry() tools.Entry {
	return tools.Entry{Tool: Tool(), Language: Language, Handler: Handler}
}

// Handler adapts Execute to the dispatcher's executor signature.
func Handler(_ context.Context, input json.RawMessage) (any, error) {
	var in map[string]any
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return Execute(in)
}

// Execute runs one data transform operation on decoded JSON input.
func Execute(input map[string]any) (map[string]any, error) {
	operation, _ := input["operation"].(string)
	if operation == "" {
		return nil, errors.New("missing 'operation' field")
	}

	switch operation {
	case "stats":
		return computeStats(input)
	case "filter":
		return filterData(input)
	case "sort":
		return sortData(input)
	case "validate":
		return validateData(input)
	case "aggregate":
		return aggregateData(input)
	default:
		return nil, fmt.Errorf("unknown operation: %s (use stats, filter, sort, validate, aggregate)", operation)
	}
}

func dataArray(input map[string]any) ([]any, error) {
	data, ok := input["data"].([]any)
	if !ok {
		return nil, errors.New("'data' must be an array")
	}
	return data, nil
}

func fieldName(input map[string]any) string {
	if field, ok := input["field"].(string); ok && field != "" {
		return field
	}
	return "value"
}

// numericValues extracts numbers from either plain arrays ([10, 20])
// or arrays of objects keyed by field ([{"value": 10}]).
func numericValues(data []any, field string) []float64 {
	values := make([]float64, 0, len(data))
	for _, item := range data {
		if n, ok := item.(float64); ok {
			values = append(values, n)
			continue
		}
		if obj, ok := item.(map[string]any); ok {
			if n, ok := obj[field].(float64); ok {
				values = append(values, n)
			}
		}
	}
	return values
}

func fieldNumber(item any, field string) float64 {
	obj, ok := item.(map[string]any)
	if !ok {
		return 0
	}
	n, _ := obj[field].(float64)
	return n
}

func computeStats(input map[string]any) (map[string]any, error) {
	data, err := dataArray(input)
	if err != nil {
		return nil, err
	}

	values := numericValues(data, fieldName(input))
	if len(values) == 0 {
		return map[string]any{"count": 0, "sum": 0, "mean": 0, "min": 0, "max": 0}, nil
	}

	count := float64(len(values))
	sum := 0.0
	minimum := math.Inf(1)
	maximum := math.Inf(-1)
	for _, v := range values {
		sum += v
		minimum = math.Min(minimum, v)
		maximum = math.Max(maximum, v)
	}
	mean := sum / count

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= count

	return map[string]any{
		"count":   len(values),
		"sum":     sum,
		"mean":    mean,
		"min":     minimum,
		"max":     maximum,
		"std_dev": math.Sqrt(variance),
	}, nil
}

func filterData(input map[string]any) (map[string]any, error) {
	data, err := dataArray(input)
	if err != nil {
		return nil, err
	}

	where, ok := input["where"].(map[string]any)
	if !ok {
		return nil, errors.New("'where' clause is required for filter operation")
	}
	field, ok := where["field"].(string)
	if !ok {
		return nil, errors.New("'where.field' is required")
	}
	op, ok := where["op"].(string)
	if !ok {
		return nil, errors.New("'where.op' is required")
	}
	threshold, ok := where["value"].(float64)
	if !ok {
		return nil, errors.New("'where.value' must be a number")
	}

	filtered := make([]any, 0, len(data))
	for _, item := range data {
		if compare(fieldNumber(item, field), op, threshold) {
			filtered = append(filtered, item)
		}
	}

	return map[string]any{
		"data":           filtered,
		"count":          len(filtered),
		"original_count": len(data),
	}, nil
}

func compare(value float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return value > threshold
	case ">=":
		return value >= threshold
	case "<":
		return value < threshold
	case "<=":
		return value <= threshold
	case "==":
		return value == threshold
	case "!=":
		return value != threshold
	default:
		return false
	}
}

func sortData(input map[string]any) (map[string]any, error) {
	data, err := dataArray(input)
	if err != nil {
		return nil, err
	}

	field, ok := input["field"].(string)
	if !ok {
		return nil, errors.New("'field' is required for sort operation")
	}
	descending, _ := input["descending"].(bool)

	sorted := make([]any, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := fieldNumber(sorted[i], field)
		b := fieldNumber(sorted[j], field)
		if descending {
			return b < a
		}
		return a < b
	})

	return map[string]any{"data": sorted, "count": len(sorted)}, nil
}

// validateData checks data against a caller-supplied JSON Schema using
// a real schema compiler, returning the collected violations instead of
// failing the dispatch.
func validateData(input map[string]any) (map[string]any, error) {
	data, ok := input["data"]
	if !ok {
		return nil, errors.New("'data' is required for validate")
	}
	schemaDoc, ok := input["schema"]
	if !ok {
		return nil, errors.New("'schema' is required for validate")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	violations := []string{}
	if err := schema.Validate(data); err != nil {
		violations = validationMessages(err)
	}

	return map[string]any{
		"valid":       len(violations) == 0,
		"errors":      violations,
		"error_count": len(violations),
	}, nil
}

// validationMessages flattens a validation error into its leaf causes.
func validationMessages(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	var messages []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			messages = append(messages, e.Error())
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return messages
}

func aggregateData(input map[string]any) (map[string]any, error) {
	data, err := dataArray(input)
	if err != nil {
		return nil, err
	}

	compute, ok := input["compute"].([]any)
	if !ok {
		return nil, errors.New("'compute' must be an array of operation names")
	}

	values := numericValues(data, fieldName(input))
	result := map[string]any{"count": len(values)}

	for _, op := range compute {
		name, _ := op.(string)
		switch name {
		case "sum":
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			result["sum"] = sum
		case "mean":
			mean := 0.0
			if len(values) > 0 {
				sum := 0.0
				for _, v := range values {
					sum += v
				}
				mean = sum / float64(len(values))
			}
			result["mean"] = mean
		case "min":
			if len(values) > 0 {
				minimum := math.Inf(1)
				for _, v := range values {
					minimum = math.Min(minimum, v)
				}
				result["min"] = minimum
			} else {
				result["min"] = nil
			}
		case "max":
			if len(values) > 0 {
				maximum := math.Inf(-1)
				for _, v := range values {
					maximum = math.Max(maximum, v)
				}
				result["max"] = maximum
			} else {
				result["max"] = nil
			}
		}
	}

	return result, nil
}
