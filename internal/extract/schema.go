package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var categoryKeys = map[Category][]string{
	CategoryPolicy: {
		"policy-holder-name",
		"running-time",
		"insurer",
		"start-date",
		"ped",
		"first-diagnosis",
		"ongoing-treatment-disease",
		"ongoing-disease-covered",
		"ped-waiting-over",
		"total-cover-amount",
		"co-payment",
		"pre-hospitalization-days",
		"post-hospitalization-days",
		"fraud",
		"remarks",
		"summary-policy-holder",
	},
	CategoryBills: {
		"pharmacy-name",
		"total",
		"non-reimbursible",
		"reimbursible",
		"deductions",
	},
	CategoryDischarge: {
		"doctor-name",
		"hospital-name",
		"reason",
	},
	CategoryReports:       {"reports-tests"},
	CategoryClaim:         {"reimbursement-sought"},
	CategoryPrescriptions: {"medicines-prescribed"},
}

// Keys returns the declared output keys for a category.
func Keys(cat Category) []string {
	keys := categoryKeys[cat]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// BuildSchema returns the JSON-Schema used to validate a category's
// extraction record: every declared key required, string valued. Extra keys
// the model volunteers are tolerated and carried through aggregation.
func BuildSchema(cat Category) map[string]any {
	keys := categoryKeys[cat]
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		props[k] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   append([]string(nil), keys...),
	}
}

// ValidateRecord validates raw JSON against the category schema.
func ValidateRecord(cat Category, data []byte) error {
	schemaMap := BuildSchema(cat)
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match %s schema: %w", cat, err)
	}
	return nil
}
