// internal/nlu/schema.go
package nlu

// JSON Schemas the service responses are validated against before anything
// downstream trusts them. A document that fails validation is treated the
// same as a transport failure: no entities extracted.
//
// The entity schema constrains types per key but keeps additionalProperties
// open; unknown keys are the normalizer's problem, not a protocol error.
const orderEntitySchema = `{
	"type": "object",
	"properties": {
		"status":           {"type": "string"},
		"date":             {"type": "string"},
		"total":            {"type": ["number", "string"]},
		"company_name":     {"type": "string"},
		"buyer_area_name":  {"type": "string"},
		"order_option":     {"type": "string"},
		"order_id":         {"type": ["integer", "string"]},
		"product_name":     {"type": "string"},
		"product_count":    {"type": ["integer", "string"]},
		"product_quantity": {"type": ["integer", "string"]},
		"sort_order":       {"type": "string"},
		"limit":            {"type": ["integer", "string"]}
	},
	"additionalProperties": true
}`

const productAttributeSchema = `{
	"type": "object",
	"properties": {
		"product":          {"type": "string"},
		"color":            {"type": "string"},
		"other_attributes": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["product"],
	"additionalProperties": true
}`

const classificationSchema = `{
	"type": "object",
	"properties": {
		"intent":   {"type": "string"},
		"category": {"type": "string"},
		"response": {"type": "string"}
	},
	"required": ["intent", "category"],
	"additionalProperties": true
}`
