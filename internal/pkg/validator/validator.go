package validator

// Validator validates structs annotated with `validate` tags.
type Validator interface {
	// Validate returns nil when data passes all rules, otherwise an error
	// describing the failing fields.
	Validate(data any) error
}
