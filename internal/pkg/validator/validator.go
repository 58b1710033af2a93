package validator

// Validator validates structs based on their validation tags.
type Validator interface {
	// Validate returns an error describing the first rule violations found.
	Validate(data any) error
}
