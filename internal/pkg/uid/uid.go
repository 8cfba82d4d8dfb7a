package uid

// NumberID generates int64 identifiers suitable for primary keys.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
