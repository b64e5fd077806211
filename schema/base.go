package schema

// Base is embedded by every payload struct. Structured payloads are rendered
// through Stringify, so the default String is intentionally empty.
type Base struct{}

// String implements Schema
func (Base) String() string {
	return ""
}
