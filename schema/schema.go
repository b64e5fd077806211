package schema

import "encoding/json"

// Schema is the contract for typed payloads exchanged with agents and tools.
type Schema interface {
	String() string
}

// Stringify renders a schema for inclusion in a prompt or chat message.
// Plain string schemas pass through untouched, everything else is marshaled
// to JSON so the model sees the full structured payload.
func Stringify(s Schema) string {
	switch v := s.(type) {
	case String:
		return string(v)
	case *String:
		return string(*v)
	}
	if v := s.String(); v != "" {
		return v
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the serialized form of a schema.
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
