package request

import (
	"bytes"
	"encoding/json"
)

// Nullable remembers whether its JSON key was present at all. A present null
// leaves Set true and Value nil, which is how clients clear a field.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v

	return nil
}

// Cleared reports an explicit null.
func (n Nullable[T]) Cleared() bool {
	return n.Set && n.Value == nil
}
