package dto

import "encoding/json"

// NullableID is an optional JSON id that tells an absent field apart from
// an explicit null. Set is true whenever the key was present.
type NullableID struct {
	Set   bool
	Value *uint64
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var id uint64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
