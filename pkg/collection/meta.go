package collection

import "encoding/json"

// Meta describes a file that was open in a session.
type Meta struct {
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// MarshalList serialises metadata slice.
func MarshalList(metas []Meta) ([]byte, error) {
	return json.MarshalIndent(metas, "", "  ")
}

// UnmarshalList deserialises metadata slice and upgrades legacy arrays of
// file names.
func UnmarshalList(data []byte) ([]Meta, error) {
	if len(data) == 0 {
		return []Meta{}, nil
	}
	var metas []Meta
	if err := json.Unmarshal(data, &metas); err == nil {
		return metas, nil
	}
	// Fallback for legacy format (array of strings).
	var legacy []string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	metas = make([]Meta, 0, len(legacy))
	for _, name := range legacy {
		metas = append(metas, Meta{Name: name})
	}
	return metas, nil
}
