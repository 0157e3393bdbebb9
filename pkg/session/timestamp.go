package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time stored as RFC 3339 text. The zero time is stored as "".
type Timestamp struct {
	time.Time
}

func (t *Timestamp) MarshalJSON() ([]byte, error) {
	if t == nil || t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t.UTC().Format(time.RFC3339Nano))), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return err
	}
	if text == "" {
		t.Time = time.Time{}
		return nil
	}
	v, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339)
}
