package settings

import (
	"encoding/json"
	"time"
)

type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy *int64          `json:"updated_by,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
