package pagarme

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Notification is the webhook body Pagar.me posts for order and charge
// events.
type Notification struct {
	ID   *string `json:"id"`
	Type *string `json:"type"`
	Data *Data   `json:"data"`
}

type Data struct {
	ID       *string        `json:"id"`
	Object   *string        `json:"object"`
	Status   *string        `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

// metadataString reads a metadata value as a trimmed string. Numbers and
// booleans are stringified; objects and arrays are ignored.
func (d *Data) metadataString(key string) string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	switch v := d.Metadata[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
