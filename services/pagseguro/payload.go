package pagseguro

import (
	"encoding/json"
	"fmt"
)

// Notification is the webhook body PagSeguro posts.
type Notification struct {
	NotificationCode *string `json:"notificationCode"`
	NotificationType *string `json:"notificationType"`
	Reference        *string `json:"reference"`
	Status           Status  `json:"status"`
}

// Status holds the raw transaction status, which PagSeguro sends either as
// a JSON string or a number.
type Status struct {
	Raw   string
	Valid bool
}

func StatusOf(raw string) Status {
	return Status{Raw: raw, Valid: true}
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Status{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StatusOf(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("status must be a string or number: %w", err)
	}
	*s = StatusOf(n.String())
	return nil
}
