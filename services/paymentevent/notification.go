package paymentevent

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"vendas-platform/pkg/errutil"
	"vendas-platform/services/sale"
)

// Notification is a provider webhook body reduced to what reconciliation
// needs. Empty strings mean the provider did not send the field.
type Notification struct {
	Provider  Provider
	EventID   string
	Type      string
	Reference string
	Status    sale.Status
}

// Parser validates one provider's webhook body at the boundary.
type Parser interface {
	Provider() Provider
	Parse(raw []byte) (*Notification, error)
}

const (
	ReasonInvalidJSON    = "invalid_json"
	ReasonInvalidPayload = "invalid_payload"
)

// NormalizeBody maps an empty body to "{}".
func NormalizeBody(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []byte("{}")
	}
	return trimmed
}

// HashPayload returns the hex sha256 of the body, kept for audit only.
func HashPayload(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// DecodeObject unmarshals a JSON object body into v. Syntax errors become
// 400 invalid_json; anything that is not an object of the expected shape
// becomes 400 invalid_payload.
func DecodeObject(raw []byte, v any) error {
	if !json.Valid(raw) {
		return errutil.BadRequest("Corpo JSON inválido.", nil, errutil.WithReason(ReasonInvalidJSON))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return errutil.BadRequest("Payload deve ser um objeto JSON.", nil, errutil.WithReason(ReasonInvalidPayload))
	}

	if err := json.Unmarshal(raw, v); err != nil {
		msg := "Payload inválido."
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			msg = fmt.Sprintf("Campo %q com tipo inválido.", typeErr.Field)
		}
		return errutil.BadRequest(msg, err, errutil.WithReason(ReasonInvalidPayload))
	}
	return nil
}
