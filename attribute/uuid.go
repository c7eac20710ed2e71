package attribute

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/syssam/dynamix"
)

// UUID stores a UUID as text. With RemoveDashes the 32 hex digit form is
// stored; both forms are accepted when decoding.
type UUID struct {
	RemoveDashes bool
}

// Kind implements dynamix.Codec.
func (UUID) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (c UUID) Serialize(v uuid.UUID) (string, error) {
	if c.RemoveDashes {
		return hex.EncodeToString(v[:]), nil
	}
	return v.String(), nil
}

// Deserialize implements dynamix.Codec.
func (UUID) Deserialize(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dynamix.NewDecodeError(dynamix.KindString, s, err)
	}
	return id, nil
}

var _ dynamix.Codec[uuid.UUID] = UUID{}
