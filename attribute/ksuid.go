package attribute

import (
	"github.com/segmentio/ksuid"

	"github.com/syssam/dynamix"
)

// UnicodeKSUID stores a KSUID as its 27 character base62 text.
type UnicodeKSUID struct{}

// Kind implements dynamix.Codec.
func (UnicodeKSUID) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (UnicodeKSUID) Serialize(v ksuid.KSUID) (string, error) { return v.String(), nil }

// Deserialize implements dynamix.Codec.
func (UnicodeKSUID) Deserialize(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, dynamix.NewDecodeError(dynamix.KindString, s, err)
	}
	return id, nil
}

// BinaryKSUID stores a KSUID as its 20 raw bytes.
type BinaryKSUID struct{}

// Kind implements dynamix.Codec.
func (BinaryKSUID) Kind() dynamix.Kind { return dynamix.KindBinary }

// Serialize implements dynamix.Codec.
func (BinaryKSUID) Serialize(v ksuid.KSUID) (string, error) { return encodeBinary(v.Bytes()), nil }

// Deserialize implements dynamix.Codec.
func (BinaryKSUID) Deserialize(s string) (ksuid.KSUID, error) {
	b, err := decodeBinary(s)
	if err != nil {
		return ksuid.Nil, err
	}
	id, err := ksuid.FromBytes(b)
	if err != nil {
		return ksuid.Nil, dynamix.NewDecodeError(dynamix.KindBinary, s, err)
	}
	return id, nil
}

var (
	_ dynamix.Codec[ksuid.KSUID] = UnicodeKSUID{}
	_ dynamix.Codec[ksuid.KSUID] = BinaryKSUID{}
)
