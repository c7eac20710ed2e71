package attribute

import (
	"fmt"
	"math/big"

	"github.com/oklog/ulid/v2"

	"github.com/syssam/dynamix"
)

// UnicodeULID stores a ULID as its canonical 26 character text.
type UnicodeULID struct{}

// Kind implements dynamix.Codec.
func (UnicodeULID) Kind() dynamix.Kind { return dynamix.KindString }

// Serialize implements dynamix.Codec.
func (UnicodeULID) Serialize(v ulid.ULID) (string, error) { return v.String(), nil }

// Deserialize implements dynamix.Codec.
func (UnicodeULID) Deserialize(s string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, dynamix.NewDecodeError(dynamix.KindString, s, err)
	}
	return id, nil
}

// NumberULID stores a ULID as its 128-bit unsigned integer value.
type NumberULID struct{}

// Kind implements dynamix.Codec.
func (NumberULID) Kind() dynamix.Kind { return dynamix.KindNumber }

// Serialize implements dynamix.Codec.
func (NumberULID) Serialize(v ulid.ULID) (string, error) {
	return new(big.Int).SetBytes(v[:]).String(), nil
}

// Deserialize implements dynamix.Codec.
func (NumberULID) Deserialize(s string) (ulid.ULID, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ulid.ULID{}, dynamix.NewDecodeError(dynamix.KindNumber, s, fmt.Errorf("invalid integer"))
	}
	if n.Sign() < 0 || n.BitLen() > 128 {
		return ulid.ULID{}, dynamix.NewDecodeError(dynamix.KindNumber, s, fmt.Errorf("integer out of ULID range"))
	}
	var id ulid.ULID
	n.FillBytes(id[:])
	return id, nil
}

// BinaryULID stores a ULID as its 16 raw bytes.
type BinaryULID struct{}

// Kind implements dynamix.Codec.
func (BinaryULID) Kind() dynamix.Kind { return dynamix.KindBinary }

// Serialize implements dynamix.Codec.
func (BinaryULID) Serialize(v ulid.ULID) (string, error) {
	return encodeBinary(v[:]), nil
}

// Deserialize implements dynamix.Codec.
func (BinaryULID) Deserialize(s string) (ulid.ULID, error) {
	b, err := decodeBinary(s)
	if err != nil {
		return ulid.ULID{}, err
	}
	var id ulid.ULID
	if err := id.UnmarshalBinary(b); err != nil {
		return ulid.ULID{}, dynamix.NewDecodeError(dynamix.KindBinary, s, err)
	}
	return id, nil
}

var (
	_ dynamix.Codec[ulid.ULID] = UnicodeULID{}
	_ dynamix.Codec[ulid.ULID] = NumberULID{}
	_ dynamix.Codec[ulid.ULID] = BinaryULID{}
)
