package attribute

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/dynamix"
)

// Msgpack stores any value as a MessagePack encoded binary attribute.
// It suits nested documents that are read and written as a whole.
type Msgpack[T any] struct{}

// Kind implements dynamix.Codec.
func (Msgpack[T]) Kind() dynamix.Kind { return dynamix.KindBinary }

// Serialize implements dynamix.Codec.
func (Msgpack[T]) Serialize(v T) (string, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	return encodeBinary(b), nil
}

// Deserialize implements dynamix.Codec.
func (Msgpack[T]) Deserialize(s string) (T, error) {
	var v T
	b, err := decodeBinary(s)
	if err != nil {
		return v, err
	}
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return v, dynamix.NewDecodeError(dynamix.KindBinary, s, err)
	}
	return v, nil
}
