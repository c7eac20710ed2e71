package dynamix

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Kind is the storage primitive an attribute occupies on the wire.
type Kind uint8

// Storage primitive kinds supported for scalar attributes.
const (
	KindString Kind = iota + 1 // S
	KindNumber                 // N
	KindBinary                 // B
)

// String returns the DynamoDB type descriptor of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "S"
	case KindNumber:
		return "N"
	case KindBinary:
		return "B"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ScalarType returns the key schema attribute type of the kind.
func (k Kind) ScalarType() types.ScalarAttributeType {
	return types.ScalarAttributeType(k.String())
}

// AttributeValue wraps a serialized primitive into its wire representation.
// BINARY primitives are base64 text and are decoded to raw bytes, the SDK
// applies its own framing when sending them.
func (k Kind) AttributeValue(s string) (types.AttributeValue, error) {
	switch k {
	case KindString:
		return &types.AttributeValueMemberS{Value: s}, nil
	case KindNumber:
		return &types.AttributeValueMemberN{Value: s}, nil
	case KindBinary:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, NewDecodeError(k, s, err)
		}
		return &types.AttributeValueMemberB{Value: b}, nil
	default:
		return nil, fmt.Errorf("dynamix: unknown kind %s", k)
	}
}

// Primitive extracts the serialized primitive from a wire value.
func (k Kind) Primitive(av types.AttributeValue) (string, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		if k == KindString {
			return v.Value, nil
		}
	case *types.AttributeValueMemberN:
		if k == KindNumber {
			return v.Value, nil
		}
	case *types.AttributeValueMemberB:
		if k == KindBinary {
			return base64.StdEncoding.EncodeToString(v.Value), nil
		}
	}
	return "", NewDecodeError(k, fmt.Sprintf("%T", av), fmt.Errorf("expected %s attribute value", k))
}

// Codec is the serialize/deserialize contract of a custom attribute type.
// The serialized form is the text of the storage primitive: a decimal
// literal for KindNumber, plain text for KindString and base64 for
// KindBinary.
type Codec[T any] interface {
	// Kind returns the storage primitive the codec occupies.
	Kind() Kind
	// Serialize encodes v into its storage primitive.
	Serialize(v T) (string, error)
	// Deserialize decodes a storage primitive back into a value.
	Deserialize(s string) (T, error)
}
