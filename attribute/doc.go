// Package attribute provides the custom attribute codecs of dynamix.
//
// Every codec implements dynamix.Codec and declares the storage primitive
// it occupies:
//
//	attribute.IndexableBool{}        // N: "1" / "0", sortable in key conditions
//	attribute.NewEnumNameCodec(e)    // S: member name
//	attribute.NewStringEnumCodec(e)  // S: member value (string members)
//	attribute.NewIntEnumCodec(e)     // N: member value (integer members)
//	attribute.UnicodeULID{}          // S: 26 character ULID text
//	attribute.NumberULID{}           // N: 128-bit ULID as an integer
//	attribute.BinaryULID{}           // B: 16 raw ULID bytes
//	attribute.UUID{}                 // S: canonical or dashless UUID text
//	attribute.UnicodeDatetime{}      // S: ISO-8601 timestamp
//	attribute.Timestamp{}            // N: unix time
//	attribute.Msgpack[T]{}           // B: msgpack payload
//
// # Enums
//
// Go has no enum type, so enums are declared as an ordered list of named
// members. Value-keyed codecs validate the members when they are built:
//
//	status := attribute.MustEnumType("Status",
//	    attribute.Member{Name: "Active", Value: 1},
//	    attribute.Member{Name: "Archived", Value: 2},
//	)
//	codec, err := attribute.NewIntEnumCodec(status) // fails on float or duplicate values
//
// Members can be looked up explicitly:
//
//	active, err := codec.MemberByName("Active")
//
// # Nil values
//
// Codecs operate on values. An absent value is never encoded; use
// SerializePtr and DeserializePtr when nil must pass through a codec.
package attribute
