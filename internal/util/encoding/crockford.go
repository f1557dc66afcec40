package encoding

import (
	"encoding/base32"
	"strings"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ" // Crockford's Base32 alphabet

//nolint:gochecknoglobals
var crockford = base32.NewEncoding(crockfordBase32Alphabet).WithPadding(base32.NoPadding)

// EncodeCrockfordB32LC encodes a byte slice using Crockford's Base32 alphabet and returns
// the result in lowercase, without padding. Trailing bits are zero-filled.
func EncodeCrockfordB32LC(input []byte) string {
	return strings.ToLower(crockford.EncodeToString(input))
}
