package keygen

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Digest fingerprints encoded key material into a fixed-width hex string.
// The digest identifies equivalent calls; it is not a security boundary.
type Digest func(material []byte) string

// DigestMD5 is the default digest: full 128-bit MD5, 32 hex characters.
var DigestMD5 Digest = func(material []byte) string {
	sum := md5.Sum(material)
	return hex.EncodeToString(sum[:])
}

// DigestXX is a faster non-cryptographic alternative: 64-bit xxhash,
// 16 hex characters. Prefer it for hot paths keyed on large argument
// lists, where the shorter fingerprint's collision odds are acceptable.
var DigestXX Digest = func(material []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(material))
}
