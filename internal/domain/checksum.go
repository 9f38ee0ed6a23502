package domain

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// ChecksumAddress renders an address with EIP-55 mixed-case checksum encoding.
// Input that is not a valid address is returned unchanged.
func ChecksumAddress(address string) string {
	if !ValidAddress(address) {
		return address
	}

	lower := NormalizeAddress(address)[2:]

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	hash := hex.EncodeToString(hasher.Sum(nil))

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}
