package domain

import (
	"regexp"
	"strings"
	"time"
)

// addressPattern matches a 20-byte hex address with the 0x prefix.
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// DefaultNetwork is used when the client does not report a network label.
const DefaultNetwork = "Unknown"

// WalletRecord is the persisted record of a wallet connection.
// Addresses are always stored lowercase; the address is the unique key.
type WalletRecord struct {
	Address         string    `json:"address" bson:"address"`
	Network         string    `json:"network" bson:"network"`
	ConnectedAt     time.Time `json:"connectedAt" bson:"connected_at"`
	LastConnected   time.Time `json:"lastConnected" bson:"last_connected"`
	ConnectionCount int       `json:"connectionCount" bson:"connection_count"`
	IsActive        bool      `json:"isActive" bson:"is_active"`
}

// ConnectRequest is the body of POST /api/wallet/connect
type ConnectRequest struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

// NormalizeAddress lowercases an address for storage and lookup.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidAddress reports whether address is a well-formed Ethereum address
// (0x prefix followed by exactly 40 hex digits, any case).
func ValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// ShortAddress formats an address for display: first 6 characters,
// an ellipsis, and the last 4. Empty input yields empty output.
func ShortAddress(address string) string {
	if address == "" {
		return ""
	}
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
