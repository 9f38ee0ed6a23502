package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// knownNetworks maps EIP-155 chain IDs (hex encoded, as returned by
// eth_chainId) to human-readable network names. Configuration data,
// not protocol logic.
var knownNetworks = map[string]string{
	"0x1":     "Ethereum Mainnet",
	"0x3":     "Ropsten Testnet",
	"0x4":     "Rinkeby Testnet",
	"0x5":     "Goerli Testnet",
	"0x2a":    "Kovan Testnet",
	"0x89":    "Polygon Mainnet",
	"0x13881": "Mumbai Testnet",
	"0xa":     "Optimism",
	"0xa4b1":  "Arbitrum One",
}

// NetworkName maps a hex chain ID to a network name. Unknown chain IDs
// render as "Chain ID: <decimal>"; unparsable input yields DefaultNetwork.
func NetworkName(chainID string) string {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	if name, ok := knownNetworks[chainID]; ok {
		return name
	}

	decimal, err := strconv.ParseInt(strings.TrimPrefix(chainID, "0x"), 16, 64)
	if err != nil {
		return DefaultNetwork
	}
	return fmt.Sprintf("Chain ID: %d", decimal)
}
