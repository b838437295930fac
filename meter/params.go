// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import "math/big"

// Currency precision.
const (
	NativeDecimals    uint8 = 18 // wei per native unit
	ReferenceDecimals uint8 = 8  // oracle-normalized (USD) units
)

// Default auction terms, overridable through the factory owner.
const (
	DefaultFeeBps          uint64 = 0
	MaxFeeBps              uint64 = 1000 // 10%
	BpsDenominator         uint64 = 10000
	DefaultAntiSnipeWindow uint64 = 300 // seconds before end in which a bid extends the deadline
	DefaultExtension       uint64 = 300 // seconds added per late bid
	DefaultStartTolerance  uint64 = 300 // how far in the past startTime may lie at creation

	DefaultStalenessThreshold uint64 = 3600
)

// NativeToken is the payment token id of the native currency.
var NativeToken = ZeroAddress

// Well-known module addresses.
var (
	OracleModuleAddr  = BytesToAddress([]byte("price-oracle"))
	FactoryModuleAddr = BytesToAddress([]byte("auction-factory"))
	AuctionImplAddr   = BytesToAddress([]byte("auction-implementation"))
	NFTModuleAddr     = BytesToAddress([]byte("comprehensive-nft"))
)

// Pow10 returns 10^n as a new big.Int.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Factory parameter keys, stored through builtin params at the factory address.
var (
	KeyFeeBps          = BytesToBytes32([]byte("fee-bps"))
	KeyFeeRecipient    = BytesToBytes32([]byte("fee-recipient"))
	KeyAntiSnipeWindow = BytesToBytes32([]byte("anti-snipe-window"))
	KeyExtension       = BytesToBytes32([]byte("extension"))
	KeyStartTolerance  = BytesToBytes32([]byte("start-tolerance"))
)
