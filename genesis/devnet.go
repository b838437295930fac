// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/meter"
)

// DevAccount account for development.
type DevAccount struct {
	Address    meter.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{meter.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

var (
	// DevUSDC is the 6 decimals stable token of the devnet.
	DevUSDC = meter.BytesToAddress([]byte("dev-usdc"))

	devNativeFeed = meter.BytesToAddress([]byte("feed-native-usd"))
	devUSDCFeed   = meter.BytesToAddress([]byte("feed-usdc-usd"))
)

// DevPreset is the preset of solo mode. The first dev account owns the
// oracle, the factory and the collection.
func DevPreset(launchTime uint64) *Preset {
	accs := DevAccounts()
	owner := accs[0].Address.String()
	p := &Preset{
		Name:       "devnet",
		LaunchTime: launchTime,
		Owner:      owner,
		Oracle:     OracleConfig{StalenessThreshold: meter.DefaultStalenessThreshold},
		Collections: []Collection{
			{Name: "ComprehensiveNFT", Symbol: "CNFT", Minter: owner},
		},
		Feeds: []FeedConf{
			{Asset: meter.NativeToken.String(), Ref: devNativeFeed.String(), Decimals: 8, Description: "MTR / USD", Answer: "200000000000"},
			{Asset: DevUSDC.String(), Ref: devUSDCFeed.String(), Decimals: 8, Description: "USDC / USD", Answer: "100000000"},
		},
	}
	for _, a := range accs {
		p.Accounts = append(p.Accounts,
			Account{Address: a.Address.String(), Balance: "1000000000000000000000000"},
			Account{Address: a.Address.String(), Token: DevUSDC.String(), Balance: "1000000000000"},
		)
	}
	return p
}

// NewDevnet create genesis for solo mode.
func NewDevnet(launchTime uint64) *Genesis {
	g, err := New(DevPreset(launchTime))
	if err != nil {
		panic(err)
	}
	return g
}
