// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
)

// Builtin modules binding.
var (
	Oracle = &oracleContract{contract{meter.OracleModuleAddr}}
	NFT    = &nftContract{contract{meter.NFTModuleAddr}} // default collection
)

type contract struct {
	Address meter.Address
}

type (
	oracleContract struct{ contract }
	nftContract    struct{ contract }
)

func (o *oracleContract) Native(state *state.State) *oracle.Oracle {
	return oracle.New(o.Address, state)
}

func (n *nftContract) Native(state *state.State) *nft.NFT {
	return nft.New(n.Address, state)
}
