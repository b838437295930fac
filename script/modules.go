// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
)

const (
	AUCTION_MODULE_NAME = string("auction")
	AUCTION_MODULE_ID   = uint32(1001)

	ORACLE_MODULE_NAME = string("oracle")
	ORACLE_MODULE_ID   = uint32(1003)

	FACTORY_MODULE_NAME = string("factory")
	FACTORY_MODULE_ID   = uint32(1004)

	NFT_MODULE_NAME = string("nft")
	NFT_MODULE_ID   = uint32(1005)
)

func (se *ScriptEngine) register(name string, id uint32, handler ModuleHandler) {
	mod := &Module{
		modName:    name,
		modID:      id,
		modHandler: handler,
	}
	if err := se.modReg.Register(id, mod); err != nil {
		panic("register " + name + " module failed")
	}
	se.logger.Debug("ScriptEngine", "started module", mod.modName)
}

func ModuleAuctionInit(se *ScriptEngine) { se.register(AUCTION_MODULE_NAME, AUCTION_MODULE_ID, auction.Handler) }
func ModuleOracleInit(se *ScriptEngine)  { se.register(ORACLE_MODULE_NAME, ORACLE_MODULE_ID, oracle.Handler) }
func ModuleFactoryInit(se *ScriptEngine) { se.register(FACTORY_MODULE_NAME, FACTORY_MODULE_ID, factory.Handler) }
func ModuleNFTInit(se *ScriptEngine)     { se.register(NFT_MODULE_NAME, NFT_MODULE_ID, nft.Handler) }
