// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"bytes"
	"encoding/hex"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/script/factory"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

var (
	ErrPatternMismatch = meter.NewError(meter.KindValidationFailure, "script pattern mismatch")
	ErrMalformedScript = meter.NewError(meter.KindValidationFailure, "malformed script data")
	ErrUnknownModule   = meter.NewError(meter.KindValidationFailure, "unknown module")
)

// ScriptEngine dispatches script data to the module named in its header.
type ScriptEngine struct {
	logger *slog.Logger
	modReg Registry
}

func NewScriptEngine() *ScriptEngine {
	se := &ScriptEngine{
		logger: slog.Default().With("pkg", "se"),
	}
	// start all sub modules
	se.StartAllModules()
	return se
}

func (se *ScriptEngine) StartAllModules() {
	ModuleOracleInit(se)
	ModuleNFTInit(se)
	ModuleFactoryInit(se)
	ModuleAuctionInit(se)
}

// Modules lists the registered modules.
func (se *ScriptEngine) Modules() []Module {
	return se.modReg.All()
}

// HandleScriptData runs data, a pattern prefixed ScriptData, against env.
// On error the state changes made so far are left for the caller to revert.
func (se *ScriptEngine) HandleScriptData(senv *setypes.ScriptEnv, data []byte, to meter.Address) (*setypes.ScriptEngineOutput, error) {
	if len(data) < len(ScriptPattern) || !bytes.Equal(data[:len(ScriptPattern)], ScriptPattern[:]) {
		n := len(ScriptPattern)
		if len(data) < n {
			n = len(data)
		}
		return nil, errors.WithMessagef(ErrPatternMismatch, "pattern = %v", hex.EncodeToString(data[:n]))
	}
	script, err := DecodeScriptData(data[len(ScriptPattern):])
	if err != nil {
		se.logger.Debug("decode script data failed", "err", err)
		return nil, errors.WithMessage(ErrMalformedScript, err.Error())
	}

	header := script.Header
	mod, find := se.modReg.Find(header.GetModID())
	if !find {
		return nil, errors.WithMessagef(ErrUnknownModule, "module id %v", header.GetModID())
	}
	se.logger.Debug("script header", "header", header.ToString(), "module", mod.ToString(), "to", to)

	if err := mod.modHandler(senv, script.Payload, to); err != nil {
		return senv.GetOutput(), err
	}
	return senv.GetOutput(), nil
}

// ModuleOf returns the module ID a body is dispatched to.
func ModuleOf(body interface{}) (uint32, []byte, error) {
	switch b := body.(type) {
	case *oracle.OracleBody:
		payload, err := oracle.EncodeToBytes(b)
		return ORACLE_MODULE_ID, payload, err
	case *nft.NFTBody:
		payload, err := nft.EncodeToBytes(b)
		return NFT_MODULE_ID, payload, err
	case *factory.FactoryBody:
		payload, err := factory.EncodeToBytes(b)
		return FACTORY_MODULE_ID, payload, err
	case *auction.AuctionBody:
		payload, err := auction.EncodeToBytes(b)
		return AUCTION_MODULE_ID, payload, err
	default:
		return 0, nil, errors.Errorf("unrecognized body %T", body)
	}
}

// EncodeScriptData wraps body into pattern prefixed script data.
func EncodeScriptData(body interface{}) ([]byte, error) {
	modID, payload, err := ModuleOf(body)
	if err != nil {
		return nil, err
	}
	s := new(Builder).SetVersion(0).SetModID(modID).SetPayload(payload).Build()
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return nil, errors.Wrap(err, "rlp encode script data")
	}
	return append(ScriptPattern[:], data...), nil
}

func DecodeScriptData(bytes []byte) (*ScriptData, error) {
	script := ScriptData{}
	err := rlp.DecodeBytes(bytes, &script)
	return &script, err
}
