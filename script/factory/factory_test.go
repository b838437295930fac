// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = meter.BytesToAddress([]byte("admin"))
	seller   = meter.BytesToAddress([]byte("seller"))
	operator = meter.BytesToAddress([]byte("operator"))
	bob      = meter.BytesToAddress([]byte("bob"))
	treasury = meter.BytesToAddress([]byte("treasury"))
	usdc     = meter.BytesToAddress([]byte("usdc"))
	usdcUsd  = meter.BytesToAddress([]byte("usdc-usd"))
)

type fixture struct {
	t     *testing.T
	st    *state.State
	feeds *feed.Registry
	nft   *nft.NFT
	f     *Factory
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	fx := &fixture{
		t:     t,
		st:    state.New(db),
		feeds: feed.NewRegistry(),
	}
	fx.nft = nft.New(meter.NFTModuleAddr, fx.st)
	require.NoError(t, fx.nft.Deploy("ComprehensiveNFT", "CNFT", admin))
	require.NoError(t, oracle.New(meter.OracleModuleAddr, fx.st).Deploy(admin))
	fx.f = New(meter.FactoryModuleAddr, fx.st)
	require.NoError(t, fx.f.Deploy(admin, meter.AuctionImplAddr))
	return fx
}

func (fx *fixture) env(origin meter.Address, now uint64) *setypes.ScriptEnv {
	return setypes.NewScriptEnv(nil, fx.st, xenv.NewTransactionContext(origin, now), meter.FactoryModuleAddr, &setypes.Collaborators{
		Feeds:  fx.feeds,
		Assets: nft.Resolve,
	})
}

func (fx *fixture) mint(to meter.Address) *big.Int {
	id, err := fx.nft.Mint(fx.env(admin, 0), to, "ipfs://token")
	require.NoError(fx.t, err)
	return id
}

func createParams(id *big.Int, start, end uint64) *CreateParams {
	return &CreateParams{
		Asset:        auction.Asset{Contract: meter.NFTModuleAddr, TokenID: id},
		PaymentToken: meter.NativeToken,
		ReservePrice: big.NewInt(100),
		MinIncrement: big.NewInt(10),
		StartTime:    start,
		EndTime:      end,
	}
}

func TestDeploy(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, admin, fx.f.Owner())
	assert.Equal(t, meter.AuctionImplAddr, fx.f.Implementation())
	assert.True(t, errors.Is(fx.f.Deploy(bob, meter.AuctionImplAddr), ErrAlreadyDeployed))

	cfg := fx.f.Config()
	assert.Equal(t, meter.DefaultFeeBps, cfg.FeeBps)
	assert.Equal(t, admin, cfg.FeeRecipient)
	assert.Equal(t, meter.DefaultAntiSnipeWindow, cfg.AntiSnipeWindow)
	assert.Equal(t, meter.DefaultExtension, cfg.Extension)
	assert.Equal(t, meter.DefaultStartTolerance, cfg.StartTolerance)
}

func TestCreateAuction(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	env := fx.env(seller, 1000)
	addr, err := fx.f.CreateAuction(env, createParams(id, 1000, 2000))
	require.NoError(t, err)
	assert.Equal(t, meter.Address(crypto.CreateAddress(common.Address(meter.FactoryModuleAddr), 0)), addr)

	owner, err := fx.nft.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, addr, owner, "asset escrowed in the clone")

	rec := auction.New(addr, fx.st).Get()
	require.NotNil(t, rec)
	assert.Equal(t, seller, rec.Seller)
	assert.Equal(t, meter.AuctionImplAddr, rec.Implementation)
	assert.Equal(t, meter.FactoryModuleAddr, rec.Factory)
	assert.Equal(t, meter.NativeDecimals, rec.PaymentDecimals)
	assert.Equal(t, auction.StatusActive, rec.Status)
	assert.Equal(t, admin, rec.Terms.FeeRecipient)

	assert.Equal(t, uint64(1), fx.f.Count())
	assert.Equal(t, []meter.Address{addr}, fx.f.AuctionsBySeller(seller))
	assert.Equal(t, addr, fx.f.AuctionByAsset(auction.Asset{Contract: meter.NFTModuleAddr, TokenID: id}))

	created := env.GetEvents().Filter(AuctionCreatedEvent)
	require.Len(t, created, 1)
	assert.Equal(t, addressTopic(addr), created[0].Topics[1])
	assert.Equal(t, addressTopic(seller), created[0].Topics[2])
	var data createdData
	require.NoError(t, created[0].DecodeData(&data))
	assert.Equal(t, uint64(2000), data.EndTime)
	assert.Equal(t, 0, id.Cmp(data.TokenID))

	second, err := fx.f.CreateAuction(fx.env(seller, 1000), createParams(fx.mint(seller), 1000, 2000))
	require.NoError(t, err)
	assert.NotEqual(t, addr, second)
	assert.Equal(t, []meter.Address{addr, second}, fx.f.Auctions(0, 10))
	assert.Equal(t, []meter.Address{second}, fx.f.Auctions(1, 10))
	assert.Empty(t, fx.f.Auctions(2, 10))
}

func TestCreateInvalidWindow(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	_, err := fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 2000, 2000))
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	_, err = fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 2000, 1500))
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	// starts slightly in the past are tolerated
	_, err = fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 1000-meter.DefaultStartTolerance-1, 5000))
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	_, err = fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 1000-meter.DefaultStartTolerance, 5000))
	assert.NoError(t, err)
}

func TestCreateUnauthorized(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	_, err := fx.f.CreateAuction(fx.env(bob, 1000), createParams(id, 1000, 2000))
	assert.True(t, errors.Is(err, ErrNotApproved))
	assert.True(t, errors.Is(err, meter.ErrUnauthorized))
	assert.Zero(t, fx.f.Count())

	require.NoError(t, fx.nft.SetApprovalForAll(fx.env(seller, 1000), operator, true))
	addr, err := fx.f.CreateAuction(fx.env(operator, 1000), createParams(id, 1000, 2000))
	require.NoError(t, err)
	assert.Equal(t, seller, auction.New(addr, fx.st).Get().Seller, "the owner is the seller, not the operator")
}

func TestAssetAlreadyListed(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	first, err := fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 1100, 2000))
	require.NoError(t, err)

	_, err = fx.f.CreateAuction(fx.env(seller, 1000), createParams(id, 1100, 2000))
	assert.True(t, errors.Is(err, ErrAssetAlreadyListed))

	require.NoError(t, auction.New(first, fx.st).Cancel(fx.env(seller, 1050)))
	second, err := fx.f.CreateAuction(fx.env(seller, 1060), createParams(id, 1100, 2000))
	require.NoError(t, err)
	assert.Equal(t, second, fx.f.AuctionByAsset(auction.Asset{Contract: meter.NFTModuleAddr, TokenID: id}))
	assert.Equal(t, []meter.Address{first, second}, fx.f.AuctionsBySeller(seller))
}

func TestCreateOracleDenominated(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	p := createParams(id, 1000, 2000)
	p.PaymentToken = usdc
	p.PaymentDecimals = 6
	p.Denomination = auction.DenomOracle
	_, err := fx.f.CreateAuction(fx.env(seller, 1000), p)
	assert.True(t, errors.Is(err, ErrFeedNotRegistered))

	require.NoError(t, fx.feeds.Register(usdcUsd, feed.NewReported(8, "USDC / USD")))
	require.NoError(t, oracle.New(meter.OracleModuleAddr, fx.st).SetPriceFeed(fx.env(admin, 1000), usdc, usdcUsd))
	addr, err := fx.f.CreateAuction(fx.env(seller, 1000), p)
	require.NoError(t, err)

	rec := auction.New(addr, fx.st).Get()
	assert.Equal(t, meter.OracleModuleAddr, rec.Oracle)
	assert.Equal(t, uint8(6), rec.PaymentDecimals)
	assert.Equal(t, auction.DenomOracle, rec.Denomination)
}

func TestSetConfig(t *testing.T) {
	fx := newFixture(t)
	cfg := &Config{FeeBps: 250, FeeRecipient: treasury, AntiSnipeWindow: 600, Extension: 120, StartTolerance: 60}

	err := fx.f.SetConfig(fx.env(bob, 1000), cfg)
	assert.True(t, errors.Is(err, ErrNotOwner))

	err = fx.f.SetConfig(fx.env(admin, 1000), &Config{FeeBps: meter.MaxFeeBps + 1})
	assert.True(t, errors.Is(err, ErrInvalidTerms))

	before, err := fx.f.CreateAuction(fx.env(seller, 1000), createParams(fx.mint(seller), 1000, 2000))
	require.NoError(t, err)

	require.NoError(t, fx.f.SetConfig(fx.env(admin, 1000), cfg))
	assert.Equal(t, cfg, fx.f.Config())

	after, err := fx.f.CreateAuction(fx.env(seller, 1000), createParams(fx.mint(seller), 1000, 2000))
	require.NoError(t, err)

	assert.Equal(t, uint64(0), auction.New(before, fx.st).Get().Terms.FeeBps, "existing auctions keep their terms")
	terms := auction.New(after, fx.st).Get().Terms
	assert.Equal(t, uint64(250), terms.FeeBps)
	assert.Equal(t, treasury, terms.FeeRecipient)
	assert.Equal(t, uint64(600), terms.AntiSnipeWindow)
	assert.Equal(t, uint64(120), terms.Extension)

	// zero values are kept, not replaced by defaults
	require.NoError(t, fx.f.SetConfig(fx.env(admin, 1000), &Config{FeeRecipient: treasury}))
	assert.Equal(t, uint64(0), fx.f.Config().AntiSnipeWindow)
}

func TestTransferOwnership(t *testing.T) {
	fx := newFixture(t)
	assert.True(t, errors.Is(fx.f.TransferOwnership(fx.env(bob, 0), bob), ErrNotOwner))
	require.NoError(t, fx.f.TransferOwnership(fx.env(admin, 0), bob))
	assert.Equal(t, bob, fx.f.Owner())
}

func TestFactoryHandler(t *testing.T) {
	fx := newFixture(t)
	id := fx.mint(seller)

	payload, err := EncodeToBytes(&FactoryBody{
		Opcode:        OP_CREATE,
		AssetContract: meter.NFTModuleAddr,
		TokenID:       id,
		ReservePrice:  big.NewInt(100),
		MinIncrement:  big.NewInt(10),
		StartTime:     1000,
		EndTime:       2000,
	})
	require.NoError(t, err)

	env := fx.env(seller, 1000)
	require.NoError(t, Handler(env, payload, meter.FactoryModuleAddr))
	addr := meter.BytesToAddress(env.GetReturnData())
	assert.Equal(t, addr, fx.f.AuctionAt(0))

	payload, err = EncodeToBytes(&FactoryBody{Opcode: 99})
	require.NoError(t, err)
	assert.True(t, errors.Is(Handler(fx.env(seller, 1000), payload, meter.FactoryModuleAddr), meter.ErrValidationFailure))

	env = fx.env(seller, 1000)
	env.GetTxCtx().Value = big.NewInt(1)
	assert.True(t, errors.Is(Handler(env, payload, meter.FactoryModuleAddr), meter.ErrValidationFailure))
}
