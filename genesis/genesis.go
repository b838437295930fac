// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis initializes a fresh ledger from a preset.
package genesis

import (
	"log/slog"
	"math/big"

	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script/factory"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/meterio/meter-auction/xenv"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "genesis")

// Genesis builds the initial ledger and the off-ledger collaborators.
type Genesis struct {
	builder *Builder
	preset  *Preset
	feeds   map[meter.Address]*feed.Reported
}

// New creates the genesis of a validated preset.
func New(p *Preset) (*Genesis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := &Genesis{
		builder: new(Builder).Timestamp(p.LaunchTime),
		preset:  p,
		feeds:   make(map[meter.Address]*feed.Reported),
	}
	for _, f := range p.Feeds {
		ref, _ := parseAddress(f.Ref)
		answer, _ := new(big.Int).SetString(f.Answer, 10)
		agg := feed.NewReported(f.Decimals, f.Description)
		agg.Submit(answer, p.LaunchTime)
		g.feeds[ref] = agg
	}
	return g, nil
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.preset.Name
}

func (g *Genesis) Preset() *Preset {
	return g.preset
}

// Feeds returns the reporter fed aggregators by reference address.
func (g *Genesis) Feeds() map[meter.Address]*feed.Reported {
	return g.feeds
}

// Register installs the off-ledger collaborators. It is needed on every
// start, the ledger only refers to them.
func (g *Genesis) Register(feeds *feed.Registry, receivers *setypes.Receivers) error {
	for ref, agg := range g.feeds {
		if err := feeds.Register(ref, agg); err != nil {
			return errors.WithMessagef(err, "register feed %v", ref)
		}
	}
	for _, r := range g.preset.Rejecting {
		addr, _ := parseAddress(r)
		receivers.Register(addr, setypes.RejectAll)
	}
	return nil
}

// Apply writes the preset into a fresh ledger. It reports false if the
// ledger was already initialized.
func (g *Genesis) Apply(rt *runtime.Runtime) (bool, error) {
	g.builder.State(func(st *state.State) error {
		return g.build(st, rt.Collaborators())
	})
	ok, err := rt.Bootstrap(g.builder.Build)
	if err != nil {
		return false, errors.WithMessage(err, "apply genesis")
	}
	if ok {
		log.Info("genesis applied", "name", g.preset.Name, "collections", len(g.preset.Collections), "feeds", len(g.preset.Feeds), "accounts", len(g.preset.Accounts))
	}
	return ok, nil
}

func (g *Genesis) build(st *state.State, collab *setypes.Collaborators) error {
	p := g.preset
	owner, _ := parseAddress(p.Owner)
	env := setypes.NewScriptEnv(nil, st, xenv.NewTransactionContext(owner, p.LaunchTime), meter.OracleModuleAddr, collab)

	o := oracle.New(meter.OracleModuleAddr, st)
	if err := o.Deploy(owner); err != nil {
		return errors.WithMessage(err, "deploy oracle")
	}
	if p.Oracle.StalenessThreshold > 0 {
		if err := o.SetStalenessThreshold(env, p.Oracle.StalenessThreshold); err != nil {
			return err
		}
	}
	for i, f := range p.Feeds {
		asset, _ := parseAddress(f.Asset)
		ref, _ := parseAddress(f.Ref)
		if err := o.SetPriceFeed(env, asset, ref); err != nil {
			return errors.WithMessagef(err, "feeds[%d]", i)
		}
	}

	fac := factory.New(meter.FactoryModuleAddr, st)
	if err := fac.Deploy(owner, meter.AuctionImplAddr); err != nil {
		return errors.WithMessage(err, "deploy factory")
	}
	if c := p.Factory; c != nil {
		recipient, _ := parseAddress(c.FeeRecipient)
		err := fac.SetConfig(env, &factory.Config{
			FeeBps:          c.FeeBps,
			FeeRecipient:    recipient,
			AntiSnipeWindow: c.AntiSnipeWindow,
			Extension:       c.Extension,
			StartTolerance:  c.StartTolerance,
		})
		if err != nil {
			return errors.WithMessage(err, "factory config")
		}
	}

	for i, c := range p.Collections {
		minter, _ := parseAddress(c.Minter)
		if minter.IsZero() {
			minter = owner
		}
		if err := nft.New(collectionAddress(i, c), st).Deploy(c.Name, c.Symbol, minter); err != nil {
			return errors.WithMessagef(err, "collections[%d]", i)
		}
	}

	for _, a := range p.Accounts {
		addr, _ := parseAddress(a.Address)
		token, _ := parseAddress(a.Token)
		balance, _ := new(big.Int).SetString(a.Balance, 10)
		st.AddBalance(token, addr, balance)
	}
	return st.Err()
}
