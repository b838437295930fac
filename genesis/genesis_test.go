// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meterio/meter-auction/builtin/nft"
	"github.com/meterio/meter-auction/builtin/oracle"
	"github.com/meterio/meter-auction/feed"
	"github.com/meterio/meter-auction/genesis"
	"github.com/meterio/meter-auction/lvldb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/runtime"
	"github.com/meterio/meter-auction/script/factory"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const presetYAML = `
name: testnet
launch_time: 1000
owner: "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
oracle:
  staleness_threshold: 600
factory:
  fee_bps: 250
  fee_recipient: "0x0000000000000000000000000000000000007e57"
  anti_snipe_window: 120
  extension: 60
  start_tolerance: 30
collections:
  - name: ComprehensiveNFT
    symbol: CNFT
feeds:
  - asset: "0x0000000000000000000000000000000000000000"
    ref: "0x00000000000000000000000000000000000000f1"
    decimals: 8
    description: "MTR / USD"
    answer: "200000000000"
accounts:
  - address: "0x00000000000000000000000000000000000000b0"
    balance: "5000"
rejecting:
  - "0x00000000000000000000000000000000000000c0"
`

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(presetYAML), 0600))

	p, err := genesis.LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", p.Name)
	assert.Equal(t, uint64(250), p.Factory.FeeBps)
	assert.Len(t, p.Feeds, 1)

	require.NoError(t, os.WriteFile(path, []byte(presetYAML+"unknown: 1\n"), 0600))
	_, err = genesis.LoadPreset(path)
	assert.Error(t, err, "unknown fields are rejected")
}

func TestValidate(t *testing.T) {
	valid := func() *genesis.Preset {
		return genesis.DevPreset(1000)
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(p *genesis.Preset)
		err    string
	}{
		{"no name", func(p *genesis.Preset) { p.Name = "" }, "name is required"},
		{"no owner", func(p *genesis.Preset) { p.Owner = "" }, "owner is required"},
		{"bad owner", func(p *genesis.Preset) { p.Owner = "0x12" }, "owner is not an address"},
		{"fee too high", func(p *genesis.Preset) { p.Factory = &genesis.FactoryConf{FeeBps: meter.MaxFeeBps + 1} }, "factory.fee_bps"},
		{"feed answer", func(p *genesis.Preset) { p.Feeds[1].Answer = "-1" }, "feeds[1].answer"},
		{"feed ref", func(p *genesis.Preset) { p.Feeds[0].Ref = "" }, "feeds[0].ref is required"},
		{"duplicate feed", func(p *genesis.Preset) { p.Feeds[1].Asset = p.Feeds[0].Asset }, "feeds[1].asset"},
		{"balance", func(p *genesis.Preset) { p.Accounts[2].Balance = "lots" }, "accounts[2].balance"},
		{"collection name", func(p *genesis.Preset) { p.Collections[0].Name = "" }, "collections[0].name is required"},
		{"rejecting", func(p *genesis.Preset) { p.Rejecting = []string{"nope"} }, "rejecting[0]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := valid()
			c.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.err)
		})
	}
}

func TestApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(presetYAML), 0600))
	p, err := genesis.LoadPreset(path)
	require.NoError(t, err)
	g, err := genesis.New(p)
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	feeds := feed.NewRegistry()
	receivers := setypes.NewReceivers()
	require.NoError(t, g.Register(feeds, receivers))

	rt, err := runtime.New(db, nil, &setypes.Collaborators{Feeds: feeds, Assets: nft.Resolve, Receivers: receivers}, func() uint64 { return 1000 })
	require.NoError(t, err)
	defer rt.Close()

	ok, err := g.Apply(rt)
	require.NoError(t, err)
	assert.True(t, ok)

	owner := meter.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	ref := meter.MustParseAddress("0x00000000000000000000000000000000000000f1")
	rejecting := meter.MustParseAddress("0x00000000000000000000000000000000000000c0")
	require.NoError(t, rt.View(func(st *state.State) error {
		o := oracle.New(meter.OracleModuleAddr, st)
		assert.Equal(t, owner, o.Owner())
		assert.Equal(t, uint64(600), o.StalenessThreshold())
		entry := o.PriceFeed(meter.NativeToken)
		assert.Equal(t, ref, entry.Feed)
		assert.Equal(t, uint8(8), entry.Decimals)

		cfg := factory.New(meter.FactoryModuleAddr, st).Config()
		assert.Equal(t, uint64(250), cfg.FeeBps)
		assert.Equal(t, uint64(120), cfg.AntiSnipeWindow)

		n := nft.New(meter.NFTModuleAddr, st)
		assert.Equal(t, "CNFT", n.Symbol())
		assert.Equal(t, int64(5000), st.GetBalance(meter.NativeToken, meter.MustParseAddress("0x00000000000000000000000000000000000000b0")).Int64())
		return nil
	}))
	_, rejects := receivers.Receiver(rejecting)
	assert.True(t, rejects)

	ok, err = g.Apply(rt)
	require.NoError(t, err)
	assert.False(t, ok, "applied once")
}
