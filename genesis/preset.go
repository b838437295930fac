// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Preset describes the initial ledger of a network.
type Preset struct {
	Name        string       `yaml:"name"`
	LaunchTime  uint64       `yaml:"launch_time"`
	Owner       string       `yaml:"owner"`
	Oracle      OracleConfig `yaml:"oracle"`
	Factory     *FactoryConf `yaml:"factory"`
	Collections []Collection `yaml:"collections"`
	Feeds       []FeedConf   `yaml:"feeds"`
	Accounts    []Account    `yaml:"accounts"`
	Rejecting   []string     `yaml:"rejecting"` // accounts refusing direct payments
}

type OracleConfig struct {
	StalenessThreshold uint64 `yaml:"staleness_threshold"`
}

type FactoryConf struct {
	FeeBps          uint64 `yaml:"fee_bps"`
	FeeRecipient    string `yaml:"fee_recipient"`
	AntiSnipeWindow uint64 `yaml:"anti_snipe_window"`
	Extension       uint64 `yaml:"extension"`
	StartTolerance  uint64 `yaml:"start_tolerance"`
}

type Collection struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
	Symbol  string `yaml:"symbol"`
	Minter  string `yaml:"minter"`
}

type FeedConf struct {
	Asset       string `yaml:"asset"`
	Ref         string `yaml:"ref"`
	Decimals    uint8  `yaml:"decimals"`
	Description string `yaml:"description"`
	Answer      string `yaml:"answer"`
}

type Account struct {
	Address string `yaml:"address"`
	Token   string `yaml:"token"`
	Balance string `yaml:"balance"`
}

// LoadPreset reads and validates a yaml preset.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read preset")
	}
	var p Preset
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrapf(err, "parse preset %v", path)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "preset %v", path)
	}
	return &p, nil
}

// Validate checks that all required fields are set and values are valid.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if err := validateAddress("owner", p.Owner, true); err != nil {
		return err
	}
	if f := p.Factory; f != nil {
		if f.FeeBps > meter.MaxFeeBps {
			return errors.Errorf("factory.fee_bps must be <= %d, got %d", meter.MaxFeeBps, f.FeeBps)
		}
		if err := validateAddress("factory.fee_recipient", f.FeeRecipient, false); err != nil {
			return err
		}
	}
	seen := make(map[meter.Address]bool)
	for i, c := range p.Collections {
		prefix := fmt.Sprintf("collections[%d]", i)
		if err := validateAddress(prefix+".address", c.Address, false); err != nil {
			return err
		}
		addr := collectionAddress(i, c)
		if seen[addr] {
			return errors.Errorf("%s.address %v is duplicated", prefix, addr)
		}
		seen[addr] = true
		if c.Name == "" {
			return errors.Errorf("%s.name is required", prefix)
		}
		if err := validateAddress(prefix+".minter", c.Minter, false); err != nil {
			return err
		}
	}
	assets := make(map[meter.Address]bool)
	for i, f := range p.Feeds {
		prefix := fmt.Sprintf("feeds[%d]", i)
		if err := validateAddress(prefix+".asset", f.Asset, false); err != nil {
			return err
		}
		if err := validateAddress(prefix+".ref", f.Ref, true); err != nil {
			return err
		}
		asset, _ := parseAddress(f.Asset)
		if assets[asset] {
			return errors.Errorf("%s.asset %v is duplicated", prefix, asset)
		}
		assets[asset] = true
		if f.Decimals > 36 {
			return errors.Errorf("%s.decimals must be <= 36, got %d", prefix, f.Decimals)
		}
		if v, ok := new(big.Int).SetString(f.Answer, 10); !ok || v.Sign() <= 0 {
			return errors.Errorf("%s.answer must be a positive integer, got %q", prefix, f.Answer)
		}
	}
	for i, a := range p.Accounts {
		prefix := fmt.Sprintf("accounts[%d]", i)
		if err := validateAddress(prefix+".address", a.Address, true); err != nil {
			return err
		}
		if err := validateAddress(prefix+".token", a.Token, false); err != nil {
			return err
		}
		if v, ok := new(big.Int).SetString(a.Balance, 10); !ok || v.Sign() < 0 {
			return errors.Errorf("%s.balance must be a non-negative integer, got %q", prefix, a.Balance)
		}
	}
	for i, r := range p.Rejecting {
		if err := validateAddress(fmt.Sprintf("rejecting[%d]", i), r, true); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(field, s string, required bool) error {
	if s == "" {
		if required {
			return errors.Errorf("%s is required", field)
		}
		return nil
	}
	if _, err := meter.ParseAddress(s); err != nil {
		return errors.Errorf("%s is not an address: %q", field, s)
	}
	return nil
}

// parseAddress parses a validated, possibly empty, address.
func parseAddress(s string) (meter.Address, error) {
	if s == "" {
		return meter.Address{}, nil
	}
	return meter.ParseAddress(s)
}

// the first collection defaults to the builtin address
func collectionAddress(i int, c Collection) meter.Address {
	if addr, _ := parseAddress(c.Address); !addr.IsZero() {
		return addr
	}
	if i == 0 {
		return meter.NFTModuleAddr
	}
	return meter.BytesToAddress([]byte(c.Symbol))
}
