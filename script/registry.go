// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"fmt"
	"sort"
	"sync"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// ModuleHandler executes the payload of a clause addressed to `to`.
type ModuleHandler func(env *setypes.ScriptEnv, payload []byte, to meter.Address) error

// Module is one handler the engine dispatches to by ID.
type Module struct {
	modName    string
	modID      uint32
	modHandler ModuleHandler
}

func (m *Module) Name() string { return m.modName }
func (m *Module) ID() uint32   { return m.modID }

func (m *Module) ToString() string {
	return fmt.Sprintf("Module::: Name: %v, ID: %v", m.modName, m.modID)
}

// Registry holds the modules of an engine keyed by ID. Registration
// happens at engine start, lookups on every clause.
type Registry struct {
	mu   sync.RWMutex
	mods map[uint32]*Module
}

func (r *Registry) Register(modID uint32, p *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mods == nil {
		r.mods = make(map[uint32]*Module)
	}
	if _, dup := r.mods[modID]; dup {
		return errors.Errorf("module %v already registered", modID)
	}
	r.mods[modID] = p
	return nil
}

func (r *Registry) Find(modID uint32) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mods[modID]
	return m, ok
}

// All returns copies of the registered modules ordered by ID.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Module, 0, len(r.mods))
	for _, m := range r.mods {
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].modID < all[j].modID })
	return all
}
