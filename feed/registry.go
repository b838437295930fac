// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feed

import (
	"fmt"
	"sort"
	"sync"

	"github.com/meterio/meter-auction/meter"
)

// Registry holds the aggregators reachable from the node, keyed by reference.
type Registry struct {
	feeds sync.Map
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an aggregator under ref; a reference can only be taken once.
func (r *Registry) Register(ref meter.Address, agg Aggregator) error {
	if ref.IsZero() {
		return fmt.Errorf("feed reference must not be zero")
	}
	if _, loaded := r.feeds.LoadOrStore(ref, agg); loaded {
		return fmt.Errorf("feed %v is already registered", ref)
	}
	return nil
}

func (r *Registry) Resolve(ref meter.Address) (Aggregator, bool) {
	v, ok := r.feeds.Load(ref)
	if !ok {
		return nil, false
	}
	return v.(Aggregator), true
}

// References lists registered feed references in byte order.
func (r *Registry) References() []meter.Address {
	refs := make([]meter.Address, 0)
	r.feeds.Range(func(k, _ interface{}) bool {
		refs = append(refs, k.(meter.Address))
		return true
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs
}
