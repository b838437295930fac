// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/runtime"
)

type Node struct {
	rt      *runtime.Runtime
	network string
	version string
}

func New(rt *runtime.Runtime, network, version string) *Node {
	return &Node{
		rt,
		network,
		version,
	}
}

func (n *Node) Status() *Status {
	head := n.rt.Head()
	status := &Status{
		Network: n.network,
		Version: n.version,
		Head:    Head{Seq: head.Seq, Time: head.Time},
		Now:     n.rt.Now(),
		Modules: []*Module{},
	}
	for _, m := range n.rt.Engine().Modules() {
		status.Modules = append(status.Modules, &Module{ID: m.ID(), Name: m.Name()})
	}
	if db := n.rt.LogDB(); db != nil {
		status.LogDBDriver = db.DriverVersion()
	}
	return status
}

func (n *Node) handleStatus(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, n.Status())
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(n.handleStatus))
}
