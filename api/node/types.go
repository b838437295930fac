// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

type Head struct {
	Seq  uint32 `json:"seq"`
	Time uint64 `json:"time"`
}

type Module struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

type Status struct {
	Network     string    `json:"network"`
	Version     string    `json:"version"`
	Head        Head      `json:"head"`
	Now         uint64    `json:"now"`
	Modules     []*Module `json:"modules"`
	LogDBDriver string    `json:"logDBDriver"`
}
