// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"fmt"
	"strings"
)

// query builds a select over one table from ANDed conditions.
type query struct {
	table string
	index string // per seq row index column
	conds []string
	args  []interface{}
	order Order
	opts  *Options
}

func newQuery(table, index string) *query {
	return &query{table: table, index: index}
}

func (q *query) where(cond string, args ...interface{}) *query {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
	return q
}

func (q *query) inRange(r *Range) *query {
	if r == nil {
		return q
	}
	col := "seq"
	if r.Unit == Time {
		col = "time"
	}
	q.where(col+" >= ?", r.From)
	// an upper bound below the lower bound is ignored
	if r.To >= r.From {
		q.where(col+" <= ?", r.To)
	}
	return q
}

// anyOf adds the OR of groups, each group being ANDed columns. An empty
// group matches everything.
func (q *query) anyOf(groups []columns) *query {
	if len(groups) == 0 {
		return q
	}
	alts := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			alts = append(alts, "1")
			continue
		}
		parts := make([]string, 0, len(g))
		for _, c := range g {
			parts = append(parts, c.name+" = ?")
			q.args = append(q.args, c.value)
		}
		alts = append(alts, "("+strings.Join(parts, " AND ")+")")
	}
	q.conds = append(q.conds, "("+strings.Join(alts, " OR ")+")")
	return q
}

func (q *query) sorted(order Order) *query {
	q.order = order
	return q
}

func (q *query) paged(opts *Options) *query {
	q.opts = opts
	return q
}

func (q *query) build(selection string) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selection, q.table)
	if len(q.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conds, " AND "))
	}
	dir := "ASC"
	if q.order == DESC {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY seq %s, %s %s", dir, q.index, dir)

	args := q.args
	if q.opts != nil {
		b.WriteString(" LIMIT ?, ?")
		args = append(args, q.opts.Offset, q.opts.Limit)
	}
	return b.String(), args
}

type column struct {
	name  string
	value []byte
}

type columns []column

func (cs columns) with(name string, value []byte) columns {
	return append(cs, column{name, value})
}
