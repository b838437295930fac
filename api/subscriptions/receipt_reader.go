// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/meterio/meter-auction/api/transactions"
	"github.com/meterio/meter-auction/tx"
)

type receiptReader struct{}

func (receiptReader) Backlog(context.Context) ([]interface{}, error) { return nil, nil }

func (receiptReader) Read(r *tx.Receipt) []interface{} {
	return []interface{}{transactions.ConvertReceipt(r)}
}
