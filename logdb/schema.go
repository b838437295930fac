// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq is the sequence number of the receipt that produced the row
const (
	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	time INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	topic4 BLOB(32),
	data BLOB,
	PRIMARY KEY (seq, eventIndex)
);
CREATE INDEX IF NOT EXISTS event_time ON event(time);
CREATE INDEX IF NOT EXISTS event_address ON event(address);
CREATE INDEX IF NOT EXISTS event_topic0 ON event(topic0);
CREATE INDEX IF NOT EXISTS event_topic1 ON event(topic1);
`

	transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	time INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32),
	token BLOB(20) NOT NULL,
	PRIMARY KEY (seq, transferIndex)
);
CREATE INDEX IF NOT EXISTS transfer_time ON transfer(time);
CREATE INDEX IF NOT EXISTS transfer_sender ON transfer(sender);
CREATE INDEX IF NOT EXISTS transfer_recipient ON transfer(recipient);
`
)
