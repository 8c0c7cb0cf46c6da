// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const callTableSchema = `CREATE TABLE IF NOT EXISTS call (
	seq INTEGER PRIMARY KEY,
	time INTEGER NOT NULL,
	sender BLOB(20) NOT NULL,
	op TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS call_i_time ON call(time);
CREATE INDEX IF NOT EXISTS call_i_sender ON call(sender);
CREATE INDEX IF NOT EXISTS call_i_op ON call(op);
`

const transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	time INTEGER NOT NULL,
	farmID INTEGER NOT NULL,
	kind TEXT NOT NULL,
	assetContract BLOB(20) NOT NULL,
	assetTokenID INTEGER NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB,
	PRIMARY KEY (seq, transferIndex)
);

CREATE INDEX IF NOT EXISTS transfer_i_time ON transfer(time);
CREATE INDEX IF NOT EXISTS transfer_i_farm ON transfer(farmID);
CREATE INDEX IF NOT EXISTS transfer_i_sender ON transfer(sender);
CREATE INDEX IF NOT EXISTS transfer_i_recipient ON transfer(recipient);
`

const voteTableSchema = `CREATE TABLE IF NOT EXISTS vote (
	seq INTEGER NOT NULL,
	voteIndex INTEGER NOT NULL,
	time INTEGER NOT NULL,
	candidate BLOB(20) NOT NULL,
	weight BLOB,
	PRIMARY KEY (seq, voteIndex)
);

CREATE INDEX IF NOT EXISTS vote_i_candidate ON vote(candidate);
`
