// Copyright (C) 2025 Mukon Labs <dev@mukon.chat>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package postgres

func (s *Store) Migrate() error {
	migrations := []string{
		// Relationship records, one row per identity
		`CREATE TABLE IF NOT EXISTS wallet_descriptors (
			owner BYTEA PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Peer entries, one row per (owner, peer)
		`CREATE TABLE IF NOT EXISTS peers (
			owner BYTEA NOT NULL REFERENCES wallet_descriptors(owner) ON DELETE CASCADE,
			peer BYTEA NOT NULL,
			state SMALLINT NOT NULL,
			PRIMARY KEY (owner, peer)
		)`,

		// Profiles
		`CREATE TABLE IF NOT EXISTS profiles (
			owner BYTEA PRIMARY KEY,
			display_name VARCHAR(32) NOT NULL,
			avatar_type SMALLINT NOT NULL DEFAULT 0,
			avatar_data TEXT NOT NULL DEFAULT '',
			encryption_public_key BYTEA NOT NULL
		)`,

		// Conversations keyed by chat hash
		`CREATE TABLE IF NOT EXISTS conversations (
			chat_id BYTEA PRIMARY KEY,
			participant1 BYTEA NOT NULL,
			participant2 BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Groups
		`CREATE TABLE IF NOT EXISTS groups (
			group_id BYTEA PRIMARY KEY,
			creator BYTEA NOT NULL,
			name VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			encryption_pubkey BYTEA NOT NULL,
			gate_asset BYTEA,
			gate_min_balance BIGINT
		)`,

		// Ordered membership
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id BYTEA NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
			member BYTEA NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (group_id, member)
		)`,

		// One live invite per (group, invitee)
		`CREATE TABLE IF NOT EXISTS group_invites (
			group_id BYTEA NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
			inviter BYTEA NOT NULL,
			invitee BYTEA NOT NULL,
			status SMALLINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (group_id, invitee)
		)`,

		// Per-member opaque key blobs
		`CREATE TABLE IF NOT EXISTS group_key_shares (
			group_id BYTEA NOT NULL REFERENCES groups(group_id) ON DELETE CASCADE,
			member BYTEA NOT NULL,
			encrypted_key BYTEA NOT NULL,
			nonce BYTEA NOT NULL,
			PRIMARY KEY (group_id, member)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_group_members_position
		ON group_members(group_id, position)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
		s.log.WithField("migration", i).Debug("applied")
	}

	return nil
}
