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

package graph

// Policy selects which relationship transitions a deployment exposes.
// Two deployments of this contract exist: the full one, and a reduced
// one that has no blocking and only lets a pending invite be rejected
// (no removing an accepted contact). The reduced table is a strict
// subset of the full one.
type Policy struct {
	// AllowBlock enables Block and Unblock.
	AllowBlock bool
	// AllowUnfriend lets Reject remove an Accepted contact rather
	// than only a pending invite.
	AllowUnfriend bool
	// AllowTokenGates enables token-gated groups.
	AllowTokenGates bool
}

// FullPolicy is the canonical deployment.
var FullPolicy = Policy{AllowBlock: true, AllowUnfriend: true, AllowTokenGates: true}

// BasicPolicy is the reduced deployment.
var BasicPolicy = Policy{}
