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

import "errors"

// Operation errors. All of them are precondition violations against
// committed state or bad caller input; none is transient, so there is
// no retry behavior anywhere in this package. An operation that returns
// one of these has written nothing.
var (
	ErrAlreadyInvited           = errors.New("already invited")
	ErrNotInvited               = errors.New("not invited")
	ErrNotRequested             = errors.New("not requested")
	ErrInvalidHash              = errors.New("invalid hash")
	ErrDisplayNameTooLong       = errors.New("display name too long")
	ErrGroupNameTooLong         = errors.New("group name too long")
	ErrGroupFull                = errors.New("group is full")
	ErrNotGroupMember           = errors.New("not a group member")
	ErrNotGroupAdmin            = errors.New("not group admin")
	ErrCannotRemoveCreator      = errors.New("cannot remove creator")
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")
	ErrTokenAccountRequired     = errors.New("token account required")
	ErrInvalidTokenAccount      = errors.New("token account does not belong to user")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrGroupExists              = errors.New("group already exists")
	ErrProfileExists            = errors.New("profile already exists")
)
