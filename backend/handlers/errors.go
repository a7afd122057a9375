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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mukonchat/graph/backend/graph"
)

// statusForError maps the graph's typed errors onto HTTP statuses.
// Everything here is a caller-input or precondition failure; anything
// unmapped is a server fault.
var statusForError = map[error]int{
	graph.ErrInvalidHash:              http.StatusBadRequest,
	graph.ErrDisplayNameTooLong:       http.StatusBadRequest,
	graph.ErrGroupNameTooLong:         http.StatusBadRequest,
	graph.ErrTokenAccountRequired:     http.StatusBadRequest,
	graph.ErrInvalidTokenAccount:      http.StatusBadRequest,
	graph.ErrAlreadyInvited:           http.StatusConflict,
	graph.ErrNotInvited:               http.StatusConflict,
	graph.ErrNotRequested:             http.StatusConflict,
	graph.ErrGroupFull:                http.StatusConflict,
	graph.ErrGroupExists:              http.StatusConflict,
	graph.ErrProfileExists:            http.StatusConflict,
	graph.ErrNotGroupMember:           http.StatusConflict,
	graph.ErrInsufficientTokenBalance: http.StatusForbidden,
	graph.ErrNotGroupAdmin:            http.StatusForbidden,
	graph.ErrCannotRemoveCreator:      http.StatusForbidden,
	graph.ErrUnauthorized:             http.StatusForbidden,
}

func writeError(w http.ResponseWriter, err error) {
	for sentinel, status := range statusForError {
		if errors.Is(err, sentinel) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": sentinel.Error()})
			return
		}
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
