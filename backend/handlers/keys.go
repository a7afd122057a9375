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
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/models"
)

// KeyHandler serves each member's own encrypted copy of a group key.
// The payload is opaque to the server.
type KeyHandler struct {
	service *graph.Service
}

func NewKeyHandler(service *graph.Service) *KeyHandler {
	return &KeyHandler{service: service}
}

func (h *KeyHandler) Store(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := models.ParseGroupID(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	var req struct {
		EncryptedKey []byte `json:"encrypted_key"`
		Nonce        string `json:"nonce"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.EncryptedKey) == 0 {
		http.Error(w, "Missing encrypted key", http.StatusBadRequest)
		return
	}

	rawNonce, err := base64.StdEncoding.DecodeString(req.Nonce)
	if err != nil || len(rawNonce) != 24 {
		http.Error(w, "Invalid nonce", http.StatusBadRequest)
		return
	}
	var nonce [24]byte
	copy(nonce[:], rawNonce)

	if err := h.service.StoreGroupKey(caller, groupID, req.EncryptedKey, nonce); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func (h *KeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := models.ParseGroupID(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	share, err := h.service.GroupKey(caller, groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group_id":      share.GroupID,
		"encrypted_key": share.EncryptedKey,
		"nonce":         base64.StdEncoding.EncodeToString(share.Nonce[:]),
	})
}

func (h *KeyHandler) Close(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := models.ParseGroupID(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	if err := h.service.CloseGroupKey(caller, groupID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
