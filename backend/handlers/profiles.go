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
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/models"
)

type ProfileHandler struct {
	service *graph.Service
}

func NewProfileHandler(service *graph.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		DisplayName         string `json:"display_name"`
		AvatarData          string `json:"avatar_data"`
		EncryptionPublicKey string `json:"encryption_public_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	encKey, err := models.ParseKey32(req.EncryptionPublicKey)
	if err != nil {
		http.Error(w, "Invalid encryption public key", http.StatusBadRequest)
		return
	}

	if err := h.service.Register(caller, req.DisplayName, req.AvatarData, encKey); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"owner": caller.String()})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		DisplayName         *string            `json:"display_name,omitempty"`
		AvatarType          *models.AvatarType `json:"avatar_type,omitempty"`
		AvatarData          *string            `json:"avatar_data,omitempty"`
		EncryptionPublicKey *string            `json:"encryption_public_key,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := graph.ProfileUpdate{
		DisplayName: req.DisplayName,
		AvatarType:  req.AvatarType,
		AvatarData:  req.AvatarData,
	}
	if req.EncryptionPublicKey != nil {
		encKey, err := models.ParseKey32(*req.EncryptionPublicKey)
		if err != nil {
			http.Error(w, "Invalid encryption public key", http.StatusBadRequest)
			return
		}
		update.EncryptionPublicKey = &encKey
	}

	if err := h.service.UpdateProfile(caller, update); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := models.ParseIdentity(mux.Vars(r)["identity"])
	if err != nil {
		http.Error(w, "Invalid identity", http.StatusBadRequest)
		return
	}

	profile, err := h.service.Profile(owner)
	if err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Close(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.CloseProfile(caller); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
