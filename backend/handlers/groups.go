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
	"crypto/sha256"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/models"
	redisstore "github.com/mukonchat/graph/backend/storage/redis"
)

type GroupHandler struct {
	service *graph.Service
	events  Notifier
	log     *logrus.Logger
}

func NewGroupHandler(service *graph.Service, events Notifier, log *logrus.Logger) *GroupHandler {
	if log == nil {
		log = logrus.New()
	}
	return &GroupHandler{service: service, events: events, log: log}
}

func (h *GroupHandler) notify(recipient models.Identity, event redisstore.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Notify(recipient, event); err != nil {
		h.log.WithError(err).Warn("event publish failed")
	}
}

// notifyMembers fans an event out to every member except the actor.
func (h *GroupHandler) notifyMembers(members []models.Identity, actor models.Identity, event redisstore.Event) {
	for _, m := range members {
		if m != actor {
			h.notify(m, event)
		}
	}
}

// newGroupID derives a fresh group handle. Hashing the UUID keeps the
// handle the same width as every other identifier in the graph.
func newGroupID() models.GroupID {
	id := uuid.New()
	return models.GroupID(sha256.Sum256(id[:]))
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		GroupID          *models.GroupID   `json:"group_id,omitempty"`
		Name             string            `json:"name"`
		EncryptionPubkey models.Key32      `json:"encryption_pubkey"`
		TokenGate        *models.TokenGate `json:"token_gate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	groupID := newGroupID()
	if req.GroupID != nil {
		groupID = *req.GroupID
	}

	if err := h.service.CreateGroup(caller, groupID, req.Name, req.EncryptionPubkey, req.TokenGate); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"group_id": groupID.String()})
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		Name      *string           `json:"name,omitempty"`
		TokenGate *models.TokenGate `json:"token_gate,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateGroup(caller, groupID, req.Name, req.TokenGate); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *GroupHandler) Invite(w http.ResponseWriter, r *http.Request) {
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
		Invitee models.Identity `json:"invitee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.InviteToGroup(caller, req.Invitee, groupID); err != nil {
		writeError(w, err)
		return
	}

	h.notify(req.Invitee, redisstore.Event{
		Type:  redisstore.EventGroupInvite,
		From:  caller,
		Group: &groupID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "invited"})
}

func (h *GroupHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
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

	// An attestation is only needed for token-gated groups; an empty
	// body is valid for the rest.
	var req struct {
		Attestation *models.BalanceAttestation `json:"attestation,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.service.AcceptGroupInvite(caller, groupID, req.Attestation); err != nil {
		writeError(w, err)
		return
	}

	if group, err := h.service.Group(groupID); err == nil {
		h.notifyMembers(group.Members, caller, redisstore.Event{
			Type:  redisstore.EventGroupJoin,
			From:  caller,
			Group: &groupID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (h *GroupHandler) RejectInvite(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RejectGroupInvite(caller, groupID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.LeaveGroup(caller, groupID); err != nil {
		writeError(w, err)
		return
	}

	if group, err := h.service.Group(groupID); err == nil {
		h.notifyMembers(group.Members, caller, redisstore.Event{
			Type:  redisstore.EventGroupLeave,
			From:  caller,
			Group: &groupID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *GroupHandler) Kick(w http.ResponseWriter, r *http.Request) {
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
		Member models.Identity `json:"member"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.KickMember(caller, req.Member, groupID); err != nil {
		writeError(w, err)
		return
	}

	h.notify(req.Member, redisstore.Event{
		Type:  redisstore.EventGroupKick,
		From:  caller,
		Group: &groupID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "kicked"})
}

func (h *GroupHandler) Close(w http.ResponseWriter, r *http.Request) {
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

	// Snapshot members before the close wipes the record.
	var members []models.Identity
	if group, err := h.service.Group(groupID); err == nil {
		members = group.Members
	}

	if err := h.service.CloseGroup(caller, groupID); err != nil {
		writeError(w, err)
		return
	}

	h.notifyMembers(members, caller, redisstore.Event{
		Type:  redisstore.EventGroupClose,
		From:  caller,
		Group: &groupID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := models.ParseGroupID(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		return
	}

	group, err := h.service.Group(groupID)
	if err != nil {
		http.Error(w, "Group not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, group)
}
