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
	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/models"
	redisstore "github.com/mukonchat/graph/backend/storage/redis"
)

// Notifier fans events out to affected identities and fronts the
// conversation cache. Best-effort: a failed publish or cache op never
// fails the operation that triggered it.
type Notifier interface {
	Notify(recipient models.Identity, event redisstore.Event) error
	CacheConversation(conv *models.Conversation) error
	CachedConversation(chatID models.ChatID) (*models.Conversation, error)
}

type ContactHandler struct {
	service *graph.Service
	events  Notifier
	log     *logrus.Logger
}

func NewContactHandler(service *graph.Service, events Notifier, log *logrus.Logger) *ContactHandler {
	if log == nil {
		log = logrus.New()
	}
	return &ContactHandler{service: service, events: events, log: log}
}

func (h *ContactHandler) notify(recipient models.Identity, event redisstore.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Notify(recipient, event); err != nil {
		h.log.WithError(err).Warn("event publish failed")
	}
}

func (h *ContactHandler) Invite(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Invitee  models.Identity `json:"invitee"`
		ChatHash models.ChatID   `json:"chat_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Invite(caller, req.Invitee, req.ChatHash); err != nil {
		writeError(w, err)
		return
	}

	h.notify(req.Invitee, redisstore.Event{
		Type: redisstore.EventContactInvite,
		From: caller,
		Chat: &req.ChatHash,
	})
	if h.events != nil {
		if conv, err := h.service.Conversation(req.ChatHash); err == nil {
			if err := h.events.CacheConversation(conv); err != nil {
				h.log.WithError(err).Warn("conversation cache failed")
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"chat_id": req.ChatHash.String()})
}

func (h *ContactHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, redisstore.EventContactAccept, h.service.Accept)
}

func (h *ContactHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, redisstore.EventContactReject, h.service.Reject)
}

func (h *ContactHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, redisstore.EventContactBlock, h.service.Block)
}

func (h *ContactHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, redisstore.EventContactUnblock, h.service.Unblock)
}

// transition handles the four peer-targeted operations, which only
// differ in the service call and the event type.
func (h *ContactHandler) transition(w http.ResponseWriter, r *http.Request, eventType string, op func(subject, peer models.Identity) error) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Peer models.Identity `json:"peer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := op(caller, req.Peer); err != nil {
		writeError(w, err)
		return
	}

	h.notify(req.Peer, redisstore.Event{Type: eventType, From: caller})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	peers, err := h.service.Contacts(caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"owner": caller,
		"peers": peers,
	})
}

func (h *ContactHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	chatID, err := models.ParseChatID(mux.Vars(r)["chatId"])
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	// Cache first; a miss or a cache failure falls through to the
	// durable store.
	if h.events != nil {
		if conv, err := h.events.CachedConversation(chatID); err == nil && conv != nil {
			writeJSON(w, http.StatusOK, conv)
			return
		}
	}

	conv, err := h.service.Conversation(chatID)
	if err != nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if h.events != nil {
		if err := h.events.CacheConversation(conv); err != nil {
			h.log.WithError(err).Warn("conversation cache failed")
		}
	}

	writeJSON(w, http.StatusOK, conv)
}
