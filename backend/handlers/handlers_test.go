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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukonchat/graph/backend/graph"
	"github.com/mukonchat/graph/backend/models"
	"github.com/mukonchat/graph/backend/storage/memory"
	redisstore "github.com/mukonchat/graph/backend/storage/redis"
)

// recordingNotifier captures published events instead of hitting redis.
type recordingNotifier struct {
	events        []redisstore.Event
	recipients    []models.Identity
	conversations []*models.Conversation
}

func (n *recordingNotifier) Notify(recipient models.Identity, event redisstore.Event) error {
	n.recipients = append(n.recipients, recipient)
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) CacheConversation(conv *models.Conversation) error {
	n.conversations = append(n.conversations, conv)
	return nil
}

func (n *recordingNotifier) CachedConversation(chatID models.ChatID) (*models.Conversation, error) {
	for _, conv := range n.conversations {
		if conv.ChatID == chatID {
			return conv, nil
		}
	}
	return nil, nil
}

type fixture struct {
	service  *graph.Service
	notifier *recordingNotifier
	router   *mux.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	service := graph.NewService(memory.NewStore(), graph.FullPolicy, log)
	notifier := &recordingNotifier{}

	contacts := NewContactHandler(service, notifier, log)
	profiles := NewProfileHandler(service)
	groups := NewGroupHandler(service, notifier, log)
	keys := NewKeyHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/contacts", contacts.List).Methods("GET")
	r.HandleFunc("/contacts/invite", contacts.Invite).Methods("POST")
	r.HandleFunc("/contacts/accept", contacts.Accept).Methods("POST")
	r.HandleFunc("/contacts/block", contacts.Block).Methods("POST")
	r.HandleFunc("/conversation/{chatId}", contacts.GetConversation).Methods("GET")
	r.HandleFunc("/profile", profiles.Register).Methods("POST")
	r.HandleFunc("/group/create", groups.Create).Methods("POST")
	r.HandleFunc("/group/{groupId}/invite", groups.Invite).Methods("POST")
	r.HandleFunc("/group/{groupId}/accept", groups.AcceptInvite).Methods("POST")
	r.HandleFunc("/group/{groupId}/key", keys.Store).Methods("PUT")
	r.HandleFunc("/group/{groupId}/key", keys.Get).Methods("GET")

	return &fixture{service: service, notifier: notifier, router: r}
}

// do issues a request as the given caller, mirroring what the auth
// middleware would put on the context.
func (f *fixture) do(t *testing.T, caller models.Identity, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(context.WithValue(req.Context(), "identity", caller))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestInviteEndpoint(t *testing.T) {
	f := newFixture(t)
	alice, bob := models.Identity{1}, models.Identity{2}
	hash := graph.ChatHash(alice, bob)

	rec := f.do(t, alice, "POST", "/contacts/invite", map[string]interface{}{
		"invitee":   bob,
		"chat_hash": hash,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, hash.String(), resp["chat_id"])

	// The invitee got notified and the conversation was cached.
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, redisstore.EventContactInvite, f.notifier.events[0].Type)
	assert.Equal(t, bob, f.notifier.recipients[0])
	require.Len(t, f.notifier.conversations, 1)
	assert.Equal(t, hash, f.notifier.conversations[0].ChatID)
}

func TestInviteEndpointConflict(t *testing.T) {
	f := newFixture(t)
	alice, bob := models.Identity{1}, models.Identity{2}
	hash := graph.ChatHash(alice, bob)
	body := map[string]interface{}{"invitee": bob, "chat_hash": hash}

	require.Equal(t, http.StatusOK, f.do(t, alice, "POST", "/contacts/invite", body).Code)

	rec := f.do(t, alice, "POST", "/contacts/invite", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, graph.ErrAlreadyInvited.Error(), resp["error"])
}

func TestInviteEndpointBadHash(t *testing.T) {
	f := newFixture(t)
	alice, bob := models.Identity{1}, models.Identity{2}

	rec := f.do(t, alice, "POST", "/contacts/invite", map[string]interface{}{
		"invitee":   bob,
		"chat_hash": models.ChatID{0xff},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlockWithoutRelationshipMapsToConflict(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, models.Identity{1}, "POST", "/contacts/block", map[string]interface{}{
		"peer": models.Identity{2},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestContactListEndpoint(t *testing.T) {
	f := newFixture(t)
	alice, bob := models.Identity{1}, models.Identity{2}
	hash := graph.ChatHash(alice, bob)
	require.Equal(t, http.StatusOK, f.do(t, alice, "POST", "/contacts/invite",
		map[string]interface{}{"invitee": bob, "chat_hash": hash}).Code)
	require.Equal(t, http.StatusOK, f.do(t, bob, "POST", "/contacts/accept",
		map[string]interface{}{"peer": alice}).Code)

	rec := f.do(t, alice, "GET", "/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Peers []models.Peer `json:"peers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Peers, 1)
	assert.Equal(t, bob, resp.Peers[0].Wallet)
	assert.Equal(t, models.PeerAccepted, resp.Peers[0].State)
}

func TestConversationEndpoint(t *testing.T) {
	f := newFixture(t)
	alice, bob := models.Identity{1}, models.Identity{2}
	hash := graph.ChatHash(alice, bob)
	require.Equal(t, http.StatusOK, f.do(t, alice, "POST", "/contacts/invite",
		map[string]interface{}{"invitee": bob, "chat_hash": hash}).Code)

	rec := f.do(t, alice, "GET", "/conversation/"+hash.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conv models.Conversation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conv))
	assert.Equal(t, [2]models.Identity{alice, bob}, conv.Participants)

	rec = f.do(t, alice, "GET", "/conversation/"+models.ChatID{0xee}.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, models.Identity{1}, "POST", "/profile", map[string]interface{}{
		"display_name":          "alice",
		"encryption_public_key": "not hex",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, models.Identity{1}, "POST", "/profile", map[string]interface{}{
		"display_name":          "alice",
		"encryption_public_key": models.Key32{0xaa}.String(),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGroupFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	creator, invitee := models.Identity{1}, models.Identity{2}

	rec := f.do(t, creator, "POST", "/group/create", map[string]interface{}{
		"name":              "lounge",
		"encryption_pubkey": models.Key32{9},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	gid := created["group_id"]
	require.NotEmpty(t, gid)

	rec = f.do(t, creator, "POST", "/group/"+gid+"/invite", map[string]interface{}{
		"invitee": invitee,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, f.notifier.events)
	assert.Equal(t, redisstore.EventGroupInvite, f.notifier.events[len(f.notifier.events)-1].Type)

	rec = f.do(t, invitee, "POST", "/group/"+gid+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	parsed, err := models.ParseGroupID(gid)
	require.NoError(t, err)
	group, err := f.service.Group(parsed)
	require.NoError(t, err)
	assert.True(t, group.HasMember(invitee))
}

func TestGroupKeyOverHTTP(t *testing.T) {
	f := newFixture(t)
	creator := models.Identity{1}

	rec := f.do(t, creator, "POST", "/group/create", map[string]interface{}{
		"name":              "lounge",
		"encryption_pubkey": models.Key32{9},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	gid := created["group_id"]

	rec = f.do(t, creator, "PUT", "/group/"+gid+"/key", map[string]interface{}{
		"encrypted_key": []byte("ciphertext"),
		"nonce":         "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", // 24 zero bytes
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, creator, "GET", "/group/"+gid+"/key", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var share struct {
		EncryptedKey []byte `json:"encrypted_key"`
		Nonce        string `json:"nonce"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&share))
	assert.Equal(t, []byte("ciphertext"), share.EncryptedKey)

	// Only the owner's own share comes back.
	rec = f.do(t, models.Identity{2}, "GET", "/group/"+gid+"/key", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestKeyEndpointRejectsBadNonce(t *testing.T) {
	f := newFixture(t)
	creator := models.Identity{1}

	rec := f.do(t, creator, "POST", "/group/create", map[string]interface{}{
		"name":              "lounge",
		"encryption_pubkey": models.Key32{9},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = f.do(t, creator, "PUT", "/group/"+created["group_id"]+"/key", map[string]interface{}{
		"encrypted_key": []byte("x"),
		"nonce":         "c2hvcnQ", // not 24 bytes
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
