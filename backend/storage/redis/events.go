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

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mukonchat/graph/backend/models"
)

const (
	// ConversationTTL bounds the cached copy; the durable record
	// lives in Postgres.
	ConversationTTL = 7 * 24 * time.Hour

	// Redis key prefixes
	notifyPrefix       = "graph:notify:" // graph:notify:{identity} - pub/sub channel
	conversationPrefix = "graph:conv:"   // graph:conv:{chatId} - cached conversation
)

// Event types published to peers so their clients can refresh the
// encrypted mirrors they maintain.
const (
	EventContactInvite  = "contact_invite"
	EventContactAccept  = "contact_accept"
	EventContactReject  = "contact_reject"
	EventContactBlock   = "contact_block"
	EventContactUnblock = "contact_unblock"
	EventGroupInvite    = "group_invite"
	EventGroupJoin      = "group_join"
	EventGroupLeave     = "group_leave"
	EventGroupKick      = "group_kick"
	EventGroupClose     = "group_close"
)

// Event is the payload pushed to a peer's notify channel.
type Event struct {
	Type  string          `json:"type"`
	From  models.Identity `json:"from"`
	Chat  *models.ChatID  `json:"chat,omitempty"`
	Group *models.GroupID `json:"group,omitempty"`
}

// EventBus fans relationship and group events out to the affected
// identities and caches conversation records for cheap lookup.
type EventBus struct {
	rdb *redis.Client
	ctx context.Context
}

func NewEventBus(rdb *redis.Client) *EventBus {
	return &EventBus{
		rdb: rdb,
		ctx: context.Background(),
	}
}

// Notify publishes an event to the recipient's channel. Best-effort:
// clients that miss it resync from the durable store on reconnect.
func (b *EventBus) Notify(recipient models.Identity, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(b.ctx, notifyPrefix+recipient.String(), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// CacheConversation stores a refreshed conversation record with TTL.
func (b *EventBus) CacheConversation(conv *models.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	key := conversationPrefix + conv.ChatID.String()
	if err := b.rdb.Set(b.ctx, key, data, ConversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache conversation: %w", err)
	}
	return nil
}

// CachedConversation returns the cached record, or nil on a miss.
func (b *EventBus) CachedConversation(chatID models.ChatID) (*models.Conversation, error) {
	data, err := b.rdb.Get(b.ctx, conversationPrefix+chatID.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached conversation: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}
