// Package models defines the per-account action history.
package models

import (
	"time"

	"github.com/google/uuid"

	id "coffer/pkg/domain"
	"coffer/pkg/platform/events"
)

// Entry is one recorded policy action. Entries are append-only; nothing in
// the system updates or deletes them.
type Entry struct {
	ID      uuid.UUID     `json:"id"`
	Account id.AccountID  `json:"account"`
	Action  events.Action `json:"action"`
	Amount  int64         `json:"amount,omitempty"`
	VaultID *id.VaultID   `json:"vault_id,omitempty"`
	At      time.Time     `json:"at"`
}

// FromEvent builds an Entry from a committed event.
func FromEvent(event events.Event) *Entry {
	return &Entry{
		ID:      uuid.New(),
		Account: event.Account,
		Action:  event.Action,
		Amount:  event.Amount,
		VaultID: event.VaultID,
		At:      event.At,
	}
}
