// Package events defines the contract events coffer emits for every committed
// policy action. Events feed the per-account history store in-process and,
// when configured, a Kafka topic for downstream consumers. Keep the model
// transport-agnostic so stores and sinks can fan out.
package events

import (
	"time"

	id "coffer/pkg/domain"
)

// Action names a committed policy operation or notable threshold.
type Action string

const (
	// Budget events.
	ActionBudgetSet      Action = "budget_set"
	ActionBudgetCleared  Action = "budget_cleared"
	ActionSpendRecorded  Action = "spend_recorded"
	ActionBudgetExceeded Action = "budget_exceeded"

	// Vault events.
	ActionVaultOpened    Action = "vault_opened"
	ActionVaultDeposit   Action = "vault_deposit"
	ActionVaultMatured   Action = "vault_matured"
	ActionVaultWithdrawn Action = "vault_withdrawn"
	ActionVaultClosed    Action = "vault_closed"
	ActionHighValueGoal  Action = "high_value_goal"

	// Delegate events.
	ActionDelegateGranted Action = "delegate_granted"
	ActionDelegateRevoked Action = "delegate_revoked"
)

// Event captures one committed policy action.
type Event struct {
	Action    Action       `json:"action"`
	Account   id.AccountID `json:"account"`
	VaultID   *id.VaultID  `json:"vault_id,omitempty"`
	Amount    int64        `json:"amount,omitempty"`
	At        time.Time    `json:"at"`
	RequestID string       `json:"request_id,omitempty"`
}
