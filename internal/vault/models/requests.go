package models

import (
	"strings"
	"time"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// OpenVaultRequest is the payload for opening a savings vault.
type OpenVaultRequest struct {
	Name       string     `json:"name"`
	Goal       int64      `json:"goal,omitempty"`
	TargetDate time.Time  `json:"target_date,omitzero"`
	LockPolicy LockPolicy `json:"lock_policy"`
}

func (r *OpenVaultRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.LockPolicy = LockPolicy(strings.TrimSpace(strings.ToLower(string(r.LockPolicy))))
	if r.LockPolicy == "" {
		r.LockPolicy = LockFlexible
	}
}

func (r *OpenVaultRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Name) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !r.LockPolicy.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "lock policy must be flexible, until_date, or until_goal")
	}
	if r.Goal < 0 {
		return dErrors.New(dErrors.CodeValidation, "goal cannot be negative")
	}
	return nil
}

// MoveRequest is the payload for deposits and withdrawals.
type MoveRequest struct {
	Amount int64 `json:"amount"`
}

func (r *MoveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

// BatchOpenItem opens one vault inside a batch call.
type BatchOpenItem struct {
	Account    string     `json:"account"`
	Name       string     `json:"name"`
	Goal       int64      `json:"goal,omitempty"`
	TargetDate time.Time  `json:"target_date,omitzero"`
	LockPolicy LockPolicy `json:"lock_policy"`
}

// MaxBatchSize bounds one batch open call.
const MaxBatchSize = 100

// BatchOpenRequest opens vaults for many accounts in one call.
type BatchOpenRequest struct {
	Items []BatchOpenItem `json:"items"`
}

func (r *BatchOpenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "batch cannot be empty")
	}
	if len(r.Items) > MaxBatchSize {
		return dErrors.Newf(dErrors.CodeValidation, "batch exceeds maximum size of %d", MaxBatchSize)
	}
	return nil
}

// BatchItemResult reports one item's outcome; Error is empty on success.
type BatchItemResult struct {
	Account string     `json:"account"`
	VaultID id.VaultID `json:"vault_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// BatchOpenResult summarizes a batch open. TotalGoal saturates rather than
// overflowing when summing very large goals; AvgGoal is the mean goal across
// successful items, zero when none succeed.
type BatchOpenResult struct {
	TotalRequests int               `json:"total_requests"`
	Successful    int               `json:"successful"`
	Failed        int               `json:"failed"`
	TotalGoal     int64             `json:"total_goal"`
	AvgGoal       int64             `json:"avg_goal"`
	Results       []BatchItemResult `json:"results"`
}
