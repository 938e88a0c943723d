package models

import (
	"time"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// PeriodKind enumerates the recurring windows a spending limit resets over.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodCustom  PeriodKind = "custom"
)

// IsValid checks if the period kind is one of the supported enum values.
func (k PeriodKind) IsValid() bool {
	switch k {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodCustom:
		return true
	}
	return false
}

// Period is the recurring window over which a spending limit resets.
// Length is used only by PeriodCustom; calendar kinds follow the calendar,
// so a monthly period starting Jan 31 rolls on the month boundary, not on a
// fixed duration.
type Period struct {
	Kind   PeriodKind    `json:"kind"`
	Length time.Duration `json:"length,omitempty"`
}

// Validate enforces the period invariants.
func (p Period) Validate() error {
	if !p.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "period kind must be daily, weekly, monthly, or custom")
	}
	if p.Kind == PeriodCustom && p.Length <= 0 {
		return dErrors.New(dErrors.CodeValidation, "custom period requires a positive length")
	}
	if p.Kind != PeriodCustom && p.Length != 0 {
		return dErrors.New(dErrors.CodeValidation, "length is only valid for custom periods")
	}
	return nil
}

// next returns the start of the period following one starting at t.
func (p Period) next(t time.Time) time.Time {
	switch p.Kind {
	case PeriodDaily:
		return t.AddDate(0, 0, 1)
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.Add(p.Length)
	}
}

// MaxCategoryLength bounds the optional category label.
const MaxCategoryLength = 64

// Config is a per-account spending limit. Invariant at every committed
// state: 0 <= Spent <= Limit.
type Config struct {
	Account     id.AccountID `json:"account"`
	Category    string       `json:"category,omitempty"`
	Limit       int64        `json:"limit"`
	Period      Period       `json:"period"`
	PeriodStart time.Time    `json:"period_start"`
	Spent       int64        `json:"spent"`
}

// NewConfig creates a Config with domain invariant validation. The period
// starts at now with nothing spent.
func NewConfig(account id.AccountID, limit int64, period Period, category string, now time.Time) (*Config, error) {
	if account.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account cannot be empty")
	}
	if limit <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be positive")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if len(category) > MaxCategoryLength {
		return nil, dErrors.New(dErrors.CodeValidation, "category must be 64 characters or less")
	}
	return &Config{
		Account:     account,
		Category:    category,
		Limit:       limit,
		Period:      period,
		PeriodStart: now,
		Spent:       0,
	}, nil
}

// RollForward applies the lazy period rollover: it advances PeriodStart to
// the period containing now — stepping over every elapsed period, not just
// one — and resets Spent when at least one boundary was crossed. No
// background timer exists in this model; rollover happens exactly here, on
// the next operation that touches the config. The caller decides whether the
// rolled state is persisted (mutating calls) or discarded (reads).
func (c *Config) RollForward(now time.Time) (rolled bool) {
	for next := c.Period.next(c.PeriodStart); !now.Before(next); next = c.Period.next(c.PeriodStart) {
		c.PeriodStart = next
		rolled = true
	}
	if rolled {
		c.Spent = 0
	}
	return rolled
}

// PeriodEnd returns the exclusive end of the current period.
func (c *Config) PeriodEnd() time.Time {
	return c.Period.next(c.PeriodStart)
}

// Remaining is the read-model returned by the remaining-budget query.
// Limited is false when the account has no budget config, in which case
// spends are unconstrained and the other fields are zero.
type Remaining struct {
	Account     id.AccountID `json:"account"`
	Limited     bool         `json:"limited"`
	Category    string       `json:"category,omitempty"`
	Limit       int64        `json:"limit,omitempty"`
	Spent       int64        `json:"spent,omitempty"`
	Remaining   int64        `json:"remaining,omitempty"`
	PeriodStart time.Time    `json:"period_start,omitzero"`
	PeriodEnd   time.Time    `json:"period_end,omitzero"`
}

// SpendReceipt reports a committed spend. Remaining is meaningful only when
// Limited is true.
type SpendReceipt struct {
	Account   id.AccountID `json:"account"`
	Amount    int64        `json:"amount"`
	Limited   bool         `json:"limited"`
	Remaining int64        `json:"remaining,omitempty"`
}
