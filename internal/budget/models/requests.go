package models

import (
	"strings"
	"time"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// SetBudgetRequest is the payload for replacing an account's budget config.
type SetBudgetRequest struct {
	Limit    int64      `json:"limit"`
	Period   PeriodKind `json:"period"`
	Length   string     `json:"length,omitempty"` // custom periods: Go duration string
	Category string     `json:"category,omitempty"`
}

func (r *SetBudgetRequest) Normalize() {
	if r == nil {
		return
	}
	r.Period = PeriodKind(strings.TrimSpace(strings.ToLower(string(r.Period))))
	r.Length = strings.TrimSpace(r.Length)
	r.Category = strings.TrimSpace(r.Category)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *SetBudgetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.Category) > MaxCategoryLength {
		return dErrors.New(dErrors.CodeValidation, "category must be 64 characters or less")
	}

	if r.Period == "" {
		return dErrors.New(dErrors.CodeValidation, "period is required")
	}
	if r.Limit <= 0 {
		return dErrors.New(dErrors.CodeValidation, "limit must be positive")
	}

	period, err := r.ParsedPeriod()
	if err != nil {
		return err
	}
	return period.Validate()
}

// ParsedPeriod converts the wire form into the domain Period.
func (r *SetBudgetRequest) ParsedPeriod() (Period, error) {
	period := Period{Kind: r.Period}
	if r.Length != "" {
		length, err := time.ParseDuration(r.Length)
		if err != nil {
			return Period{}, dErrors.Wrap(err, dErrors.CodeValidation, "length must be a valid duration")
		}
		period.Length = length
	}
	return period, nil
}

// SpendRequest is the payload for recording a spend against an account.
type SpendRequest struct {
	Amount int64 `json:"amount"`
}

func (r *SpendRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Amount < 0 {
		return dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}
	return nil
}

// BatchAllocateItem assigns one account's budget inside a batch allocation.
type BatchAllocateItem struct {
	Account  string     `json:"account"`
	Limit    int64      `json:"limit"`
	Period   PeriodKind `json:"period"`
	Length   string     `json:"length,omitempty"`
	Category string     `json:"category,omitempty"`
}

// MaxBatchSize bounds one batch allocation call.
const MaxBatchSize = 100

// BatchAllocateRequest assigns budgets to many accounts in one call.
type BatchAllocateRequest struct {
	Items []BatchAllocateItem `json:"items"`
}

func (r *BatchAllocateRequest) Validate() error {
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
	Account string `json:"account"`
	Error   string `json:"error,omitempty"`
}

// BatchAllocateResult summarizes a batch allocation. TotalAllocated
// saturates rather than overflowing when summing very large limits.
type BatchAllocateResult struct {
	Successful     int               `json:"successful"`
	Failed         int               `json:"failed"`
	TotalAllocated int64             `json:"total_allocated"`
	Results        []BatchItemResult `json:"results"`
}

// ToConfig validates one item and builds its config.
func (i BatchAllocateItem) ToConfig(now time.Time) (*Config, error) {
	account, err := id.ParseAccountID(i.Account)
	if err != nil {
		return nil, err
	}
	req := SetBudgetRequest{Limit: i.Limit, Period: i.Period, Length: i.Length, Category: i.Category}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	period, err := req.ParsedPeriod()
	if err != nil {
		return nil, err
	}
	return NewConfig(account, i.Limit, period, req.Category, now)
}
