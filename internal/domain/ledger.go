package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LedgerEntry represents one wallet allocation row in the append-only ledger.
// Corrections are recorded as new rows, never as updates.
type LedgerEntry struct {
	ID              uuid.UUID
	Symbol          string
	Group           *string
	Bucket          *string
	TargetPercent   *float64
	CurrentQuantity *float64
	LastPrice       *float64
	Notes           *string
	CreatedAt       time.Time
}

// Validate ensures the entry adheres to domain rules
func (e *LedgerEntry) Validate() error {
	if strings.TrimSpace(e.Symbol) == "" {
		return fmt.Errorf("%w: symbol cannot be empty", ErrValidation)
	}

	if e.TargetPercent != nil && (*e.TargetPercent < 0 || *e.TargetPercent > 100) {
		return fmt.Errorf("%w: target_percent must be between 0 and 100", ErrValidation)
	}

	if e.CurrentQuantity != nil && *e.CurrentQuantity < 0 {
		return fmt.Errorf("%w: current_quantity cannot be negative", ErrValidation)
	}

	if e.LastPrice != nil && *e.LastPrice < 0 {
		return fmt.Errorf("%w: last_price cannot be negative", ErrValidation)
	}

	return nil
}

// GroupName returns the group tag, "" when untagged
func (e *LedgerEntry) GroupName() string {
	return deref(e.Group)
}

// BucketName returns the bucket ("barca") tag, "" when untagged
func (e *LedgerEntry) BucketName() string {
	return deref(e.Bucket)
}

// Quantity returns the held quantity, 0 when absent
func (e *LedgerEntry) Quantity() float64 {
	if e.CurrentQuantity == nil {
		return 0
	}
	return *e.CurrentQuantity
}

// Target returns the target percent, 0 when absent
func (e *LedgerEntry) Target() float64 {
	if e.TargetPercent == nil {
		return 0
	}
	return *e.TargetPercent
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
