package dca

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a DCA strategy
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Valid checks if the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

// IntervalType defines how often a strategy executes a purchase
type IntervalType string

const (
	IntervalHourly  IntervalType = "hourly"
	IntervalDaily   IntervalType = "daily"
	IntervalWeekly  IntervalType = "weekly"
	IntervalMonthly IntervalType = "monthly"
)

// Valid checks if the interval type is a known value
func (i IntervalType) Valid() bool {
	switch i {
	case IntervalHourly, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// Strategy represents a dollar-cost-averaging purchase schedule for a token
type Strategy struct {
	ID           uuid.UUID       `db:"id"`
	TokenAddress string          `db:"token_address"`
	Amount       decimal.Decimal `db:"amount"` // Spend per interval, in quote currency
	IntervalType IntervalType    `db:"interval_type"`
	TotalPeriods int             `db:"total_periods"` // 0 means open-ended

	// Optional execution guards
	MinPrice    decimal.NullDecimal `db:"min_price"`
	MaxPrice    decimal.NullDecimal `db:"max_price"`
	MaxSlippage decimal.Decimal     `db:"max_slippage"`
	Gasless     bool                `db:"gasless"`

	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
