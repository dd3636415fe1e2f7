// Package receipt renders nightly-report aggregates into fixed-structure
// receipt text and its print-preview variant.
package receipt

import "time"

// Report is the nightly aggregate consumed from the reporting module.
// This package only formats it; all arithmetic happens upstream.
type Report struct {
	Date        time.Time        `json:"date"`
	GrossSales  float64          `json:"gross_sales"`
	Tax         float64          `json:"tax"`
	NetSales    float64          `json:"net_sales"`
	Payments    []PaymentLine    `json:"payments"`
	Departments []DepartmentLine `json:"departments"`
	Staff       []StaffLine      `json:"staff"`
}

// PaymentLine is one payment-method subtotal.
type PaymentLine struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// DepartmentLine is one department subtotal.
type DepartmentLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// StaffLine is one staff member's sales performance.
type StaffLine struct {
	Name         string  `json:"name"`
	Sales        float64 `json:"sales"`
	Transactions int     `json:"transactions"`
}

// FeeSettings carries the configured card-fee percentage applied to card
// payments. Consumed only; ownership is with the settings module.
type FeeSettings struct {
	CardFeePercent float64 `json:"card_fee_percent" yaml:"card_fee_percent"`
}
