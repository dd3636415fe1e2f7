package receipt

import (
	"fmt"
	"strings"
	"time"
)

// receiptWidth is the character width of a standard 80mm thermal roll in
// the default font.
const receiptWidth = 32

// Section headers, in the fixed order they appear on the receipt. The
// preview pass keys off these exact strings.
const (
	headerTitle       = "NIGHTLY REPORT"
	headerSummary     = "SUMMARY"
	headerPayments    = "PAYMENTS"
	headerDepartments = "DEPARTMENTS"
	headerStaff       = "STAFF PERFORMANCE"
)

// Encoder renders reports into receipt text. Now is swappable so the
// "generated" line can be pinned in tests; everything else is pure.
type Encoder struct {
	Fees FeeSettings
	Now  func() time.Time
}

// NewEncoder creates an Encoder with the wall clock.
func NewEncoder(fees FeeSettings) *Encoder {
	return &Encoder{Fees: fees, Now: time.Now}
}

// FormatReceiptContent renders the fixed-section receipt: header, summary,
// payment breakdown, department breakdown, staff performance, footer.
// All currency is formatted to two decimals.
func (e *Encoder) FormatReceiptContent(report Report, userName, userRole string) string {
	var b strings.Builder

	thick := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	// Header
	b.WriteString(thick + "\n")
	b.WriteString(centerLine(headerTitle) + "\n")
	b.WriteString(centerLine("Tillpoint POS") + "\n")
	b.WriteString(thick + "\n")
	b.WriteString(fmt.Sprintf("Date:       %s\n", report.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Printed by: %s (%s)\n", userName, userRole))
	b.WriteString(fmt.Sprintf("Generated:  %s\n", e.Now().Format("2006-01-02 15:04")))

	// Summary
	b.WriteString(thin + "\n")
	b.WriteString(headerSummary + "\n")
	b.WriteString(amountLine("Gross Sales", report.GrossSales))
	b.WriteString(amountLine("Tax", report.Tax))
	if e.Fees.CardFeePercent > 0 {
		label := fmt.Sprintf("Card Fees (%.1f%%)", e.Fees.CardFeePercent)
		b.WriteString(amountLine(label, cardFees(report, e.Fees)))
	}
	b.WriteString(amountLine("Net Sales", report.NetSales))

	// Payment breakdown
	b.WriteString(thin + "\n")
	b.WriteString(headerPayments + "\n")
	if len(report.Payments) == 0 {
		b.WriteString("(no payments)\n")
	}
	for _, p := range report.Payments {
		b.WriteString(amountLine(p.Method, p.Amount))
	}

	// Department breakdown
	b.WriteString(thin + "\n")
	b.WriteString(headerDepartments + "\n")
	if len(report.Departments) == 0 {
		b.WriteString("(no departments)\n")
	}
	for _, d := range report.Departments {
		b.WriteString(amountLine(d.Name, d.Amount))
	}

	// Staff performance
	b.WriteString(thin + "\n")
	b.WriteString(headerStaff + "\n")
	if len(report.Staff) == 0 {
		b.WriteString("(no staff sales)\n")
	}
	for _, s := range report.Staff {
		label := fmt.Sprintf("%s (%d)", s.Name, s.Transactions)
		b.WriteString(amountLine(label, s.Sales))
	}

	// Footer
	b.WriteString(thick + "\n")
	b.WriteString(centerLine("End of day report") + "\n")
	b.WriteString(thick + "\n")

	return b.String()
}

// cardFees derives the fee figure shown on the receipt from card-method
// payment lines. Display only; the authoritative number lives upstream.
func cardFees(report Report, fees FeeSettings) float64 {
	var card float64
	for _, p := range report.Payments {
		method := strings.ToLower(p.Method)
		if strings.Contains(method, "card") || strings.Contains(method, "credit") || strings.Contains(method, "debit") {
			card += p.Amount
		}
	}
	return card * fees.CardFeePercent / 100
}

// amountLine right-aligns a two-decimal dollar amount against its label.
func amountLine(label string, amount float64) string {
	value := fmt.Sprintf("$%.2f", amount)
	pad := receiptWidth - len(label) - 1 - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + ":" + strings.Repeat(" ", pad) + value + "\n"
}

func centerLine(text string) string {
	if len(text) >= receiptWidth {
		return text
	}
	pad := (receiptWidth - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}
