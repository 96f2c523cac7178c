// model/manualPayment.go
package model

import "time"

type ManualPaymentStatus string

const (
	ManualPending  ManualPaymentStatus = "pending"
	ManualVerified ManualPaymentStatus = "verified"
	ManualRejected ManualPaymentStatus = "rejected"
)

// ManualPayment records a Lipa na Till payment the user reports by pasting
// the M-Pesa confirmation SMS. Records are never deleted; status is set by
// the auto-verifier at creation or by an admin override afterwards.
type ManualPayment struct {
	ID            string              `json:"id"`
	LoanID        *int64              `json:"loan_id,omitempty"`
	UserID        int64               `json:"user_id"`
	Amount        int64               `json:"amount"`
	Till          string              `json:"till"`
	Business      string              `json:"business,omitempty"`
	TxnCode       string              `json:"txn_code,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	Note          string              `json:"note,omitempty"`
	PastedMessage string              `json:"pasted_message,omitempty"`
	Status        ManualPaymentStatus `json:"status"`
	AdminNote     *string             `json:"admin_note,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	VerifiedAt    *time.Time          `json:"verified_at,omitempty"`
}
