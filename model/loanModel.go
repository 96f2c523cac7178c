// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanPending              LoanStatus = "pending"
	LoanInProcessing         LoanStatus = "in_processing"
	LoanAwaitingDisbursement LoanStatus = "awaiting_disbursement"
	LoanDisbursed            LoanStatus = "disbursed"
	LoanRepaid               LoanStatus = "repaid"
	LoanRejected             LoanStatus = "rejected"
)

// Outstanding reports whether a loan in this status blocks a new application.
func (s LoanStatus) Outstanding() bool {
	switch s {
	case LoanPending, LoanInProcessing, LoanAwaitingDisbursement:
		return true
	}
	return false
}

// ValidLoanTransition checks if a status transition is allowed. No transition
// skips a state; repaid and rejected are terminal.
func ValidLoanTransition(from, to LoanStatus) bool {
	allowed := map[LoanStatus][]LoanStatus{
		LoanPending:              {LoanInProcessing, LoanRejected},
		LoanInProcessing:         {LoanAwaitingDisbursement},
		LoanAwaitingDisbursement: {LoanDisbursed},
		LoanDisbursed:            {LoanRepaid},
		LoanRepaid:               {},
		LoanRejected:             {},
	}
	for _, t := range allowed[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Amounts are whole Kenyan shillings.
type Loan struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Amount         int64      `json:"amount"`
	InterestRate   float64    `json:"interest_rate"`
	PeriodDays     int        `json:"period"`
	TotalRepayable int64      `json:"total_repayable"`
	ProcessingFee  int64      `json:"processing_fee"`
	Balance        int64      `json:"balance"`
	Status         LoanStatus `json:"status"`
	Purpose        string     `json:"purpose,omitempty"`
	AppliedAt      time.Time  `json:"applied_date"`
	DueDate        time.Time  `json:"due_date"`
	FeePaidAt      *time.Time `json:"fee_paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
