package manual

type CreateReq struct {
	LoanID        *int64 `json:"loan_id"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Till          string `json:"till" validate:"required"`
	Business      string `json:"business"`
	TxnCode       string `json:"txn_code"`
	Phone         string `json:"phone"`
	Note          string `json:"note"`
	PastedMessage string `json:"pasted_message"`
}

type VerifyReq struct {
	Verified  bool   `json:"verified"`
	AdminNote string `json:"admin_note"`
}
