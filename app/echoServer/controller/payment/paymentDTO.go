package payment

type StkPushReq struct {
	LoanID       int64  `json:"loan_id" validate:"required,gt=0"`
	Phone        string `json:"phone" validate:"required"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	CustomerName string `json:"customer_name"`
}
