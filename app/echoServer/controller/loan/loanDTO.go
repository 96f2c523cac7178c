package loan

type ApplyReq struct {
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	PeriodDays int    `json:"period_days" validate:"required,gt=0"`
	Purpose    string `json:"purpose"`
}

type RepayReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}
