package models

// PricingInputs are the user-adjustable parameters of a payment computation.
// Percentages are expressed as 0-100 and rates as annual percentages.
type PricingInputs struct {
	DiscountPct    float64 `json:"discount_pct" binding:"gte=0,lte=100"`
	DownPaymentPct float64 `json:"down_payment_pct" binding:"gte=0,lte=100"`
	MonthsToPay    int     `json:"months_to_pay" binding:"gte=1"`
	ReservationFee float64 `json:"reservation_fee" binding:"gte=0"`
	ClosingFeePct  float64 `json:"closing_fee_pct" binding:"gte=0"`
	Rate15Yr       float64 `json:"rate_15yr" binding:"gte=0"`
	Rate20Yr       float64 `json:"rate_20yr" binding:"gte=0"`
}

// PricingResult holds every derived amount of a payment computation in PHP.
// Values are not rounded.
type PricingResult struct {
	ListPrice           float64 `json:"list_price"`
	TotalContractPrice  float64 `json:"total_contract_price"`
	DownPaymentAmount   float64 `json:"down_payment_amount"`
	NetDownPayment      float64 `json:"net_down_payment"`
	DownPaymentMonthly  float64 `json:"down_payment_monthly"`
	ClosingFee          float64 `json:"closing_fee"`
	BankFinancedBalance float64 `json:"bank_financed_balance"`
	MonthlyPayment15Yr  float64 `json:"monthly_payment_15yr"`
	MonthlyPayment20Yr  float64 `json:"monthly_payment_20yr"`
}

// ScheduleEntry is a single month of an amortization schedule.
type ScheduleEntry struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}
