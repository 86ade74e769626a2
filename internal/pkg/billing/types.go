package billing

// FeedSubscription is the provider-agnostic shape of one subscription as
// returned by the billing feed, before it is mirrored into the local table.
type FeedSubscription struct {
	SubscriptionID   string  `json:"subscription_id"`
	CustomerID       string  `json:"customer_id"`
	CustomerName     string  `json:"customer_name"`
	Email            string  `json:"email"`
	PlanCode         string  `json:"plan_code"`
	PlanName         string  `json:"plan_name"`
	Status           string  `json:"status"`
	Amount           float64 `json:"amount"`
	CurrencySymbol   string  `json:"currency_symbol"`
	CurrentTermStart string  `json:"current_term_starts_at"`
	CurrentTermEnd   string  `json:"current_term_ends_at"`
	Interval         int     `json:"interval"`
	IntervalUnit     string  `json:"interval_unit"`
}
