package processor

type chargeRequestBody struct {
	Amount    string            `json:"amount"`
	Currency  string            `json:"currency"`
	MethodRef *string           `json:"payment_method,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type subscriptionRequestBody struct {
	CustomerRef string            `json:"customer"`
	PlanRef     string            `json:"plan"`
	MethodRef   *string           `json:"payment_method,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type refundRequestBody struct {
	ChargeRef string  `json:"charge"`
	Amount    *string `json:"amount,omitempty"`
	Currency  string  `json:"currency"`
}

type errorResponseBody struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}
