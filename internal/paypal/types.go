package paypal

// Wire types for the provider's REST surface.

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	AppID       string `json:"app_id"`
}

type CreateOrderRequest struct {
	Intent             string                  `json:"intent"`
	PurchaseUnits      []OrderPurchaseUnit     `json:"purchase_units"`
	ApplicationContext OrderApplicationContext `json:"application_context"`
}

type OrderPurchaseUnit struct {
	ReferenceID string      `json:"reference_id"`
	Description string      `json:"description"`
	CustomID    string      `json:"custom_id"`
	Amount      OrderAmount `json:"amount"`
	Payee       OrderPayee  `json:"payee"`
}

type OrderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type OrderPayee struct {
	EmailAddress string `json:"email_address"`
	MerchantID   string `json:"merchant_id,omitempty"`
}

type OrderApplicationContext struct {
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
	UserAction         string `json:"user_action"`
	ShippingPreference string `json:"shipping_preference"`
}

type OrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type RefundRequest struct {
	Amount      *RefundAmount `json:"amount,omitempty"`
	NoteToPayer string        `json:"note_to_payer,omitempty"`
}

type RefundAmount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

type RefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}
