package bankapi

// UserPayload carries the customer profile fields returned by the banking API.
type UserPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// LoginRequest is the credential triple sent to POST /auth/login.
type LoginRequest struct {
	Username      string `json:"username"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

// LoginResponse is the success payload of POST /auth/login.
type LoginResponse struct {
	Token      string      `json:"token"`
	CustomerID string      `json:"customerID"`
	User       UserPayload `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	IDNumber      string `json:"IDNumber"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

// RegisterResponse is the success payload of POST /auth/register. Registration does
// not return a token; the customer authenticates separately via login.
type RegisterResponse struct {
	CustomerID string      `json:"customerID"`
	User       UserPayload `json:"user"`
}

// PaymentRequest is the settlement-currency form of a payment submitted to
// POST /payments/new. PaymentAmount and Currency are always the converted values;
// the entered values are retained in the local audit trail, not on the wire.
type PaymentRequest struct {
	CustomerID         string  `json:"customerID"`
	PaymentAmount      float64 `json:"paymentAmount"`
	Currency           string  `json:"currency"`
	RecipientName      string  `json:"recipientName"`
	RecipientBank      string  `json:"recipientBank"`
	Provider           string  `json:"provider"`
	PayeeAccountNumber string  `json:"payeeAccountNumber"`
	SwiftCode          string  `json:"swiftCode"`
}

// DepositRequest is the body of POST /payments/deposit. Card fields exist only for
// the duration of one submission and are never persisted by the portal.
type DepositRequest struct {
	CustomerID string  `json:"customerID"`
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"cardNumber"`
	ExpiryDate string  `json:"expiryDate"`
	CVV        string  `json:"cvv"`
}

// Transaction is one record of GET /payments/customer/{customerID}.
type Transaction struct {
	ID                 string  `json:"_id"`
	RecipientName      string  `json:"recipientName"`
	RecipientBank      string  `json:"recipientBank"`
	PaymentAmount      float64 `json:"paymentAmount"`
	Currency           string  `json:"currency"`
	Provider           string  `json:"provider"`
	PayeeAccountNumber string  `json:"payeeAccountNumber"`
	PaymentStatus      string  `json:"paymentStatus"`
	CreatedAt          string  `json:"createdAt"`
}

// DashboardSummary is the payload of GET /payments/dashboard/{customerID}.
type DashboardSummary struct {
	AccountNumber    string  `json:"accountNumber"`
	AvailableBalance float64 `json:"availableBalance"`
	LatestBalance    float64 `json:"latestBalance"`
	TotalSent        float64 `json:"totalSent"`
	TotalReceived    float64 `json:"totalReceived"`
}
