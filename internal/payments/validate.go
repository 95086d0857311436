package payments

import (
	"fmt"
	"regexp"

	"github.com/fourgetech/payportal/internal/currency"
)

// Providers accepted on a payment.
const (
	ProviderSwift = "SWIFT"
	ProviderOther = "Other"
)

// SwiftCodeNA is the literal placeholder used when the provider is not SWIFT.
const SwiftCodeNA = "N/A"

var (
	swiftPattern  = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	cardPattern   = regexp.MustCompile(`^\d{16}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([0-9]{4}|[0-9]{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidationError names the offending field so the UI can highlight it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PaymentInput is the customer-entered payment before normalization. Amount and
// Currency are the values as typed; conversion to the settlement currency happens
// later, in the submitter.
type PaymentInput struct {
	Amount             float64
	Currency           string
	Provider           string
	RecipientName      string
	RecipientBank      string
	PayeeAccountNumber string
	SwiftCode          string
}

// Validate applies the portal's field rules. The submitter assumes input that has
// passed here.
func (in PaymentInput) Validate() error {
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if !currency.IsSupported(in.Currency) {
		return &ValidationError{Field: "currency", Reason: fmt.Sprintf("unsupported currency %q", in.Currency)}
	}
	if in.Provider != ProviderSwift && in.Provider != ProviderOther {
		return &ValidationError{Field: "provider", Reason: `must be "SWIFT" or "Other"`}
	}
	if in.RecipientName == "" {
		return &ValidationError{Field: "recipientName", Reason: "is required"}
	}
	if in.RecipientBank == "" {
		return &ValidationError{Field: "recipientBank", Reason: "is required"}
	}
	if in.PayeeAccountNumber == "" {
		return &ValidationError{Field: "payeeAccountNumber", Reason: "is required"}
	}
	switch {
	case in.SwiftCode == SwiftCodeNA:
		if in.Provider != ProviderOther {
			return &ValidationError{Field: "swiftCode", Reason: `"N/A" is only valid with provider "Other"`}
		}
	case swiftPattern.MatchString(in.SwiftCode):
	default:
		return &ValidationError{Field: "swiftCode", Reason: "invalid SWIFT code format"}
	}
	return nil
}

// DepositInput is a customer-entered card deposit. Card fields live only for the
// duration of one submission.
type DepositInput struct {
	Amount     float64
	CardNumber string
	ExpiryDate string
	CVV        string
}

// Validate applies the deposit field rules.
func (in DepositInput) Validate() error {
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if !cardPattern.MatchString(in.CardNumber) {
		return &ValidationError{Field: "cardNumber", Reason: "must be 16 digits long"}
	}
	if !expiryPattern.MatchString(in.ExpiryDate) {
		return &ValidationError{Field: "expiryDate", Reason: "invalid expiry date format"}
	}
	if !cvvPattern.MatchString(in.CVV) {
		return &ValidationError{Field: "cvv", Reason: "must be 3 or 4 digits long"}
	}
	return nil
}
