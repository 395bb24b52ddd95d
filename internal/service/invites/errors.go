package invites

import "errors"

// Sentinel errors for code issuance and redemption. Handlers map these onto
// HTTP status codes; everything else surfaces as an internal error.
var (
	// ErrInvalidEmployeeID means the employee ID is not exactly 4 digits.
	ErrInvalidEmployeeID = errors.New("employee id must be exactly 4 digits")

	// ErrInvalidCodeFormat means the code is not 16 alphanumeric characters.
	ErrInvalidCodeFormat = errors.New("code must be exactly 16 alphanumeric characters")

	// ErrCodeNotFound means no code with the given value exists.
	ErrCodeNotFound = errors.New("invitation code not found")

	// ErrAlreadyRedeemed means the code was already used; the transition out of
	// 'used' does not exist.
	ErrAlreadyRedeemed = errors.New("invitation code already redeemed")

	// ErrCodeExpired means the code's validity window has passed.
	ErrCodeExpired = errors.New("invitation code expired")

	// ErrGenerationExhausted means every generation attempt collided with an
	// existing code. Safe for the caller to retry the whole issuance.
	ErrGenerationExhausted = errors.New("could not generate a unique code, retry the request")
)
