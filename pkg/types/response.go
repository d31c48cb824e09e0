package types

// SuccessEnvelope wraps every successful storefront API response. Handlers
// put the cart, order, or list payload under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape: a stable machine code plus a message
// safe to show the shopper. Details carries field-level validation output
// when the code allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed storefront API response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
