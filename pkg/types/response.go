package types

// SuccessEnvelope wraps payloads that are not JSON objects.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the body written for every failed request. Extra
// caller-actionable fields (attempts_remaining, field errors) are merged in
// at the top level by the responses package.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}
