package types

const (
	ResultSuccess = "SUCCESS"
	ResultError   = "ERROR"
)

type SuccessEnvelope struct {
	Result string `json:"result"`
	Data   any    `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Result string   `json:"result"`
	Error  APIError `json:"error"`
}
