package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ChangeEvent is the payload of one server-sent event on the change stream.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	ID         int    `json:"id,omitempty"`
	At         string `json:"at"`
}
