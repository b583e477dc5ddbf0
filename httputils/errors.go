package httputils

// RequestError is the body of every failed request
//
// swagger:model RequestError
type RequestError struct {
	Error string `json:"error"`
}
