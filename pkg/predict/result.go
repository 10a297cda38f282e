package predict

import "fmt"

// Kind discriminates the outcome of a submission.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindAPIError       Kind = "api_error"
	KindTransportError Kind = "transport_error"
)

// UnknownError is the message shown when the service replies without a
// prediction and without an error string.
const UnknownError = "Unknown error"

// Result is the classified reply of one submission. Label is set for
// KindSuccess; Message for the two error kinds; Err holds the transport cause.
type Result struct {
	Kind    Kind
	Label   string
	Message string
	Status  int
	Err     error
}

// Success builds a KindSuccess result.
func Success(label string) Result {
	return Result{Kind: KindSuccess, Label: label}
}

// APIError builds a KindAPIError result. The message is kept as given, empty
// included.
func APIError(message string) Result {
	return Result{Kind: KindAPIError, Message: message}
}

// TransportError builds a KindTransportError result from err.
func TransportError(err error) Result {
	if err == nil {
		err = fmt.Errorf("predict: transport failure")
	}
	return Result{Kind: KindTransportError, Message: err.Error(), Err: err}
}

// OK reports whether the service returned a prediction.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Display renders the user-visible outcome text.
func (r Result) Display() string {
	switch r.Kind {
	case KindSuccess:
		return "Predicted Income: " + r.Label
	case KindAPIError:
		return "Error: " + r.Message
	default:
		return "Failed to connect to prediction service: " + r.Message
	}
}
