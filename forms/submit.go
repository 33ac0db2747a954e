package forms

import (
	"context"

	"github.com/yeremiapane/food-delivery-web/apiclient"
)

// Outcome is what a submission leaves behind for the view: inline field errors,
// a one-line toast, or neither on success.
type Outcome struct {
	Errors Errors
	Toast  string
	Err    error
	Called bool
}

func (o Outcome) OK() bool { return o.Err == nil && o.Errors.Valid() }

// Label names the outcome for metrics: "invalid", "rejected" or "ok".
func (o Outcome) Label() string {
	switch {
	case !o.Called && !o.Errors.Valid():
		return "invalid"
	case o.Err != nil:
		return "rejected"
	}
	return "ok"
}

// Submit validates f and, only when it passes, invokes call exactly once.
// Nothing is retried; a failure leaves the caller's input untouched.
func Submit(ctx context.Context, f Form, call func(ctx context.Context) error) Outcome {
	if errs := f.Validate(); !errs.Valid() {
		return Outcome{Errors: errs, Toast: FixFormMessage}
	}
	if err := call(ctx); err != nil {
		out := Classify(f, err)
		out.Called = true
		return out
	}
	return Outcome{Errors: Errors{}, Called: true}
}

// Classify turns an API failure into field errors (structured 400) or a toast.
func Classify(f Form, err error) Outcome {
	out := Outcome{Errors: Errors{}, Err: err}

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		out.Toast = FallbackMessage
		return out
	}

	if apiErr.IsValidation() {
		var unmatched string
		for _, fe := range apiErr.FieldErrors {
			field := Field(fe.Param)
			if knows(f, field) {
				out.Errors.Add(field, fe.Msg)
			} else if unmatched == "" {
				unmatched = fe.Msg
			}
		}
		switch {
		case unmatched != "":
			out.Toast = unmatched
		case len(out.Errors) > 0:
			out.Toast = FixFormMessage
		}
		return out
	}

	out.Toast = apiErr.Message
	if out.Toast == "" {
		out.Toast = FallbackMessage
	}
	return out
}
