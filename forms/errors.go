// Package forms validates user input before it reaches the API and maps API
// validation failures back onto the same field keys.
package forms

import "sort"

// Field identifies one input of a form. Each form declares its closed set of fields.
type Field string

const (
	FixFormMessage  = "Please fix the errors in the form"
	FallbackMessage = "Something went wrong. Please try again."
)

// Errors maps a field to the message rendered next to it. Empty means valid.
type Errors map[Field]string

// Add keeps the first message recorded for a field.
func (e Errors) Add(f Field, msg string) {
	if _, exists := e[f]; exists {
		return
	}
	e[f] = msg
}

func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

func (e Errors) Valid() bool { return len(e) == 0 }

// Fields returns the failing fields in a stable order.
func (e Errors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Form is implemented by every validated input in the application.
type Form interface {
	Validate() Errors
	Fields() []Field
}

func knows(f Form, field Field) bool {
	for _, k := range f.Fields() {
		if k == field {
			return true
		}
	}
	return false
}
