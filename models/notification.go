package models

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient message shown by the browser.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}
