package errutil

import "net/http"

// CoreStatus is the transport-independent error code carried by BaseError.
type CoreStatus string

const (
	StatusUnknown          CoreStatus = "unknown"
	StatusBadRequest       CoreStatus = "bad_request"
	StatusNotFound         CoreStatus = "not_found"
	StatusConflict         CoreStatus = "conflict"
	StatusValidationFailed CoreStatus = "validation_failed"
	StatusStorage          CoreStatus = "storage_error"
	StatusGeneration       CoreStatus = "generation_error"
	StatusRender           CoreStatus = "render_error"
	StatusNotCancellable   CoreStatus = "not_cancellable"
	StatusInternal         CoreStatus = "internal_error"
	StatusNotImplemented   CoreStatus = "not_implemented"
)

// HTTPStatus converts the CoreStatus to its closest HTTP status code equivalent.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed, StatusRender:
		return http.StatusBadRequest
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict, StatusNotCancellable:
		return http.StatusConflict
	case StatusStorage, StatusInternal, StatusUnknown:
		return http.StatusInternalServerError
	case StatusGeneration:
		return http.StatusBadGateway
	case StatusNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
