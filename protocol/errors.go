package protocol

import (
	stderrors "errors"

	"github.com/mediahub/vhub/errors"
)

// ErrorNum values are the wire-level codes carried in Header.ErrorNum. They
// are independent of the Go-level errors.ErrorClass: the class drives retry
// policy inside the hub, the code drives what the client or device is told.
const (
	ErrorSuccessOK            = 0
	ErrorClientBadRequest     = 400
	ErrorClientUnauthorized   = 401
	ErrorConflict             = 409
	ErrorDeviceNotFound       = 410
	ErrorServiceNotFound      = 411
	ErrorRequestTimeout       = 408
	ErrorServerInternalError  = 500
	ErrorServerNotImplemented = 501
)

var errorStrings = map[int]string{
	ErrorSuccessOK:            "OK",
	ErrorClientBadRequest:     "Bad Request",
	ErrorClientUnauthorized:   "Unauthorized",
	ErrorConflict:             "Conflict",
	ErrorDeviceNotFound:       "Device Not Found",
	ErrorServiceNotFound:      "Service Not Found",
	ErrorRequestTimeout:       "Request Timeout",
	ErrorServerInternalError:  "Server Internal Error",
	ErrorServerNotImplemented: "Server Not Implemented",
}

// ErrorString returns the canonical wire string for an ErrorNum code,
// falling back to "Unknown Error" for anything not in the table.
func ErrorString(code int) string {
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return "Unknown Error"
}

// CodeFor maps an internal error to the wire ErrorNum table of spec §7. A nil
// error maps to ErrorSuccessOK. Unrecognized errors fall back to
// ErrorClientBadRequest, matching the source's "all other errors" row.
func CodeFor(err error) int {
	if err == nil {
		return ErrorSuccessOK
	}

	switch {
	case stderrors.Is(err, errors.ErrBadArgument), stderrors.Is(err, errors.ErrAttrAbsent):
		return ErrorClientBadRequest
	case stderrors.Is(err, errors.ErrUnauthenticated):
		return ErrorClientUnauthorized
	case stderrors.Is(err, errors.ErrConflict), stderrors.Is(err, errors.ErrAlreadyRegistered):
		return ErrorConflict
	case stderrors.Is(err, errors.ErrDeviceNotFound):
		return ErrorDeviceNotFound
	case stderrors.Is(err, errors.ErrRelayNotFound):
		return ErrorServiceNotFound
	case stderrors.Is(err, errors.ErrRequestTimeout):
		return ErrorRequestTimeout
	case stderrors.Is(err, errors.ErrInternal), stderrors.Is(err, errors.ErrStorageUnavailable):
		return ErrorServerInternalError
	case stderrors.Is(err, errors.ErrNotImplemented):
		return ErrorServerNotImplemented
	default:
		return ErrorClientBadRequest
	}
}
