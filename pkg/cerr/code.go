package cerr

import (
	"net/http"

	"connectrpc.com/connect"
)

type Code int

const (
	OK                 = Code(0)
	Canceled           = Code(1)
	Unknown            = Code(2)
	InvalidArgument    = Code(3)
	DeadlineExceeded   = Code(4)
	NotFound           = Code(5)
	AlreadyExists      = Code(6)
	PermissionDenied   = Code(7)
	ResourceExhausted  = Code(8)
	FailedPrecondition = Code(9)
	Aborted            = Code(10)
	OutOfRange         = Code(11)
	Unimplemented      = Code(12)
	Internal           = Code(13)
	Unavailable        = Code(14)
	DataLoss           = Code(15)
	Unauthenticated    = Code(16)
)

var codeNames = map[Code]string{
	OK:                 "ok",
	Canceled:           "canceled",
	Unknown:            "unknown",
	InvalidArgument:    "invalid_argument",
	DeadlineExceeded:   "deadline_exceeded",
	NotFound:           "not_found",
	AlreadyExists:      "already_exists",
	PermissionDenied:   "permission_denied",
	ResourceExhausted:  "resource_exhausted",
	FailedPrecondition: "failed_precondition",
	Aborted:            "aborted",
	OutOfRange:         "out_of_range",
	Unimplemented:      "unimplemented",
	Internal:           "internal",
	Unavailable:        "unavailable",
	DataLoss:           "data_loss",
	Unauthenticated:    "unauthenticated",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

var codeToConnectCodeMap = map[Code]connect.Code{
	Canceled:           connect.CodeCanceled,
	Unknown:            connect.CodeUnknown,
	InvalidArgument:    connect.CodeInvalidArgument,
	DeadlineExceeded:   connect.CodeDeadlineExceeded,
	NotFound:           connect.CodeNotFound,
	AlreadyExists:      connect.CodeAlreadyExists,
	PermissionDenied:   connect.CodePermissionDenied,
	ResourceExhausted:  connect.CodeResourceExhausted,
	FailedPrecondition: connect.CodeFailedPrecondition,
	Aborted:            connect.CodeAborted,
	OutOfRange:         connect.CodeOutOfRange,
	Unimplemented:      connect.CodeUnimplemented,
	Internal:           connect.CodeInternal,
	Unavailable:        connect.CodeUnavailable,
	DataLoss:           connect.CodeDataLoss,
	Unauthenticated:    connect.CodeUnauthenticated,
}

func (c Code) ConnectCode() connect.Code {
	if c == OK {
		return 0
	}
	code, ok := codeToConnectCodeMap[c]
	if !ok {
		return connect.CodeUnknown
	}
	return code
}

func (c Code) HTTPCode() int {
	switch c {
	case OK:
		return http.StatusOK
	case Canceled:
		return 499
	case InvalidArgument, OutOfRange:
		return http.StatusBadRequest
	case DeadlineExceeded:
		return http.StatusGatewayTimeout
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists, Aborted:
		return http.StatusConflict
	case PermissionDenied:
		return http.StatusForbidden
	case ResourceExhausted:
		return http.StatusTooManyRequests
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	case Unimplemented:
		return http.StatusNotImplemented
	case Unavailable:
		return http.StatusServiceUnavailable
	case Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
