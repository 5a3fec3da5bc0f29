package response

import "net/http"

// Error codes equal the HTTP status they are sent with.
const (
	CodeOK                 = 0
	CodeBadRequest         = http.StatusBadRequest
	CodeUnauthorized       = http.StatusUnauthorized
	CodeNotFound           = http.StatusNotFound
	CodeConflict           = http.StatusConflict
	CodeTooLarge           = http.StatusRequestEntityTooLarge
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeServerError        = http.StatusInternalServerError
	CodeServiceUnavailable = http.StatusServiceUnavailable
	CodeTimeout            = http.StatusGatewayTimeout
)

var CodeMsgMap = map[int]string{
	CodeOK:                 "OK",
	CodeBadRequest:         "Bad Request",
	CodeUnauthorized:       "Unauthorized",
	CodeNotFound:           "Not Found",
	CodeConflict:           "Conflict",
	CodeTooLarge:           "Request Entity Too Large",
	CodeTooManyRequests:    "Too Many Requests",
	CodeServerError:        "Internal Server Error",
	CodeServiceUnavailable: "Service Unavailable",
	CodeTimeout:            "Gateway Timeout",
}
