package response

import "net/http"

// CodeMsgMap holds the default message per HTTP status.
var CodeMsgMap = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusRequestTimeout:      "Request Timeout",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusGatewayTimeout:      "Gateway Timeout",
	http.StatusInternalServerError: "Internal Server Error",
}
