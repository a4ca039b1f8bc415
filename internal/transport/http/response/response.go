package response

// Msg is the body of replies that only carry a human-readable message.
type Msg struct {
	Message string `json:"message"`
}

// Err is the body of 5xx replies.
type Err struct {
	Error string `json:"error"`
}

func Message(msg string) Msg { return Msg{Message: msg} }

// Error builds the body for a failed request: {message} below 500, {error} otherwise.
// An empty customMsg falls back to the status text in CodeMsgMap.
func Error(code int, customMsg string) any {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	if code >= 500 {
		return Err{Error: msg}
	}
	return Msg{Message: msg}
}
