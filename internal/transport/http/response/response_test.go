package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Shapes(t *testing.T) {
	tests := []struct {
		code int
		msg  string
		want string
	}{
		{http.StatusNotFound, "", `{"message":"Not Found"}`},
		{http.StatusBadRequest, "User already exists", `{"message":"User already exists"}`},
		{http.StatusInternalServerError, "", `{"error":"Internal Server Error"}`},
		{http.StatusGatewayTimeout, "timeout", `{"error":"timeout"}`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(Error(tt.code, tt.msg))
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(b))
	}
}

func TestMessage(t *testing.T) {
	b, err := json.Marshal(Message("Logout successful"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Logout successful"}`, string(b))
}
