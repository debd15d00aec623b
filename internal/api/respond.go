package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type for MessagePack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// wantsMsgpack reports whether the client asked for MessagePack.
func wantsMsgpack(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack)
}

// respond writes v as JSON, or as MessagePack when the client accepts it.
// MessagePack field names follow the json tags.
func respond(c echo.Context, status int, v interface{}) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return c.JSON(http.StatusInternalServerError, &APIError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternal,
			Message: "failed to encode msgpack",
			Details: err.Error(),
		})
	}
	return c.Blob(status, MIMEApplicationMsgpack, buf.Bytes())
}
