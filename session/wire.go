package session

import (
	"fmt"
	"io"
	"net/http"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
)

// readBody enforces the Content-Length-framed body the wire protocol
// assumes (spec §4.2): a request with no positive Content-Length is
// rejected rather than read to EOF, since the connection is kept alive for
// further requests.
func readBody(req *http.Request) ([]byte, error) {
	if req.ContentLength <= 0 {
		return nil, errors.WrapInvalid(errors.ErrAttrAbsent, "session", "readBody", "Content-Length header required and must be positive")
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, req.ContentLength))
	if err != nil {
		return nil, errors.WrapTransient(err, "session", "readBody", "reading request body")
	}
	if int64(len(body)) != req.ContentLength {
		return nil, errors.WrapInvalid(errors.ErrBadArgument, "session", "readBody", "short body read")
	}
	return body, nil
}

// statusFor turns a protocol.ErrorNum into the HTTP status line to write.
// The wire table's non-success codes (spec §7) already double as real HTTP
// status codes (400, 401, 408, 409, 410, 411, 500, 501); only success needs
// translating, since this hub's ErrorSuccessOK is 0, not 200.
func statusFor(code int) int {
	if code == protocol.ErrorSuccessOK {
		return http.StatusOK
	}
	return code
}

// writeResponse writes env as the response to the request currently being
// handled, with the given literal HTTP status. Serializes with Send under
// writeMu since a hub-initiated push to a device can otherwise race with
// that same device's own response write.
func (s *Session) writeResponse(env protocol.Envelope, statusCode int, closeConn bool) error {
	data, err := env.Marshal()
	if err != nil {
		return errors.WrapFatal(err, "session", "writeResponse", "marshal envelope")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	text := http.StatusText(statusCode)
	if text == "" {
		text = "Error"
	}
	header := fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\n", statusCode, text, len(data))
	if closeConn {
		header += "Connection: close\r\n"
	}
	header += "\r\n"

	if _, err := io.WriteString(s.conn, header); err != nil {
		return errors.WrapTransient(err, "session", "writeResponse", "write header")
	}
	if _, err := s.conn.Write(data); err != nil {
		return errors.WrapTransient(err, "session", "writeResponse", "write body")
	}
	return nil
}

// Send writes env onto the connection as a hub-initiated request, used to
// push SD_PUSH_STREAM_REQ and SD_STREAM_STOP_REQ to a device outside of any
// request/response the device itself started. The device's reply arrives
// later as an ordinary request on its own Run loop, matched by CSeq against
// this session's pending map.
func (s *Session) Send(env protocol.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return errors.WrapFatal(err, "session", "Send", "marshal envelope")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	header := fmt.Sprintf("POST / HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(s.conn, header); err != nil {
		return errors.WrapTransient(err, "session", "Send", "write header")
	}
	if _, err := s.conn.Write(data); err != nil {
		return errors.WrapTransient(err, "session", "Send", "write body")
	}
	return nil
}
