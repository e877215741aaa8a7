package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/samcharles93/sc2k/pkg/sc2"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}

// writeFailure reports err with the status classify picks for it.
func writeFailure(c *echo.Context, err error) error {
	status, errType := classify(err)
	return writeError(c, status, errType, err.Error())
}

// writeRaw sends b unchanged with the given content type.
func writeRaw(c *echo.Context, status int, contentType string, b []byte) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.Header().Set("Content-Length", strconv.Itoa(len(b)))
	res.WriteHeader(status)
	_, err := res.Write(b)
	return err
}

// marshal encodes v with go-json, indented when the server is configured to.
func (s *Server) marshal(v any) ([]byte, error) {
	if s.indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func (s *Server) writeJSONBytes(c *echo.Context, v any) error {
	b, err := s.marshal(v)
	if err != nil {
		return writeFailure(c, err)
	}
	return writeRaw(c, http.StatusOK, echo.MIMEApplicationJSON, b)
}

func decodeJSON[T any](r io.Reader, into T) (T, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&into); err != nil {
		return into, newInvalidRequest("invalid JSON body: " + err.Error())
	}
	if dec.More() {
		return into, newInvalidRequest("unexpected data after JSON body")
	}
	return into, nil
}

// gridIndex parses a path parameter as a tile coordinate.
func gridIndex(c *echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, newInvalidRequest(name + " must be an integer")
	}
	if v < 0 || v >= sc2.MapSize {
		return 0, newInvalidRequest(name + " must be in [0, " + strconv.Itoa(sc2.MapSize-1) + "]")
	}
	return v, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrCityNotFound)
}
