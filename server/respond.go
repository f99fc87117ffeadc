package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/etnz/dcadash"
	"github.com/vmihailenco/msgpack/v5"
)

const msgpackContentType = "application/msgpack"

// apiError is the body of every error response.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// wantsMsgpack reports whether the client asked for msgpack over JSON.
func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, msgpackContentType) || strings.Contains(accept, "application/x-msgpack")
}

// respond encodes v as JSON, or msgpack when the client asks for it. Field names are
// the same in both encodings.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if wantsMsgpack(r) {
		body, err = encodeMsgpack(v)
		contentType = msgpackContentType
	} else {
		body, err = json.Marshal(v)
		contentType = "application/json"
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("cannot encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Debug().Err(err).Msg("cannot write response")
	}
}

func encodeMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// respondError maps an error of the pipeline to its status code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.respond(w, r, status, apiError{Error: err.Error(), Code: code})
}

func classify(err error) (status int, code string) {
	var ferr *dcadash.FetchError
	switch {
	case errors.Is(err, dcadash.ErrEmptyLog):
		return http.StatusNotFound, "empty_log"
	case errors.As(err, &ferr):
		return http.StatusBadGateway, "fetch_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// badRequest reports an invalid query parameter.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.respond(w, r, http.StatusBadRequest, apiError{Error: err.Error(), Code: "bad_request"})
}
