package web

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"

	"github.com/JonMunkholm/feedmap/internal/core"
)

// queryDecoder is shared; schema.Decoder caches struct metadata and is safe
// for concurrent use.
var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// decodeQuery fills dst from the URL query.
func decodeQuery(r *http.Request, dst any) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// readBody reads the request body up to the configured document limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxDocumentSize)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return data, nil
}

// decodeJSON reads the request body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// requestStatus adds the statuses only the transport layer produces.
func requestStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return statusFor(err)
}

// clientIP is RemoteAddr without the port. TrustedRealIP has already
// rewritten it for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
