package apitest

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// Server is an API listening on a loopback httptest server.
type Server struct {
	*API
	URL string
}

// NewServer starts a seeded fake API; it is closed when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := New(Seeded(), opts...)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &Server{API: api, URL: srv.URL}
}
