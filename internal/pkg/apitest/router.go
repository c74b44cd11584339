// Package apitest is an in-memory storefront API served by gin. Tests use it
// through NewServer; the CLI mounts the same handler for `storefront mock`.
package apitest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// 每个资源提供一个 Register(gin.IRouter) 实现
type Registrar interface{ Register(r gin.IRouter) }

// API is the fake backend: a gin engine, the data it serves and a per path
// request log.
type API struct {
	Store  *Store
	engine *gin.Engine
	secret []byte

	mu       sync.Mutex
	calls    map[string]int
	headers  http.Header
	delay    time.Duration
	failures map[string]failure
}

type failure struct {
	status  int
	message string
}

type Option func(*API)

// WithSecret sets the HS256 key used to sign OTP tokens.
func WithSecret(secret []byte) Option {
	return func(a *API) { a.secret = secret }
}

// WithDelay makes every request wait d before being handled.
func WithDelay(d time.Duration) Option {
	return func(a *API) { a.delay = d }
}

// New builds the handler tree over store.
func New(store *Store, opts ...Option) *API {
	a := &API{
		Store:    store,
		secret:   []byte("storefront-test-secret"),
		calls:    map[string]int{},
		failures: map[string]failure{},
	}
	for _, o := range opts {
		o(a)
	}

	r := gin.New()
	r.Use(gin.Recovery(), a.record)
	api := r.Group("/api")
	mount(api,
		ordersRouter{a},
		productsRouter{a},
		inventoryRouter{a},
		customersRouter{a},
	)
	a.engine = r
	return a
}

func mount(r gin.IRouter, rs ...Registrar) {
	for _, rg := range rs {
		rg.Register(r)
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) { a.engine.ServeHTTP(w, r) }

// record counts the request, keeps its headers and applies injected delays
// and failures.
func (a *API) record(c *gin.Context) {
	a.mu.Lock()
	path := c.Request.URL.Path
	a.calls[path]++
	a.headers = c.Request.Header.Clone()
	delay := a.delay
	f, fail := a.failures[path]
	if fail {
		delete(a.failures, path)
	}
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if fail {
		c.AbortWithStatusJSON(f.status, gin.H{"success": false, "error": f.message})
		return
	}
	c.Next()
}

// Calls returns how many requests reached path.
func (a *API) Calls(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[path]
}

// LastHeader returns a header of the most recent request.
func (a *API) LastHeader(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.headers.Get(name)
}

// FailNext makes the next request to path answer status with message.
func (a *API) FailNext(path string, status int, message string) {
	a.mu.Lock()
	a.failures[path] = failure{status: status, message: message}
	a.mu.Unlock()
}

func (a *API) SetDelay(d time.Duration) {
	a.mu.Lock()
	a.delay = d
	a.mu.Unlock()
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msg})
}
