package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	apperrors "courtside/pkg/errors"
	httputil "courtside/pkg/http"
)

// IdempotencyStore tracks request keys through two phases: Begin reserves a
// key for the request about to run, Finish stores its response or releases
// the key so the client may retry.
type IdempotencyStore interface {
	// Begin returns the stored response for a finished key, or reserves the
	// key and reports started. A key already reserved by a request still in
	// flight returns neither.
	Begin(key string) (cached *CachedResponse, started bool)
	// Finish stores response for key; a nil response releases it.
	Finish(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	response *CachedResponse // nil while in flight
	at       time.Time
}

type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*idempotencyEntry
	ttl     time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	stopped sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go store.sweep()
	return store
}

func (s *InMemoryIdempotencyStore) Begin(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[key]; ok && now.Sub(entry.at) <= s.ttl {
		return entry.response, false
	}
	s.entries[key] = &idempotencyEntry{at: now}
	return nil, true
}

func (s *InMemoryIdempotencyStore) Finish(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if response == nil {
		delete(s.entries, key)
		return
	}
	s.entries[key] = &idempotencyEntry{response: response, at: s.now()}
}

// sweep drops expired entries, including reservations left by requests that
// never finished.
func (s *InMemoryIdempotencyStore) sweep() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, entry := range s.entries {
				if now.Sub(entry.at) > s.ttl {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopped.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response for a repeated key and answers
// CONFLICT while the first request with that key is still running. Failed
// responses release the key.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = "Idempotency-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			cached, started := store.Begin(key)
			switch {
			case cached != nil:
				replay(w, cached)
				return
			case !started:
				httputil.WriteError(w, apperrors.Conflict("a request with this idempotency key is still in progress"))
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			finished := false
			defer func() {
				if !finished {
					store.Finish(key, nil)
				}
			}()
			next.ServeHTTP(capture, r)

			finished = true
			if capture.statusCode < 200 || capture.statusCode >= 300 {
				store.Finish(key, nil)
				return
			}
			store.Finish(key, &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			})
		})
	}
}

// idempotencyKey scopes the client key to caller and route so two callers
// reusing a key never see each other's responses.
func idempotencyKey(r *http.Request, headerName string) string {
	key := r.Header.Get(headerName)
	if key == "" || r.Method == http.MethodGet {
		return ""
	}
	return callerID(r) + "|" + r.Method + "|" + r.URL.Path + "|" + key
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
