package fixture

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	hithttp "github.com/abdul-hamid-achik/hitchain/packages/http"
)

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// greet reads firstName and lastName from the query string or a form body.
func (s *Server) greet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	first, last := r.Form.Get("firstName"), r.Form.Get("lastName")
	if first == "" || last == "" {
		writeText(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}

	// Written by hand so the body has no trailing newline.
	body, _ := json.Marshal(map[string]string{"greeting": "Greetings " + first + " " + last})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}

// header lists the names of the request headers, sorted.
func (s *Server) header(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	writeText(w, http.StatusOK, strings.Join(names, ", "))
}

func (s *Server) body(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, string(data))
}

type messageBody struct {
	Message string `json:"message"`
}

func decodeMessage(r *http.Request) (string, error) {
	var msg messageBody
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// jsonBody requires a JSON request and answers with its message field.
func (s *Server) jsonBody(w http.ResponseWriter, r *http.Request) {
	if !hithttp.JSON.Matches(r.Header.Get("Content-Type")) {
		writeText(w, http.StatusUnsupportedMediaType, "expected a JSON request body")
		return
	}
	message, err := decodeMessage(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, message)
}

// jsonBodyAcceptHeader answers with the message field only when the
// client accepts JSON, and labels the answer as JSON.
func (s *Server) jsonBodyAcceptHeader(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeText(w, http.StatusNotAcceptable, "expected Accept: application/json")
		return
	}
	message, err := decodeMessage(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	io.WriteString(w, message)
}

// cookie lists the request cookie names in the order they were sent.
func (s *Server) cookie(w http.ResponseWriter, r *http.Request) {
	cookies := r.Cookies()
	names := make([]string, len(cookies))
	for i, c := range cookies {
		names[i] = c.Name
	}
	writeText(w, http.StatusOK, strings.Join(names, ", "))
}

// binaryBody renders each request byte as a decimal number.
func (s *Server) binaryBody(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = strconv.Itoa(int(int8(b)))
	}
	writeText(w, http.StatusOK, strings.Join(parts, ", "))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: id, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"session": id})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		writeText(w, http.StatusBadRequest, "invalid status code")
		return
	}
	writeText(w, code, http.StatusText(code))
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "hello")
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "Not found")
}

func (s *Server) unauthorized(w http.ResponseWriter) {
	writeText(w, http.StatusUnauthorized, "401 UNAUTHORIZED")
}

func (s *Server) validCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	return userOK && passOK
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !s.validCredentials(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+DigestRealm+`"`)
			s.unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) digestAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Digest ") && s.verifyDigest(r.Method, header) {
			next.ServeHTTP(w, r)
			return
		}

		nonce := s.nonces.issue()
		w.Header().Set("WWW-Authenticate",
			fmt.Sprintf(`Digest realm="%s", qop="auth", nonce="%s", opaque="%s"`, DigestRealm, nonce, uuid.NewString()))
		s.unauthorized(w)
	})
}

func (s *Server) verifyDigest(method, header string) bool {
	params := hithttp.ParseWWWAuthenticate(header)
	if params["username"] != s.username || params["realm"] != DigestRealm {
		return false
	}
	if !s.nonces.consume(params["nonce"]) {
		return false
	}

	expected := &hithttp.DigestAuth{
		Username: s.username,
		Password: s.password,
		Realm:    DigestRealm,
		Nonce:    params["nonce"],
		URI:      params["uri"],
		Qop:      params["qop"],
		Nc:       params["nc"],
		Cnonce:   params["cnonce"],
		Method:   method,
	}
	return subtle.ConstantTimeCompare([]byte(expected.ComputeDigestResponse()), []byte(params["response"])) == 1
}

// Issued digest nonces expire after nonceTTL, and at most maxNonces are
// outstanding; issuing past the cap evicts the oldest.
const (
	nonceTTL  = 5 * time.Minute
	maxNonces = 1024
)

// nonceStore tracks digest nonces that were issued but not yet used.
type nonceStore struct {
	mu     sync.Mutex
	issued map[string]time.Time
	ttl    time.Duration
	max    int
	now    func() time.Time
}

func newNonceStore() *nonceStore {
	return &nonceStore{
		issued: make(map[string]time.Time),
		ttl:    nonceTTL,
		max:    maxNonces,
		now:    time.Now,
	}
}

func (n *nonceStore) issue() string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	n.expire(now)
	for len(n.issued) >= n.max {
		n.evictOldest()
	}
	n.issued[nonce] = now
	return nonce
}

func (n *nonceStore) consume(nonce string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	issuedAt, ok := n.issued[nonce]
	if !ok {
		return false
	}
	delete(n.issued, nonce)
	return n.now().Sub(issuedAt) <= n.ttl
}

func (n *nonceStore) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.issued)
}

func (n *nonceStore) expire(now time.Time) {
	for nonce, issuedAt := range n.issued {
		if now.Sub(issuedAt) > n.ttl {
			delete(n.issued, nonce)
		}
	}
}

func (n *nonceStore) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for nonce, issuedAt := range n.issued {
		if oldest == "" || issuedAt.Before(oldestAt) {
			oldest, oldestAt = nonce, issuedAt
		}
	}
	delete(n.issued, oldest)
}
