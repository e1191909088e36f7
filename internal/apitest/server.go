// Package apitest is an in-memory implementation of the clipboard service
// API for tests. It speaks the same wire format as the real server: JSON
// bodies, an accessToken JWT cookie and Last-Modified based clipboard
// versions.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/validation"
	"github.com/dmitrijs2005/clipshare/internal/common"
)

// Generic error codes, next to the auth codes of package client.
const (
	CodeBadRequest   = "ERR_0400"
	CodeUnauthorized = "ERR_0401"
	CodeForbidden    = "ERR_0403"
	CodeNotFound     = "ERR_0404"
	CodeUnsupported  = "ERR_0415"
)

type user struct {
	id        uint64
	name      string
	password  string
	createdAt time.Time
}

type clipboard struct {
	text    string
	modTime time.Time
}

type session struct {
	id        uint64
	owner     uint64
	name      string
	createdAt time.Time
	updatedAt time.Time
	clipboard *clipboard
}

type authority struct {
	userID uint64
	name   string
}

type ctxKey struct{}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// Server holds users, sessions and clipboards in memory.
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	mu         sync.Mutex
	users      map[string]*user
	sessions   map[uint64]*session
	blocked    map[string]struct{}
	nextUser   uint64
	nextSess   uint64
	lastWrite  time.Time
	requestIDs []string
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: time.Hour,
		now:      time.Now,
		users:    map[string]*user{},
		sessions: map[uint64]*session{},
		blocked:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves s on a loopback httptest server. The caller closes it.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordRequestID)

	r.Post("/signup", s.signUp)
	r.Post("/signin", s.signIn)
	r.Post("/signout", s.signOut)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(s.authorized)
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Get("/{sessionID}", s.getSession)
		r.Put("/{sessionID}", s.updateSession)
		r.Delete("/{sessionID}", s.deleteSession)
		r.Get("/{sessionID}/clipboard", s.getClipboard)
		r.Put("/{sessionID}/clipboard", s.setClipboard)
	})

	return r
}

// RequestIDs returns the X-Request-ID values seen so far.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// SessionCount returns the number of sessions owned by name.
func (s *Server) SessionCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[name]
	if !ok {
		return 0
	}
	n := 0
	for _, sess := range s.sessions {
		if sess.owner == u.id {
			n++
		}
	}
	return n
}

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(common.RequestIDHeader); id != "" {
			s.mu.Lock()
			s.requestIDs = append(s.requestIDs, id)
			s.mu.Unlock()
		}
		next.ServeHTTP(rw, r)
	})
}

type namePassword struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userDTO struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	CreatedAtMillis int64  `json:"created_at_millis"`
	UpdatedAtMillis int64  `json:"updated_at_millis"`
}

type sessionDTO struct {
	SessionID uint64 `json:"session_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type sessionListDTO struct {
	Items      []sessionDTO `json:"items"`
	TotalItems int          `json:"totalItems"`
}

func toUserDTO(u *user) userDTO {
	return userDTO{
		ID:              u.id,
		Name:            u.name,
		CreatedAtMillis: u.createdAt.UnixMilli(),
		UpdatedAtMillis: u.createdAt.UnixMilli(),
	}
}

func toSessionDTO(s *session) sessionDTO {
	return sessionDTO{
		SessionID: s.id,
		Name:      s.name,
		CreatedAt: s.createdAt.UnixMilli(),
		UpdatedAt: s.updatedAt.UnixMilli(),
	}
}

func (s *Server) signUp(rw http.ResponseWriter, r *http.Request) {
	var req namePassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(rw, http.StatusBadRequest, CodeBadRequest, "failed to parse request")
		return
	}

	if res := validation.ValidateUsername(validation.SignUp, req.Name); !res.Valid {
		sendError(rw, http.StatusBadRequest, CodeBadRequest, res.Feedback)
		return
	}
	if res := validation.ValidatePassword(validation.SignUp, req.Password); !res.Valid {
		sendError(rw, http.StatusBadRequest, client.CodeSignUpWeakPassword, "password is too weak")
		return
	}

	s.mu.Lock()
	if _, taken := s.users[req.Name]; taken {
		s.mu.Unlock()
		sendError(rw, http.StatusConflict, client.CodeSignUpNameTaken, "user already exists")
		return
	}
	s.nextUser++
	u := &user{id: s.nextUser, name: req.Name, password: req.Password, createdAt: s.now()}
	s.users[u.name] = u
	s.mu.Unlock()

	if err := s.setAccessToken(rw, u); err != nil {
		sendError(rw, http.StatusInternalServerError, "ERR_0500", err.Error())
		return
	}
	sendJSON(rw, http.StatusCreated, toUserDTO(u))
}

func (s *Server) signIn(rw http.ResponseWriter, r *http.Request) {
	var req namePassword
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(rw, http.StatusBadRequest, CodeBadRequest, "failed to parse request")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Name]
	s.mu.Unlock()

	if !ok {
		sendError(rw, http.StatusNotFound, client.CodeSignInNameNotFound, "user not found")
		return
	}
	if u.password != req.Password {
		sendError(rw, http.StatusUnauthorized, client.CodeSignInWrongPassword, "wrong password")
		return
	}

	if err := s.setAccessToken(rw, u); err != nil {
		sendError(rw, http.StatusInternalServerError, "ERR_0500", err.Error())
		return
	}
	sendJSON(rw, http.StatusOK, toUserDTO(u))
}

func (s *Server) signOut(rw http.ResponseWriter, r *http.Request) {
	if claims, err := s.parseToken(r); err == nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			s.mu.Lock()
			s.blocked[jti] = struct{}{}
			s.mu.Unlock()
		}
	}

	http.SetCookie(rw, &http.Cookie{Name: common.AccessTokenCookieName, Path: "/", MaxAge: -1})
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) setAccessToken(rw http.ResponseWriter, u *user) error {
	exp := s.now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(u.id, 10),
		"username": u.name,
		"exp":      exp.Unix(),
		"jti":      uuid.NewString(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	http.SetCookie(rw, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
	})
	return nil
}

var errNoToken = errors.New("access token not found")

func (s *Server) parseToken(r *http.Request) (jwt.MapClaims, error) {
	ck, err := r.Cookie(common.AccessTokenCookieName)
	if err != nil || ck.Value == "" {
		return nil, errNoToken
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(ck.Value, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Server) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		claims, err := s.parseToken(r)
		if errors.Is(err, errNoToken) {
			sendError(rw, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
			return
		}
		if err != nil {
			sendError(rw, http.StatusForbidden, CodeForbidden, "JWT token is not valid or expired")
			return
		}

		jti, _ := claims["jti"].(string)
		s.mu.Lock()
		_, blocked := s.blocked[jti]
		s.mu.Unlock()
		if blocked {
			sendError(rw, http.StatusForbidden, CodeForbidden, "JWT token is not valid or expired")
			return
		}

		sub, _ := claims.GetSubject()
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			sendError(rw, http.StatusForbidden, CodeForbidden, "JWT token is not valid or expired")
			return
		}
		name, _ := claims["username"].(string)

		ctx := context.WithValue(r.Context(), ctxKey{}, authority{userID: id, name: name})
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

func authorityFrom(r *http.Request) authority {
	a, _ := r.Context().Value(ctxKey{}).(authority)
	return a
}

func (s *Server) listSessions(rw http.ResponseWriter, r *http.Request) {
	a := authorityFrom(r)
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = common.DefaultPageSize
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	desc := q.Get("desc") == "true"

	var less func(x, y *session) bool
	switch q.Get("sortBy") {
	case "name":
		less = func(x, y *session) bool { return x.name < y.name }
	case "created_at":
		less = func(x, y *session) bool { return x.createdAt.Before(y.createdAt) }
	case "updated_at", "":
		less = func(x, y *session) bool { return x.updatedAt.Before(y.updatedAt) }
	default:
		sendError(rw, http.StatusBadRequest, CodeBadRequest, "unsupported sortBy")
		return
	}

	s.mu.Lock()
	owned := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.owner == a.userID {
			owned = append(owned, sess)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		x, y := owned[i], owned[j]
		if desc {
			x, y = y, x
		}
		if less(x, y) {
			return true
		}
		if less(y, x) {
			return false
		}
		return x.id < y.id
	})

	res := sessionListDTO{Items: []sessionDTO{}, TotalItems: len(owned)}
	for i := offset; i < len(owned) && i < offset+limit; i++ {
		res.Items = append(res.Items, toSessionDTO(owned[i]))
	}
	s.mu.Unlock()

	sendJSON(rw, http.StatusOK, res)
}

func (s *Server) createSession(rw http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(rw, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.nextSess++
	now := s.now()
	sess := &session{id: s.nextSess, owner: authorityFrom(r).userID, name: name, createdAt: now, updatedAt: now}
	s.sessions[sess.id] = sess
	dto := toSessionDTO(sess)
	s.mu.Unlock()

	sendJSON(rw, http.StatusCreated, dto)
}

func (s *Server) getSession(rw http.ResponseWriter, r *http.Request) {
	s.withSession(rw, r, func(sess *session) {
		sendJSON(rw, http.StatusOK, toSessionDTO(sess))
	})
}

func (s *Server) updateSession(rw http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(rw, r)
	if !ok {
		return
	}
	s.withSession(rw, r, func(sess *session) {
		sess.name = name
		sess.updatedAt = s.now()
		sendJSON(rw, http.StatusOK, toSessionDTO(sess))
	})
}

func (s *Server) deleteSession(rw http.ResponseWriter, r *http.Request) {
	s.withSession(rw, r, func(sess *session) {
		delete(s.sessions, sess.id)
		rw.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) getClipboard(rw http.ResponseWriter, r *http.Request) {
	s.withSession(rw, r, func(sess *session) {
		cb := sess.clipboard
		if cb == nil {
			rw.WriteHeader(http.StatusNoContent)
			return
		}

		if ims := r.Header.Get(common.IfModifiedSinceHeader); ims != "" {
			if t, err := http.ParseTime(ims); err == nil && !cb.modTime.After(t) {
				rw.WriteHeader(http.StatusNotModified)
				return
			}
		}

		rw.Header().Set(common.ContentTypeHeader, common.ContentTypeText)
		rw.Header().Set(common.LastModifiedHeader, cb.modTime.UTC().Format(http.TimeFormat))
		rw.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(rw, cb.text)
	})
}

func (s *Server) setClipboard(rw http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get(common.ContentTypeHeader), common.ContentTypeText) {
		sendError(rw, http.StatusUnsupportedMediaType, CodeUnsupported, "content type must be text/plain")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(rw, http.StatusBadRequest, CodeBadRequest, "failed to read body")
		return
	}

	s.withSession(rw, r, func(sess *session) {
		sess.clipboard = &clipboard{text: string(body), modTime: s.nextModTime()}
		sess.updatedAt = s.now()
		rw.WriteHeader(http.StatusNoContent)
	})
}

// nextModTime returns a second-granular time strictly after the previous
// write, so every write gets a distinct Last-Modified. Callers hold s.mu.
func (s *Server) nextModTime() time.Time {
	t := s.now().UTC().Truncate(time.Second)
	if !t.After(s.lastWrite) {
		t = s.lastWrite.Add(time.Second)
	}
	s.lastWrite = t
	return t
}

// withSession runs fn under the lock with the caller's session, or answers
// 404 when the id is unknown or owned by somebody else.
func (s *Server) withSession(rw http.ResponseWriter, r *http.Request, fn func(*session)) {
	id, err := strconv.ParseUint(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		sendError(rw, http.StatusNotFound, CodeNotFound, "session not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.owner != authorityFrom(r).userID {
		sendError(rw, http.StatusNotFound, CodeNotFound, "session not found")
		return
	}
	fn(sess)
}

func decodeName(rw http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		sendError(rw, http.StatusBadRequest, CodeBadRequest, "name is required")
		return "", false
	}
	return req.Name, true
}

func sendJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set(common.ContentTypeHeader, common.ContentTypeJSON)
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func sendError(rw http.ResponseWriter, status int, code, message string) {
	sendJSON(rw, status, struct {
		Error   bool   `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}{Error: true, Code: code, Message: message})
}
