package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/common"
	"github.com/dmitrijs2005/clipshare/internal/logging"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error response is read for decoding.
const maxErrorBody = 64 << 10

type (
	namePasswordRequest struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	sessionNameRequest struct {
		Name string `json:"name"`
	}

	accountDTO struct {
		ID              uint64 `json:"id"`
		Name            string `json:"name"`
		CreatedAtMillis int64  `json:"created_at_millis"`
		UpdatedAtMillis int64  `json:"updated_at_millis"`
	}

	sessionDTO struct {
		SessionID flexID `json:"session_id"`
		Name      string `json:"name"`
		CreatedAt int64  `json:"created_at"`
		UpdatedAt int64  `json:"updated_at"`
	}

	sessionListDTO struct {
		Items      []sessionDTO `json:"items"`
		TotalItems int          `json:"totalItems"`
	}

	errorDTO struct {
		Error   bool   `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

// flexID accepts both numeric and string JSON identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		*id = flexID(unquoted)
		return nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("invalid id %s", s)
	}
	*id = flexID(s)
	return nil
}

func (d accountDTO) toModel() *models.Account {
	return &models.Account{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: time.UnixMilli(d.CreatedAtMillis).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAtMillis).UTC(),
	}
}

func (d sessionDTO) toModel() models.Session {
	return models.Session{
		ID:        string(d.SessionID),
		Name:      d.Name,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt).UTC(),
	}
}

// HTTPClient implements Client over the service's HTTP/JSON API.
// The access token lives in a cookie jar, as it would in a browser.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	log     logging.Logger
}

// NewHTTPClient builds a client for the API rooted at baseURL. Every request is
// bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout, Jar: jar},
		jar:     jar,
		log:     log.With("component", "api"),
	}, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, name, password string) (*models.Account, error) {
	return c.authenticate(ctx, "signup", name, password)
}

func (c *HTTPClient) SignIn(ctx context.Context, name, password string) (*models.Account, error) {
	return c.authenticate(ctx, "signin", name, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, op, name, password string) (*models.Account, error) {
	body, err := json.Marshal(namePasswordRequest{Name: name, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, op, http.MethodPost, c.endpoint(op), bytes.NewReader(body), common.ContentTypeJSON, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.mapError(op, resp)
	}

	var dto accountDTO
	if err := decodeJSON(op, resp, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	const op = "signout"

	resp, err := c.do(ctx, op, http.MethodPost, c.endpoint(op), nil, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return c.mapError(op, resp)
	}

	c.SetAccessToken("")
	return nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, params models.ListParams) (*models.SessionPage, error) {
	const op = "list sessions"

	u := c.endpoint("sessions")
	q := url.Values{}
	q.Set("sortBy", params.SortBy)
	q.Set("desc", strconv.FormatBool(params.SortDesc))
	q.Set("limit", strconv.Itoa(params.PageSize))
	q.Set("offset", strconv.Itoa(params.Offset()))
	u.RawQuery = q.Encode()

	resp, err := c.do(ctx, op, http.MethodGet, u, nil, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.mapError(op, resp)
	}

	var dto sessionListDTO
	if err := decodeJSON(op, resp, &dto); err != nil {
		return nil, err
	}

	page := &models.SessionPage{Items: make([]models.Session, 0, len(dto.Items)), TotalItems: dto.TotalItems}
	for _, s := range dto.Items {
		page.Items = append(page.Items, s.toModel())
	}
	return page, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context, name string) (*models.Session, error) {
	return c.sendSession(ctx, "create session", http.MethodPost, c.endpoint("sessions"), name)
}

func (c *HTTPClient) UpdateSession(ctx context.Context, id, name string) (*models.Session, error) {
	return c.sendSession(ctx, "update session", http.MethodPut, c.endpoint("sessions", id), name)
}

func (c *HTTPClient) sendSession(ctx context.Context, op, method string, u *url.URL, name string) (*models.Session, error) {
	body, err := json.Marshal(sessionNameRequest{Name: name})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, op, method, u, bytes.NewReader(body), common.ContentTypeJSON, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.mapError(op, resp)
	}

	var dto sessionDTO
	if err := decodeJSON(op, resp, &dto); err != nil {
		return nil, err
	}
	s := dto.toModel()
	return &s, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const op = "get session"

	resp, err := c.do(ctx, op, http.MethodGet, c.endpoint("sessions", id), nil, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, c.mapError(op, resp)
	}

	var dto sessionDTO
	if err := decodeJSON(op, resp, &dto); err != nil {
		return nil, err
	}
	s := dto.toModel()
	return &s, nil
}

func (c *HTTPClient) DeleteSession(ctx context.Context, id string) error {
	const op = "delete session"

	resp, err := c.do(ctx, op, http.MethodDelete, c.endpoint("sessions", id), nil, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return c.mapError(op, resp)
	}
	return nil
}

func (c *HTTPClient) FetchClipboard(ctx context.Context, sessionID, token string) (FetchResult, error) {
	const op = "fetch clipboard"

	headers := http.Header{}
	headers.Set("Cache-Control", "no-store")
	if token != "" {
		headers.Set(common.IfModifiedSinceHeader, token)
	}

	resp, err := c.do(ctx, op, http.MethodGet, c.endpoint("sessions", sessionID, "clipboard"), nil, "", headers)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return FetchResult{Status: FetchNotModified}, nil
	case http.StatusNoContent:
		return FetchResult{Status: FetchNoContent}, nil
	case http.StatusOK:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
		}
		return FetchResult{
			Status:       FetchNewValue,
			Text:         string(b),
			LastModified: resp.Header.Get(common.LastModifiedHeader),
		}, nil
	}
	return FetchResult{}, c.mapError(op, resp)
}

func (c *HTTPClient) PushClipboard(ctx context.Context, sessionID, text string) error {
	const op = "push clipboard"

	resp, err := c.do(ctx, op, http.MethodPut, c.endpoint("sessions", sessionID, "clipboard"),
		strings.NewReader(text), common.ContentTypeText, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return c.mapError(op, resp)
	}
	return nil
}

// AccessToken returns the access token cookie currently held for the server.
func (c *HTTPClient) AccessToken() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == common.AccessTokenCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetAccessToken restores a previously saved access token. An empty token
// removes the cookie.
func (c *HTTPClient) SetAccessToken(token string) {
	ck := &http.Cookie{Name: common.AccessTokenCookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.jar.SetCookies(c.baseURL, []*http.Cookie{ck})
}

func (c *HTTPClient) endpoint(elem ...string) *url.URL {
	return c.baseURL.JoinPath(elem...)
}

func (c *HTTPClient) do(ctx context.Context, op, method string, u *url.URL, body io.Reader, contentType string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set(common.ContentTypeHeader, contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	c.log.Debug(ctx, "api call", "op", op, "status", resp.StatusCode, "request_id", requestID)
	return resp, nil
}

// mapError turns a non-2xx response into an *APIError, decoding the
// structured error body when there is one.
func (c *HTTPClient) mapError(op string, resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(b) > 0 {
		var dto errorDTO
		if jerr := json.Unmarshal(b, &dto); jerr == nil && dto.Code != "" {
			apiErr.Code = dto.Code
			apiErr.Message = dto.Message
		}
	}

	c.log.Warn(context.Background(), "api call failed", "op", op, "status", apiErr.Status, "code", apiErr.Code)
	return fmt.Errorf("%s: %w", op, apiErr)
}

func decodeJSON(op string, resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
