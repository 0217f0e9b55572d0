// Package client talks to the gallery API on behalf of a single user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/models"
)

// ConnectionErrorMessage is reported when the server could not be reached
// or answered with something that is not an API error.
const ConnectionErrorMessage = "connection error"

var (
	ErrSubmitInFlight = errors.New("a previous submission is still in progress")
	ErrNotLoggedIn    = errors.New("not logged in")
)

type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Session is what a successful login yields. The zero value is logged out.
type Session struct {
	Username string
	Token    string
	Role     models.UserRole
}

func (s Session) LoggedIn() bool { return s.Token != "" }
func (s Session) IsAdmin() bool  { return s.Role == models.RoleAdmin }

type ProfileForm struct {
	Name       string   `json:"name"`
	Photo      string   `json:"photo"`
	Links      []string `json:"links"`
	Categories []string `json:"categories"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.Mutex
	session  Session
	inFlight map[string]bool
}

func New(cfg *config.ClientConfig) *Client {
	return NewWithHTTPClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     hc,
		inFlight: make(map[string]bool),
	}
}

func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	release, err := c.begin("login")
	if err != nil {
		return Session{}, err
	}
	defer release()

	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &resp); err != nil {
		return Session{}, err
	}

	session := Session{Username: username, Token: resp.Token, Role: models.UserRole(resp.Role)}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

// Logout forgets the token. Tokens are not revocable server side.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
}

func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}

	var docs []models.ProfileDocument
	if err := c.do(ctx, http.MethodGet, "/getProfiles", token, nil, &docs); err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(docs))
	for _, d := range docs {
		profiles = append(profiles, d.Profile())
	}
	return profiles, nil
}

func (c *Client) AddProfile(ctx context.Context, form ProfileForm) error {
	return c.submit(ctx, "addProfile", http.MethodPost, "/addProfile", form)
}

func (c *Client) EditProfile(ctx context.Context, id string, form ProfileForm) error {
	body := struct {
		ProfileID string `json:"profileId"`
		ProfileForm
	}{ProfileID: id, ProfileForm: form}
	return c.submit(ctx, "editProfile", http.MethodPut, "/editProfile", body)
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.submit(ctx, "deleteProfile", http.MethodDelete, "/deleteProfile", map[string]string{"profileId": id})
}

func (c *Client) AddUser(ctx context.Context, username, password string, role models.UserRole) error {
	body := map[string]string{"username": username, "password": password, "role": string(role)}
	return c.submit(ctx, "addUser", http.MethodPost, "/addUser", body)
}

// UploadPhoto stores an image and returns the URL to use as a profile photo.
func (c *Client) UploadPhoto(ctx context.Context, filename string, r io.Reader) (string, error) {
	release, err := c.begin("uploadPhoto")
	if err != nil {
		return "", err
	}
	defer release()

	token, err := c.token()
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploadPhoto", buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) submit(ctx context.Context, form, method, path string, body any) error {
	release, err := c.begin(form)
	if err != nil {
		return err
	}
	defer release()

	token, err := c.token()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, token, body, nil)
}

// begin marks form as submitted until the returned func is called.
func (c *Client) begin(form string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[form] {
		return nil, ErrSubmitInFlight
	}
	c.inFlight[form] = true
	return func() {
		c.mu.Lock()
		delete(c.inFlight, form)
		c.mu.Unlock()
	}, nil
}

func (c *Client) token() (string, error) {
	session := c.Session()
	if !session.LoggedIn() {
		return "", ErrNotLoggedIn
	}
	return session.Token, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: ConnectionErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: ConnectionErrorMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			return &APIError{Status: resp.StatusCode, Message: ConnectionErrorMessage, Err: err}
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: ConnectionErrorMessage, Err: err}
	}
	return nil
}
