// Package client is a typed HTTP client for the pinboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:5000"

type Author struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Comment struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	PinID     uint      `json:"pinId"`
	AuthorID  uint      `json:"authorId"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Pin struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Image        string    `json:"image"`
	ExternalLink string    `json:"externallink"`
	AuthorID     uint      `json:"authorId"`
	Author       Author    `json:"author"`
	Likes        int64     `json:"likes"`
	Comments     []Comment `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Board struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"ownerId"`
	Pins      []Pin     `json:"pins"`
	CreatedAt time.Time `json:"createdAt"`
}

type LikeResult struct {
	Removed bool  `json:"removed"`
	Liked   bool  `json:"liked"`
	Likes   int64 `json:"likes"`
}

// PinUpdate changes only the non-nil fields.
type PinUpdate struct {
	Title        *string `json:"title,omitempty"`
	ExternalLink *string `json:"externallink,omitempty"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, msg)
	}
	fields := make([]string, 0, len(e.Errors))
	for field, problem := range e.Errors {
		fields = append(fields, field+" "+problem)
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, msg, strings.Join(fields, "; "))
}

// Client calls the API at BaseURL, authenticating with Token when it is set.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, "", nil, out)
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(raw), out)
}

func (c *Client) Signup(ctx context.Context, email, password, name string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/signup", map[string]string{"email": email, "password": password, "name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Signin exchanges credentials for a token and keeps it for later calls.
func (c *Client) Signin(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/signin", map[string]string{"email": email, "password": password}, &resp); err != nil {
		return "", err
	}
	c.Token = resp.Token
	return resp.Token, nil
}

// Feed lists every pin, newest first.
func (c *Client) Feed(ctx context.Context) ([]Pin, error) {
	var pins []Pin
	if err := c.doJSON(ctx, http.MethodGet, "/api/pins", nil, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

func (c *Client) Pin(ctx context.Context, id uint) (*Pin, error) {
	var pin Pin
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/pins/%d", id), nil, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// CreatePin uploads image as a multipart form together with the pin fields.
func (c *Client) CreatePin(ctx context.Context, title, externalLink, filename string, image io.Reader) (*Pin, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}
	if err := mw.WriteField("externallink", externalLink); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var pin Pin
	if err := c.do(ctx, http.MethodPost, "/api/pins", mw.FormDataContentType(), &buf, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

func (c *Client) UpdatePin(ctx context.Context, id uint, update PinUpdate) (*Pin, error) {
	var pin Pin
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/pins/%d", id), update, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

func (c *Client) DeletePin(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/pins/%d", id), nil, nil)
}

func (c *Client) Comments(ctx context.Context, pinID uint) ([]Comment, error) {
	var comments []Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/pins/%d/comments", pinID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) Comment(ctx context.Context, pinID uint, text string) (*Comment, error) {
	var comment Comment
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/pins/%d/comments", pinID), map[string]string{"text": text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Like toggles the caller's like on the pin.
func (c *Client) Like(ctx context.Context, pinID uint) (*LikeResult, error) {
	var result LikeResult
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/pins/%d/likes", pinID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Boards(ctx context.Context) ([]Board, error) {
	var boards []Board
	if err := c.doJSON(ctx, http.MethodGet, "/api/boards", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (c *Client) Board(ctx context.Context, id uint) (*Board, error) {
	var board Board
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/boards/%d", id), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) CreateBoard(ctx context.Context, name string) (*Board, error) {
	var board Board
	if err := c.doJSON(ctx, http.MethodPost, "/api/boards", map[string]string{"name": name}, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) AddPinToBoard(ctx context.Context, boardID, pinID uint) (*Board, error) {
	var board Board
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/boards/%d/pins", boardID), map[string]uint{"pinId": pinID}, &board); err != nil {
		return nil, err
	}
	return &board, nil
}
