// Package platform wraps the civic platform's HTTP API. Every call carries a
// fixed timeout and reports failure as a *Error; nothing panics across it.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civicsim/internal/domain"
)

const (
	maxResponseBytes = 1 << 20
	maxMessageRunes  = 200
)

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// idRef decodes any {"id": ...} object.
type idRef struct {
	ID string `json:"id"`
}

type envelope struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Token   string         `json:"token,omitempty"`
	User    *idRef         `json:"user,omitempty"`
	Post    *idRef         `json:"post,omitempty"`
	Posts   []trendingPost `json:"posts,omitempty"`
}

type trendingPost struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
	Author   *idRef `json:"author,omitempty"`
}

func (c *Client) Register(ctx context.Context, profile domain.Profile) (domain.Identity, error) {
	var env envelope
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", profile, &env); err != nil {
		return domain.Identity{}, err
	}
	id := domain.Identity{Token: env.Token}
	if env.User != nil {
		id.UserID = env.User.ID
	}
	return id, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var env envelope
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", body, &env); err != nil {
		return domain.Session{}, err
	}
	if env.Token == "" {
		return domain.Session{}, &Error{Op: "login", Kind: KindRejection, Message: "response carried no token"}
	}
	session := domain.Session{Token: env.Token}
	if env.User != nil {
		session.UserID = env.User.ID
	}
	return session, nil
}

func (c *Client) CreatePost(ctx context.Context, token, text string, isPolitical bool) (string, error) {
	body := map[string]interface{}{"content": text, "isPolitical": isPolitical}
	var env envelope
	if err := c.do(ctx, "create post", http.MethodPost, "/posts", token, body, &env); err != nil {
		return "", err
	}
	if env.Post == nil {
		return "", nil
	}
	return env.Post.ID, nil
}

func (c *Client) LikePost(ctx context.Context, token, postID string) error {
	path := "/posts/" + url.PathEscape(postID) + "/like"
	var env envelope
	return c.do(ctx, "like post", http.MethodPost, path, token, nil, &env)
}

func (c *Client) TrendingPosts(ctx context.Context) ([]domain.Post, error) {
	var env envelope
	if err := c.do(ctx, "trending", http.MethodGet, "/feed/trending", "", nil, &env); err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(env.Posts))
	for _, p := range env.Posts {
		author := p.AuthorID
		if author == "" && p.Author != nil {
			author = p.Author.ID
		}
		posts = append(posts, domain.Post{ID: p.ID, Content: p.Content, AuthorID: author})
	}
	return posts, nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body interface{}, out *envelope) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}
	decodeErr := json.Unmarshal(raw, out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, Kind: KindRejection, Status: resp.StatusCode, Message: failureMessage(out, raw)}
	}
	if decodeErr != nil {
		return &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if !out.Success {
		return &Error{Op: op, Kind: KindRejection, Status: resp.StatusCode, Message: failureMessage(out, raw)}
	}
	return nil
}

func failureMessage(env *envelope, raw []byte) string {
	if env.Error != "" {
		return env.Error
	}
	if env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(raw))
	if runes := []rune(msg); len(runes) > maxMessageRunes {
		msg = string(runes[:maxMessageRunes])
	}
	if msg == "" {
		return "request failed"
	}
	return msg
}
