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
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/filex"
	"github.com/dmitrijs2005/gophgram/internal/netx"
	"github.com/dmitrijs2005/gophgram/internal/wire"
	"github.com/gorilla/websocket"
)

// HTTPClient is not safe for concurrent Login/Logout; the other calls may
// run in parallel.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
		dialer: &websocket.Dialer{
			Jar:              jar,
			HandshakeTimeout: timeout,
		},
	}, nil
}

type envelope struct {
	Message   string          `json:"message"`
	Success   bool            `json:"success"`
	User      json.RawMessage `json:"user,omitempty"`
	Users     []models.User   `json:"users,omitempty"`
	Post      *models.Post    `json:"post,omitempty"`
	Following bool            `json:"following"`
	Online    []string        `json:"onlineUsers,omitempty"`
}

func (c *HTTPClient) Register(ctx context.Context, username, email string, password []byte) (*models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": string(password)}
	var resp envelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/user/register", body, &resp); err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(resp.User, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.Profile, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var resp envelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/user/login", body, &resp); err != nil {
		return nil, err
	}
	return decodeProfile(resp.User)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/user/logout", nil, nil)
}

func (c *HTTPClient) ToggleFollow(ctx context.Context, userID string) (bool, error) {
	var resp envelope
	path := "/api/v1/user/followorunfollow/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Following, nil
}

func (c *HTTPClient) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var resp envelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/user/"+url.PathEscape(userID)+"/profile", nil, &resp); err != nil {
		return nil, err
	}
	return decodeProfile(resp.User)
}

func (c *HTTPClient) EditProfile(ctx context.Context, edit ProfileEdit) (*models.User, error) {
	fields := map[string]string{}
	if edit.Bio != "" {
		fields["bio"] = edit.Bio
	}
	if edit.Gender != "" {
		fields["gender"] = edit.Gender
	}
	var resp envelope
	if err := c.doMultipart(ctx, "/api/v1/user/profile/edit", fields, "profilePicture", edit.Picture, &resp); err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(resp.User, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (c *HTTPClient) Suggested(ctx context.Context) ([]models.User, error) {
	var resp envelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/user/suggested", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *HTTPClient) Online(ctx context.Context) ([]string, error) {
	var resp envelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/user/online", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Online, nil
}

func (c *HTTPClient) AddPost(ctx context.Context, caption string, image *filex.File) (*models.Post, error) {
	var resp envelope
	fields := map[string]string{"caption": caption}
	if err := c.doMultipart(ctx, "/api/v1/post/addpost", fields, "image", image, &resp); err != nil {
		return nil, err
	}
	if resp.Post == nil {
		return nil, errors.New("empty post in response")
	}
	return resp.Post, nil
}

func (c *HTTPClient) Like(ctx context.Context, postID string) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/post/"+url.PathEscape(postID)+"/like", nil, nil)
}

func (c *HTTPClient) Dislike(ctx context.Context, postID string) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/post/"+url.PathEscape(postID)+"/dislike", nil, nil)
}

func decodeProfile(raw json.RawMessage) (*models.Profile, error) {
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *HTTPClient) doMultipart(ctx context.Context, path string, fields map[string]string, fileField string, file *filex.File, out any) error {
	body, contentType, err := netx.EncodeMultipart(fields, fileField, file)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(b, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

// Listen dials /ws with the session cookie and feeds frames to onFrame. It
// returns nil when ctx ends.
func (c *HTTPClient) Listen(ctx context.Context, userID string, onFrame func(wire.Envelope)) error {
	if userID == "" {
		return ErrNotLoggedIn
	}
	wsURL, err := netx.WebsocketURL(c.baseURL, "/ws", url.Values{"userId": {userID}})
	if err != nil {
		return err
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return mapError(resp)
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		var e wire.Envelope
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		onFrame(e)
	}
}
