package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/presence"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/dmitrijs2005/gophgram/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	prefix string
	data   []byte
}

func (s *stubUploader) Upload(_ context.Context, prefix string, obj media.Object) (string, error) {
	s.prefix = prefix
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	s.data = b
	return "http://cdn.test/media/" + prefix + "/" + obj.Name, nil
}

type testEnv struct {
	srv      *httptest.Server
	hub      *presence.Hub
	manager  *repomanager.MemoryRepositoryManager
	sessions *services.SessionService
	uploader *stubUploader
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	logger := logging.Nop{}
	cfg := &config.Config{SecretKey: "test-secret", SessionTokenValidityDuration: 24 * time.Hour}

	m := repomanager.NewMemoryRepositoryManager()
	hub := presence.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	up := &stubUploader{}
	sessions := services.NewSessionService(m, cryptox.BcryptHasher{Cost: 4}, cfg)
	h := NewHandler(
		sessions,
		services.NewGraphService(m, hub, logger),
		services.NewProfileService(m, up, logger),
		services.NewPostService(m, up, hub, logger),
		hub, logger, opts,
	)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		cancel()
		<-hubDone
		srv.Close()
	})

	return &testEnv{srv: srv, hub: hub, manager: m, sessions: sessions, uploader: up}
}

// user is a logged-in API client with its own cookie jar.
type user struct {
	id     string
	token  string
	client *http.Client
}

func (e *testEnv) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func (e *testEnv) signup(t *testing.T, name string) *user {
	t.Helper()
	c := e.newClient(t)

	resp := doJSON(t, c, http.MethodPost, e.srv.URL+"/api/v1/user/register", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw-" + name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, c, http.MethodPost, e.srv.URL+"/api/v1/user/login", map[string]string{
		"email": name + "@example.com", "password": "pw-" + name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, resp, &body)

	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == "token" {
			token = ck.Value
		}
	}
	require.NotEmpty(t, token)
	return &user{id: body.User.ID, token: token, client: c}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) dialWS(t *testing.T, userID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?userId=" + userID
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn, match func(wire.Envelope) bool) wire.Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var e wire.Envelope
		require.NoError(t, ws.ReadJSON(&e))
		if match(e) {
			return e
		}
	}
}

func presenceOf(want ...string) func(wire.Envelope) bool {
	return func(e wire.Envelope) bool {
		ids, err := e.Presence()
		if err != nil || len(ids) != len(want) {
			return false
		}
		for _, w := range want {
			found := false
			for _, id := range ids {
				found = found || id == w
			}
			if !found {
				return false
			}
		}
		return true
	}
}

func isNotification(e wire.Envelope) bool { return e.Type == wire.TypeNotification }
