package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/filex"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/config"
	"github.com/dmitrijs2005/gophgram/internal/server/httpapi"
	"github.com/dmitrijs2005/gophgram/internal/server/media"
	"github.com/dmitrijs2005/gophgram/internal/server/presence"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
	"github.com/dmitrijs2005/gophgram/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopUploader struct{}

func (nopUploader) Upload(_ context.Context, prefix string, obj media.Object) (string, error) {
	return "http://cdn.test/" + prefix + "/" + obj.Name, nil
}

// startServer runs the real API over a memory store.
func startServer(t *testing.T) string {
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

	h := httpapi.NewHandler(
		services.NewSessionService(m, cryptox.BcryptHasher{Cost: 4}, cfg),
		services.NewGraphService(m, hub, logger),
		services.NewProfileService(m, nopUploader{}, logger),
		services.NewPostService(m, nopUploader{}, hub, logger),
		hub, logger, httpapi.Options{RequireToken: true},
	)

	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		cancel()
		<-hubDone
		srv.Close()
	})
	return srv.URL
}

func loggedIn(t *testing.T, baseURL, name string) (*HTTPClient, *models.Profile) {
	t.Helper()
	ctx := context.Background()

	c, err := NewHTTPClient(baseURL, 5*time.Second)
	require.NoError(t, err)

	_, err = c.Register(ctx, name, name+"@example.org", []byte("secret-"+name))
	require.NoError(t, err)

	p, err := c.Login(ctx, name+"@example.org", []byte("secret-"+name))
	require.NoError(t, err)
	return c, p
}

type frames chan wire.Envelope

func listen(t *testing.T, c *HTTPClient, userID string) frames {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(frames, 32)
	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx, userID, func(e wire.Envelope) { ch <- e }) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("listener did not stop")
		}
	})
	return ch
}

// waitFor returns the first frame satisfying ok.
func (f frames) waitFor(t *testing.T, ok func(wire.Envelope) bool) wire.Envelope {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e := <-f:
			if ok(e) {
				return e
			}
		case <-timeout:
			t.Fatal("expected frame did not arrive")
			return wire.Envelope{}
		}
	}
}

func presenceWith(ids ...string) func(wire.Envelope) bool {
	return func(e wire.Envelope) bool {
		got, err := e.Presence()
		return err == nil && slices.Equal(got, ids)
	}
}

func TestHTTPClient_FollowIsRelayedToTarget(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	alice, ap := loggedIn(t, base, "alice")
	bob, bp := loggedIn(t, base, "bob")

	aliceFrames := listen(t, alice, ap.ID)
	aliceFrames.waitFor(t, presenceWith(ap.ID))

	bobFrames := listen(t, bob, bp.ID)
	want := []string{ap.ID, bp.ID}
	slices.Sort(want)
	bobFrames.waitFor(t, presenceWith(want...))

	online, err := alice.Online(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, online)

	following, err := alice.ToggleFollow(ctx, bp.ID)
	require.NoError(t, err)
	assert.True(t, following)

	e := bobFrames.waitFor(t, func(e wire.Envelope) bool { return e.Type == wire.TypeNotification })
	var n models.Notification
	require.NoError(t, e.Decode(&n))
	assert.Equal(t, "follow", n.Kind)
	assert.Equal(t, ap.ID, n.Actor.ID)
	assert.Equal(t, bp.ID, n.TargetUserID)

	profile, err := alice.Profile(ctx, bp.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ap.ID}, profile.Followers)

	following, err = alice.ToggleFollow(ctx, bp.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestHTTPClient_PostsAndLikes(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	alice, ap := loggedIn(t, base, "alice")
	bob, bp := loggedIn(t, base, "bob")
	aliceFrames := listen(t, alice, ap.ID)
	aliceFrames.waitFor(t, presenceWith(ap.ID))

	post, err := alice.AddPost(ctx, "sunset", &filex.File{Name: "s.png", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	assert.Equal(t, "sunset", post.Caption)
	assert.Contains(t, post.Image, "s.png")

	require.NoError(t, bob.Like(ctx, post.ID))
	e := aliceFrames.waitFor(t, func(e wire.Envelope) bool { return e.Type == wire.TypeNotification })
	var n models.Notification
	require.NoError(t, e.Decode(&n))
	assert.Equal(t, "like", n.Kind)
	assert.Equal(t, bp.ID, n.Actor.ID)

	require.NoError(t, bob.Dislike(ctx, post.ID))

	p, err := bob.Profile(ctx, ap.ID)
	require.NoError(t, err)
	require.Len(t, p.Posts, 1)
	assert.Empty(t, p.Posts[0].Likes)
}

func TestHTTPClient_ProfileEditAndSuggested(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	alice, _ := loggedIn(t, base, "alice")
	_, bp := loggedIn(t, base, "bob")

	u, err := alice.EditProfile(ctx, ProfileEdit{
		Bio:     "hello",
		Gender:  "Female",
		Picture: &filex.File{Name: "me.png", ContentType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "female", u.Gender)
	assert.Contains(t, u.ProfilePicture, "me.png")

	list, err := alice.Suggested(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bp.ID, list[0].ID)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	c, err := NewHTTPClient(base, 5*time.Second)
	require.NoError(t, err)

	_, err = c.Login(ctx, "nobody@example.org", []byte("x"))
	assert.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Incorrect email or password", apiErr.Message)

	_, err = c.Register(ctx, "alice", "alice@example.org", []byte("pw"))
	require.NoError(t, err)
	_, err = c.Register(ctx, "alice", "alice@example.org", []byte("pw"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = c.ToggleFollow(ctx, "whoever")
	assert.ErrorIs(t, err, ErrUnauthorized, "no session yet")

	p, err := c.Login(ctx, "alice@example.org", []byte("pw"))
	require.NoError(t, err)

	_, err = c.ToggleFollow(ctx, p.ID)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = c.ToggleFollow(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Suggested(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized, "cookie cleared on logout")
}

func TestHTTPClient_ListenRejectedWithoutSession(t *testing.T) {
	base := startServer(t)

	c, err := NewHTTPClient(base, 5*time.Second)
	require.NoError(t, err)

	err = c.Listen(context.Background(), "u1", func(wire.Envelope) {})
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, c.Listen(context.Background(), "", nil), ErrNotLoggedIn)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewHTTPClient(base, time.Second)
	require.NoError(t, err)

	_, err = c.Online(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.Online(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
