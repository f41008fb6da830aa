package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/client/client"
	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/client/state"
	"github.com/dmitrijs2005/gophgram/internal/filex"
	"github.com/dmitrijs2005/gophgram/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	regUser, regEmail string
	regPass           []byte
	regErr            error

	loginEmail string
	loginPass  []byte
	profile    *models.Profile
	loginErr   error

	logoutCalled bool

	following   bool
	followedID  string
	followErr   error
	suggested   []models.User
	profiles    map[string]*models.Profile
	edit        client.ProfileEdit
	editResult  *models.User
	postCaption string
	postImage   *filex.File
	liked       []string
	disliked    []string

	// frames are pushed to the listener once it starts.
	frames     []wire.Envelope
	listenUser string
	listening  chan struct{}
}

func (f *fakeAPI) Register(_ context.Context, username, email string, password []byte) (*models.User, error) {
	f.regUser, f.regEmail, f.regPass = username, email, append([]byte(nil), password...)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "new", UserName: username}, nil
}

func (f *fakeAPI) Login(_ context.Context, email string, password []byte) (*models.Profile, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), password...)
	return f.profile, f.loginErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logoutCalled = true
	return nil
}

func (f *fakeAPI) ToggleFollow(_ context.Context, userID string) (bool, error) {
	f.followedID = userID
	return f.following, f.followErr
}

func (f *fakeAPI) Profile(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, client.ErrNotFound
	}
	return p, nil
}

func (f *fakeAPI) EditProfile(_ context.Context, edit client.ProfileEdit) (*models.User, error) {
	f.edit = edit
	return f.editResult, nil
}

func (f *fakeAPI) Suggested(context.Context) ([]models.User, error) { return f.suggested, nil }
func (f *fakeAPI) Online(context.Context) ([]string, error)         { return nil, nil }

func (f *fakeAPI) AddPost(_ context.Context, caption string, image *filex.File) (*models.Post, error) {
	f.postCaption, f.postImage = caption, image
	return &models.Post{ID: "p1", Caption: caption}, nil
}

func (f *fakeAPI) Like(_ context.Context, postID string) error {
	f.liked = append(f.liked, postID)
	return nil
}

func (f *fakeAPI) Dislike(_ context.Context, postID string) error {
	f.disliked = append(f.disliked, postID)
	return nil
}

func (f *fakeAPI) Listen(ctx context.Context, userID string, onFrame func(wire.Envelope)) error {
	f.mu.Lock()
	f.listenUser = userID
	frames := f.frames
	f.mu.Unlock()

	for _, e := range frames {
		onFrame(e)
	}
	if f.listening != nil {
		close(f.listening)
	}
	<-ctx.Done()
	return ctx.Err()
}

func stubInputs(t *testing.T, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	queue := append([]string(nil), answers...)
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(queue) == 0 {
			return "", io.EOF
		}
		v := queue[0]
		queue = queue[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte("secret"), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func newTestApp(api *fakeAPI) *App {
	return &App{api: api, store: state.NewStore()}
}

func aliceProfile() *models.Profile {
	return &models.Profile{User: models.User{ID: "u1", UserName: "alice", Following: []string{}}}
}

func TestRegister_Success(t *testing.T) {
	silence(t)
	stubInputs(t, "alice", "alice@example.org")

	f := &fakeAPI{}
	a := newTestApp(f)

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice", f.regUser)
	assert.Equal(t, "alice@example.org", f.regEmail)
	assert.Equal(t, []byte("secret"), f.regPass)
	assert.False(t, a.isLoggedIn(), "register does not log in")
}

func TestRegister_Error(t *testing.T) {
	silence(t)
	stubInputs(t, "alice", "alice@example.org")

	f := &fakeAPI{regErr: client.ErrConflict}
	a := newTestApp(f)

	assert.ErrorIs(t, a.Register(context.Background()), client.ErrConflict)
}

func TestLogin_FillsStoreFromRealtimeFrames(t *testing.T) {
	lines := silence(t)
	stubInputs(t, "alice@example.org")

	n := models.Notification{Kind: "follow", Actor: models.Actor{ID: "u2", UserName: "bob"}, TargetUserID: "u1",
		Payload: map[string]string{"message": "bob started following you"}}
	f := &fakeAPI{
		profile:   aliceProfile(),
		frames:    []wire.Envelope{wire.NewPresence([]string{"u1", "u2"}), wire.NewNotification(n)},
		listening: make(chan struct{}),
	}
	a := newTestApp(f)
	defer a.stopListener()

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "alice@example.org", f.loginEmail)
	assert.True(t, a.isLoggedIn())

	select {
	case <-f.listening:
	case <-time.After(2 * time.Second):
		t.Fatal("listener not started")
	}

	assert.Equal(t, "u1", f.listenUser)
	assert.Equal(t, []string{"u1", "u2"}, a.store.OnlineUsers())
	assert.Equal(t, []models.Notification{n}, a.store.Notifications())
	assert.Equal(t, "(alice, 2 online, 1 new)", a.getStatus())
	assert.Contains(t, strings.Join(*lines, "\n"), "bob started following you")
}

func TestLogin_Failure(t *testing.T) {
	silence(t)
	stubInputs(t, "alice@example.org")

	f := &fakeAPI{loginErr: client.ErrUnauthorized}
	a := newTestApp(f)

	assert.ErrorIs(t, a.Login(context.Background()), client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "(guest)", a.getStatus())
}

func TestLogout_ResetsState(t *testing.T) {
	silence(t)
	stubInputs(t, "alice@example.org")

	f := &fakeAPI{profile: aliceProfile(), frames: []wire.Envelope{wire.NewPresence([]string{"u1"})}, listening: make(chan struct{})}
	a := newTestApp(f)

	require.NoError(t, a.Login(context.Background()))
	<-f.listening

	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, f.logoutCalled)
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.store.OnlineUsers())
	assert.Empty(t, a.store.Notifications())
}

func TestOnFrame_IgnoresUnknownFrames(t *testing.T) {
	silence(t)
	a := newTestApp(&fakeAPI{})

	a.onFrame(wire.Envelope{Type: "chat"})
	a.onFrame(wire.NewPresence([]string{"u9"}))

	assert.Equal(t, []string{"u9"}, a.store.OnlineUsers())
}

func TestFollow_UpdatesOwnFollowingSet(t *testing.T) {
	silence(t)
	f := &fakeAPI{following: true}
	a := newTestApp(f)
	a.store.SetAuthUser(&aliceProfile().User)

	require.NoError(t, a.Follow(context.Background(), "u2"))
	assert.Equal(t, "u2", f.followedID)
	assert.Equal(t, []string{"u2"}, a.store.AuthUser().Following)

	f.following = false
	require.NoError(t, a.Follow(context.Background(), "u2"))
	assert.Empty(t, a.store.AuthUser().Following)

	f.followErr = client.ErrBadRequest
	assert.ErrorIs(t, a.Follow(context.Background(), "u1"), client.ErrBadRequest)
}

func TestSuggested_MarksFollowingAndOnline(t *testing.T) {
	lines := silence(t)
	f := &fakeAPI{suggested: []models.User{{ID: "u2", UserName: "bob"}, {ID: "u3", UserName: "carol"}}}
	a := newTestApp(f)
	me := aliceProfile().User
	me.Following = []string{"u2"}
	a.store.SetAuthUser(&me)
	a.store.SetOnlineUsers([]string{"u3"})

	require.NoError(t, a.Suggested(context.Background()))

	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "u2  bob [following]")
	assert.Contains(t, out, "u3  carol [online]")
}

func TestProfile_DefaultsToSelf(t *testing.T) {
	lines := silence(t)
	p := aliceProfile()
	p.Bio = "hi there"
	p.Posts = []models.Post{{ID: "p1", Caption: "sunset", Likes: []string{"u2"}}}
	f := &fakeAPI{profiles: map[string]*models.Profile{"u1": p}}
	a := newTestApp(f)

	assert.ErrorIs(t, a.Profile(context.Background(), ""), client.ErrNotLoggedIn)

	a.store.SetAuthUser(&p.User)
	require.NoError(t, a.Profile(context.Background(), ""))
	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "alice (u1)")
	assert.Contains(t, out, "hi there")
	assert.Contains(t, out, `p1  "sunset"  1 likes`)

	assert.ErrorIs(t, a.Profile(context.Background(), "nope"), client.ErrNotFound)
}

func TestOnlineAndNotifications_ReadStore(t *testing.T) {
	lines := silence(t)
	a := newTestApp(&fakeAPI{})

	require.NoError(t, a.Online(context.Background()))
	require.NoError(t, a.Notifications(context.Background()))
	assert.Equal(t, []string{"Nobody is online", "No notifications"}, *lines)

	a.store.SetOnlineUsers([]string{"u2", "u1"})
	a.store.AddNotification(models.Notification{Kind: "like", Actor: models.Actor{UserName: "bob"}})
	*lines = nil

	require.NoError(t, a.Online(context.Background()))
	require.NoError(t, a.Notifications(context.Background()))
	assert.Equal(t, []string{"Online: u1, u2", "1. bob like"}, *lines)
}

func TestAddPost_WithImage(t *testing.T) {
	silence(t)
	stubInputs(t, "sunset", "/tmp/s.png")

	orig := loadFile
	loadFile = func(path string) (*filex.File, error) {
		return &filex.File{Name: "s.png", ContentType: "image/png", Data: []byte(path)}, nil
	}
	t.Cleanup(func() { loadFile = orig })

	f := &fakeAPI{}
	a := newTestApp(f)

	require.NoError(t, a.AddPost(context.Background()))
	assert.Equal(t, "sunset", f.postCaption)
	require.NotNil(t, f.postImage)
	assert.Equal(t, "s.png", f.postImage.Name)
}

func TestAddPost_UnreadableImage(t *testing.T) {
	silence(t)
	stubInputs(t, "sunset", "/missing.png")

	orig := loadFile
	loadFile = func(string) (*filex.File, error) { return nil, errors.New("no such file") }
	t.Cleanup(func() { loadFile = orig })

	f := &fakeAPI{}
	a := newTestApp(f)

	assert.Error(t, a.AddPost(context.Background()))
	assert.Empty(t, f.postCaption, "nothing posted")
}

func TestLikeDislike(t *testing.T) {
	silence(t)
	f := &fakeAPI{}
	a := newTestApp(f)

	require.NoError(t, a.Like(context.Background(), "p1"))
	require.NoError(t, a.Dislike(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, f.liked)
	assert.Equal(t, []string{"p1"}, f.disliked)
}

func TestEditProfile_KeepsEmptyAnswers(t *testing.T) {
	silence(t)
	stubInputs(t, "new bio", "", "")

	f := &fakeAPI{editResult: &models.User{ID: "u1", Bio: "new bio", ProfilePicture: "http://cdn/x.png"}}
	a := newTestApp(f)
	a.store.SetAuthUser(&aliceProfile().User)

	require.NoError(t, a.EditProfile(context.Background()))
	assert.Equal(t, "new bio", f.edit.Bio)
	assert.Empty(t, f.edit.Gender)
	assert.Nil(t, f.edit.Picture)
	assert.Equal(t, "new bio", a.store.AuthUser().Bio)
	assert.Equal(t, "http://cdn/x.png", a.store.AuthUser().ProfilePicture)
}
