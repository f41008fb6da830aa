package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophgram/internal/client/client"
	"github.com/dmitrijs2005/gophgram/internal/client/config"
	"github.com/dmitrijs2005/gophgram/internal/client/models"
	"github.com/dmitrijs2005/gophgram/internal/client/state"
	"github.com/dmitrijs2005/gophgram/internal/wire"
)

type App struct {
	config *config.Config
	api    client.Client
	store  *state.Store
	reader *bufio.Reader

	mu         sync.Mutex
	stopListen context.CancelFunc
	listenDone chan struct{}
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{
		config: c,
		api:    apiClient,
		store:  state.NewStore(),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the REPL and blocks until the user leaves or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.stopListener()

	printlnFn("Welcome to gophgram CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.store.AuthUser() != nil
}

func (a *App) getStatus() string {
	u := a.store.AuthUser()
	if u == nil {
		return "(guest)"
	}
	parts := []string{u.UserName, fmt.Sprintf("%d online", len(a.store.OnlineUsers()))}
	if n := len(a.store.Notifications()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d new", n))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// startListener opens the realtime connection for userID in the background.
func (a *App) startListener(ctx context.Context, userID string) {
	a.stopListener()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	a.mu.Lock()
	a.stopListen, a.listenDone = cancel, done
	a.mu.Unlock()

	go func() {
		defer close(done)
		err := a.api.Listen(ctx, userID, a.onFrame)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Realtime connection lost: %s", err.Error())
		}
	}()
}

func (a *App) stopListener() {
	a.mu.Lock()
	cancel, done := a.stopListen, a.listenDone
	a.stopListen, a.listenDone = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (a *App) onFrame(e wire.Envelope) {
	if err := a.store.Apply(e); err != nil {
		log.Printf("Ignoring frame: %s", err.Error())
		return
	}
	if e.Type == wire.TypeNotification {
		var n models.Notification
		if err := e.Decode(&n); err == nil {
			printlnFn("*", n.Text())
		}
	}
}
