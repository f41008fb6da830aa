package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophgram/internal/client/client"
)

// Follow toggles following userID.
func (a *App) Follow(ctx context.Context, userID string) error {
	following, err := a.api.ToggleFollow(ctx, userID)
	if err != nil {
		printlnFn("Follow failed:", err.Error())
		return err
	}

	if u := a.store.AuthUser(); u != nil {
		u.Following = toggled(u.Following, userID, following)
		a.store.SetAuthUser(u)
	}

	if following {
		printlnFn("Now following", userID)
	} else {
		printlnFn("Unfollowed", userID)
	}
	return nil
}

func (a *App) Suggested(ctx context.Context) error {
	users, err := a.api.Suggested(ctx)
	if err != nil {
		printlnFn("Cannot load suggestions:", err.Error())
		return err
	}
	if len(users) == 0 {
		printlnFn("No suggestions yet")
		return nil
	}

	me := a.store.AuthUser()
	for _, u := range users {
		marks := ""
		if me != nil && slices.Contains(me.Following, u.ID) {
			marks += " [following]"
		}
		if a.store.IsOnline(u.ID) {
			marks += " [online]"
		}
		printlnFn(fmt.Sprintf("%s  %s%s", u.ID, u.UserName, marks))
	}
	return nil
}

// Profile shows userID, or the logged-in user when userID is empty.
func (a *App) Profile(ctx context.Context, userID string) error {
	if userID == "" {
		me := a.store.AuthUser()
		if me == nil {
			return client.ErrNotLoggedIn
		}
		userID = me.ID
	}

	p, err := a.api.Profile(ctx, userID)
	if err != nil {
		printlnFn("Cannot load profile:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s (%s)", p.UserName, p.ID))
	if p.Bio != "" {
		printlnFn("Bio:", p.Bio)
	}
	printlnFn(fmt.Sprintf("Followers: %d  Following: %d  Posts: %d", len(p.Followers), len(p.Following), len(p.Posts)))
	for _, post := range p.Posts {
		printlnFn(fmt.Sprintf("  %s  %q  %d likes", post.ID, post.Caption, len(post.Likes)))
	}
	return nil
}

// Online prints the online set as last pushed by the server.
func (a *App) Online(context.Context) error {
	ids := a.store.OnlineUsers()
	if len(ids) == 0 {
		printlnFn("Nobody is online")
		return nil
	}
	printlnFn("Online:", strings.Join(ids, ", "))
	return nil
}

func (a *App) Notifications(context.Context) error {
	list := a.store.Notifications()
	if len(list) == 0 {
		printlnFn("No notifications")
		return nil
	}
	for i, n := range list {
		printlnFn(fmt.Sprintf("%d. %s", i+1, n.Text()))
	}
	return nil
}

func toggled(ids []string, id string, present bool) []string {
	out := make([]string, 0, len(ids)+1)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if present {
		out = append(out, id)
	}
	return out
}
