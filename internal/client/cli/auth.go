package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophgram/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, an email and a password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.api.Register(ctx, userName, email, password); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Account created, you can log in now")
	return nil
}

// Login authenticates, remembers the user and opens the realtime connection.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	profile, err := a.api.Login(ctx, email, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.store.Reset()
	a.store.SetAuthUser(&profile.User)
	a.startListener(ctx, profile.ID)

	printlnFn(fmt.Sprintf("Welcome back %s", profile.UserName))
	return nil
}

// Logout clears the server cookie, closes the realtime connection and
// forgets all client state.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.stopListener()
	a.store.Reset()
	if err != nil {
		log.Printf("Logout request failed: %s", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}
