package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/gophgram/internal/client/client"
	"github.com/dmitrijs2005/gophgram/internal/filex"
)

// loadFile is a test seam for filex.Load.
var loadFile = filex.Load

// AddPost prompts for a caption and an optional image path.
func (a *App) AddPost(ctx context.Context) error {
	caption, err := getSimpleText(a.reader, "Enter caption", os.Stdout)
	if err != nil {
		return err
	}
	image, err := a.promptFile("Image path (empty for none)")
	if err != nil {
		return err
	}

	post, err := a.api.AddPost(ctx, caption, image)
	if err != nil {
		printlnFn("Post failed:", err.Error())
		return err
	}
	printlnFn("Posted", post.ID)
	return nil
}

func (a *App) Like(ctx context.Context, postID string) error {
	if err := a.api.Like(ctx, postID); err != nil {
		printlnFn("Like failed:", err.Error())
		return err
	}
	printlnFn("Liked", postID)
	return nil
}

func (a *App) Dislike(ctx context.Context, postID string) error {
	if err := a.api.Dislike(ctx, postID); err != nil {
		printlnFn("Dislike failed:", err.Error())
		return err
	}
	printlnFn("Like removed from", postID)
	return nil
}

// EditProfile prompts for bio, gender and a picture; empty answers keep the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	var edit client.ProfileEdit
	var err error

	if edit.Bio, err = getSimpleText(a.reader, "Bio (empty to keep)", os.Stdout); err != nil {
		return err
	}
	if edit.Gender, err = getSimpleText(a.reader, "Gender (empty to keep)", os.Stdout); err != nil {
		return err
	}
	if edit.Picture, err = a.promptFile("Profile picture path (empty to keep)"); err != nil {
		return err
	}

	u, err := a.api.EditProfile(ctx, edit)
	if err != nil {
		printlnFn("Profile update failed:", err.Error())
		return err
	}

	if me := a.store.AuthUser(); me != nil {
		me.Bio, me.Gender, me.ProfilePicture = u.Bio, u.Gender, u.ProfilePicture
		a.store.SetAuthUser(me)
	}
	printlnFn("Profile updated")
	return nil
}

func (a *App) promptFile(prompt string) (*filex.File, error) {
	path, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil || path == "" {
		return nil, err
	}
	f, err := loadFile(path)
	if err != nil {
		printlnFn("Cannot read file:", err.Error())
		return nil, err
	}
	return f, nil
}
