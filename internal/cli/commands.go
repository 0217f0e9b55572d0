package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Nikocoro/prubas123/internal/client"
	"github.com/Nikocoro/prubas123/internal/models"
)

var (
	// getPassword is swapped out in tests.
	getPassword = GetPassword

	errNotAdmin = errors.New("this command needs an admin account")
)

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	session, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Logged in as %s (%s).", session.Username, session.Role))
	return a.Refresh(ctx)
}

func (a *App) Logout() {
	a.api.Logout()
	a.state.Load(nil)
	a.println("Logged out.")
}

// Refresh reloads the profile list and redraws the current page.
func (a *App) Refresh(ctx context.Context) error {
	profiles, err := a.api.ListProfiles(ctx)
	if err != nil {
		return err
	}
	a.state.Load(profiles)
	a.show()
	return nil
}

func (a *App) requireAdmin() error {
	if !a.api.Session().IsAdmin() {
		return errNotAdmin
	}
	return nil
}

func (a *App) readProfileForm(current models.Profile) (client.ProfileForm, error) {
	var form client.ProfileForm
	var err error

	if form.Name, err = GetTextWithDefault(a.reader, "Name", current.Name, a.out); err != nil {
		return form, err
	}
	if form.Photo, err = GetTextWithDefault(a.reader, "Photo URL", current.Photo, a.out); err != nil {
		return form, err
	}

	links, err := GetTextWithDefault(a.reader, "Links (comma separated)", strings.Join(current.Links, ", "), a.out)
	if err != nil {
		return form, err
	}
	form.Links = SplitList(links)

	categories, err := GetTextWithDefault(a.reader, "Categories (comma separated)", strings.Join(current.Categories, ", "), a.out)
	if err != nil {
		return form, err
	}
	form.Categories = SplitList(categories)
	return form, nil
}

func (a *App) AddProfile(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	form, err := a.readProfileForm(models.Profile{})
	if err != nil {
		return err
	}
	if err := a.api.AddProfile(ctx, form); err != nil {
		return err
	}
	a.println("Profile created.")
	return a.Refresh(ctx)
}

func (a *App) EditProfile(ctx context.Context, id string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	current, ok := a.state.Find(id)
	if !ok {
		return fmt.Errorf("no loaded profile with id %q", id)
	}

	form, err := a.readProfileForm(current)
	if err != nil {
		return err
	}
	if err := a.api.EditProfile(ctx, id, form); err != nil {
		return err
	}
	a.println("Profile updated.")
	return a.Refresh(ctx)
}

func (a *App) DeleteProfile(ctx context.Context, id string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	current, ok := a.state.Find(id)
	if !ok {
		return fmt.Errorf("no loaded profile with id %q", id)
	}

	sure, err := Confirm(a.reader, fmt.Sprintf("Delete %s?", current.Name), a.out)
	if err != nil || !sure {
		return err
	}
	if err := a.api.DeleteProfile(ctx, id); err != nil {
		return err
	}
	a.println("Profile deleted.")
	return a.Refresh(ctx)
}

func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	role, err := GetTextWithDefault(a.reader, "Role (admin|member)", string(models.RoleMember), a.out)
	if err != nil {
		return err
	}

	if err := a.api.AddUser(ctx, username, password, models.UserRole(role)); err != nil {
		return err
	}
	a.println("User created.")
	return nil
}

func (a *App) UploadPhoto(ctx context.Context, path string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	if path == "" {
		return errors.New("usage: upload <file>")
	}

	f, err := a.openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := a.api.UploadPhoto(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	a.println("Uploaded:", url)
	return nil
}
