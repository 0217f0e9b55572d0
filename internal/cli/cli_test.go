package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikocoro/prubas123/internal/client"
	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/gallery"
	"github.com/Nikocoro/prubas123/internal/models"
)

type fakeAPI struct {
	users    map[string]models.UserRole
	session  client.Session
	profiles []models.Profile
	calls    []string
	forms    []client.ProfileForm
	uploaded string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]models.UserRole{"ana": models.RoleAdmin, "bea": models.RoleMember}}
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (client.Session, error) {
	role, ok := f.users[username]
	if !ok || password != username+"-pw" {
		return client.Session{}, &client.APIError{Status: 401, Message: "invalid credentials"}
	}
	f.session = client.Session{Username: username, Token: "t-" + username, Role: role}
	return f.session, nil
}

func (f *fakeAPI) Logout()                 { f.session = client.Session{} }
func (f *fakeAPI) Session() client.Session { return f.session }

func (f *fakeAPI) ListProfiles(context.Context) ([]models.Profile, error) {
	f.calls = append(f.calls, "list")
	return f.profiles, nil
}

func (f *fakeAPI) AddProfile(_ context.Context, form client.ProfileForm) error {
	f.calls = append(f.calls, "add")
	f.forms = append(f.forms, form)
	f.profiles = append(f.profiles, models.Profile{
		ID:         fmt.Sprint(len(f.profiles) + 1),
		Name:       form.Name,
		Photo:      form.Photo,
		Links:      form.Links,
		Categories: form.Categories,
	})
	return nil
}

func (f *fakeAPI) EditProfile(_ context.Context, id string, form client.ProfileForm) error {
	f.calls = append(f.calls, "edit")
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			f.profiles[i].Name, f.profiles[i].Photo = form.Name, form.Photo
			f.profiles[i].Links, f.profiles[i].Categories = form.Links, form.Categories
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "profile not found"}
}

func (f *fakeAPI) DeleteProfile(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			f.profiles = append(f.profiles[:i], f.profiles[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "profile not found"}
}

func (f *fakeAPI) AddUser(_ context.Context, username, _ string, role models.UserRole) error {
	f.calls = append(f.calls, "adduser")
	if _, ok := f.users[username]; ok {
		return &client.APIError{Status: 409, Message: "user already exists"}
	}
	f.users[username] = role
	return nil
}

func (f *fakeAPI) UploadPhoto(_ context.Context, filename string, r io.Reader) (string, error) {
	f.calls = append(f.calls, "upload")
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.uploaded = string(body)
	return "https://cdn.example.com/" + filename, nil
}

func stubPassword(t *testing.T) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return "ana-pw", nil }
	t.Cleanup(func() { getPassword = orig })
}

func runScript(t *testing.T, api *fakeAPI, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(api, &config.ClientConfig{PageSize: 20, Policy: "any"}, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, zerolog.Nop())
	require.NoError(t, err)
	app.openFile = func(name string) (io.ReadCloser, error) {
		if name != "ana.png" {
			return nil, errors.New("no such file")
		}
		return io.NopCloser(strings.NewReader("png-bytes")), nil
	}
	app.Run(context.Background())
	return out.String()
}

func TestGuestCanOnlyLogIn(t *testing.T) {
	stubPassword(t)
	api := newFakeAPI()

	out := runScript(t, api, "help", "list", "add", "exit")
	assert.Contains(t, out, guestHelp)
	assert.Contains(t, out, "Error: log in first")
	assert.Empty(t, api.calls)
	assert.Contains(t, out, "Bye!")
}

func TestAdminSession(t *testing.T) {
	stubPassword(t)
	api := newFakeAPI()
	api.profiles = []models.Profile{
		{ID: "1", Name: "Ana", Categories: []string{"Gamer"}},
		{ID: "2", Name: "Bea", Categories: []string{"Músico", "Gamer"}},
	}

	out := runScript(t, api,
		"login", "ana",
		"search an",
		"clear",
		"cat Gamer",
		"cat Músico",
		"policy all",
		"clear",
		"add", "Cruz", "https://img.example.com/cruz.jpg", "cruz.dev, x.com/cruz", "Chef",
		"edit 3", "", "", "", "Chef, Gamer",
		"delete 1", "y",
		"adduser", "bea", "",
		"upload ana.png",
		"frobnicate",
		"logout",
		"exit",
	)

	assert.Contains(t, out, "Logged in as ana (admin).")
	assert.Contains(t, out, "Category policy: all")
	assert.Contains(t, out, "Profile created.")
	assert.Contains(t, out, "Profile updated.")
	assert.Contains(t, out, "Profile deleted.")
	assert.Contains(t, out, "Error: user already exists")
	assert.Contains(t, out, "Uploaded: https://cdn.example.com/ana.png")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "link: https://x.com/cruz")
	assert.Contains(t, out, "actions: edit 1 | delete 1")

	assert.Equal(t, []string{"list", "add", "list", "edit", "list", "delete", "list", "adduser", "upload"}, api.calls)
	assert.Equal(t, "png-bytes", api.uploaded)

	require.Len(t, api.profiles, 2)
	cruz := api.profiles[1]
	assert.Equal(t, "Cruz", cruz.Name)
	assert.Equal(t, []string{"cruz.dev", "x.com/cruz"}, cruz.Links)
	assert.Equal(t, []string{"Chef", "Gamer"}, cruz.Categories)
}

func TestAddProfileWithBlankListsSendsEmptyArrays(t *testing.T) {
	stubPassword(t)
	api := newFakeAPI()

	out := runScript(t, api, "login", "ana", "add", "Dani", "https://img.example.com/dani.jpg", "", "", "exit")
	assert.Contains(t, out, "Profile created.")

	require.Len(t, api.forms, 1)
	body, err := json.Marshal(api.forms[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"links":[]`)
	assert.Contains(t, string(body), `"categories":[]`)
}

func TestMemberCannotMutate(t *testing.T) {
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return "bea-pw", nil }
	t.Cleanup(func() { getPassword = orig })

	api := newFakeAPI()
	out := runScript(t, api, "login", "bea", "help", "add", "delete 1", "exit")

	assert.Contains(t, out, memberHelp)
	assert.NotContains(t, out, "Admin commands")
	assert.Contains(t, out, "Error: "+errNotAdmin.Error())
	assert.Equal(t, []string{"list"}, api.calls)
}

func TestPagingCommands(t *testing.T) {
	stubPassword(t)
	api := newFakeAPI()
	for i := 1; i <= 45; i++ {
		api.profiles = append(api.profiles, models.Profile{ID: fmt.Sprint(i), Name: fmt.Sprintf("P%02d", i)})
	}

	out := runScript(t, api, "login", "ana", "page 3", "next", "page 9", "page x", "page 0", "exit")
	assert.Contains(t, out, "Page 3/3 (45 profiles)  prev")
	assert.Contains(t, out, "Already on the last page.")
	assert.Contains(t, out, "Only 3 pages, showing the last one.")
	assert.Contains(t, out, `page needs a number, got "x"`)
	assert.Contains(t, out, "Error: "+gallery.ErrPageOutOfRange.Error())
}

func TestReportsFailedLogin(t *testing.T) {
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return "wrong", nil }
	t.Cleanup(func() { getPassword = orig })

	out := runScript(t, newFakeAPI(), "login", "ana")
	assert.Contains(t, out, "Error: invalid credentials")
}

func TestInputHelpers(t *testing.T) {
	var out bytes.Buffer

	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  hello \n")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("last")), "Name", &out)
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	got, err = GetTextWithDefault(bufio.NewReader(strings.NewReader("\n")), "Name", "Ana", &out)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got)
	assert.Contains(t, out.String(), "Name [Ana]: ")

	ok, err := Confirm(bufio.NewReader(strings.NewReader("YES\n")), "Sure?", &out)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Confirm(bufio.NewReader(strings.NewReader("\n")), "Sure?", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b", "c"}, SplitList(" a, b,,c ,"))
	assert.Equal(t, []string{}, SplitList(""))
	assert.NotNil(t, SplitList(" , "))
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	assert.EqualError(t, err, "boom")
}

func TestRenderViewEmpty(t *testing.T) {
	page, err := gallery.Paginate(nil, 1, gallery.DefaultPageSize)
	require.NoError(t, err)

	var out bytes.Buffer
	RenderView(&out, gallery.Render(page, models.RoleMember, gallery.NewFilter(), nil))
	assert.Equal(t, "Categories: [all]\nNo profiles match the current filters.\nPage 1/1 (0 profiles)\n", out.String())
}
