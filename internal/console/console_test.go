package console

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-lifecycle-api/internal/client"
)

// fakeAPI keeps records in a map and answers like the server.
type fakeAPI struct {
	users  map[int64]client.User
	nextID int64
}

func newFakeAPI() *fakeAPI { return &fakeAPI{users: map[int64]client.User{}} }

func notFound(id int64) error {
	return &client.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "User not found by ID: " + strconv.FormatInt(id, 10)}
}

func (f *fakeAPI) CreateUser(_ context.Context, in client.UserInput) (*client.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email {
			return nil, &client.APIError{Status: http.StatusConflict, Code: "CONFLICT", Message: "Email already exists."}
		}
	}
	f.nextID++
	u := client.User{ID: f.nextID, Name: in.Name, Email: in.Email, Age: in.Age}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeAPI) GetUser(_ context.Context, id int64) (*client.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, notFound(id)
	}
	return &u, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, id int64, in client.UserInput) (*client.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, notFound(id)
	}
	u.Name, u.Email, u.Age = in.Name, in.Email, in.Age
	f.users[id] = u
	return &u, nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return notFound(id)
	}
	delete(f.users, id)
	return nil
}

func run(t *testing.T, api UserAPI, input string) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, New(api, strings.NewReader(input), &out).Run(context.Background()))
	return out.String()
}

func TestConsoleLifecycle(t *testing.T) {
	api := newFakeAPI()
	input := strings.Join([]string{
		"1", "test", "test@test.com", "20",
		"2", "1",
		"3", "1", "admin", "admin@admin.com", "30",
		"4", "1",
		"2", "1",
		"0",
	}, "\n") + "\n"

	out := run(t, api, input)

	assert.Contains(t, out, "ID: 1 | Name: test | Email: test@test.com | Age: 20")
	assert.Contains(t, out, "ID: 1 | Name: admin | Email: admin@admin.com | Age: 30")
	assert.Contains(t, out, "Deleted user 1.")
	assert.Contains(t, out, "Error: 404 NOT_FOUND: User not found by ID: 1")
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))
	assert.Empty(t, api.users)
}

func TestConsoleKeepsGoingAfterErrors(t *testing.T) {
	api := newFakeAPI()
	input := strings.Join([]string{
		"9",
		"2", "abc",
		"1", "a", "a@test.com", "old",
		"1", "a", "a@test.com", "1",
		"1", "b", "a@test.com", "2",
		"0",
	}, "\n") + "\n"

	out := run(t, api, input)

	assert.Contains(t, out, "Unknown option.")
	assert.Contains(t, out, "Error: id must be a number")
	assert.Contains(t, out, "Error: age must be a number")
	assert.Contains(t, out, "Error: 409 CONFLICT: Email already exists.")
	assert.Len(t, api.users, 1)
}

func TestConsoleStopsAtEOF(t *testing.T) {
	out := run(t, newFakeAPI(), "1\nname-only\n")
	assert.NotContains(t, out, "Error:")
}
