package translator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/translator"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/config"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/scim"
)

const aliceJSON = `{
	"id": 12,
	"username": "alice",
	"login_name": "alice",
	"full_name": "Alice Anderson",
	"email": "alice@example.com",
	"active": true,
	"location": "Berlin",
	"visibility": "limited",
	"source_id": 0
}`

func newTranslator(t *testing.T, mux *http.ServeMux) *translator.Translator {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := gitea.NewClient(gitea.Options{
		BaseURL: server.URL,
		Token:   "admin-token",
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	return translator.New(client, config.DefaultTeamUnits, "limited", hclog.NewNullLogger())
}

func TestGetUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(aliceJSON))
	})

	user, err := newTranslator(t, mux).GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, "alice", user.UserName)
	assert.True(t, user.Active)
	assert.Equal(t, []string{scim.SchemaCoreUser}, user.Schemas)
	assert.Equal(t, scim.ResourceTypeUser, user.Meta.ResourceType)
	require.Len(t, user.Emails, 1)
	assert.Equal(t, scim.Email{Primary: true, Value: "alice@example.com", Type: "work"}, user.Emails[0])
	assert.Equal(t, "Alice Anderson", user.Gitea.FullName)
	assert.Equal(t, "Berlin", user.Gitea.Location)
	assert.Equal(t, "limited", user.Gitea.Visibility)
}

func TestGetUserCollapsesNonOK(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/ghost", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		user, err := newTranslator(t, mux).GetUser(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
	}
}

func TestGetUserTransportError(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	server.Close()

	client, err := gitea.NewClient(gitea.Options{
		BaseURL: server.URL,
		Token:   "admin-token",
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	tr := translator.New(client, config.DefaultTeamUnits, "limited", hclog.NewNullLogger())

	_, err = tr.GetUser(context.Background(), "alice")
	require.ErrorIs(t, err, translator.ErrGetUser)
}

func TestGetUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[` + aliceJSON + `]`))
	})

	page, limit := 1, 10

	users, err := newTranslator(t, mux).GetUsers(context.Background(), &page, &limit)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].UserName)
}

func TestCreateUser(t *testing.T) {
	var created gitea.CreateUserOption

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/users", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(aliceJSON))
	})
	mux.HandleFunc("GET /users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(aliceJSON))
	})

	user, err := newTranslator(t, mux).CreateUser(context.Background(), translator.CreateUserParams{
		Email:     "alice@example.com",
		Username:  "alice",
		LoginName: "alice",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "alice", user.UserName)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice@example.com", created.Email)
	// Unset visibility falls back to the configured default.
	assert.Equal(t, "limited", created.Visibility)
}

func TestCreateUserConflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/users", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	_, err := newTranslator(t, mux).CreateUser(context.Background(), translator.CreateUserParams{
		Email:    "alice@example.com",
		Username: "alice",
	})

	var statusErr *translator.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	assert.Equal(t, "CreateUser", statusErr.Op)
}

func TestEditUserRejectsBackendOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(aliceJSON))
	})

	_, err := newTranslator(t, mux).EditUser(context.Background(), "alice", gitea.EditUserOption{
		LoginName: "alice",
	})

	var statusErr *translator.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.Status)
}

func TestEditUserRefetchesOnCreated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/users/alice", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(aliceJSON))
	})

	user, err := newTranslator(t, mux).EditUser(context.Background(), "alice", gitea.EditUserOption{
		LoginName: "alice",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.UserName)
}

func TestDeleteUser(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound} {
		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /admin/users/alice", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		// Only transport failures surface; the backend's answer for a missing
		// user is logged and swallowed.
		err := newTranslator(t, mux).DeleteUser(context.Background(), "alice")
		require.NoError(t, err)
	}
}
