package server_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/scim"
)

const backendAcmeJSON = `{
	"id": 3,
	"username": "acme",
	"full_name": "Acme Corp",
	"description": "A company",
	"visibility": "private"
}`

func TestGetGroupEndpoint(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("GET /orgs/acme", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAcmeJSON))
	})
	backend.HandleFunc("GET /orgs/ghost", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	bridge := newBridge(t, backend)

	recorder := doRequest(bridge, http.MethodGet, "/scim/v2/Groups/acme", bridgeToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var group scim.Group
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &group))
	assert.Equal(t, "acme", group.DisplayName)
	assert.Nil(t, group.Members)

	recorder = doRequest(bridge, http.MethodGet, "/scim/v2/Groups/ghost", bridgeToken, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListGroupsWithFilter(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("GET /orgs/acme", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAcmeJSON))
	})

	bridge := newBridge(t, backend)

	recorder := doRequest(bridge, http.MethodGet,
		`/scim/v2/Groups?filter=displayName+eq+%22acme%22`, bridgeToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var list scim.ListResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &list))
	assert.Equal(t, 1, list.TotalResults)
}

func TestCreateGroupEndpoint(t *testing.T) {
	var (
		createdOrg  gitea.CreateOrgOption
		createdTeam gitea.CreateTeamOption
	)

	exists := false

	backend := http.NewServeMux()
	backend.HandleFunc("GET /orgs/acme", func(w http.ResponseWriter, _ *http.Request) {
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = w.Write([]byte(backendAcmeJSON))
	})
	backend.HandleFunc("POST /orgs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&createdOrg))

		exists = true

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(backendAcmeJSON))
	})
	backend.HandleFunc("POST /orgs/acme/teams", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&createdTeam))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7, "name": "Default"}`))
	})

	bridge := newBridge(t, backend)

	body := `{
		"schemas": ["urn:ietf:params:scim:schemas:core:2.0:Group"],
		"displayName": "acme",
		"description": "A company",
		"urn:ietf:params:scim:schemas:extension:Gitea:2.0:Group": {
			"full_name": "Acme Corp",
			"visibility": "private"
		}
	}`

	recorder := doRequest(bridge, http.MethodPost, "/scim/v2/Groups", bridgeToken, body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var group scim.Group
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &group))
	assert.Equal(t, "acme", group.ID)

	assert.Equal(t, "acme", createdOrg.Username)
	assert.Equal(t, "private", createdOrg.Visibility)
	assert.Equal(t, "Acme Corp", createdOrg.FullName)
	assert.Equal(t, "Default", createdTeam.Name)

	// Creating it again trips the existence pre-check.
	recorder = doRequest(bridge, http.MethodPost, "/scim/v2/Groups", bridgeToken, body)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestCreateGroupRequiresDisplayName(t *testing.T) {
	bridge := newBridge(t, http.NewServeMux())

	recorder := doRequest(bridge, http.MethodPost, "/scim/v2/Groups", bridgeToken,
		`{"description": "nameless"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateGroupMembership(t *testing.T) {
	var added []string

	backend := http.NewServeMux()
	backend.HandleFunc("GET /orgs/acme", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAcmeJSON))
	})
	backend.HandleFunc("GET /orgs/acme/teams", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 5, "name": "Default"}]`))
	})
	backend.HandleFunc("GET /users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAliceJSON))
	})
	backend.HandleFunc("GET /users/ghost", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	backend.HandleFunc("PUT /teams/5/members/{member}", func(w http.ResponseWriter, r *http.Request) {
		added = append(added, r.PathValue("member"))

		w.WriteHeader(http.StatusCreated)
	})

	bridge := newBridge(t, backend)

	// ghost is not provisioned, so only alice reaches the backend.
	body := `{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:PatchOp"],
		"Operations": [
			{"op": "Add", "path": "members", "value": [
				{"value": "alice", "display": "Alice Anderson"},
				{"value": "ghost"}
			]}
		]
	}`

	recorder := doRequest(bridge, http.MethodPatch, "/scim/v2/Groups/acme", bridgeToken, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var group scim.Group
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &group))
	assert.Equal(t, "acme", group.ID)

	assert.Equal(t, []string{"alice"}, added)
}

func TestUpdateGroupRemovesMemberFromAllTeams(t *testing.T) {
	var removed []string

	backend := http.NewServeMux()
	backend.HandleFunc("GET /orgs/acme", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAcmeJSON))
	})
	backend.HandleFunc("GET /orgs/acme/teams", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Owners"}, {"id": 5, "name": "Default"}]`))
	})
	backend.HandleFunc("GET /users/alice", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(backendAliceJSON))
	})
	backend.HandleFunc("DELETE /teams/{team}/members/alice", func(w http.ResponseWriter, r *http.Request) {
		removed = append(removed, r.PathValue("team"))

		w.WriteHeader(http.StatusNoContent)
	})

	bridge := newBridge(t, backend)

	body := `{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:PatchOp"],
		"Operations": [
			{"op": "Remove", "path": "members", "value": [{"value": "alice"}]}
		]
	}`

	recorder := doRequest(bridge, http.MethodPatch, "/scim/v2/Groups/acme", bridgeToken, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.ElementsMatch(t, []string{"1", "5"}, removed)
}

func TestUpdateGroupAttributes(t *testing.T) {
	var edited gitea.EditOrgOption

	backend := http.NewServeMux()
	backend.HandleFunc("PATCH /orgs/acme", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&edited))
		_, _ = w.Write([]byte(backendAcmeJSON))
	})

	bridge := newBridge(t, backend)

	body := `{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:PatchOp"],
		"Operations": [
			{"op": "Replace", "path": "description", "value": "New description"},
			{"op": "Replace", "path": "urn:ietf:params:scim:schemas:extension:Gitea:2.0:Group:visibility", "value": "public"}
		]
	}`

	recorder := doRequest(bridge, http.MethodPatch, "/scim/v2/Groups/acme", bridgeToken, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, edited.Description)
	assert.Equal(t, "New description", *edited.Description)
	require.NotNil(t, edited.Visibility)
	assert.Equal(t, "public", *edited.Visibility)
	assert.Nil(t, edited.FullName)
}

func TestUpdateGroupBareReplaceIsNoOp(t *testing.T) {
	bridge := newBridge(t, http.NewServeMux())

	body := `{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:PatchOp"],
		"Operations": [
			{"op": "replace", "value": {"displayName": "renamed"}}
		]
	}`

	recorder := doRequest(bridge, http.MethodPut, "/scim/v2/Groups/acme", bridgeToken, body)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
