package translator

import (
	"context"
	"net/http"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/scim"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/errs"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/httpclient"
)

const (
	// DefaultTeamName is the team every provisioned organization receives as
	// its SCIM-managed membership container.
	DefaultTeamName = "Default"

	defaultTeamDescription = "Default group created by SCIM provisioning"
	defaultTeamPermission  = "read"
)

// GetOrg fetches an organization as a SCIM group. Non-200 collapses to an
// absent resource.
func (t *Translator) GetOrg(ctx context.Context, org string) (*scim.Group, error) {
	resp, err := t.client.GetOrg(ctx, org)
	defer httpclient.CloseBody(t.logger, "GetOrg", resp)

	if err != nil {
		return nil, errs.Wrap(ErrGetOrg, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	organization, err := httpclient.DecodeResponse[gitea.Organization](ctx, backendName, resp, http.StatusOK)
	if err != nil {
		return nil, errs.Wrap(ErrGetOrg, err)
	}

	return mapOrg(organization), nil
}

// GetOrgs fetches one page of organizations.
func (t *Translator) GetOrgs(ctx context.Context, page, limit *int) ([]*scim.Group, error) {
	resp, err := t.client.GetOrgs(ctx, page, limit)
	defer httpclient.CloseBody(t.logger, "GetOrgs", resp)

	if err != nil {
		return nil, errs.Wrap(ErrListOrgs, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	orgs, err := httpclient.DecodeResponse[[]gitea.Organization](ctx, backendName, resp, http.StatusOK)
	if err != nil {
		return nil, errs.Wrap(ErrListOrgs, err)
	}

	mapped := make([]*scim.Group, 0, len(*orgs))
	for i := range *orgs {
		mapped = append(mapped, mapOrg(&(*orgs)[i]))
	}

	return mapped, nil
}

type CreateOrgParams struct {
	Username    string
	Visibility  string
	FullName    string
	Description string
	Location    string
	Website     string
}

// CreateOrg creates the organization and then its Default team. The team
// creation outcome does not fail the operation: the organization already
// committed and is not rolled back, so a failed team step is logged with the
// organization name for operator reconciliation.
func (t *Translator) CreateOrg(ctx context.Context, params CreateOrgParams) (*scim.Group, error) {
	resp, err := t.client.CreateOrg(ctx, gitea.CreateOrgOption{
		Username:    params.Username,
		Visibility:  params.Visibility,
		FullName:    params.FullName,
		Description: params.Description,
		Location:    params.Location,
		Website:     params.Website,
	})
	defer httpclient.CloseBody(t.logger, "CreateOrg", resp)

	if err != nil {
		return nil, errs.Wrap(ErrCreateOrg, err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &StatusError{Op: "CreateOrg", Status: resp.StatusCode}
	}

	organization, err := httpclient.DecodeResponse[gitea.Organization](ctx, backendName, resp, http.StatusCreated)
	if err != nil {
		return nil, errs.Wrap(ErrCreateOrg, err)
	}

	t.createDefaultTeam(ctx, params.Username)

	return mapOrg(organization), nil
}

// EditOrg applies a partial field set; the backend's 200 answer already
// carries the updated organization.
func (t *Translator) EditOrg(ctx context.Context, org string, opts gitea.EditOrgOption) (*scim.Group, error) {
	resp, err := t.client.EditOrg(ctx, org, opts)
	defer httpclient.CloseBody(t.logger, "EditOrg", resp)

	if err != nil {
		return nil, errs.Wrap(ErrEditOrg, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "EditOrg", Status: resp.StatusCode}
	}

	organization, err := httpclient.DecodeResponse[gitea.Organization](ctx, backendName, resp, http.StatusOK)
	if err != nil {
		return nil, errs.Wrap(ErrEditOrg, err)
	}

	return mapOrg(organization), nil
}

// AddOrgMember puts the member into the organization's Default team, creating
// the team first when it is missing, and returns the refreshed organization.
func (t *Translator) AddOrgMember(ctx context.Context, org, member string) (*scim.Group, error) {
	teamID, err := t.ensureDefaultTeam(ctx, org)
	if err != nil {
		return nil, errs.Wrap(ErrAddMember, err)
	}

	resp, err := t.client.AddTeamMember(ctx, teamID, member)
	defer httpclient.CloseBody(t.logger, "AddTeamMember", resp)

	if err != nil {
		return nil, errs.Wrap(ErrAddMember, err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &StatusError{Op: "AddTeamMember", Status: resp.StatusCode}
	}

	return t.GetOrg(ctx, org)
}

// RemoveOrgMember sweeps every team of the organization, not only Default, so
// the member loses all team-derived access. Individual removal outcomes are
// logged but never fail the operation; the refreshed organization is returned
// regardless.
func (t *Translator) RemoveOrgMember(ctx context.Context, org, member string) (*scim.Group, error) {
	teams, err := t.listTeams(ctx, org)
	if err != nil {
		t.logger.Warn("could not list teams for member removal", "org", org, "error", err)
	}

	for _, team := range teams {
		resp, err := t.client.RemoveTeamMember(ctx, team.ID, member)
		if err != nil {
			t.logger.Warn("failed to remove member from team",
				"org", org, "team", team.Name, "member", member, "error", err)
			continue
		}

		httpclient.CloseBody(t.logger, "RemoveTeamMember", resp)
	}

	return t.GetOrg(ctx, org)
}

// OrgMembers lists the organization's members. Non-200 collapses to nil.
func (t *Translator) OrgMembers(ctx context.Context, org string) ([]scim.Member, error) {
	resp, err := t.client.GetOrgMembers(ctx, org)
	defer httpclient.CloseBody(t.logger, "GetOrgMembers", resp)

	if err != nil {
		return nil, errs.Wrap(ErrListMembers, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	users, err := httpclient.DecodeResponse[[]gitea.User](ctx, backendName, resp, http.StatusOK)
	if err != nil {
		return nil, errs.Wrap(ErrListMembers, err)
	}

	members := make([]scim.Member, 0, len(*users))
	for _, user := range *users {
		members = append(members, scim.Member{Value: user.UserName, Display: user.FullName})
	}

	return members, nil
}

// ensureDefaultTeam is the single lookup-or-create path for the SCIM-managed
// membership team. Two concurrent callers can still race to create it; the
// backend's per-organization team name uniqueness resolves the race, one of
// the creates answering with a conflict status.
func (t *Translator) ensureDefaultTeam(ctx context.Context, org string) (int64, error) {
	teams, err := t.listTeams(ctx, org)
	if err != nil {
		return 0, errs.Wrap(ErrEnsureTeam, err)
	}

	for _, team := range teams {
		if team.Name == DefaultTeamName {
			return team.ID, nil
		}
	}

	resp, err := t.client.CreateTeam(ctx, org, t.defaultTeamOption())
	defer httpclient.CloseBody(t.logger, "CreateTeam", resp)

	if err != nil {
		return 0, errs.Wrap(ErrEnsureTeam, err)
	}

	if resp.StatusCode != http.StatusCreated {
		return 0, &StatusError{Op: "CreateTeam", Status: resp.StatusCode}
	}

	team, err := httpclient.DecodeResponse[gitea.Team](ctx, backendName, resp, http.StatusCreated)
	if err != nil {
		return 0, errs.Wrap(ErrEnsureTeam, err)
	}

	return team.ID, nil
}

// createDefaultTeam is the fire-and-log half of organization creation.
func (t *Translator) createDefaultTeam(ctx context.Context, org string) {
	resp, err := t.client.CreateTeam(ctx, org, t.defaultTeamOption())
	defer httpclient.CloseBody(t.logger, "CreateTeam", resp)

	if err != nil {
		t.logger.Error("organization created but default team creation failed",
			"org", org, "error", err)

		return
	}

	if resp.StatusCode != http.StatusCreated {
		t.logger.Error("organization created but default team creation failed",
			"org", org, "status", resp.StatusCode)
	}
}

func (t *Translator) defaultTeamOption() gitea.CreateTeamOption {
	return gitea.CreateTeamOption{
		Name:                    DefaultTeamName,
		Description:             defaultTeamDescription,
		CanCreateOrgRepo:        false,
		IncludesAllRepositories: true,
		Permission:              defaultTeamPermission,
		Units:                   t.teamUnits,
	}
}

func (t *Translator) listTeams(ctx context.Context, org string) ([]gitea.Team, error) {
	resp, err := t.client.GetOrgTeams(ctx, org)
	defer httpclient.CloseBody(t.logger, "GetOrgTeams", resp)

	if err != nil {
		return nil, ErrID.Wrapf(err, "listing teams of %s", org)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "GetOrgTeams", Status: resp.StatusCode}
	}

	teams, err := httpclient.DecodeResponse[[]gitea.Team](ctx, backendName, resp, http.StatusOK)
	if err != nil {
		return nil, ErrID.Wrapf(err, "listing teams of %s", org)
	}

	return *teams, nil
}

func mapOrg(o *gitea.Organization) *scim.Group {
	if o == nil || o.UserName == "" {
		return nil
	}

	return &scim.Group{
		Schemas:     []string{scim.SchemaCoreGroup},
		ID:          o.UserName,
		DisplayName: o.UserName,
		Description: o.Description,
		Gitea: scim.GroupExtension{
			FullName:   o.FullName,
			Visibility: o.Visibility,
			Location:   o.Location,
		},
		Meta: scim.Meta{ResourceType: scim.ResourceTypeGroup},
	}
}
