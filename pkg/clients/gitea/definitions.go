package gitea

// Request and response bodies of the Gitea admin REST surface, limited to the
// fields provisioning touches.

//nolint:tagliatelle
type User struct {
	ID            int64  `json:"id"`
	UserName      string `json:"username"`
	LoginName     string `json:"login_name"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	AvatarURL     string `json:"avatar_url"`
	Language      string `json:"language"`
	IsAdmin       bool   `json:"is_admin"`
	LastLogin     string `json:"last_login"`
	Created       string `json:"created"`
	Restricted    bool   `json:"restricted"`
	Active        bool   `json:"active"`
	ProhibitLogin bool   `json:"prohibit_login"`
	Location      string `json:"location"`
	Website       string `json:"website"`
	Description   string `json:"description"`
	Visibility    string `json:"visibility"`
	SourceID      int64  `json:"source_id"`
}

//nolint:tagliatelle
type Organization struct {
	ID          int64  `json:"id"`
	UserName    string `json:"username"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	Visibility  string `json:"visibility"`
}

//nolint:tagliatelle
type Team struct {
	ID                      int64    `json:"id"`
	Name                    string   `json:"name"`
	Description             string   `json:"description"`
	Permission              string   `json:"permission"`
	CanCreateOrgRepo        bool     `json:"can_create_org_repo"`
	IncludesAllRepositories bool     `json:"includes_all_repositories"`
	Units                   []string `json:"units"`
}

//nolint:tagliatelle
type CreateUserOption struct {
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	LoginName          string `json:"login_name"`
	MustChangePassword bool   `json:"must_change_password"`
	Password           string `json:"password"`
	SendNotify         bool   `json:"send_notify"`
	SourceID           int64  `json:"source_id"`
	Username           string `json:"username"`
	Visibility         string `json:"visibility"`
}

// EditUserOption is a partial field set; nil fields are left untouched by the
// backend. LoginName is mandatory on every Gitea user edit.
//
//nolint:tagliatelle
type EditUserOption struct {
	LoginName   string  `json:"login_name"`
	SourceID    int64   `json:"source_id,omitempty"`
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Website     *string `json:"website,omitempty"`
	Active      *bool   `json:"active,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
}

//nolint:tagliatelle
type CreateOrgOption struct {
	Username    string `json:"username"`
	Visibility  string `json:"visibility"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

//nolint:tagliatelle
type EditOrgOption struct {
	FullName    *string `json:"full_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Website     *string `json:"website,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
}

//nolint:tagliatelle
type CreateTeamOption struct {
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	CanCreateOrgRepo        bool              `json:"can_create_org_repo"`
	IncludesAllRepositories bool              `json:"includes_all_repositories"`
	Permission              string            `json:"permission"`
	Units                   []string          `json:"units"`
	UnitsMap                map[string]string `json:"units_map,omitempty"`
}
