package scim

import "strconv"

const (
	SchemaCoreUser     = "urn:ietf:params:scim:schemas:core:2.0:User"
	SchemaCoreGroup    = "urn:ietf:params:scim:schemas:core:2.0:Group"
	SchemaListResponse = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	SchemaError        = "urn:ietf:params:scim:api:messages:2.0:Error"
	SchemaPatchOp      = "urn:ietf:params:scim:api:messages:2.0:PatchOp"

	SchemaUserExtension  = "urn:ietf:params:scim:schemas:extension:Gitea:2.0:User"
	SchemaGroupExtension = "urn:ietf:params:scim:schemas:extension:Gitea:2.0:Group"

	ResourceTypeUser  = "User"
	ResourceTypeGroup = "Group"
)

type Meta struct {
	ResourceType string `json:"resourceType"`
}

type Email struct {
	Primary bool   `json:"primary"`
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
}

// UserExtension carries the Gitea-specific attributes that have no place in
// the SCIM core user schema.
//
//nolint:tagliatelle
type UserExtension struct {
	FullName   string `json:"full_name"`
	Visibility string `json:"visibility"`
	Location   string `json:"location"`
	SourceID   int64  `json:"source_id"`
}

//nolint:tagliatelle
type GroupExtension struct {
	FullName   string `json:"full_name"`
	Visibility string `json:"visibility"`
	Location   string `json:"location"`
}

type User struct {
	Schemas     []string      `json:"schemas"`
	ID          string        `json:"id"`
	UserName    string        `json:"userName"`
	Emails      []Email       `json:"emails"`
	Description string        `json:"description"`
	Active      bool          `json:"active"`
	Gitea       UserExtension `json:"urn:ietf:params:scim:schemas:extension:Gitea:2.0:User"`
	Meta        Meta          `json:"meta"`
}

type Member struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
}

// Group maps a Gitea organization. Members stays nil, and serializes to null,
// unless the caller resolved the membership explicitly.
type Group struct {
	Schemas     []string       `json:"schemas"`
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Members     []Member       `json:"members"`
	Description string         `json:"description"`
	Gitea       GroupExtension `json:"urn:ietf:params:scim:schemas:extension:Gitea:2.0:Group"`
	Meta        Meta           `json:"meta"`
}

//nolint:tagliatelle
type ListResponse struct {
	Schemas      []string `json:"schemas"`
	TotalResults int      `json:"totalResults"`
	StartIndex   int      `json:"startIndex"`
	ItemsPerPage int      `json:"itemsPerPage"`
	Resources    []any    `json:"Resources"`
}

func NewListResponse(startIndex int, resources []any) ListResponse {
	return ListResponse{
		Schemas:      []string{SchemaListResponse},
		TotalResults: len(resources),
		StartIndex:   startIndex,
		ItemsPerPage: len(resources),
		Resources:    resources,
	}
}

type Error struct {
	Schemas []string `json:"schemas"`
	Detail  string   `json:"detail"`
	Status  string   `json:"status"`
}

func NewError(status int, detail string) Error {
	return Error{
		Schemas: []string{SchemaError},
		Detail:  detail,
		Status:  strconv.Itoa(status),
	}
}
