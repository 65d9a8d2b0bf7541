package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/translator"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/clients/gitea"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/scim"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/utils/ptr"
)

type createGroupRequest struct {
	DisplayName string              `json:"displayName"`
	Description string              `json:"description"`
	Gitea       scim.GroupExtension `json:"urn:ietf:params:scim:schemas:extension:Gitea:2.0:Group"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	startIndex, page, limit := pagination(r)

	if expr := r.URL.Query().Get("filter"); expr != "" {
		comparison, err := scim.ParseFilter(expr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Unsupported filter expression")
			return
		}

		group, err := s.translator.GetOrg(r.Context(), comparison.Value)
		if err != nil {
			s.backendFailure(w, "filtered group lookup", err)
			return
		}

		resources := []any{}
		if group != nil {
			resources = append(resources, group)
		}

		s.writeJSON(w, http.StatusOK, scim.NewListResponse(startIndex, resources))

		return
	}

	groups, err := s.translator.GetOrgs(r.Context(), page, limit)
	if err != nil {
		s.backendFailure(w, "group listing", err)
		return
	}

	resources := make([]any, 0, len(groups))
	for _, group := range groups {
		resources = append(resources, group)
	}

	s.writeJSON(w, http.StatusOK, scim.NewListResponse(startIndex, resources))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["id"]

	group, err := s.translator.GetOrg(r.Context(), org)
	if err != nil {
		s.backendFailure(w, "group lookup", err)
		return
	}

	if group == nil {
		s.writeError(w, http.StatusNotFound, "Group not found")
		return
	}

	s.writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	if req.DisplayName == "" {
		s.writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	existing, err := s.translator.GetOrg(r.Context(), req.DisplayName)
	if err != nil {
		s.backendFailure(w, "group existence check", err)
		return
	}

	if existing != nil {
		s.writeError(w, http.StatusConflict, "Group already exists in the database.")
		return
	}

	group, err := s.translator.CreateOrg(r.Context(), translator.CreateOrgParams{
		Username:    req.DisplayName,
		Visibility:  req.Gitea.Visibility,
		FullName:    req.Gitea.FullName,
		Description: req.Description,
		Location:    req.Gitea.Location,
	})
	if err != nil {
		var statusErr *translator.StatusError
		if errors.As(err, &statusErr) && isConflict(statusErr.Status) {
			s.writeError(w, http.StatusConflict, "Group already exists in the database.")
			return
		}

		s.backendFailure(w, "group creation", err)

		return
	}

	s.writeJSON(w, http.StatusCreated, group)
}

// handleUpdateGroup serves PATCH and PUT alike: membership operations turn into
// team member calls, attribute operations into one organization edit. A member
// that does not resolve to an existing user is skipped, so a stale entry on the
// identity provider side cannot wedge the rest of the request.
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	org := mux.Vars(r)["id"]

	var req scim.PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		opts       gitea.EditOrgOption
		editNeeded bool
		additions  []scim.Member
		removals   []scim.Member
	)

	for _, op := range req.Operations {
		if op.Path == "members" {
			switch op.Op {
			case "Add":
				additions = append(additions, op.MemberValues()...)
			case "Remove":
				removals = append(removals, op.MemberValues()...)
			}

			continue
		}

		if strings.EqualFold(op.Op, "replace") && op.Path == "" {
			// A bare replace carries a whole-resource value this bridge does
			// not apply.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch op.Path {
		case "description":
			opts.Description = ptr.PointTo(op.StringValue())
			editNeeded = true
		case scim.SchemaGroupExtension + ":visibility":
			opts.Visibility = ptr.PointTo(op.StringValue())
			editNeeded = true
		case scim.SchemaGroupExtension + ":full_name":
			opts.FullName = ptr.PointTo(op.StringValue())
			editNeeded = true
		case scim.SchemaGroupExtension + ":location":
			opts.Location = ptr.PointTo(op.StringValue())
			editNeeded = true
		}
	}

	var group *scim.Group

	if editNeeded {
		edited, err := s.translator.EditOrg(r.Context(), org, opts)
		if err != nil {
			s.backendFailure(w, "group edit", err)
			return
		}

		group = edited
	}

	for _, member := range additions {
		if !s.memberExists(r, member.Value) {
			continue
		}

		updated, err := s.translator.AddOrgMember(r.Context(), org, member.Value)
		if err != nil {
			s.logger.Error("failed to add group member",
				"group", org, "member", member.Value, "error", err)
			continue
		}

		group = updated
	}

	for _, member := range removals {
		if !s.memberExists(r, member.Value) {
			continue
		}

		updated, err := s.translator.RemoveOrgMember(r.Context(), org, member.Value)
		if err != nil {
			s.logger.Error("failed to remove group member",
				"group", org, "member", member.Value, "error", err)
			continue
		}

		group = updated
	}

	if group == nil {
		refreshed, err := s.translator.GetOrg(r.Context(), org)
		if err != nil {
			s.backendFailure(w, "group refresh", err)
			return
		}

		group = refreshed
	}

	if group == nil {
		s.writeError(w, http.StatusNotFound, "Group not found")
		return
	}

	s.writeJSON(w, http.StatusOK, group)
}

// memberExists confirms the user is provisioned before any team mutation is
// attempted against it.
func (s *Server) memberExists(r *http.Request, username string) bool {
	user, err := s.translator.GetUser(r.Context(), username)
	if err != nil {
		s.logger.Warn("member lookup failed", "member", username, "error", err)
		return false
	}

	if user == nil {
		s.logger.Warn("skipping membership change for unknown user", "member", username)
		return false
	}

	return true
}
