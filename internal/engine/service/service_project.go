// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"strings"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
)

// ProjectService controls who may act on catalog projects. Project records
// themselves live in the catalog; only memberships are stored here.
type ProjectService struct {
	store   repo.IStore
	orgs    *OrganizationService
	catalog catalog.IClient
	metrics *metrics.Metrics
}

// NewProjectService builds the service; client is nil when no catalog is configured
func NewProjectService(store repo.IStore, orgs *OrganizationService, client catalog.IClient, m *metrics.Metrics) *ProjectService {
	return &ProjectService{
		store:   store,
		orgs:    orgs,
		catalog: client,
		metrics: m,
	}
}

// CheckProjectRole requires userId to hold required on projectId
func (ps *ProjectService) CheckProjectRole(ctx context.Context, orgId, projectId, userId string, required model.Role) error {
	member, err := ps.store.ProjectMembers().Find(ctx, orgId, projectId, userId)
	if errs.Is(err, errs.NotFound) {
		ps.metrics.ObserveAccessDenied("project", string(required))
		return errs.New(errs.AccessDenied, "user(%s) is not a member of project(%s)", userId, projectId)
	}
	if err != nil {
		return err
	}
	if !member.Role.Satisfies(required) {
		ps.metrics.ObserveAccessDenied("project", string(required))
		return errs.New(errs.AccessDenied, "project role %s required", required)
	}
	return nil
}

// RegisterProject records operator as the administrator of a newly created
// catalog project. A project that already has members is refused.
func (ps *ProjectService) RegisterProject(ctx context.Context, orgId, projectId, operator string) error {
	projectId = strings.TrimSpace(projectId)
	if projectId == "" {
		return errs.New(errs.InvalidParam, "projectId is required")
	}
	if err := ps.orgs.authorize(ctx, orgId, operator, ""); err != nil {
		return err
	}
	err := ps.store.Transaction(ctx, func(tx repo.IStore) error {
		exists, err := tx.ProjectMembers().ExistsProject(ctx, orgId, projectId)
		if err != nil {
			return err
		}
		if exists {
			return errs.New(errs.Conflict, "project(%s) already registered", projectId)
		}
		return tx.ProjectMembers().Create(ctx, &model.ProjectMember{
			OrgId:     orgId,
			ProjectId: projectId,
			UserId:    operator,
			Role:      model.RoleAdmin,
		})
	})
	if err != nil {
		return err
	}
	log.Infow("project registered", "orgId", orgId, "projectId", projectId, "admin", operator)
	return nil
}

// ReplaceProjectMembership swaps the member set of projectId for managers
// (ADMIN) and users (USER). An id listed more than once keeps its first
// position and the role of its last occurrence.
func (ps *ProjectService) ReplaceProjectMembership(ctx context.Context, orgId, projectId string, req *model.EditProjectUsersReq, operator string) error {
	if _, err := ps.orgs.ActiveOrganization(ctx, orgId); err != nil {
		return err
	}
	if err := ps.CheckProjectRole(ctx, orgId, projectId, operator, model.RoleAdmin); err != nil {
		return err
	}

	members := mergeProjectMembers(orgId, projectId, req.Managers, req.Users)
	err := ps.store.Transaction(ctx, func(tx repo.IStore) error {
		return tx.ProjectMembers().Replace(ctx, orgId, projectId, members)
	})
	if err != nil {
		return err
	}
	log.Infow("project members replaced", "orgId", orgId, "projectId", projectId, "members", len(members), "operator", operator)
	return nil
}

func mergeProjectMembers(orgId, projectId string, managers, users []string) []model.ProjectMember {
	members := make([]model.ProjectMember, 0, len(managers)+len(users))
	index := make(map[string]int, len(managers)+len(users))
	add := func(ids []string, role model.Role) {
		for _, userId := range ids {
			userId = strings.TrimSpace(userId)
			if userId == "" {
				continue
			}
			if i, ok := index[userId]; ok {
				members[i].Role = role
				continue
			}
			index[userId] = len(members)
			members = append(members, model.ProjectMember{
				OrgId:     orgId,
				ProjectId: projectId,
				UserId:    userId,
				Role:      role,
			})
		}
	}
	add(managers, model.RoleAdmin)
	add(users, model.RoleUser)
	return members
}

// ListAccessibleProjects returns every project of the organization to an
// administrator and the projects userId belongs to otherwise
func (ps *ProjectService) ListAccessibleProjects(ctx context.Context, orgId, userId string) ([]string, error) {
	if _, err := ps.orgs.ActiveOrganization(ctx, orgId); err != nil {
		return nil, err
	}
	member, err := ps.orgs.CheckOrgRole(ctx, orgId, userId, "")
	if err != nil {
		return nil, err
	}
	var ids []string
	if member.Role == model.RoleAdmin {
		ids, err = ps.store.ProjectMembers().ListProjectIds(ctx, orgId)
	} else {
		ids, err = ps.store.ProjectMembers().ListProjectIdsByUser(ctx, orgId, userId)
	}
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ListProjects resolves the accessible projects against the catalog and
// attaches their members
func (ps *ProjectService) ListProjects(ctx context.Context, orgId, userId string) ([]catalog.Project, error) {
	ids, err := ps.ListAccessibleProjects(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}

	var projects []catalog.Project
	if ps.catalog == nil || len(ids) == 0 {
		projects = make([]catalog.Project, 0, len(ids))
		for _, projectId := range ids {
			projects = append(projects, catalog.Project{"id": projectId})
		}
	} else {
		projects, err = ps.catalog.GetProjects(ctx, orgId, ids)
		if err != nil {
			log.Errorw("failed to fetch projects from catalog", "orgId", orgId, "error", err)
			return nil, errs.Wrap(errs.UpstreamFailed, err, "project catalog unavailable")
		}
	}
	return ps.SupplyProjectsUsers(ctx, orgId, projects)
}

// GetProject reads one project for any member of the organization. Without a
// catalog the project exists as long as it has members.
func (ps *ProjectService) GetProject(ctx context.Context, orgId, projectId, userId string) (catalog.Project, error) {
	if _, err := ps.orgs.ActiveOrganization(ctx, orgId); err != nil {
		return nil, err
	}
	if _, err := ps.orgs.CheckOrgRole(ctx, orgId, userId, ""); err != nil {
		return nil, err
	}

	var project catalog.Project
	if ps.catalog == nil {
		exists, err := ps.store.ProjectMembers().ExistsProject(ctx, orgId, projectId)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errs.New(errs.NotFound, "project(%s) not found", projectId)
		}
		project = catalog.Project{"id": projectId}
	} else {
		var err error
		project, err = ps.catalog.GetProject(ctx, orgId, projectId)
		if catalog.IsNotFound(err) || (err == nil && project == nil) {
			return nil, errs.New(errs.NotFound, "project(%s) not found", projectId)
		}
		if err != nil {
			log.Errorw("failed to fetch project from catalog", "orgId", orgId, "projectId", projectId, "error", err)
			return nil, errs.Wrap(errs.UpstreamFailed, err, "project catalog unavailable")
		}
	}

	projects, err := ps.SupplyProjectsUsers(ctx, orgId, []catalog.Project{project})
	if err != nil {
		return nil, err
	}
	return projects[0], nil
}

// SupplyProjectsUsers sets "users" on each project to its member list
func (ps *ProjectService) SupplyProjectsUsers(ctx context.Context, orgId string, projects []catalog.Project) ([]catalog.Project, error) {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.Id())
	}
	rows, err := ps.store.ProjectMembers().ListUsers(ctx, orgId, ids)
	if err != nil {
		return nil, err
	}
	byProject := make(map[string][]model.ProjectUser, len(projects))
	for _, r := range rows {
		byProject[r.ProjectId] = append(byProject[r.ProjectId], r)
	}
	for _, p := range projects {
		users := byProject[p.Id()]
		if users == nil {
			users = []model.ProjectUser{}
		}
		p["users"] = users
	}
	return projects, nil
}
