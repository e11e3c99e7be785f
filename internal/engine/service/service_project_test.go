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
	"errors"
	"testing"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectRoles(t *testing.T, e *env, orgId, projectId string) map[string]model.Role {
	t.Helper()
	users, err := e.store.ProjectMembers().ListUsers(context.Background(), orgId, []string{projectId})
	require.NoError(t, err)
	roles := make(map[string]model.Role, len(users))
	for _, u := range users {
		roles[u.UserId] = u.Role
	}
	return roles
}

func TestProject_RegisterProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, _ := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)

	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", "u-dev"))
	assert.Equal(t, map[string]model.Role{"u-dev": model.RoleAdmin}, projectRoles(t, e, orgId, "p1"))

	err := e.svc.Project.RegisterProject(ctx, orgId, "p2", "u-stranger")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	err = e.svc.Project.RegisterProject(ctx, orgId, "", "u-dev")
	assert.Equal(t, errs.InvalidParam, errs.KindOf(err))
}

func TestProject_RegisterProjectRefusesExistingProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, ownerId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", ownerId))

	err := e.svc.Project.RegisterProject(ctx, orgId, "p1", "u-dev")
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
	err = e.svc.Project.RegisterProject(ctx, orgId, " p1 ", ownerId)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	err = e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{Managers: []string{"u-dev"}}, "u-dev")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
	assert.Equal(t, map[string]model.Role{ownerId: model.RoleAdmin}, projectRoles(t, e, orgId, "p1"))
}

func TestProject_CheckProjectRoleAdminCoversUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))
	require.NoError(t, e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{
		Managers: []string{adminId},
		Users:    []string{"u-dev"},
	}, adminId))

	assert.NoError(t, e.svc.Project.CheckProjectRole(ctx, orgId, "p1", adminId, model.RoleUser))
	assert.NoError(t, e.svc.Project.CheckProjectRole(ctx, orgId, "p1", adminId, model.RoleAdmin))
	assert.NoError(t, e.svc.Project.CheckProjectRole(ctx, orgId, "p1", "u-dev", model.RoleUser))
	err := e.svc.Project.CheckProjectRole(ctx, orgId, "p1", "u-dev", model.RoleAdmin)
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestProject_ReplaceProjectMembership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	for _, id := range []string{"u-a", "u-b", "u-c"} {
		e.seedUser(t, id, id+"@acme.io")
	}
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))

	err := e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{
		Managers: []string{adminId, "u-a", "u-b"},
		Users:    []string{"u-b", "u-c", "u-c"},
	}, adminId)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Role{
		adminId: model.RoleAdmin,
		"u-a":   model.RoleAdmin,
		"u-b":   model.RoleUser,
		"u-c":   model.RoleUser,
	}, projectRoles(t, e, orgId, "p1"))

	// plain project users cannot replace the member set
	err = e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{}, "u-c")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
	assert.Len(t, projectRoles(t, e, orgId, "p1"), 4)

	// empty sets clear the project, the operator included
	require.NoError(t, e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{}, "u-a"))
	assert.Empty(t, projectRoles(t, e, orgId, "p1"))
}

func TestMergeProjectMembers(t *testing.T) {
	members := mergeProjectMembers("o", "p", []string{"a", "b", " ", "a"}, []string{"c", "a"})
	require.Len(t, members, 3)
	assert.Equal(t, "a", members[0].UserId)
	assert.Equal(t, model.RoleUser, members[0].Role)
	assert.Equal(t, "b", members[1].UserId)
	assert.Equal(t, model.RoleAdmin, members[1].Role)
	assert.Equal(t, "c", members[2].UserId)
}

func TestProject_ListAccessibleProjects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.seedUser(t, "u-new", "new@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)
	e.join(t, orgId, "u-new", model.RoleUser)

	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p2", adminId))
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", "u-dev"))
	require.NoError(t, e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{
		Managers: []string{"u-dev"},
	}, "u-dev"))

	ids, err := e.svc.Project.ListAccessibleProjects(ctx, orgId, adminId)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	ids, err = e.svc.Project.ListAccessibleProjects(ctx, orgId, "u-dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	ids, err = e.svc.Project.ListAccessibleProjects(ctx, orgId, "u-new")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = e.svc.Project.ListAccessibleProjects(ctx, orgId, "u-stranger")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestProject_ListProjects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))

	projects, err := e.svc.Project.ListProjects(ctx, orgId, adminId)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "project p1", projects[0]["name"])
	users, ok := projects[0]["users"].([]model.ProjectUser)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, "founder@acme.io", users[0].Email)
	assert.Equal(t, model.RoleAdmin, users[0].Role)

	e.catalog.err = errors.New("catalog: 503")
	_, err = e.svc.Project.ListProjects(ctx, orgId, adminId)
	assert.Equal(t, errs.UpstreamFailed, errs.KindOf(err))
}

func TestProject_ListProjectsWithoutCatalog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.svc.Project.catalog = nil
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))

	projects, err := e.svc.Project.ListProjects(ctx, orgId, adminId)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].Id())
	assert.Len(t, projects[0]["users"], 1)
}

func TestProject_GetProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))

	// any organization member may read, project membership is not required
	project, err := e.svc.Project.GetProject(ctx, orgId, "p1", "u-dev")
	require.NoError(t, err)
	assert.Equal(t, "project p1", project["name"])
	users, ok := project["users"].([]model.ProjectUser)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, adminId, users[0].UserId)

	_, err = e.svc.Project.GetProject(ctx, orgId, "p1", "u-stranger")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	_, err = e.svc.Project.GetProject(ctx, orgId, "missing", adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	e.catalog.err = errors.New("catalog: 503")
	_, err = e.svc.Project.GetProject(ctx, orgId, "p1", adminId)
	assert.Equal(t, errs.UpstreamFailed, errs.KindOf(err))
}

func TestProject_GetProjectWithoutCatalog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.svc.Project.catalog = nil
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))

	project, err := e.svc.Project.GetProject(ctx, orgId, "p1", adminId)
	require.NoError(t, err)
	assert.Equal(t, "p1", project.Id())
	assert.Len(t, project["users"], 1)

	_, err = e.svc.Project.GetProject(ctx, orgId, "p2", adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestProject_SupplyProjectsUsersLeavesUnknownProjectsEmpty(t *testing.T) {
	e := newEnv(t)
	projects, err := e.svc.Project.SupplyProjectsUsers(context.Background(), "o", []catalog.Project{{"id": "px"}})
	require.NoError(t, err)
	assert.Equal(t, []model.ProjectUser{}, projects[0]["users"])
}

func TestProject_DeletedOrganization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	require.NoError(t, e.svc.Project.RegisterProject(ctx, orgId, "p1", adminId))
	_, err := e.svc.Organization.DeleteOrganization(ctx, orgId, adminId)
	require.NoError(t, err)

	err = e.svc.Project.ReplaceProjectMembership(ctx, orgId, "p1", &model.EditProjectUsersReq{}, adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	err = e.svc.Project.RegisterProject(ctx, orgId, "p2", adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}
