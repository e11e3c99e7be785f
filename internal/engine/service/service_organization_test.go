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
	"fmt"
	"testing"
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganization_AddOrganization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	assert.Len(t, orgId, 32)

	member, err := e.svc.Organization.CheckOrgRole(ctx, orgId, adminId, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, member.Role)

	resp, err := e.svc.User.Login(ctx, &model.LoginReq{Email: "founder@acme.io", Password: testDefaultPassword})
	require.NoError(t, err)
	require.Len(t, resp.Organizations, 1)
	assert.Equal(t, "acme", resp.Organizations[0].OrganizationName)
}

func TestOrganization_AddOrganizationIsAtomic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedOrg(t, "acme", "founder@acme.io")

	_, err := e.svc.Organization.AddOrganization(ctx, &model.AddOrganizationReq{Name: "acme", Email: "other@acme.io"})
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	// the organization row is rolled back when its founder collides
	_, err = e.svc.Organization.AddOrganization(ctx, &model.AddOrganizationReq{Name: "beta", Email: "founder@acme.io"})
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
	_, err = e.svc.Organization.AddOrganization(ctx, &model.AddOrganizationReq{Name: "beta", Email: "founder@beta.io"})
	assert.NoError(t, err)

	_, err = e.svc.Organization.AddOrganization(ctx, &model.AddOrganizationReq{Name: " ", Email: "x@y.io"})
	assert.Equal(t, errs.InvalidParam, errs.KindOf(err))
}

func TestOrganization_CheckOrgRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, _ := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)

	_, err := e.svc.Organization.CheckOrgRole(ctx, orgId, "u-dev", "")
	assert.NoError(t, err)
	_, err = e.svc.Organization.CheckOrgRole(ctx, orgId, "u-dev", model.RoleAdmin)
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
	_, err = e.svc.Organization.CheckOrgRole(ctx, orgId, "u-stranger", "")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestOrganization_CheckOrgRoleAdminCoversUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)

	member, err := e.svc.Organization.CheckOrgRole(ctx, orgId, adminId, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, member.Role)
	_, err = e.svc.Organization.CheckOrgRole(ctx, orgId, "u-dev", model.RoleUser)
	assert.NoError(t, err)
}

func TestOrganization_InviteUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.seedUser(t, "u-ops", "ops@acme.io")

	created, err := e.svc.Organization.InviteUser(ctx, orgId, "dev@acme.io", model.RoleUser, adminId)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = e.svc.Organization.InviteUser(ctx, orgId, "dev@acme.io", model.RoleAdmin, adminId)
	require.NoError(t, err)
	assert.False(t, created, "second invite is a no-op")
	member, err := e.store.OrganizationMembers().Find(ctx, orgId, "u-dev")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, member.Role)

	_, err = e.svc.Organization.InviteUser(ctx, orgId, "ops@acme.io", model.RoleUser, "u-dev")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	_, err = e.svc.Organization.InviteUser(ctx, orgId, "ghost@acme.io", model.RoleUser, adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	_, err = e.svc.Organization.InviteUser(ctx, orgId, "ops@acme.io", model.Role("OWNER"), adminId)
	assert.Equal(t, errs.InvalidParam, errs.KindOf(err))
}

func TestOrganization_EditAndRemoveMember(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)

	require.NoError(t, e.svc.Organization.EditMembershipRole(ctx, orgId, "u-dev", model.RoleAdmin, adminId))
	_, err := e.svc.Organization.CheckOrgRole(ctx, orgId, "u-dev", model.RoleAdmin)
	assert.NoError(t, err)

	err = e.svc.Organization.EditMembershipRole(ctx, orgId, "u-ghost", model.RoleUser, adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	require.NoError(t, e.svc.Organization.RemoveMember(ctx, orgId, "u-dev", adminId))
	_, err = e.svc.Organization.CheckOrgRole(ctx, orgId, "u-dev", "")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	// removing an absent member is not an error
	assert.NoError(t, e.svc.Organization.RemoveMember(ctx, orgId, "u-dev", adminId))

	// an administrator may remove itself
	require.NoError(t, e.svc.Organization.RemoveMember(ctx, orgId, adminId, adminId))
	err = e.svc.Organization.RemoveMember(ctx, orgId, adminId, adminId)
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestOrganization_ListMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	for i := 1; i <= 5; i++ {
		e.clock.Advance(time.Second)
		userId := fmt.Sprintf("u-%d", i)
		e.seedUser(t, userId, fmt.Sprintf("Dev%d@acme.io", i))
		e.join(t, orgId, userId, model.RoleUser)
	}
	e.seedUser(t, "u-outsider", "dev9@other.io")

	resp, err := e.svc.Organization.ListMembers(ctx, orgId, &model.ListMembersReq{Keyword: "DEV", PageNo: 1, PageSize: 2}, adminId)
	require.NoError(t, err)
	assert.EqualValues(t, 5, resp.Total)
	require.Len(t, resp.Members, 2)
	assert.Equal(t, "u-5", resp.Members[0].UserId)
	assert.Equal(t, "u-4", resp.Members[1].UserId)

	resp, err = e.svc.Organization.ListMembers(ctx, orgId, &model.ListMembersReq{Keyword: "dev", PageNo: 3, PageSize: 2}, adminId)
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "u-1", resp.Members[0].UserId)

	resp, err = e.svc.Organization.ListMembers(ctx, orgId, &model.ListMembersReq{}, adminId)
	require.NoError(t, err)
	assert.EqualValues(t, 6, resp.Total)
	assert.Equal(t, adminId, resp.Members[5].UserId)

	_, err = e.svc.Organization.ListMembers(ctx, orgId, &model.ListMembersReq{}, "u-1")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestOrganization_DeleteOrganization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	orgId, adminId := e.seedOrg(t, "acme", "founder@acme.io")
	e.seedUser(t, "u-dev", "dev@acme.io")
	e.join(t, orgId, "u-dev", model.RoleUser)

	_, err := e.svc.Organization.DeleteOrganization(ctx, orgId, "u-dev")
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	deleted, err := e.svc.Organization.DeleteOrganization(ctx, orgId, adminId)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = e.svc.Organization.DeleteOrganization(ctx, orgId, adminId)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = e.svc.Organization.DeleteOrganization(ctx, "missing", adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))

	_, err = e.svc.Organization.InviteUser(ctx, orgId, "dev@acme.io", model.RoleUser, adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	err = e.svc.Organization.RemoveMember(ctx, orgId, "u-dev", adminId)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}
