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
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/id"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
)

// OrganizationService manages organizations and their memberships. Every
// operation taking an operator checks the operator's role first.
type OrganizationService struct {
	store   repo.IStore
	auth    http.Auth
	metrics *metrics.Metrics
}

func NewOrganizationService(store repo.IStore, auth http.Auth, m *metrics.Metrics) *OrganizationService {
	return &OrganizationService{
		store:   store,
		auth:    auth,
		metrics: m,
	}
}

// ActiveOrganization returns orgId unless it is absent or deleted
func (ors *OrganizationService) ActiveOrganization(ctx context.Context, orgId string) (*model.Organization, error) {
	org, err := ors.store.Organizations().FindByOrgId(ctx, orgId)
	if err != nil {
		return nil, err
	}
	if !org.Active() {
		return nil, errs.New(errs.NotFound, "organization(%s) not found", orgId)
	}
	return org, nil
}

// CheckOrgRole requires userId to be a member of orgId holding required.
// An empty required role accepts any member.
func (ors *OrganizationService) CheckOrgRole(ctx context.Context, orgId, userId string, required model.Role) (*model.OrganizationMember, error) {
	member, err := ors.store.OrganizationMembers().Find(ctx, orgId, userId)
	if errs.Is(err, errs.NotFound) {
		ors.metrics.ObserveAccessDenied("organization", string(required))
		return nil, errs.New(errs.AccessDenied, "user(%s) is not a member of organization(%s)", userId, orgId)
	}
	if err != nil {
		return nil, err
	}
	if !member.Role.Satisfies(required) {
		ors.metrics.ObserveAccessDenied("organization", string(required))
		return nil, errs.New(errs.AccessDenied, "organization role %s required", required)
	}
	return member, nil
}

// authorize combines ActiveOrganization and CheckOrgRole
func (ors *OrganizationService) authorize(ctx context.Context, orgId, operator string, required model.Role) error {
	if _, err := ors.ActiveOrganization(ctx, orgId); err != nil {
		return err
	}
	_, err := ors.CheckOrgRole(ctx, orgId, operator, required)
	return err
}

// AddOrganization creates the organization together with its founding
// administrator, whose initial password is the configured default
func (ors *OrganizationService) AddOrganization(ctx context.Context, req *model.AddOrganizationReq) (string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return "", errs.New(errs.InvalidParam, "organization name and email are required")
	}
	digest, err := hashPassword(ors.auth.DefaultPassword)
	if err != nil {
		return "", err
	}

	org := &model.Organization{
		OrgId:  id.GetUUIDWithoutDashes(),
		Name:   name,
		Remark: req.Remark,
		Status: model.OrgStatusActive,
	}
	admin := &model.User{
		UserId:   id.GetUUIDWithoutDashes(),
		Email:    email,
		Password: &digest,
		Status:   model.UserStatusActive,
	}
	err = ors.store.Transaction(ctx, func(tx repo.IStore) error {
		if err := tx.Organizations().Create(ctx, org); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, admin); err != nil {
			return err
		}
		return tx.OrganizationMembers().Create(ctx, &model.OrganizationMember{
			OrgId:  org.OrgId,
			UserId: admin.UserId,
			Role:   model.RoleAdmin,
		})
	})
	if err != nil {
		return "", err
	}
	log.Infow("organization created", "orgId", org.OrgId, "name", name, "admin", admin.UserId)
	return org.OrgId, nil
}

// DeleteOrganization marks orgId deleted and reports whether it was active
func (ors *OrganizationService) DeleteOrganization(ctx context.Context, orgId, operator string) (bool, error) {
	if _, err := ors.store.Organizations().FindByOrgId(ctx, orgId); err != nil {
		return false, err
	}
	if _, err := ors.CheckOrgRole(ctx, orgId, operator, model.RoleAdmin); err != nil {
		return false, err
	}
	changed, err := ors.store.Organizations().UpdateStatus(ctx, orgId, model.OrgStatusActive, model.OrgStatusDeleted)
	if err != nil {
		return false, err
	}
	if changed {
		log.Infow("organization deleted", "orgId", orgId, "operator", operator)
	}
	return changed, nil
}

// InviteUser adds the account registered under email to orgId. It reports
// false when the user already belongs to the organization.
func (ors *OrganizationService) InviteUser(ctx context.Context, orgId, email string, role model.Role, operator string) (bool, error) {
	if !role.Valid() {
		return false, errs.New(errs.InvalidParam, "unknown role %q", role)
	}
	if err := ors.authorize(ctx, orgId, operator, model.RoleAdmin); err != nil {
		return false, err
	}
	user, err := ors.store.Users().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, err
	}

	_, err = ors.store.OrganizationMembers().Find(ctx, orgId, user.UserId)
	if err == nil {
		return false, nil
	}
	if !errs.Is(err, errs.NotFound) {
		return false, err
	}

	err = ors.store.OrganizationMembers().Create(ctx, &model.OrganizationMember{
		OrgId:  orgId,
		UserId: user.UserId,
		Role:   role,
	})
	if errs.Is(err, errs.Conflict) {
		// lost the race to a concurrent invite
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Infow("user invited", "orgId", orgId, "userId", user.UserId, "role", role, "operator", operator)
	return true, nil
}

func (ors *OrganizationService) EditMembershipRole(ctx context.Context, orgId, userId string, role model.Role, operator string) error {
	if !role.Valid() {
		return errs.New(errs.InvalidParam, "unknown role %q", role)
	}
	if err := ors.authorize(ctx, orgId, operator, model.RoleAdmin); err != nil {
		return err
	}
	if _, err := ors.store.OrganizationMembers().Find(ctx, orgId, userId); err != nil {
		return err
	}
	if err := ors.store.OrganizationMembers().UpdateRole(ctx, orgId, userId, role); err != nil {
		return err
	}
	log.Infow("membership role changed", "orgId", orgId, "userId", userId, "role", role, "operator", operator)
	return nil
}

// RemoveMember deletes the membership if present. Administrators may remove
// themselves.
func (ors *OrganizationService) RemoveMember(ctx context.Context, orgId, userId, operator string) error {
	if err := ors.authorize(ctx, orgId, operator, model.RoleAdmin); err != nil {
		return err
	}
	if err := ors.store.OrganizationMembers().Delete(ctx, orgId, userId); err != nil {
		return err
	}
	log.Infow("member removed", "orgId", orgId, "userId", userId, "operator", operator)
	return nil
}

func (ors *OrganizationService) ListMembers(ctx context.Context, orgId string, req *model.ListMembersReq, operator string) (*model.ListMembersResp, error) {
	if err := ors.authorize(ctx, orgId, operator, model.RoleAdmin); err != nil {
		return nil, err
	}
	req.Normalize()
	members, total, err := ors.store.OrganizationMembers().List(ctx, orgId, strings.TrimSpace(req.Keyword), req.Offset(), req.PageSize)
	if err != nil {
		return nil, err
	}
	return &model.ListMembersResp{Members: members, Total: total}, nil
}
