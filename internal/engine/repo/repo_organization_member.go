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

package repo

import (
	"context"
	"fmt"

	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"gorm.io/gorm"
)

type IOrganizationMemberRepository interface {
	Create(ctx context.Context, m *model.OrganizationMember) error
	Find(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error)
	UpdateRole(ctx context.Context, orgId, userId string, role model.Role) error
	Delete(ctx context.Context, orgId, userId string) error
	ListByUser(ctx context.Context, userId string) ([]model.OrganizationMember, error)
	// List joins members with their accounts, newest account first
	List(ctx context.Context, orgId, keyword string, offset, limit int) ([]model.MemberInfo, int64, error)
}

type OrganizationMemberRepo struct {
	db database.IDatabase
}

func NewOrganizationMemberRepo(db database.IDatabase) IOrganizationMemberRepository {
	return &OrganizationMemberRepo{db: db}
}

func (r *OrganizationMemberRepo) Create(ctx context.Context, m *model.OrganizationMember) error {
	err := r.db.Database().WithContext(ctx).Create(m).Error
	return wrapErr(err, fmt.Sprintf("member(%s) of organization(%s)", m.UserId, m.OrgId))
}

func (r *OrganizationMemberRepo) Find(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	m := &model.OrganizationMember{}
	err := r.db.Database().WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		First(m).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("member(%s) of organization(%s)", userId, orgId))
	}
	return m, nil
}

func (r *OrganizationMemberRepo) UpdateRole(ctx context.Context, orgId, userId string, role model.Role) error {
	err := r.db.Database().WithContext(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Update("role", role).Error
	return wrapErr(err, fmt.Sprintf("member(%s) of organization(%s)", userId, orgId))
}

func (r *OrganizationMemberRepo) Delete(ctx context.Context, orgId, userId string) error {
	err := r.db.Database().WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Delete(&model.OrganizationMember{}).Error
	return wrapErr(err, fmt.Sprintf("member(%s) of organization(%s)", userId, orgId))
}

func (r *OrganizationMemberRepo) ListByUser(ctx context.Context, userId string) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := r.db.Database().WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id").
		Find(&members).Error
	return members, wrapErr(err, "membership")
}

func (r *OrganizationMemberRepo) List(ctx context.Context, orgId, keyword string, offset, limit int) ([]model.MemberInfo, int64, error) {
	// Count rewrites the select list, so each query starts from a fresh builder
	query := func() *gorm.DB {
		q := database.ReadDB(r.db.Database().WithContext(ctx)).
			Table(model.OrganizationMember{}.TableName()+" AS m").
			Joins("JOIN "+model.User{}.TableName()+" AS u ON u.user_id = m.user_id").
			Where("m.org_id = ?", orgId)
		if keyword != "" {
			q = q.Where("LOWER(u.email) LIKE ?", containsPattern(keyword))
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "member")
	}

	members := make([]model.MemberInfo, 0, limit)
	if total == 0 {
		return members, 0, nil
	}
	err := query().
		Select("m.user_id, u.email, m.role, u.created_at").
		Order("u.created_at DESC, u.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&members).Error
	if err != nil {
		return nil, 0, wrapErr(err, "member")
	}
	return members, total, nil
}
