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
	"gorm.io/gorm/clause"
)

type IProjectMemberRepository interface {
	Create(ctx context.Context, m *model.ProjectMember) error
	Find(ctx context.Context, orgId, projectId, userId string) (*model.ProjectMember, error)
	// ExistsProject reports whether the project has any member. The read
	// locks the matching rows when run inside a transaction.
	ExistsProject(ctx context.Context, orgId, projectId string) (bool, error)
	// Replace swaps the whole member set of a project. Callers run it inside
	// a transaction.
	Replace(ctx context.Context, orgId, projectId string, members []model.ProjectMember) error
	ListProjectIds(ctx context.Context, orgId string) ([]string, error)
	ListProjectIdsByUser(ctx context.Context, orgId, userId string) ([]string, error)
	ListUsers(ctx context.Context, orgId string, projectIds []string) ([]model.ProjectUser, error)
}

type ProjectMemberRepo struct {
	db database.IDatabase
}

func NewProjectMemberRepo(db database.IDatabase) IProjectMemberRepository {
	return &ProjectMemberRepo{db: db}
}

func (r *ProjectMemberRepo) Create(ctx context.Context, m *model.ProjectMember) error {
	err := r.db.Database().WithContext(ctx).Create(m).Error
	return wrapErr(err, fmt.Sprintf("member(%s) of project(%s)", m.UserId, m.ProjectId))
}

func (r *ProjectMemberRepo) Find(ctx context.Context, orgId, projectId, userId string) (*model.ProjectMember, error) {
	m := &model.ProjectMember{}
	err := r.db.Database().WithContext(ctx).
		Where("org_id = ? AND project_id = ? AND user_id = ?", orgId, projectId, userId).
		First(m).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("member(%s) of project(%s)", userId, projectId))
	}
	return m, nil
}

func (r *ProjectMemberRepo) ExistsProject(ctx context.Context, orgId, projectId string) (bool, error) {
	var n int64
	err := r.db.Database().WithContext(ctx).Model(&model.ProjectMember{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("org_id = ? AND project_id = ?", orgId, projectId).
		Count(&n).Error
	if err != nil {
		return false, wrapErr(err, fmt.Sprintf("project(%s)", projectId))
	}
	return n > 0, nil
}

func (r *ProjectMemberRepo) Replace(ctx context.Context, orgId, projectId string, members []model.ProjectMember) error {
	db := r.db.Database().WithContext(ctx)
	err := db.Where("org_id = ? AND project_id = ?", orgId, projectId).
		Delete(&model.ProjectMember{}).Error
	if err != nil {
		return wrapErr(err, fmt.Sprintf("project(%s)", projectId))
	}
	if len(members) == 0 {
		return nil
	}
	return wrapErr(db.Create(&members).Error, fmt.Sprintf("member of project(%s)", projectId))
}

func (r *ProjectMemberRepo) ListProjectIds(ctx context.Context, orgId string) ([]string, error) {
	var ids []string
	err := database.ReadDB(r.db.Database().WithContext(ctx)).Model(&model.ProjectMember{}).
		Where("org_id = ?", orgId).
		Distinct().
		Order("project_id").
		Pluck("project_id", &ids).Error
	return ids, wrapErr(err, "project")
}

func (r *ProjectMemberRepo) ListProjectIdsByUser(ctx context.Context, orgId, userId string) ([]string, error) {
	var ids []string
	err := database.ReadDB(r.db.Database().WithContext(ctx)).Model(&model.ProjectMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Order("project_id").
		Pluck("project_id", &ids).Error
	return ids, wrapErr(err, "project")
}

func (r *ProjectMemberRepo) ListUsers(ctx context.Context, orgId string, projectIds []string) ([]model.ProjectUser, error) {
	users := make([]model.ProjectUser, 0)
	if len(projectIds) == 0 {
		return users, nil
	}
	err := database.ReadDB(r.db.Database().WithContext(ctx)).
		Table(model.ProjectMember{}.TableName()+" AS p").
		Select("p.project_id, p.user_id, u.email, p.role").
		Joins("JOIN "+model.User{}.TableName()+" AS u ON u.user_id = p.user_id").
		Where("p.org_id = ? AND p.project_id IN ?", orgId, projectIds).
		Order("p.id").
		Scan(&users).Error
	return users, wrapErr(err, "project member")
}
