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
)

type IOrganizationRepository interface {
	Create(ctx context.Context, o *model.Organization) error
	FindByOrgId(ctx context.Context, orgId string) (*model.Organization, error)
	FindByOrgIds(ctx context.Context, orgIds []string) ([]model.Organization, error)
	// UpdateStatus moves orgId from one status to another and reports
	// whether a row changed
	UpdateStatus(ctx context.Context, orgId, from, to string) (bool, error)
}

type OrganizationRepo struct {
	db database.IDatabase
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{db: db}
}

func (r *OrganizationRepo) Create(ctx context.Context, o *model.Organization) error {
	err := r.db.Database().WithContext(ctx).Create(o).Error
	return wrapErr(err, fmt.Sprintf("organization(%s)", o.Name))
}

func (r *OrganizationRepo) FindByOrgId(ctx context.Context, orgId string) (*model.Organization, error) {
	o := &model.Organization{}
	if err := r.db.Database().WithContext(ctx).Where("org_id = ?", orgId).First(o).Error; err != nil {
		return nil, wrapErr(err, fmt.Sprintf("organization(%s)", orgId))
	}
	return o, nil
}

func (r *OrganizationRepo) FindByOrgIds(ctx context.Context, orgIds []string) ([]model.Organization, error) {
	orgs := make([]model.Organization, 0, len(orgIds))
	if len(orgIds) == 0 {
		return orgs, nil
	}
	err := r.db.Database().WithContext(ctx).
		Where("org_id IN ?", orgIds).
		Order("id").
		Find(&orgs).Error
	return orgs, wrapErr(err, "organization")
}

func (r *OrganizationRepo) UpdateStatus(ctx context.Context, orgId, from, to string) (bool, error) {
	res := r.db.Database().WithContext(ctx).Model(&model.Organization{}).
		Where("org_id = ? AND status = ?", orgId, from).
		Update("status", to)
	if res.Error != nil {
		return false, wrapErr(res.Error, fmt.Sprintf("organization(%s)", orgId))
	}
	return res.RowsAffected > 0, nil
}
