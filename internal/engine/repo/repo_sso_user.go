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

type ISSOUserRepository interface {
	Create(ctx context.Context, s *model.SSOUser) error
	FindBySubject(ctx context.Context, provider, subject string) (*model.SSOUser, error)
	// Refresh stores the latest token and profile seen for a linked identity
	Refresh(ctx context.Context, s *model.SSOUser) error
}

type SSOUserRepo struct {
	db database.IDatabase
}

func NewSSOUserRepo(db database.IDatabase) ISSOUserRepository {
	return &SSOUserRepo{db: db}
}

func (r *SSOUserRepo) Create(ctx context.Context, s *model.SSOUser) error {
	err := r.db.Database().WithContext(ctx).Create(s).Error
	return wrapErr(err, fmt.Sprintf("%s identity(%s)", s.Provider, s.ExternalSubjectId))
}

func (r *SSOUserRepo) FindBySubject(ctx context.Context, provider, subject string) (*model.SSOUser, error) {
	s := &model.SSOUser{}
	err := r.db.Database().WithContext(ctx).
		Where("external_subject_id = ? AND provider = ?", subject, provider).
		First(s).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("%s identity(%s)", provider, subject))
	}
	return s, nil
}

func (r *SSOUserRepo) Refresh(ctx context.Context, s *model.SSOUser) error {
	err := r.db.Database().WithContext(ctx).Model(&model.SSOUser{}).
		Where("sso_user_id = ?", s.SSOUserId).
		Updates(map[string]any{
			"external_email": s.ExternalEmail,
			"access_token":   s.AccessToken,
			"raw_profile":    s.RawProfile,
		}).Error
	return wrapErr(err, fmt.Sprintf("%s identity(%s)", s.Provider, s.ExternalSubjectId))
}
