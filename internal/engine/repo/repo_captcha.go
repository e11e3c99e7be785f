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
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/database"
)

type ICaptchaRepository interface {
	Create(ctx context.Context, c *model.Captcha) error
	// FindLatest returns the newest issued code for receiver and purpose
	FindLatest(ctx context.Context, receiver string, purpose model.CaptchaPurpose) (*model.Captcha, error)
	// LastIssuedAt is the creation time of the newest still-issued code, or
	// the zero time when none exists
	LastIssuedAt(ctx context.Context, receiver string, purpose model.CaptchaPurpose) (time.Time, error)
	// MarkVerified consumes an issued code; false means it was already used
	MarkVerified(ctx context.Context, id uint64) (bool, error)
}

type CaptchaRepo struct {
	db database.IDatabase
}

func NewCaptchaRepo(db database.IDatabase) ICaptchaRepository {
	return &CaptchaRepo{db: db}
}

func (r *CaptchaRepo) Create(ctx context.Context, c *model.Captcha) error {
	err := r.db.Database().WithContext(ctx).Create(c).Error
	return wrapErr(err, "captcha")
}

func (r *CaptchaRepo) FindLatest(ctx context.Context, receiver string, purpose model.CaptchaPurpose) (*model.Captcha, error) {
	c := &model.Captcha{}
	err := database.WriteDB(r.db.Database().WithContext(ctx)).
		Where("receiver = ? AND purpose = ? AND status = ?", receiver, purpose, model.CaptchaStatusIssued).
		Order("id DESC").
		First(c).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("captcha for %s", receiver))
	}
	return c, nil
}

func (r *CaptchaRepo) LastIssuedAt(ctx context.Context, receiver string, purpose model.CaptchaPurpose) (time.Time, error) {
	var captchas []model.Captcha
	err := database.WriteDB(r.db.Database().WithContext(ctx)).
		Where("receiver = ? AND purpose = ? AND status = ?", receiver, purpose, model.CaptchaStatusIssued).
		Order("id DESC").
		Limit(1).
		Find(&captchas).Error
	if err != nil || len(captchas) == 0 {
		return time.Time{}, wrapErr(err, "captcha")
	}
	return captchas[0].CreatedAt, nil
}

func (r *CaptchaRepo) MarkVerified(ctx context.Context, id uint64) (bool, error) {
	res := r.db.Database().WithContext(ctx).Model(&model.Captcha{}).
		Where("id = ? AND status = ?", id, model.CaptchaStatusIssued).
		Update("status", model.CaptchaStatusVerified)
	if res.Error != nil {
		return false, wrapErr(res.Error, "captcha")
	}
	return res.RowsAffected > 0, nil
}
