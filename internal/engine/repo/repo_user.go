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

	"github.com/go-arcade/gatekeeper/internal/engine/consts"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/cache"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/log"
)

type IUserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUserId(ctx context.Context, userId string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FetchUserInfo(ctx context.Context, userId string) (*model.UserInfo, error)
	UpdatePassword(ctx context.Context, userId, digest string) error
}

type UserRepo struct {
	db    database.IDatabase
	cache cache.ICache
}

func NewUserRepo(db database.IDatabase, cache cache.ICache) IUserRepository {
	return &UserRepo{
		db:    db,
		cache: cache,
	}
}

func (ur *UserRepo) Create(ctx context.Context, u *model.User) error {
	err := ur.db.Database().WithContext(ctx).Create(u).Error
	return wrapErr(err, fmt.Sprintf("user(%s)", u.Email))
}

func (ur *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := ur.db.Database().WithContext(ctx).
		Where("email = ? AND status = ?", email, model.UserStatusActive).
		First(u).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("user(%s)", email))
	}
	return u, nil
}

func (ur *UserRepo) FindByUserId(ctx context.Context, userId string) (*model.User, error) {
	u := &model.User{}
	err := ur.db.Database().WithContext(ctx).Where("user_id = ?", userId).First(u).Error
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("user(%s)", userId))
	}
	return u, nil
}

// ExistsByEmail counts any account, active or not, holding email
func (ur *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := ur.db.Database().WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, wrapErr(err, "user")
	}
	return count > 0, nil
}

// FetchUserInfo reads through the redis cache when one is configured
func (ur *UserRepo) FetchUserInfo(ctx context.Context, userId string) (*model.UserInfo, error) {
	key := consts.UserInfoKey + userId
	if ur.cache != nil {
		info := &model.UserInfo{}
		hit, err := cache.GetJSON(ctx, ur.cache, key, info)
		if err != nil {
			log.Warnw("failed to read user info from cache", "userId", userId, "error", err)
		}
		if hit {
			return info, nil
		}
	}

	u, err := ur.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	info := u.Info()

	if ur.cache != nil {
		if err := cache.SetJSON(ctx, ur.cache, key, info, consts.UserInfoTTL); err != nil {
			log.Warnw("failed to cache user info", "userId", userId, "error", err)
		}
	}
	return info, nil
}

func (ur *UserRepo) UpdatePassword(ctx context.Context, userId, digest string) error {
	err := ur.db.Database().WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userId).
		Update("password", digest).Error
	if err != nil {
		return wrapErr(err, fmt.Sprintf("user(%s)", userId))
	}
	if ur.cache != nil {
		if err := ur.cache.Del(ctx, consts.UserInfoKey+userId).Err(); err != nil {
			log.Warnw("failed to evict user info", "userId", userId, "error", err)
		}
	}
	return nil
}
