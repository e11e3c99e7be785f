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
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/http/jwt"
	"github.com/go-arcade/gatekeeper/pkg/id"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginMethodPassword = "password"
	loginMethodSSO      = "sso"
)

var passwordCost = bcrypt.DefaultCost

// UserService owns credentials and sessions
type UserService struct {
	store   repo.IStore
	captcha *CaptchaService
	sso     sso.IProvider
	auth    http.Auth
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewUserService builds the service; provider is nil when SSO is disabled
func NewUserService(store repo.IStore, captcha *CaptchaService, provider sso.IProvider, auth http.Auth, m *metrics.Metrics) *UserService {
	return &UserService{
		store:   store,
		captcha: captcha,
		sso:     provider,
		auth:    auth,
		metrics: m,
		now:     time.Now,
	}
}

func (us *UserService) Signup(ctx context.Context, req *model.SignupReq) (*model.UserInfo, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, errs.New(errs.InvalidParam, "email and password are required")
	}
	digest, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserId:   id.GetUUIDWithoutDashes(),
		Email:    email,
		Password: &digest,
		Status:   model.UserStatusActive,
	}
	err = us.store.Transaction(ctx, func(tx repo.IStore) error {
		if err := us.captcha.verify(ctx, tx, email, model.CaptchaRegister, req.Code); err != nil {
			return err
		}
		exists, err := tx.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return errs.New(errs.Conflict, "email %s is already registered", email)
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	log.Infow("user signed up", "userId", user.UserId, "email", email)
	return user.Info(), nil
}

func (us *UserService) Login(ctx context.Context, req *model.LoginReq) (resp *model.LoginResp, err error) {
	defer func() { us.metrics.ObserveLogin(loginMethodPassword, err) }()

	user, err := us.store.Users().FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errs.Is(err, errs.NotFound) {
		return nil, errs.New(errs.LoginError, "incorrect email or password")
	}
	if err != nil {
		return nil, err
	}
	// SSO-only accounts have no password to compare against
	if user.Password == nil || !comparePassword(*user.Password, req.Password) {
		log.Warnw("login rejected", "email", user.Email)
		return nil, errs.New(errs.LoginError, "incorrect email or password")
	}
	return us.issueSession(ctx, user)
}

func (us *UserService) ResetPassword(ctx context.Context, req *model.ResetPasswordReq) error {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.NewPassword == "" {
		return errs.New(errs.InvalidParam, "email and new password are required")
	}
	digest, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return us.store.Transaction(ctx, func(tx repo.IStore) error {
		if err := us.captcha.verify(ctx, tx, email, model.CaptchaResetPassword, req.Code); err != nil {
			return err
		}
		user, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdatePassword(ctx, user.UserId, digest); err != nil {
			return err
		}
		log.Infow("password reset", "userId", user.UserId)
		return nil
	})
}

// CheckEmail reports the account registered under email
func (us *UserService) CheckEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	user, err := us.store.Users().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return user.Info(), nil
}

// UserInfo returns the cached public profile of userId
func (us *UserService) UserInfo(ctx context.Context, userId string) (*model.UserInfo, error) {
	return us.store.Users().FetchUserInfo(ctx, userId)
}

// issueSession signs a token for user and lists the active organizations it
// belongs to
func (us *UserService) issueSession(ctx context.Context, user *model.User) (*model.LoginResp, error) {
	token, expireAt, err := jwt.GenToken(
		user.UserId,
		user.Email,
		[]byte(us.auth.SecretKey),
		us.auth.Issuer,
		time.Duration(us.auth.AccessExpire)*time.Minute,
		us.now(),
	)
	if err != nil {
		log.Errorw("failed to generate token", "userId", user.UserId, "error", err)
		return nil, err
	}

	memberships, err := us.store.OrganizationMembers().ListByUser(ctx, user.UserId)
	if err != nil {
		return nil, err
	}
	orgIds := make([]string, 0, len(memberships))
	for _, m := range memberships {
		orgIds = append(orgIds, m.OrgId)
	}
	orgs, err := us.store.Organizations().FindByOrgIds(ctx, orgIds)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(orgs))
	for _, o := range orgs {
		if o.Active() {
			names[o.OrgId] = o.Name
		}
	}

	organizations := make([]model.OrgMembership, 0, len(memberships))
	for _, m := range memberships {
		name, ok := names[m.OrgId]
		if !ok {
			continue
		}
		organizations = append(organizations, model.OrgMembership{
			OrganizationId:   m.OrgId,
			OrganizationName: name,
			Role:             m.Role,
		})
	}

	return &model.LoginResp{
		Token:         token,
		ExpireAt:      expireAt,
		UserInfo:      user.Info(),
		Organizations: organizations,
	}, nil
}

func hashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", errs.Wrap(errs.InvalidParam, err, "password cannot be used")
	}
	return string(digest), nil
}

func comparePassword(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
