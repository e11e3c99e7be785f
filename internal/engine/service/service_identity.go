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

	"github.com/bytedance/sonic"
	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/pkg/id"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"gorm.io/datatypes"
)

// SSOLogin exchanges an authorization code with the identity provider and
// signs in the linked local user, creating it on first use
func (us *UserService) SSOLogin(ctx context.Context, req *model.SSOLoginReq) (resp *model.LoginResp, err error) {
	defer func() { us.metrics.ObserveLogin(loginMethodSSO, err) }()

	if us.sso == nil {
		return nil, errs.New(errs.LoginError, "single sign-on is not enabled")
	}
	if req.Code == "" {
		return nil, errs.New(errs.InvalidParam, "code is required")
	}

	accessToken, err := us.sso.ExchangeCode(ctx, req.Code, req.RedirectUri)
	if err != nil {
		return nil, upstreamErr(err)
	}
	profile, err := us.sso.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, upstreamErr(err)
	}
	raw, err := sonic.Marshal(profile.Raw)
	if err != nil {
		return nil, err
	}

	provider := us.sso.Name()
	var user *model.User
	err = us.store.Transaction(ctx, func(tx repo.IStore) error {
		link, err := tx.SSOUsers().FindBySubject(ctx, provider, profile.Subject)
		if err == nil {
			link.ExternalEmail = profile.Email
			link.AccessToken = accessToken
			link.RawProfile = datatypes.JSON(raw)
			if err := tx.SSOUsers().Refresh(ctx, link); err != nil {
				return err
			}
			user, err = tx.Users().FindByUserId(ctx, link.UserId)
			return err
		}
		if !errs.Is(err, errs.NotFound) {
			return err
		}

		if profile.Email == "" {
			return errs.New(errs.LoginError, "identity provider returned no email")
		}
		exists, err := tx.Users().ExistsByEmail(ctx, profile.Email)
		if err != nil {
			return err
		}
		if exists {
			return errs.New(errs.Conflict, "email %s is already registered", profile.Email)
		}

		user = &model.User{
			UserId: id.GetUUIDWithoutDashes(),
			Email:  profile.Email,
			Status: model.UserStatusActive,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		log.Infow("linked new sso identity", "provider", provider, "subject", profile.Subject, "userId", user.UserId)
		return tx.SSOUsers().Create(ctx, &model.SSOUser{
			SSOUserId:         id.GetUUIDWithoutDashes(),
			ExternalSubjectId: profile.Subject,
			Provider:          provider,
			ExternalEmail:     profile.Email,
			UserId:            user.UserId,
			AccessToken:       accessToken,
			RawProfile:        datatypes.JSON(raw),
		})
	})
	if err != nil {
		return nil, err
	}
	if user.Status != model.UserStatusActive {
		return nil, errs.New(errs.LoginError, "user is not active")
	}
	return us.issueSession(ctx, user)
}

// upstreamErr separates a provider that refused the login from one that
// could not be reached
func upstreamErr(err error) error {
	var ue *sso.UpstreamError
	if errors.As(err, &ue) && ue.Rejected {
		log.Warnw("identity provider rejected login", "op", ue.Op, "status", ue.StatusCode, "error", ue.Err)
		return errs.Wrap(errs.LoginError, err, "identity provider rejected the login")
	}
	log.Errorw("identity provider unavailable", "error", err)
	return errs.Wrap(errs.UpstreamFailed, err, "identity provider unavailable")
}
