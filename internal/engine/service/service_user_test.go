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
	"testing"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/http/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signup(t *testing.T, e *env, email, password string) *model.UserInfo {
	t.Helper()
	ctx := context.Background()
	code, err := e.svc.Captcha.Issue(ctx, email, model.CaptchaRegister)
	require.NoError(t, err)
	info, err := e.svc.User.Signup(ctx, &model.SignupReq{Email: email, Password: password, Code: code})
	require.NoError(t, err)
	return info
}

func TestUser_SignupAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	info := signup(t, e, "alice@example.com", "s3cret")
	assert.Len(t, info.UserId, 32)
	assert.Equal(t, model.UserStatusActive, info.Status)

	resp, err := e.svc.User.Login(ctx, &model.LoginReq{Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, info.UserId, resp.UserInfo.UserId)
	assert.Empty(t, resp.Organizations)
	require.NotNil(t, resp.ExpireAt)

	claims, err := jwt.ParseToken(resp.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, info.UserId, claims.UserId())
	assert.Equal(t, "alice@example.com", claims.Name)
	assert.Equal(t, "gatekeeper", claims.Issuer)

	stored, err := e.store.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.Password)
	assert.NotEqual(t, "s3cret", *stored.Password)
}

func TestUser_SignupRequiresValidCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.User.Signup(ctx, &model.SignupReq{Email: "bob@example.com", Password: "pw", Code: "ABCD"})
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	exists, err := e.store.Users().ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = e.svc.User.Signup(ctx, &model.SignupReq{Email: "", Password: "pw", Code: "ABCD"})
	assert.Equal(t, errs.InvalidParam, errs.KindOf(err))
}

func TestUser_SignupConflictKeepsCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	code, err := e.svc.Captcha.Issue(ctx, "carol@example.com", model.CaptchaRegister)
	require.NoError(t, err)
	// the address gets taken between issue and signup
	e.seedUser(t, "u-carol", "carol@example.com")

	_, err = e.svc.User.Signup(ctx, &model.SignupReq{Email: "carol@example.com", Password: "pw", Code: code})
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	// the failed signup rolled back the verification
	assert.NoError(t, e.svc.Captcha.Verify(ctx, "carol@example.com", model.CaptchaRegister, code))
}

func TestUser_LoginFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	signup(t, e, "alice@example.com", "s3cret")
	e.seedUser(t, "u-sso", "sso@example.com")

	cases := []struct {
		name  string
		email string
		pwd   string
	}{
		{"wrong password", "alice@example.com", "nope"},
		{"unknown user", "nobody@example.com", "s3cret"},
		{"sso only account", "sso@example.com", ""},
		{"email is case sensitive", "Alice@example.com", "s3cret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.User.Login(ctx, &model.LoginReq{Email: tc.email, Password: tc.pwd})
			assert.Equal(t, errs.LoginError, errs.KindOf(err))
		})
	}
}

func TestUser_LoginListsActiveOrganizations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	acme, _ := e.seedOrg(t, "acme", "admin@acme.io")
	gone, goneAdmin := e.seedOrg(t, "gone", "admin@gone.io")
	user := signup(t, e, "dev@example.com", "pw")
	e.join(t, acme, user.UserId, model.RoleUser)
	e.join(t, gone, user.UserId, model.RoleAdmin)

	_, err := e.svc.Organization.DeleteOrganization(ctx, gone, goneAdmin)
	require.NoError(t, err)

	resp, err := e.svc.User.Login(ctx, &model.LoginReq{Email: "dev@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Len(t, resp.Organizations, 1)
	assert.Equal(t, model.OrgMembership{
		OrganizationId:   acme,
		OrganizationName: "acme",
		Role:             model.RoleUser,
	}, resp.Organizations[0])
}

func TestUser_ResetPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	signup(t, e, "alice@example.com", "old")

	code, err := e.svc.Captcha.Issue(ctx, "alice@example.com", model.CaptchaResetPassword)
	require.NoError(t, err)

	err = e.svc.User.ResetPassword(ctx, &model.ResetPasswordReq{Email: "alice@example.com", NewPassword: "new", Code: "WRNG"})
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	require.NoError(t, e.svc.User.ResetPassword(ctx, &model.ResetPasswordReq{
		Email:       "alice@example.com",
		NewPassword: "new",
		Code:        code,
	}))

	_, err = e.svc.User.Login(ctx, &model.LoginReq{Email: "alice@example.com", Password: "old"})
	assert.Equal(t, errs.LoginError, errs.KindOf(err))
	_, err = e.svc.User.Login(ctx, &model.LoginReq{Email: "alice@example.com", Password: "new"})
	assert.NoError(t, err)
}

func TestUser_CheckEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedUser(t, "u1", "alice@example.com")

	info, err := e.svc.User.CheckEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", info.UserId)

	_, err = e.svc.User.CheckEmail(ctx, "ghost@example.com")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}
