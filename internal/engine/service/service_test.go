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
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/conf"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo/repotest"
	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret          = "test-secret"
	testDefaultPassword = "Welcome-1"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type sentMail struct {
	receiver string
	subject  string
	body     string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (n *fakeNotifier) Send(_ context.Context, receiver, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{receiver: receiver, subject: subject, body: body})
	return nil
}

type fakeIdP struct {
	exchangeErr error
	profileErr  error
	profile     *sso.Profile
	tokens      int
}

func (p *fakeIdP) Name() string { return "oauth" }

func (p *fakeIdP) ExchangeCode(_ context.Context, code, _ string) (string, error) {
	if p.exchangeErr != nil {
		return "", p.exchangeErr
	}
	p.tokens++
	return code + "-token", nil
}

func (p *fakeIdP) FetchProfile(_ context.Context, _ string) (*sso.Profile, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	return p.profile, nil
}

type fakeCatalog struct {
	err error
}

func (c *fakeCatalog) GetProjects(_ context.Context, _ string, ids []string) ([]catalog.Project, error) {
	if c.err != nil {
		return nil, c.err
	}
	projects := make([]catalog.Project, 0, len(ids))
	for _, id := range ids {
		projects = append(projects, catalog.Project{"id": id, "name": "project " + id})
	}
	return projects, nil
}

func (c *fakeCatalog) GetProject(_ context.Context, _ string, projectId string) (catalog.Project, error) {
	if c.err != nil {
		return nil, c.err
	}
	if projectId == "missing" {
		return nil, nil
	}
	return catalog.Project{"id": projectId, "name": "project " + projectId}, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	store    *repotest.MemStore
	notifier *fakeNotifier
	idp      *fakeIdP
	catalog  *fakeCatalog
	clock    *clock
	svc      *Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:    repotest.NewMemStore(),
		notifier: &fakeNotifier{},
		idp:      &fakeIdP{},
		catalog:  &fakeCatalog{},
		clock:    &clock{now: time.Now()},
	}
	e.store.Now = e.clock.Now

	httpConf := &http.Http{Auth: http.Auth{
		SecretKey:       testSecret,
		AccessExpire:    60,
		Issuer:          "gatekeeper",
		DefaultPassword: testDefaultPassword,
	}}
	e.svc = NewServices(e.store, e.notifier, e.idp, e.catalog, httpConf, conf.CaptchaConf{
		Cooldown: 60,
		TTL:      600,
		Product:  "gatekeeper",
	}, nil)
	e.svc.Captcha.now = e.clock.Now
	return e
}

// seedUser inserts an active account without a password
func (e *env) seedUser(t *testing.T, userId, email string) {
	t.Helper()
	require.NoError(t, e.store.Users().Create(context.Background(), &model.User{
		UserId: userId,
		Email:  email,
		Status: model.UserStatusActive,
	}))
}

// seedOrg creates an organization whose founder is returned
func (e *env) seedOrg(t *testing.T, name, email string) (orgId, adminId string) {
	t.Helper()
	ctx := context.Background()
	orgId, err := e.svc.Organization.AddOrganization(ctx, &model.AddOrganizationReq{Name: name, Email: email})
	require.NoError(t, err)
	admin, err := e.store.Users().FindByEmail(ctx, email)
	require.NoError(t, err)
	return orgId, admin.UserId
}

// join adds userId to orgId directly
func (e *env) join(t *testing.T, orgId, userId string, role model.Role) {
	t.Helper()
	require.NoError(t, e.store.OrganizationMembers().Create(context.Background(), &model.OrganizationMember{
		OrgId:  orgId,
		UserId: userId,
		Role:   role,
	}))
}

var errSMTPDown = errors.New("smtp: connection refused")
