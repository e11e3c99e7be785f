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

// Package repotest provides an in-memory repo.IStore for service and router
// tests. It keeps the unique keys and error kinds of the MySQL schema.
package repotest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
)

type tables struct {
	seq            uint64
	users          []model.User
	orgs           []model.Organization
	orgMembers     []model.OrganizationMember
	projectMembers []model.ProjectMember
	ssoUsers       []model.SSOUser
	captchas       []model.Captcha
}

func (t *tables) clone() *tables {
	return &tables{
		seq:            t.seq,
		users:          slices.Clone(t.users),
		orgs:           slices.Clone(t.orgs),
		orgMembers:     slices.Clone(t.orgMembers),
		projectMembers: slices.Clone(t.projectMembers),
		ssoUsers:       slices.Clone(t.ssoUsers),
		captchas:       slices.Clone(t.captchas),
	}
}

// MemStore is safe for concurrent use. Transactions are serialized and
// restore a snapshot when fn fails.
type MemStore struct {
	// Now stamps CreatedAt on inserted rows
	Now func() time.Time

	mu   sync.Mutex
	txMu sync.Mutex
	t    *tables
}

var _ repo.IStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{Now: time.Now, t: &tables{}}
}

func (s *MemStore) Users() repo.IUserRepository                   { return (*users)(s) }
func (s *MemStore) Organizations() repo.IOrganizationRepository   { return (*orgs)(s) }
func (s *MemStore) ProjectMembers() repo.IProjectMemberRepository { return (*projectMembers)(s) }
func (s *MemStore) SSOUsers() repo.ISSOUserRepository             { return (*ssoUsers)(s) }
func (s *MemStore) Captchas() repo.ICaptchaRepository             { return (*captchas)(s) }
func (s *MemStore) OrganizationMembers() repo.IOrganizationMemberRepository {
	return (*orgMembers)(s)
}

func (s *MemStore) Transaction(_ context.Context, fn func(tx repo.IStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.t.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemStore) stamp(b *model.BaseModel) {
	s.t.seq++
	b.ID = s.t.seq
	now := s.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

func notFound(format string, args ...any) error {
	return errs.New(errs.NotFound, "%s not found", fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return errs.New(errs.Conflict, "%s already exists", fmt.Sprintf(format, args...))
}

type users MemStore

func (r *users) Create(_ context.Context, u *model.User) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.users {
		if x.Email == u.Email || x.UserId == u.UserId {
			return conflict("user(%s)", u.Email)
		}
	}
	s.stamp(&u.BaseModel)
	s.t.users = append(s.t.users, *u)
	return nil
}

func (r *users) find(match func(model.User) bool, subject string) (*model.User, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.users {
		if match(x) {
			return &x, nil
		}
	}
	return nil, notFound("user(%s)", subject)
}

func (r *users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool {
		return u.Email == email && u.Status == model.UserStatusActive
	}, email)
}

func (r *users) FindByUserId(_ context.Context, userId string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.UserId == userId }, userId)
}

func (r *users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.find(func(u model.User) bool { return u.Email == email }, email)
	if errs.Is(err, errs.NotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *users) FetchUserInfo(ctx context.Context, userId string) (*model.UserInfo, error) {
	u, err := r.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	return u.Info(), nil
}

func (r *users) UpdatePassword(_ context.Context, userId, digest string) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.t.users {
		if s.t.users[i].UserId == userId {
			s.t.users[i].Password = &digest
		}
	}
	return nil
}

type orgs MemStore

func (r *orgs) Create(_ context.Context, o *model.Organization) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.orgs {
		if x.Name == o.Name || x.OrgId == o.OrgId {
			return conflict("organization(%s)", o.Name)
		}
	}
	s.stamp(&o.BaseModel)
	s.t.orgs = append(s.t.orgs, *o)
	return nil
}

func (r *orgs) FindByOrgId(_ context.Context, orgId string) (*model.Organization, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.orgs {
		if x.OrgId == orgId {
			return &x, nil
		}
	}
	return nil, notFound("organization(%s)", orgId)
}

func (r *orgs) FindByOrgIds(_ context.Context, orgIds []string) ([]model.Organization, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Organization, 0, len(orgIds))
	for _, x := range s.t.orgs {
		if slices.Contains(orgIds, x.OrgId) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *orgs) UpdateStatus(_ context.Context, orgId, from, to string) (bool, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.t.orgs {
		if s.t.orgs[i].OrgId == orgId && s.t.orgs[i].Status == from {
			s.t.orgs[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

type orgMembers MemStore

func (r *orgMembers) Create(_ context.Context, m *model.OrganizationMember) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.orgMembers {
		if x.OrgId == m.OrgId && x.UserId == m.UserId {
			return conflict("member(%s) of organization(%s)", m.UserId, m.OrgId)
		}
	}
	s.stamp(&m.BaseModel)
	s.t.orgMembers = append(s.t.orgMembers, *m)
	return nil
}

func (r *orgMembers) Find(_ context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.orgMembers {
		if x.OrgId == orgId && x.UserId == userId {
			return &x, nil
		}
	}
	return nil, notFound("member(%s) of organization(%s)", userId, orgId)
}

func (r *orgMembers) UpdateRole(_ context.Context, orgId, userId string, role model.Role) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.t.orgMembers {
		if s.t.orgMembers[i].OrgId == orgId && s.t.orgMembers[i].UserId == userId {
			s.t.orgMembers[i].Role = role
		}
	}
	return nil
}

func (r *orgMembers) Delete(_ context.Context, orgId, userId string) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.orgMembers = slices.DeleteFunc(s.t.orgMembers, func(x model.OrganizationMember) bool {
		return x.OrgId == orgId && x.UserId == userId
	})
	return nil
}

func (r *orgMembers) ListByUser(_ context.Context, userId string) ([]model.OrganizationMember, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OrganizationMember
	for _, x := range s.t.orgMembers {
		if x.UserId == userId {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *orgMembers) List(_ context.Context, orgId, keyword string, offset, limit int) ([]model.MemberInfo, int64, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		info model.MemberInfo
		id   uint64
	}
	var rows []row
	keyword = strings.ToLower(keyword)
	for _, m := range s.t.orgMembers {
		if m.OrgId != orgId {
			continue
		}
		for _, u := range s.t.users {
			if u.UserId != m.UserId || !strings.Contains(strings.ToLower(u.Email), keyword) {
				continue
			}
			rows = append(rows, row{
				info: model.MemberInfo{UserId: u.UserId, Email: u.Email, Role: m.Role, CreatedAt: u.CreatedAt},
				id:   u.ID,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].info.CreatedAt.Equal(rows[j].info.CreatedAt) {
			return rows[i].info.CreatedAt.After(rows[j].info.CreatedAt)
		}
		return rows[i].id > rows[j].id
	})

	out := make([]model.MemberInfo, 0, limit)
	for i := offset; i < len(rows) && len(out) < limit; i++ {
		out = append(out, rows[i].info)
	}
	return out, int64(len(rows)), nil
}

type projectMembers MemStore

func (r *projectMembers) Create(_ context.Context, m *model.ProjectMember) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProjectMember(m)
}

func (s *MemStore) insertProjectMember(m *model.ProjectMember) error {
	for _, x := range s.t.projectMembers {
		if x.OrgId == m.OrgId && x.ProjectId == m.ProjectId && x.UserId == m.UserId {
			return conflict("member(%s) of project(%s)", m.UserId, m.ProjectId)
		}
	}
	s.stamp(&m.BaseModel)
	s.t.projectMembers = append(s.t.projectMembers, *m)
	return nil
}

func (r *projectMembers) Find(_ context.Context, orgId, projectId, userId string) (*model.ProjectMember, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.projectMembers {
		if x.OrgId == orgId && x.ProjectId == projectId && x.UserId == userId {
			return &x, nil
		}
	}
	return nil, notFound("member(%s) of project(%s)", userId, projectId)
}

func (r *projectMembers) ExistsProject(_ context.Context, orgId, projectId string) (bool, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.t.projectMembers, func(x model.ProjectMember) bool {
		return x.OrgId == orgId && x.ProjectId == projectId
	}), nil
}

func (r *projectMembers) Replace(_ context.Context, orgId, projectId string, members []model.ProjectMember) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.projectMembers = slices.DeleteFunc(s.t.projectMembers, func(x model.ProjectMember) bool {
		return x.OrgId == orgId && x.ProjectId == projectId
	})
	for i := range members {
		if err := s.insertProjectMember(&members[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *projectMembers) ListProjectIds(_ context.Context, orgId string) ([]string, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, x := range s.t.projectMembers {
		if x.OrgId == orgId && !slices.Contains(ids, x.ProjectId) {
			ids = append(ids, x.ProjectId)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *projectMembers) ListProjectIdsByUser(_ context.Context, orgId, userId string) ([]string, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, x := range s.t.projectMembers {
		if x.OrgId == orgId && x.UserId == userId {
			ids = append(ids, x.ProjectId)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *projectMembers) ListUsers(_ context.Context, orgId string, projectIds []string) ([]model.ProjectUser, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ProjectUser, 0)
	for _, x := range s.t.projectMembers {
		if x.OrgId != orgId || !slices.Contains(projectIds, x.ProjectId) {
			continue
		}
		for _, u := range s.t.users {
			if u.UserId == x.UserId {
				out = append(out, model.ProjectUser{ProjectId: x.ProjectId, UserId: u.UserId, Email: u.Email, Role: x.Role})
			}
		}
	}
	return out, nil
}

type ssoUsers MemStore

func (r *ssoUsers) Create(_ context.Context, su *model.SSOUser) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.ssoUsers {
		if x.SSOUserId == su.SSOUserId || (x.Provider == su.Provider && x.ExternalSubjectId == su.ExternalSubjectId) {
			return conflict("%s identity(%s)", su.Provider, su.ExternalSubjectId)
		}
	}
	s.stamp(&su.BaseModel)
	s.t.ssoUsers = append(s.t.ssoUsers, *su)
	return nil
}

func (r *ssoUsers) FindBySubject(_ context.Context, provider, subject string) (*model.SSOUser, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.t.ssoUsers {
		if x.Provider == provider && x.ExternalSubjectId == subject {
			return &x, nil
		}
	}
	return nil, notFound("%s identity(%s)", provider, subject)
}

func (r *ssoUsers) Refresh(_ context.Context, su *model.SSOUser) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.t.ssoUsers {
		if s.t.ssoUsers[i].SSOUserId == su.SSOUserId {
			s.t.ssoUsers[i].ExternalEmail = su.ExternalEmail
			s.t.ssoUsers[i].AccessToken = su.AccessToken
			s.t.ssoUsers[i].RawProfile = su.RawProfile
		}
	}
	return nil
}

type captchas MemStore

func (r *captchas) Create(_ context.Context, c *model.Captcha) error {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.BaseModel)
	s.t.captchas = append(s.t.captchas, *c)
	return nil
}

func (r *captchas) FindLatest(_ context.Context, receiver string, purpose model.CaptchaPurpose) (*model.Captcha, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.t.captchas) - 1; i >= 0; i-- {
		x := s.t.captchas[i]
		if x.Receiver == receiver && x.Purpose == purpose && x.Status == model.CaptchaStatusIssued {
			return &x, nil
		}
	}
	return nil, notFound("captcha for %s", receiver)
}

func (r *captchas) LastIssuedAt(_ context.Context, receiver string, purpose model.CaptchaPurpose) (time.Time, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.t.captchas) - 1; i >= 0; i-- {
		x := s.t.captchas[i]
		if x.Receiver == receiver && x.Purpose == purpose && x.Status == model.CaptchaStatusIssued {
			return x.CreatedAt, nil
		}
	}
	return time.Time{}, nil
}

func (r *captchas) MarkVerified(_ context.Context, id uint64) (bool, error) {
	s := (*MemStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.t.captchas {
		if s.t.captchas[i].ID == id && s.t.captchas[i].Status == model.CaptchaStatusIssued {
			s.t.captchas[i].Status = model.CaptchaStatusVerified
			return true, nil
		}
	}
	return false, nil
}

// CaptchaCode returns the newest code issued to receiver, for tests that
// play the part of the mailbox
func (s *MemStore) CaptchaCode(receiver string, purpose model.CaptchaPurpose) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.t.captchas) - 1; i >= 0; i-- {
		x := s.t.captchas[i]
		if x.Receiver == receiver && x.Purpose == purpose {
			return x.Code
		}
	}
	return ""
}
