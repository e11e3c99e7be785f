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
	"errors"
	"strings"

	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/pkg/cache"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/google/wire"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(NewStore)

// IStore groups the repositories. Transaction runs fn against repositories
// bound to one database transaction: every write in fn commits or none does.
type IStore interface {
	Users() IUserRepository
	Organizations() IOrganizationRepository
	OrganizationMembers() IOrganizationMemberRepository
	ProjectMembers() IProjectMemberRepository
	SSOUsers() ISSOUserRepository
	Captchas() ICaptchaRepository
	Transaction(ctx context.Context, fn func(tx IStore) error) error
}

type Store struct {
	db                  database.IDatabase
	cache               cache.ICache
	users               IUserRepository
	organizations       IOrganizationRepository
	organizationMembers IOrganizationMemberRepository
	projectMembers      IProjectMemberRepository
	ssoUsers            ISSOUserRepository
	captchas            ICaptchaRepository
}

// NewStore builds the repositories; cache may be nil
func NewStore(db database.IDatabase, c cache.ICache) IStore {
	return &Store{
		db:                  db,
		cache:               c,
		users:               NewUserRepo(db, c),
		organizations:       NewOrganizationRepo(db),
		organizationMembers: NewOrganizationMemberRepo(db),
		projectMembers:      NewProjectMemberRepo(db),
		ssoUsers:            NewSSOUserRepo(db),
		captchas:            NewCaptchaRepo(db),
	}
}

func (s *Store) Users() IUserRepository                             { return s.users }
func (s *Store) Organizations() IOrganizationRepository             { return s.organizations }
func (s *Store) OrganizationMembers() IOrganizationMemberRepository { return s.organizationMembers }
func (s *Store) ProjectMembers() IProjectMemberRepository           { return s.projectMembers }
func (s *Store) SSOUsers() ISSOUserRepository                       { return s.ssoUsers }
func (s *Store) Captchas() ICaptchaRepository                       { return s.captchas }

func (s *Store) Transaction(ctx context.Context, fn func(tx IStore) error) error {
	return s.db.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(database.NewGormDB(tx), s.cache))
	})
}

// wrapErr classifies driver errors: a missing row becomes NotFound and a
// unique key violation becomes Conflict, both described by subject.
func wrapErr(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(errs.NotFound, err, "%s not found", subject)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Wrap(errs.Conflict, err, "%s already exists", subject)
	default:
		return pkgerrors.WithStack(err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching keyword anywhere, lower-cased
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}
