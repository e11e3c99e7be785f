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
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/database"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (database.IDatabase, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(false))
	require.NoError(t, err)
	return database.NewGormDB(db), mock
}

type memCache struct {
	data map[string]string
}

func (m *memCache) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memCache) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (m *memCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

var userColumns = []string{"id", "user_id", "email", "password", "status", "created_at", "updated_at"}

func TestUserRepo_FindByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `t_user`")).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := NewUserRepo(db, nil).FindByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `t_user`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := NewUserRepo(db, nil).Create(context.Background(), &model.User{
		UserId: "u1",
		Email:  "a@example.com",
		Status: model.UserStatusActive,
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FetchUserInfoReadsThroughCache(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `t_user`")).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "u1", "a@example.com", nil, model.UserStatusActive, now, now))

	c := &memCache{data: map[string]string{}}
	r := NewUserRepo(db, c)

	info, err := r.FetchUserInfo(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", info.Email)
	assert.Len(t, c.data, 1)

	// served from cache, no second query expected
	info, err = r.FetchUserInfo(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", info.UserId)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdatePasswordEvictsCache(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `t_user` SET `password`=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &memCache{data: map[string]string{"gatekeeper:user:info:u1": "{}"}}
	require.NoError(t, NewUserRepo(db, c).UpdatePassword(context.Background(), "u1", "digest"))
	assert.Empty(t, c.data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepo_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `t_organization` SET `status`=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `t_organization` SET `status`=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := NewOrganizationRepo(db)
	changed, err := r.UpdateStatus(context.Background(), "o1", model.OrgStatusActive, model.OrgStatusDeleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.UpdateStatus(context.Background(), "o1", model.OrgStatusActive, model.OrgStatusDeleted)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationMemberRepo_ListFiltersAndPages(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT count\(\*\) FROM t_organization_user AS m JOIN t_user AS u`).
		WithArgs("o1", `%a\_b%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.user_id, u.email, m.role, u.created_at FROM t_organization_user AS m")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "role", "created_at"}).
			AddRow("u2", "a_b2@example.com", "USER", now).
			AddRow("u1", "a_b1@example.com", "ADMIN", now.Add(-time.Hour)))

	members, total, err := NewOrganizationMemberRepo(db).List(context.Background(), "o1", "A_B", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, members, 2)
	assert.Equal(t, "u2", members[0].UserId)
	assert.Equal(t, model.RoleAdmin, members[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationMemberRepo_ListEmptySkipsPageQuery(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM t_organization_user AS m`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	members, total, err := NewOrganizationMemberRepo(db).List(context.Background(), "o1", "", 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptchaRepo_MarkVerifiedOnce(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `t_captcha` SET `status`=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := NewCaptchaRepo(db).MarkVerified(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaptchaRepo_LastIssuedAtIgnoresConsumedCodes(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM .t_captcha. WHERE receiver = \? AND purpose = \? AND status = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "receiver", "purpose", "status", "created_at"}))

	last, err := NewCaptchaRepo(db).LastIssuedAt(context.Background(), "a@example.com", model.CaptchaResetPassword)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectMemberRepo_ExistsProjectLocksRows(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM .t_project_user. WHERE org_id = \? AND project_id = \? FOR UPDATE`).
		WithArgs("o1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .t_project_user.`).
		WithArgs("o1", "p2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	r := NewProjectMemberRepo(db)
	exists, err := r.ExistsProject(context.Background(), "o1", "p1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.ExistsProject(context.Background(), "o1", "p2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_TransactionRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `t_organization`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	store := NewStore(db, nil)
	err := store.Transaction(context.Background(), func(tx IStore) error {
		if err := tx.Organizations().Create(context.Background(), &model.Organization{
			OrgId:  "o1",
			Name:   "acme",
			Status: model.OrgStatusActive,
		}); err != nil {
			return err
		}
		return errs.New(errs.Conflict, "user already exists")
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_OFF"))
}
