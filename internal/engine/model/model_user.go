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

package model

import "time"

const UserStatusActive = "ACTIVE"

type User struct {
	BaseModel
	UserId   string  `gorm:"column:user_id;size:32;not null;uniqueIndex:uk_user_id" json:"userId"`
	Email    string  `gorm:"column:email;type:varchar(255) COLLATE utf8mb4_bin;not null;uniqueIndex:uk_user_email" json:"email"`
	Password *string `gorm:"column:password;size:100" json:"-"` // bcrypt digest, nil for SSO-only accounts
	Status   string  `gorm:"column:status;size:16;not null;default:ACTIVE" json:"status"`
}

func (User) TableName() string {
	return "t_user"
}

// UserInfo is the public projection of User, also its cached form
type UserInfo struct {
	UserId    string    `json:"userId"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{
		UserId:    u.UserId,
		Email:     u.Email,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

type SignupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SSOLoginReq struct {
	Code        string `json:"code"`
	RedirectUri string `json:"redirect_uri"`
}

type ResetPasswordReq struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
	Code        string `json:"code"`
}

// OrgMembership is one organization the caller belongs to
type OrgMembership struct {
	OrganizationId   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	Role             Role   `json:"role"`
}

type LoginResp struct {
	Token         string          `json:"token"`
	ExpireAt      *time.Time      `json:"expireAt,omitempty"`
	UserInfo      *UserInfo       `json:"userInfo"`
	Organizations []OrgMembership `json:"organizations"`
}
