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

// OrganizationMember grants a user a role within an organization
type OrganizationMember struct {
	BaseModel
	OrgId  string `gorm:"column:org_id;size:32;not null;uniqueIndex:uk_org_user,priority:1" json:"orgId"`
	UserId string `gorm:"column:user_id;size:32;not null;uniqueIndex:uk_org_user,priority:2;index:idx_member_user" json:"userId"`
	Role   Role   `gorm:"column:role;size:16;not null" json:"role"`
}

func (OrganizationMember) TableName() string {
	return "t_organization_user"
}

// MemberInfo is a listed organization member
type MemberInfo struct {
	UserId    string    `gorm:"column:user_id" json:"userId"`
	Email     string    `gorm:"column:email" json:"email"`
	Role      Role      `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

type ListMembersReq struct {
	Keyword  string
	PageNo   int
	PageSize int
}

const (
	DefaultPageNo   = 1
	DefaultPageSize = 20
	MaxPageSize     = 200
	// MaxPageNo keeps (PageNo-1)*PageSize well inside int range
	MaxPageNo = 1_000_000
)

// Normalize applies paging defaults and bounds
func (r *ListMembersReq) Normalize() {
	if r.PageNo < 1 {
		r.PageNo = DefaultPageNo
	}
	if r.PageNo > MaxPageNo {
		r.PageNo = MaxPageNo
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
}

// Offset is (page-1)*size
func (r *ListMembersReq) Offset() int {
	return (r.PageNo - 1) * r.PageSize
}

type ListMembersResp struct {
	Members []MemberInfo `json:"members"`
	Total   int64        `json:"total"`
}
