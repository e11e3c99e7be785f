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

// ProjectMember grants a user a role on one catalog project
type ProjectMember struct {
	BaseModel
	OrgId     string `gorm:"column:org_id;size:32;not null;uniqueIndex:uk_project_user,priority:1" json:"orgId"`
	ProjectId string `gorm:"column:project_id;size:64;not null;uniqueIndex:uk_project_user,priority:2" json:"projectId"`
	UserId    string `gorm:"column:user_id;size:32;not null;uniqueIndex:uk_project_user,priority:3;index:idx_project_member_user" json:"userId"`
	Role      Role   `gorm:"column:role;size:16;not null" json:"role"`
}

func (ProjectMember) TableName() string {
	return "t_project_user"
}

type EditProjectUsersReq struct {
	Managers []string `json:"managers"`
	Users    []string `json:"users"`
}

type RegisterProjectReq struct {
	ProjectId string `json:"projectId"`
}

// ProjectUser is a project member decorated with the account email
type ProjectUser struct {
	ProjectId string `gorm:"column:project_id" json:"-"`
	UserId string `gorm:"column:user_id" json:"userId"`
	Email  string `gorm:"column:email" json:"email"`
	Role   Role   `gorm:"column:role" json:"role"`
}
