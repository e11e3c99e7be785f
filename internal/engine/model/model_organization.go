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

const (
	OrgStatusActive  = "ACTIVE"
	OrgStatusDeleted = "DELETED"
)

type Organization struct {
	BaseModel
	OrgId  string `gorm:"column:org_id;size:32;not null;uniqueIndex:uk_org_id" json:"orgId"`
	Name   string `gorm:"column:name;size:128;not null;uniqueIndex:uk_org_name" json:"name"`
	Remark string `gorm:"column:remark;size:512" json:"remark"`
	Status string `gorm:"column:status;size:16;not null;default:ACTIVE" json:"status"`
}

func (Organization) TableName() string {
	return "t_organization"
}

func (o *Organization) Active() bool {
	return o.Status == OrgStatusActive
}

// AddOrganizationReq defines a new organization and its founding administrator
type AddOrganizationReq struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Remark string `json:"remark"`
}
