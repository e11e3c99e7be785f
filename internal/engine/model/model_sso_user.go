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

import "gorm.io/datatypes"

// SSOUser links an external identity to a local user. (ExternalSubjectId,
// Provider) identifies the external account.
type SSOUser struct {
	BaseModel
	SSOUserId         string         `gorm:"column:sso_user_id;size:32;not null;uniqueIndex:uk_sso_user_id" json:"ssoUserId"`
	ExternalSubjectId string         `gorm:"column:external_subject_id;size:255;not null;uniqueIndex:uk_sso_subject,priority:1" json:"externalSubjectId"`
	Provider          string         `gorm:"column:provider;size:32;not null;uniqueIndex:uk_sso_subject,priority:2" json:"provider"`
	ExternalEmail     string         `gorm:"column:external_email;size:255" json:"externalEmail"`
	UserId            string         `gorm:"column:user_id;size:32;not null;index" json:"userId"`
	AccessToken       string         `gorm:"column:access_token;type:text" json:"-"`
	RawProfile        datatypes.JSON `gorm:"column:raw_profile" json:"rawProfile"`
}

func (SSOUser) TableName() string {
	return "t_sso_user"
}
