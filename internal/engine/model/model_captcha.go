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

// CaptchaPurpose scopes a verification code
type CaptchaPurpose string

const (
	CaptchaRegister      CaptchaPurpose = "REGISTER"
	CaptchaResetPassword CaptchaPurpose = "RESET_PASSWORD"
)

func (p CaptchaPurpose) Valid() bool {
	return p == CaptchaRegister || p == CaptchaResetPassword
}

const (
	CaptchaStatusIssued   = "ISSUED"
	CaptchaStatusVerified = "VERIFIED"
)

// Captcha is a short-lived verification code sent to a receiver
type Captcha struct {
	BaseModel
	Receiver string         `gorm:"column:receiver;size:255;not null;index:idx_captcha_lookup,priority:1" json:"receiver"`
	Purpose  CaptchaPurpose `gorm:"column:purpose;size:32;not null;index:idx_captcha_lookup,priority:2" json:"purpose"`
	Status   string         `gorm:"column:status;size:16;not null;index:idx_captcha_lookup,priority:3" json:"status"`
	Code     string         `gorm:"column:code;size:8;not null" json:"-"`
}

func (Captcha) TableName() string {
	return "t_captcha"
}
