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

package template

const (
	CaptchaRegister      = "REGISTER"
	CaptchaResetPassword = "RESET_PASSWORD"
)

const captchaBody = `Hello,

Your verification code is {{.Code}}.{{if .ValidMinutes}} It is valid for {{.ValidMinutes}} minutes.{{end}}

If you did not request this code, you can ignore this email.
`

// NewCaptchaEngine returns an engine holding the verification code mails
func NewCaptchaEngine() *Engine {
	e := NewEngine()
	// predefined templates are static and known to parse
	_ = e.Register(CaptchaRegister, "[{{.Product | upper}}] Verify your email address", captchaBody)
	_ = e.Register(CaptchaResetPassword, "[{{.Product | upper}}] Reset your password", captchaBody)
	return e
}
