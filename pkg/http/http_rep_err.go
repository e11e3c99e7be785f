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

package http

import (
	"github.com/gofiber/fiber/v2"
)

// ResponseErr is the failure envelope. Status is a stable machine tag,
// Traceback is only filled when debugging is enabled.
type ResponseErr struct {
	ErrCode   int    `json:"code"`
	Status    string `json:"status,omitempty"`
	ErrMsg    string `json:"errMsg"`
	Path      string `json:"path,omitempty"`
	Traceback string `json:"traceback,omitempty"`
}

// WithRepErrMsg writes an error envelope with the given HTTP status
func WithRepErrMsg(c *fiber.Ctx, httpStatus int, rep *Response, errMsg string) error {
	if errMsg == "" {
		errMsg = rep.Msg
	}
	return c.Status(httpStatus).JSON(ResponseErr{
		ErrCode: rep.Code,
		ErrMsg:  errMsg,
		Path:    c.Path(),
	})
}

func WithRepErr(c *fiber.Ctx, httpStatus int, body ResponseErr) error {
	if body.Path == "" {
		body.Path = c.Path()
	}
	return c.Status(httpStatus).JSON(body)
}
