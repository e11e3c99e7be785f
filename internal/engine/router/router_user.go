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

package router

import (
	"github.com/go-arcade/gatekeeper/internal/engine/consts"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	r.Post("/captcha/send", rt.sendCaptcha)
	r.Post("/signup", rt.signup)
	r.Post("/login", rt.login)
	r.Post("/sso/login", rt.ssoLogin)
	r.Post("/reset-password", rt.resetPassword)
	r.Post("/users/email/check", rt.checkEmail)
	r.Get("/users/info", auth, rt.getUserInfo)
}

func (rt *Router) sendCaptcha(c *fiber.Ctx) error {
	purpose := model.CaptchaPurpose(c.Query("type"))
	if _, err := rt.Services.Captcha.Issue(c.UserContext(), c.Query("email"), purpose); err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) signup(c *fiber.Ctx) error {
	var req model.SignupReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	info, err := rt.Services.User.Signup(c.UserContext(), &req)
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, info)
	return nil
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := rt.Services.User.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, resp)
	return nil
}

func (rt *Router) ssoLogin(c *fiber.Ctx) error {
	var req model.SSOLoginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := rt.Services.User.SSOLogin(c.UserContext(), &req)
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, resp)
	return nil
}

func (rt *Router) resetPassword(c *fiber.Ctx) error {
	var req model.ResetPasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := rt.Services.User.ResetPassword(c.UserContext(), &req); err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) checkEmail(c *fiber.Ctx) error {
	info, err := rt.Services.User.CheckEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, fiber.Map{"id": info.UserId, "email": info.Email})
	return nil
}

func (rt *Router) getUserInfo(c *fiber.Ctx) error {
	info, err := rt.Services.User.UserInfo(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, info)
	return nil
}
