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

package middleware

import (
	"errors"
	"strings"

	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/http/jwt"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/gofiber/fiber/v2"
)

const (
	// ClaimsKey holds the verified *jwt.SessionClaims in fiber locals
	ClaimsKey = "claims"
	// TokenHeader is accepted as an alternative to the Authorization header
	TokenHeader = "X-Token"
)

// AuthorizationMiddleware resolves the session token to a principal before
// the handler runs. Tokens are read from "Authorization: Bearer <t>" or X-Token.
func AuthorizationMiddleware(secretKey string) fiber.Handler {
	key := []byte(secretKey)
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.AuthorizationIncorrect, "")
		}
		if token == "" {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenBeEmpty, "")
		}

		claims, err := jwt.ParseToken(token, key)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenExpired, "")
			}
			log.Debugw("parse token failed", "path", c.Path(), "error", err)
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.InvalidToken, "")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	if raw := c.Get(fiber.HeaderAuthorization); raw != "" {
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	return strings.TrimSpace(c.Get(TokenHeader)), true
}

// GetClaims returns the claims stored by AuthorizationMiddleware
func GetClaims(c *fiber.Ctx) (*jwt.SessionClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.SessionClaims)
	return claims, ok
}
