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

package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed session payload: sub, iat, exp, iss plus the display name.
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// UserId returns the principal carried in sub
func (c *SessionClaims) UserId() string {
	return c.Subject
}

const defaultIssuer = "gatekeeper"

var ErrTokenExpired = jwt.ErrTokenExpired

// GenToken signs an HS256 session token for userId. A non-positive expire
// yields a token without exp.
func GenToken(userId, name string, secretKey []byte, issuer string, expire time.Duration, now time.Time) (string, *time.Time, error) {
	if len(secretKey) == 0 {
		return "", nil, errors.New("empty signing secret")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	claims := &SessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userId,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var expireAt *time.Time
	if expire > 0 {
		at := now.Add(expire)
		expireAt = &at
		claims.ExpiresAt = jwt.NewNumericDate(at)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", nil, err
	}
	return token, expireAt, nil
}

// ParseToken verifies signature, algorithm and expiry of token
func ParseToken(token string, secretKey []byte) (*SessionClaims, error) {
	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
