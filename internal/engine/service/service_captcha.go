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

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strings"
	"time"

	"github.com/go-arcade/gatekeeper/internal/engine/conf"
	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify/template"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
)

const (
	captchaAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	captchaLength   = 4
)

// CaptchaService issues and verifies the email codes that guard signup and
// password reset
type CaptchaService struct {
	store     repo.IStore
	notifier  notify.INotifier
	templates *template.Engine
	conf      conf.CaptchaConf
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewCaptchaService(store repo.IStore, notifier notify.INotifier, captchaConf conf.CaptchaConf, m *metrics.Metrics) *CaptchaService {
	return &CaptchaService{
		store:     store,
		notifier:  notifier,
		templates: template.NewCaptchaEngine(),
		conf:      captchaConf,
		metrics:   m,
		now:       time.Now,
	}
}

func (cs *CaptchaService) cooldown() time.Duration {
	return time.Duration(cs.conf.Cooldown) * time.Second
}

func (cs *CaptchaService) ttl() time.Duration {
	return time.Duration(cs.conf.TTL) * time.Second
}

// Issue sends a fresh code to receiver. The row and the mail succeed or
// fail together.
func (cs *CaptchaService) Issue(ctx context.Context, receiver string, purpose model.CaptchaPurpose) (code string, err error) {
	defer func() { cs.metrics.ObserveCaptcha(string(purpose), "issue", err) }()

	receiver = strings.TrimSpace(receiver)
	if receiver == "" {
		return "", errs.New(errs.InvalidParam, "email is required")
	}
	if !purpose.Valid() {
		return "", errs.New(errs.InvalidParam, "unknown captcha type %q", purpose)
	}

	exists, err := cs.store.Users().ExistsByEmail(ctx, receiver)
	if err != nil {
		return "", err
	}
	switch {
	case purpose == model.CaptchaRegister && exists:
		return "", errs.New(errs.Conflict, "email %s is already registered", receiver)
	case purpose == model.CaptchaResetPassword && !exists:
		return "", errs.New(errs.NotFound, "user(%s) not found", receiver)
	}

	last, err := cs.store.Captchas().LastIssuedAt(ctx, receiver, purpose)
	if err != nil {
		return "", err
	}
	if !last.IsZero() && cs.now().Sub(last) < cs.cooldown() {
		return "", errs.New(errs.RateLimited, "a code was sent recently, please retry later")
	}

	code, err = newCaptchaCode()
	if err != nil {
		return "", err
	}
	msg, err := cs.templates.Render(string(purpose), map[string]any{
		"Product":      cs.conf.Product,
		"Code":         code,
		"ValidMinutes": cs.conf.TTL / 60,
	})
	if err != nil {
		return "", err
	}

	err = cs.store.Transaction(ctx, func(tx repo.IStore) error {
		if err := tx.Captchas().Create(ctx, &model.Captcha{
			Receiver: receiver,
			Purpose:  purpose,
			Status:   model.CaptchaStatusIssued,
			Code:     code,
		}); err != nil {
			return err
		}
		if err := cs.notifier.Send(ctx, receiver, msg.Subject, msg.Body); err != nil {
			log.Errorw("failed to send captcha", "receiver", receiver, "purpose", purpose, "error", err)
			return errs.Wrap(errs.UpstreamFailed, err, "failed to send verification code")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Infow("captcha issued", "receiver", receiver, "purpose", purpose)
	return code, nil
}

// Verify consumes the latest issued code for receiver and purpose
func (cs *CaptchaService) Verify(ctx context.Context, receiver string, purpose model.CaptchaPurpose, code string) error {
	return cs.verify(ctx, cs.store, receiver, purpose, code)
}

// verify runs against store so callers can consume the code inside their
// own transaction
func (cs *CaptchaService) verify(ctx context.Context, store repo.IStore, receiver string, purpose model.CaptchaPurpose, code string) (err error) {
	defer func() { cs.metrics.ObserveCaptcha(string(purpose), "verify", err) }()

	latest, err := store.Captchas().FindLatest(ctx, receiver, purpose)
	if errs.Is(err, errs.NotFound) {
		return errs.New(errs.AccessDenied, "invalid verification code")
	}
	if err != nil {
		return err
	}
	if ttl := cs.ttl(); ttl > 0 && cs.now().Sub(latest.CreatedAt) > ttl {
		return errs.New(errs.AccessDenied, "verification code expired")
	}
	if subtle.ConstantTimeCompare([]byte(latest.Code), []byte(code)) != 1 {
		return errs.New(errs.AccessDenied, "invalid verification code")
	}

	ok, err := store.Captchas().MarkVerified(ctx, latest.ID)
	if err != nil {
		return err
	}
	if !ok {
		// a concurrent request consumed it first
		return errs.New(errs.AccessDenied, "invalid verification code")
	}
	return nil
}

func newCaptchaCode() (string, error) {
	size := big.NewInt(int64(len(captchaAlphabet)))
	var sb strings.Builder
	for i := 0; i < captchaLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		sb.WriteByte(captchaAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
