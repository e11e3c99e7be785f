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

package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-resty/resty/v2"
)

// WebhookChannel hands messages to an HTTP mail gateway as JSON
type WebhookChannel struct {
	webhookURL string
	token      string
	client     *resty.Client
}

func NewWebhookChannel(webhookURL, token string, timeout time.Duration) *WebhookChannel {
	client := resty.New().SetTimeout(timeout)
	client.JSONMarshal = sonic.Marshal
	return &WebhookChannel{
		webhookURL: webhookURL,
		token:      token,
		client:     client,
	}
}

func (c *WebhookChannel) Validate() error {
	if c.webhookURL == "" {
		return fmt.Errorf("webhook url is required")
	}
	return nil
}

func (c *WebhookChannel) Send(ctx context.Context, receiver, subject, body string) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"receiver": receiver,
			"subject":  subject,
			"body":     body,
		})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		log.Errorw("webhook request failed", "statusCode", resp.StatusCode())
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode())
	}
	return nil
}
