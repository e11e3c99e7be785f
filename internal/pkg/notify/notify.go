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

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/gatekeeper/internal/pkg/notify/channel"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// INotifier delivers one message to one receiver
type INotifier interface {
	Send(ctx context.Context, receiver, subject, body string) error
}

type Conf struct {
	Type    string      `mapstructure:"type"` // smtp or webhook
	Timeout int         `mapstructure:"timeout"`
	SMTP    SMTPConf    `mapstructure:"smtp"`
	Webhook WebhookConf `mapstructure:"webhook"`
}

type SMTPConf struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WebhookConf struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// NewNotifier builds the configured channel
func NewNotifier(conf Conf) (INotifier, error) {
	timeout := 10 * time.Second
	if conf.Timeout > 0 {
		timeout = time.Duration(conf.Timeout) * time.Second
	}

	var ch INotifier
	switch conf.Type {
	case "smtp":
		ch = channel.NewEmailChannel(conf.SMTP.Host, conf.SMTP.Port, conf.SMTP.Username, conf.SMTP.Password, conf.SMTP.From, timeout)
	case "webhook":
		ch = channel.NewWebhookChannel(conf.Webhook.URL, conf.Webhook.Token, timeout)
	default:
		return nil, fmt.Errorf("unsupported notify type: %q", conf.Type)
	}
	if v, ok := ch.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &tracedNotifier{channel: conf.Type, next: ch}, nil
}

type tracedNotifier struct {
	channel string
	next    INotifier
}

func (n *tracedNotifier) Send(ctx context.Context, receiver, subject, body string) (err error) {
	ctx, span := trace.StartClient(ctx, "notify.Send", attribute.String("notify.channel", n.channel))
	defer func() { trace.End(span, err) }()
	return n.next.Send(ctx, receiver, subject, body)
}
