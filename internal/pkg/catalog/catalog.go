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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/gatekeeper/pkg/retry"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

type Conf struct {
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"` // seconds
	Retries int    `mapstructure:"retries"` // extra attempts on 5xx or transport errors
}

// Project is an opaque catalog project record. Only "id" is interpreted.
type Project map[string]any

func (p Project) Id() string {
	id, _ := p["id"].(string)
	return id
}

// IClient reads project records from the catalog service
type IClient interface {
	GetProjects(ctx context.Context, orgId string, projectIds []string) ([]Project, error)
	GetProject(ctx context.Context, orgId, projectId string) (Project, error)
}

type Client struct {
	rest     *resty.Client
	attempts int
	backoff  retry.Backoff
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog request failed with status %d", e.code)
}

// IsNotFound reports whether the catalog answered 404
func IsNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

// 4xx answers will not change on a second try
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return retry.Retryable(err)
}

// NewClient returns nil when the catalog is not configured
func NewClient(conf Conf) IClient {
	if conf.URL == "" {
		return nil
	}
	timeout := 10 * time.Second
	if conf.Timeout > 0 {
		timeout = time.Duration(conf.Timeout) * time.Second
	}
	rest := resty.New().
		SetBaseURL(strings.TrimRight(conf.URL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if conf.Token != "" {
		rest.SetAuthToken(conf.Token)
	}
	rest.JSONUnmarshal = sonic.Unmarshal
	return &Client{
		rest:     rest,
		attempts: max(conf.Retries, 0) + 1,
		backoff:  retry.Exponential(100*time.Millisecond, 2*time.Second),
	}
}

func (c *Client) GetProjects(ctx context.Context, orgId string, projectIds []string) ([]Project, error) {
	if len(projectIds) == 0 {
		return []Project{}, nil
	}
	var body struct {
		Data []Project `json:"data"`
	}
	err := c.get(ctx, "catalog.GetProjects", "/organizations/{orgId}/projects", func(req *resty.Request) {
		req.SetPathParam("orgId", orgId).
			SetQueryParam("ids", strings.Join(projectIds, ",")).
			SetResult(&body)
	})
	if err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *Client) GetProject(ctx context.Context, orgId, projectId string) (Project, error) {
	var project Project
	err := c.get(ctx, "catalog.GetProject", "/organizations/{orgId}/projects/{projectId}", func(req *resty.Request) {
		req.SetPathParams(map[string]string{"orgId": orgId, "projectId": projectId}).
			SetResult(&project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// get issues a GET under the retry policy inside one client span; build fills
// in a fresh request on every attempt
func (c *Client) get(ctx context.Context, spanName, path string, build func(req *resty.Request)) (err error) {
	ctx, span := trace.StartClient(ctx, spanName, attribute.String("http.route", path))
	attempts := 0
	defer func() {
		span.SetAttributes(attribute.Int("catalog.attempts", attempts))
		trace.End(span, err)
	}()

	return retry.Do(ctx, func(ctx context.Context) error {
		attempts++
		req := c.rest.R().SetContext(ctx)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
		build(req)
		resp, err := req.Get(path)
		if err != nil {
			return fmt.Errorf("catalog request failed: %w", err)
		}
		if resp.IsError() {
			return &statusError{code: resp.StatusCode()}
		}
		return nil
	}, retry.WithMaxAttempts(c.attempts), retry.WithBackoff(c.backoff), retry.WithRetryIf(retryable))
}
