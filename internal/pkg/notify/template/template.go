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

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Message is a rendered subject and body
type Message struct {
	Subject string
	Body    string
}

// Engine renders named subject/body template pairs
type Engine struct {
	templates map[string]*pair
}

type pair struct {
	subject *template.Template
	body    *template.Template
}

var funcMap = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"title": cases.Title(language.English).String,
}

func NewEngine() *Engine {
	return &Engine{templates: make(map[string]*pair)}
}

// Register parses and stores a template pair under name
func (e *Engine) Register(name, subject, body string) error {
	s, err := template.New(name + ".subject").Funcs(funcMap).Parse(subject)
	if err != nil {
		return fmt.Errorf("failed to parse template %s subject: %w", name, err)
	}
	b, err := template.New(name + ".body").Funcs(funcMap).Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse template %s body: %w", name, err)
	}
	e.templates[name] = &pair{subject: s, body: b}
	return nil
}

func (e *Engine) Render(name string, data any) (*Message, error) {
	p, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var subject, body bytes.Buffer
	if err := p.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	if err := p.body.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return &Message{Subject: strings.TrimSpace(subject.String()), Body: body.String()}, nil
}
