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

func (rt *Router) projectRouter(r fiber.Router, auth fiber.Handler) {
	projectGroup := r.Group("/organizations/:orgId/projects")
	{
		projectGroup.Get("", auth, rt.listProjects)
		projectGroup.Post("", auth, rt.registerProject)
		projectGroup.Get("/:projectId", auth, rt.getProject)
		projectGroup.Post("/:projectId", auth, rt.replaceProjectMembership)
	}
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	projects, err := rt.Services.Project.ListProjects(c.UserContext(), c.Params("orgId"), principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, projects)
	return nil
}

func (rt *Router) getProject(c *fiber.Ctx) error {
	project, err := rt.Services.Project.GetProject(c.UserContext(), c.Params("orgId"), c.Params("projectId"), principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, project)
	return nil
}

func (rt *Router) registerProject(c *fiber.Ctx) error {
	var req model.RegisterProjectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := rt.Services.Project.RegisterProject(c.UserContext(), c.Params("orgId"), req.ProjectId, principal(c)); err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) replaceProjectMembership(c *fiber.Ctx) error {
	var req model.EditProjectUsersReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	err := rt.Services.Project.ReplaceProjectMembership(c.UserContext(), c.Params("orgId"), c.Params("projectId"), &req, principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}
