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

type editRoleReq struct {
	Role model.Role `json:"role"`
}

func (rt *Router) organizationRouter(r fiber.Router, auth fiber.Handler) {
	orgGroup := r.Group("/organizations")
	{
		orgGroup.Post("", rt.addOrganization)

		orgGroup.Delete("/:orgId", auth, rt.deleteOrganization)
		orgGroup.Post("/:orgId/invite", auth, rt.inviteUser)
		orgGroup.Get("/:orgId/users", auth, rt.listMembers)
		orgGroup.Post("/:orgId/users/:userId", auth, rt.editMembershipRole)
		orgGroup.Delete("/:orgId/users/:userId", auth, rt.removeMember)
	}
}

func (rt *Router) addOrganization(c *fiber.Ctx) error {
	var req model.AddOrganizationReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	orgId, err := rt.Services.Organization.AddOrganization(c.UserContext(), &req)
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, fiber.Map{"orgId": orgId})
	return nil
}

func (rt *Router) deleteOrganization(c *fiber.Ctx) error {
	deleted, err := rt.Services.Organization.DeleteOrganization(c.UserContext(), c.Params("orgId"), principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, fiber.Map{"deleted": deleted})
	return nil
}

func (rt *Router) inviteUser(c *fiber.Ctx) error {
	role := model.Role(c.Query("role", string(model.RoleUser)))
	created, err := rt.Services.Organization.InviteUser(c.UserContext(), c.Params("orgId"), c.Query("email"), role, principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, fiber.Map{"created": created})
	return nil
}

func (rt *Router) listMembers(c *fiber.Ctx) error {
	req := &model.ListMembersReq{
		Keyword:  c.Query("keyword"),
		PageNo:   c.QueryInt("pageNo", model.DefaultPageNo),
		PageSize: c.QueryInt("pageSize", model.DefaultPageSize),
	}
	resp, err := rt.Services.Organization.ListMembers(c.UserContext(), c.Params("orgId"), req, principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.DETAIL, resp)
	return nil
}

// editMembershipRole takes the role from ?role= or a {"role": ...} body
func (rt *Router) editMembershipRole(c *fiber.Ctx) error {
	req := editRoleReq{Role: model.Role(c.Query("role"))}
	if req.Role == "" && len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	err := rt.Services.Organization.EditMembershipRole(c.UserContext(), c.Params("orgId"), c.Params("userId"), req.Role, principal(c))
	if err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	if err := rt.Services.Organization.RemoveMember(c.UserContext(), c.Params("orgId"), c.Params("userId"), principal(c)); err != nil {
		return err
	}
	c.Locals(consts.OPERATION, "")
	return nil
}
