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

package http

// Business codes carried in the envelope "code" field. The HTTP status is
// set separately by the error handler.
var (
	Success = code(200, "Request Success")

	// 400
	BadRequest                    = code(4000, "Bad request")
	RequestParameterParsingFailed = code(4001, "Request parameter parsing failed")
	NotFound                      = code(4004, "Not found")
	Conflict                      = code(4009, "Conflict")

	// 401
	AuthenticationFailed   = code(4402, "Authentication failed")
	AuthorizationIncorrect = code(4403, "The authorization format in the request header is incorrect")
	InvalidToken           = code(4405, "Invalid token")
	TokenBeEmpty           = code(4406, "Token cannot be empty")
	TokenExpired           = code(4407, "Token is expired")

	// 403
	PermissionDenied = code(4031, "Permission denied")

	// 429
	TooManyRequests = code(4290, "Too many requests")

	// 5xx
	InternalError  = code(5000, "Internal error, please contact the administrator")
	UpstreamFailed = code(5020, "Upstream service failed")
)

func code(c int, msg string) *Response {
	return &Response{Code: c, Msg: msg}
}
