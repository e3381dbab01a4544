// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/inkwell/internal/core/cascade"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/apperr"
	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/middleware"
	requestutil "github.com/taibuivan/inkwell/internal/platform/request"
	"github.com/taibuivan/inkwell/internal/platform/respond"
	"github.com/taibuivan/inkwell/internal/platform/sec"
	"github.com/taibuivan/inkwell/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for every content kind.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
Routes returns a [chi.Router] serving /{kind} for every kind path.

Reads are open to anonymous viewers and filtered by entitlement. Writes need
the author role and must be mounted behind [middleware.Authenticate].
*/
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/{kind}", func(kindRouter chi.Router) {
		kindRouter.Get("/", handler.listNodes)
		kindRouter.Get("/{id}", handler.getNode)

		kindRouter.Group(func(writes chi.Router) {
			writes.Use(middleware.RequireRole(sec.RoleAuthor))
			writes.Put("/", handler.upsertTree)
			writes.Delete("/{id}", handler.deleteNode)
		})
	})

	return router
}

// upsertResponse is the body of a successful tree write.
type upsertResponse struct {
	Node    *node.Node    `json:"node"`
	Written []cascade.Ref `json:"written"`
}

/*
PUT /api/v1/{kind}.

Description: Creates or updates a whole tree. A document with an id updates
that node; one without creates it. Nested collections follow the same rule.

Request (Body):
  - Node JSON with nested collections (e.g. "Books", "Chapters")

Response:
  - 201: root created
  - 200: root updated
  - 400: Validation failed, nothing was written
  - 404: Update target missing or authored by someone else
  - 500: PARTIAL_CASCADE, details list what was written
*/
func (handler *Handler) upsertTree(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := node.DecodeInput(kind, requestutil.LimitedBody(writer, request, constants.MaxTreeBodyBytes))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Upsert(request.Context(), ctxutil.Viewer(request.Context()), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	body := upsertResponse{Node: result.Root, Written: result.Written}
	if result.Created() {
		respond.Created(writer, body)
		return
	}
	respond.OK(writer, body)
}

/*
GET /api/v1/{kind}/{id}.

Description: Returns the node with its direct children. Content the viewer
may not read answers 404 exactly like a missing id.

Response:
  - 200: Node document, collections empty when only partially visible
  - 404: Missing or not visible
*/
func (handler *Handler) getNode(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Get(request.Context(), ctxutil.Viewer(request.Context()), kind, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
GET /api/v1/{kind}.

Request:
  - parent: int (parent id, kinds with a parent only)
  - author: int
  - page, limit: int

Response:
  - 200: []Node: Visible nodes only
*/
func (handler *Handler) listNodes(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	parentID, err := requestutil.OptionalInt64Query(request, "parent")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	authorID, err := requestutil.OptionalInt64Query(request, "author")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	nodes, total, err := handler.service.List(request.Context(), ctxutil.Viewer(request.Context()), kind, ListFilter{
		ParentID: parentID,
		AuthorID: authorID,
		Limit:    paginationParams.Limit,
		Offset:   paginationParams.Offset(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, nodes, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
DELETE /api/v1/{kind}/{id}.

Description: Removes the node and its subtree. Only the author may delete.

Response:
  - 204: Deleted
  - 404: Missing or authored by someone else
*/
func (handler *Handler) deleteNode(writer http.ResponseWriter, request *http.Request) {
	kind, err := kindParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), ctxutil.Viewer(request.Context()), kind, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// kindParam maps the {kind} path segment to a node kind.
func kindParam(request *http.Request) (node.Kind, error) {
	kind, ok := node.ByPath(requestutil.Param(request, "kind"))
	if !ok {
		return "", apperr.NotFound("resource")
	}
	return kind, nil
}
