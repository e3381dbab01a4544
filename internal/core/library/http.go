// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/inkwell/internal/platform/request"
	"github.com/taibuivan/inkwell/internal/platform/respond"
	"github.com/taibuivan/inkwell/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the viewer's library.
type Handler struct {
	service *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with library endpoints.
// Mount it behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listPurchases)
	return router
}

/*
GET /api/v1/library.

Description: Lists the purchases of the authenticated viewer.

Request:
  - page: int
  - limit: int

Response:
  - 200: []Purchase: Paginated list
  - 401: Unauthorized
*/
func (handler *Handler) listPurchases(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	purchases, total, err := handler.service.ListPurchases(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if purchases == nil {
		purchases = []*Purchase{}
	}
	respond.Paginated(writer, purchases, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}
