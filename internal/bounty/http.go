// Copyright (c) 2026 BountyHive. All rights reserved.

package bounty

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/bountyhive/api/internal/platform/request"
	"github.com/bountyhive/api/internal/platform/respond"
	"github.com/bountyhive/api/internal/platform/validate"
	"github.com/bountyhive/api/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the bounty endpoints. Browsing is
// public; everything that writes requires authentication.
func (handler *Handler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.listBounties)
	router.Get("/{idOrSlug}", handler.getBounty)

	// Authenticated
	router.Group(func(protected chi.Router) {
		protected.Use(requireAuth)

		protected.Post("/", handler.createBounty)
		protected.Post("/{id}/match", handler.matchBounty)
		protected.Post("/{id}/complete", handler.completeBounty)
		protected.Put("/{id}/brief", handler.putBrief)
		protected.Get("/{id}/brief", handler.getBrief)
	})

	return router
}

func (handler *Handler) listBounties(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Status: request.URL.Query().Get("status"),
		Query:  request.URL.Query().Get("q"),
	}

	if filter.Status != "" {
		v := &validate.Validator{}
		v.OneOf("status", filter.Status, StatusOpen, StatusMatched, StatusCompleted, StatusCancelled)
		if err := v.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	bounties, total, err := handler.service.ListBounties(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, bounties, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getBounty(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.GetBounty(request.Context(), requestutil.Param(request, "idOrSlug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

// createBountyRequest is the JSON payload for posting a new bounty.
type createBountyRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	RewardAmount string `json:"rewardAmount"`
	RewardAsset  string `json:"rewardAsset"`
}

func (handler *Handler) createBounty(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createBountyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("title", input.Title).MinLen("title", input.Title, 3).MaxLen("title", input.Title, 120)
	v.MaxLen("description", input.Description, 5000)
	v.Required("rewardAmount", input.RewardAmount)
	v.Required("rewardAsset", input.RewardAsset).MaxLen("rewardAsset", input.RewardAsset, 16)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateBounty(request.Context(), userID, CreateInput{
		Title:        input.Title,
		Description:  input.Description,
		RewardAmount: input.RewardAmount,
		RewardAsset:  input.RewardAsset,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) matchBounty(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	matched, err := handler.service.MatchBounty(request.Context(), requestutil.Param(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, matched)
}

func (handler *Handler) completeBounty(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	completed, err := handler.service.CompleteBounty(request.Context(), requestutil.Param(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, completed)
}

// briefRequest is the JSON payload for attaching a private brief.
type briefRequest struct {
	Brief string `json:"brief"`
}

func (handler *Handler) putBrief(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input briefRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("brief", input.Brief).MaxLen("brief", input.Brief, 20000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.PutBrief(request.Context(), requestutil.Param(request, "id"), userID, input.Brief); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) getBrief(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	brief, err := handler.service.GetBrief(request.Context(), requestutil.Param(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"brief": brief})
}
