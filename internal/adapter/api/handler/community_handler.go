package handler

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/usecase"
	"bloommarket/pkg/response"
)

type CommunityHandler struct {
	communityUseCase *usecase.CommunityUseCase
}

func NewCommunityHandler(communityUseCase *usecase.CommunityUseCase) *CommunityHandler {
	return &CommunityHandler{
		communityUseCase: communityUseCase,
	}
}

type createCommunityRequest struct {
	Name     string               `json:"name" validate:"required,max=80"`
	Type     entity.CommunityType `json:"type" validate:"omitempty,oneof=Permanent Temporary"`
	Purpose  string               `json:"purpose" validate:"max=300"`
	Bio      string               `json:"bio" validate:"max=1000"`
	Location *coordinateRequest   `json:"location" validate:"omitempty"`
}

func (h *CommunityHandler) NearbyCommunities(c echo.Context) error {
	var req nearbyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	communities, err := h.communityUseCase.NearbyCommunities(c.Request().Context(), *req.UserLocation.toEntity(), req.RadiusKm)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"communities": communities,
	})
}

func (h *CommunityHandler) CreateCommunity(c echo.Context) error {
	var req createCommunityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	community, err := h.communityUseCase.CreateCommunity(c.Request().Context(), c.Get("uid").(string), usecase.CreateCommunityInput{
		Name:     req.Name,
		Type:     req.Type,
		Purpose:  req.Purpose,
		Bio:      req.Bio,
		Location: req.Location.toEntity(),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, community)
}

func (h *CommunityHandler) JoinCommunity(c echo.Context) error {
	community, err := h.communityUseCase.JoinCommunity(c.Request().Context(), c.Param("id"), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, community)
}

func (h *CommunityHandler) LeaveCommunity(c echo.Context) error {
	community, err := h.communityUseCase.LeaveCommunity(c.Request().Context(), c.Param("id"), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, community)
}

func (h *CommunityHandler) ListMyCommunities(c echo.Context) error {
	communities, err := h.communityUseCase.MyCommunities(c.Request().Context(), c.Get("uid").(string))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"communities": communities,
	})
}
