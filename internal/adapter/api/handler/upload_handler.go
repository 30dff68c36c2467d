package handler

import (
	"github.com/labstack/echo/v4"

	"bloommarket/internal/usecase"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
	"bloommarket/pkg/response"
)

type UploadHandler struct {
	uploadUseCase *usecase.UploadUseCase
}

func NewUploadHandler(uploadUseCase *usecase.UploadUseCase) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
	}
}

type deleteImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (h *UploadHandler) UploadPlantImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		logger.Error("Error getting file from form: %v", err)
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	logger.Debug("Received file: %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to open file", err))
	}
	defer src.Close()

	url, err := h.uploadUseCase.UploadPlantImage(c.Request().Context(), c.Get("uid").(string), src, file.Header.Get("Content-Type"), file.Size)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"url": url,
	})
}

func (h *UploadHandler) DeletePlantImage(c echo.Context) error {
	var req deleteImageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.uploadUseCase.DeletePlantImage(c.Request().Context(), c.Get("uid").(string), req.URL); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"deleted": req.URL,
	})
}
