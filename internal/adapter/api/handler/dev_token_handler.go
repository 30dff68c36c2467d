package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"bloommarket/internal/usecase"
	"bloommarket/pkg/response"
)

// TokenIssuer mints tokens for an existing uid. firebase.FirebaseAuthClient
// implements it.
type TokenIssuer interface {
	GenerateLongLivedToken(ctx context.Context, uid string) (string, error)
}

type DevTokenHandler struct {
	firebaseAuth TokenIssuer
	userUseCase  *usecase.UserUseCase
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(firebaseAuth TokenIssuer, userUseCase *usecase.UserUseCase) *DevTokenHandler {
	return &DevTokenHandler{
		firebaseAuth: firebaseAuth,
		userUseCase:  userUseCase,
	}
}

func SetupDevTokenHandler(firebaseAuth TokenIssuer, userUseCase *usecase.UserUseCase) {
	devTokenHandler = NewDevTokenHandler(firebaseAuth, userUseCase)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UID string `json:"uid" validate:"required"`
}

// GenerateUserToken issues a token for an existing Firebase user so the CLI
// can be exercised against a development server.
func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.GetMe(c.Request().Context(), req.UID)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}
