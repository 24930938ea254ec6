package auth

import (
	"errors"

	"github.com/devopsenabler/identity-core/internal/middleware"
	"github.com/devopsenabler/identity-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/registration", h.register)
	rg.POST("/login", h.login)
	rg.DELETE("/logout", authMW, h.logout)
	rg.GET("/profile", authMW, h.profile)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if _, err := h.svc.Register(&dto); err != nil {
		if errors.Is(err, errDuplicateUser) {
			response.Conflict(c, "User is already registered.")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.CreatedMessage(c, "User is created successfully.")
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.svc.Login(dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			response.Unauthorized(c, "Provided credentials are not matched")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{
		Status:      true,
		Message:     "Access token generated",
		AccessToken: token,
	})
}

func (h *Handler) logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Unauthorized(c, "authorization token is required")
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Access token revoked")
}

func (h *Handler) profile(c *gin.Context) {
	subject := middleware.CurrentSubject(c)
	u, err := h.svc.Profile(subject)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		// Token outlived its account.
		response.NotFound(c)
		return
	}
	response.OK(c, profileResponse{LoggedInAs: u.Email, Name: u.Name})
}
