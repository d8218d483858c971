package userhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/services/user"
	"auctionhouse/internal/store"
)

type Handler struct {
	svc user.IUserService
}

func New(svc user.IUserService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
}

// @Summary		Register an account
// @Tags			Users
// @Param			body	body		CredentialsBody	true	"Email and password"
// @Success		201		{object}	AuthResponse
// @Failure		400		{object}	ErrorResponse
// @Failure		409		{object}	ErrorResponse
// @Router			/api/users/register [post]
func (h *Handler) register(c *gin.Context) {
	var body CredentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	u, token, err := h.svc.Register(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
		Token: token,
	})
}

// @Summary		Log in
// @Tags			Users
// @Param			body	body		CredentialsBody	true	"Email and password"
// @Success		200		{object}	AuthResponse
// @Failure		401		{object}	ErrorResponse
// @Router			/api/users/login [post]
func (h *Handler) login(c *gin.Context) {
	var body CredentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	u, token, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
		Token: token,
	})
}
