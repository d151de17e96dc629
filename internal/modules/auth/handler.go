package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog/internal/pkg/response"
	"microblog/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/auth")
	{
		grp.POST("/signup", h.Signup)
		grp.POST("/signin", h.Signin)
	}
}

// Signup godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid fields", fields)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrUsernameTaken:
			response.Error(c, http.StatusBadRequest, "USERNAME_TAKEN", err.Error())
		case ErrRoleNotFound:
			response.Error(c, http.StatusBadRequest, "ROLE_NOT_FOUND", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Signup failed")
		}
		return
	}

	response.Success(c, http.StatusCreated, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Roles:     user.RoleNames(),
		CreatedAt: user.CreatedAt,
	})
}

// Signin godoc
// @Summary Exchange credentials for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Signin payload"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid fields", fields)
		return
	}

	tokens, err := h.service.Signin(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Signin failed")
		}
		return
	}

	response.Success(c, http.StatusOK, tokens)
}
