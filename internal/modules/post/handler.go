package post

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"microblog/internal/media"
	"microblog/internal/middleware"
	"microblog/internal/pkg/response"
	"microblog/internal/pkg/validator"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the read-only post endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/posts", h.List)
	rg.GET("/posts/:id", h.Get)
}

// RegisterProtectedRoutes mounts the mutating endpoints. The caller supplies
// the ownership middleware so the route table stays in one place.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup, ownership gin.HandlerFunc) {
	rg.POST("/posts", h.Create)
	rg.PUT("/posts/:id", ownership, h.Update)
	rg.DELETE("/posts/:id", ownership, h.Delete)
}

// Create godoc
// @Summary Create a post
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param post formData string true "Post JSON payload"
// @Param imageFile formData file false "Optional image"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]interface{}
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	payload, image, ok := bindPayload(c)
	if !ok {
		return
	}

	ownerID := c.GetInt64(middleware.CtxUserID)
	p, err := h.service.Create(c.Request.Context(), ownerID, payload, image)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, toPostResponse(p))
}

// List godoc
// @Summary List posts, newest first
// @Tags Posts
// @Produce json
// @Param page query int false "0-based page number"
// @Param size query int false "Page size"
// @Param tag query string false "Hashtag substring filter"
// @Success 200 {object} map[string]interface{}
// @Router /posts [get]
func (h *Handler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	tag := c.Query("tag")

	posts, total, err := h.service.List(c.Request.Context(), tag, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toPageResponse(posts, total, page, size))
}

// Get godoc
// @Summary Get a post by id
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toPostResponse(p))
}

// Update godoc
// @Summary Update a post (owner or admin)
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param post formData string true "Post JSON payload"
// @Param imageFile formData file false "Replacement image"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404 {object} map[string]interface{}
// @Router /posts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	payload, image, ok := bindPayload(c)
	if !ok {
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, payload, image)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toPostResponse(p))
}

// Delete godoc
// @Summary Delete a post (owner or admin)
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 401,403,404 {object} map[string]interface{}
// @Router /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindPayload parses the multipart request: a required "post" JSON part and
// an optional "imageFile" part.
func bindPayload(c *gin.Context) (PostPayload, *multipart.FileHeader, bool) {
	raw := c.PostForm("post")
	if raw == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing post part")
		return PostPayload{}, nil, false
	}

	var payload PostPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid post JSON")
		return PostPayload{}, nil, false
	}
	if fields := validator.Validate(payload); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid fields", fields)
		return PostPayload{}, nil, false
	}

	image, err := c.FormFile("imageFile")
	if err != nil {
		image = nil
	}

	return payload, image, true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return 0, false
	}
	return id, true
}

func writeServiceError(c *gin.Context, err error) {
	switch err {
	case ErrPostNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case media.ErrInvalidMediaType, media.ErrEmptyFile:
		response.Error(c, http.StatusBadRequest, "INVALID_MEDIA_TYPE", err.Error())
	case media.ErrFileTooLarge:
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	default:
		c.Error(err) // picked up by the error logger
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Operation failed")
	}
}
