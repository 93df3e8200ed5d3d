package controllers

import (
	"errors"
	"net/http"
	"time"

	"redirly/internal/middleware"
	"redirly/internal/models"
	"redirly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LinkController struct {
	linkService service.LinkService
	now         func() time.Time
}

func NewLinkController(linkService service.LinkService) *LinkController {
	return &LinkController{
		linkService: linkService,
		now:         time.Now,
	}
}

// userID returns the authenticated user id set by the auth middleware
func userID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ContextUserID)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "User ID not found in token"})
		return "", false
	}
	return id, true
}

// linkID validates the :id path parameter
func linkID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Link not found"})
		return "", false
	}
	return id.String(), true
}

// writeLinkError maps service errors to responses
func writeLinkError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid link", Details: verr.Error()})
	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Link not found"})
	case errors.Is(err, service.ErrLinkInactive):
		c.JSON(http.StatusGone, models.ErrorResponse{Error: "Link is not active"})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

// CreateLink handles POST /api/v1/links
func (lc *LinkController) CreateLink(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	var req models.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	link, err := lc.linkService.Create(c.Request.Context(), owner, &req)
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// ListLinks handles GET /api/v1/links
func (lc *LinkController) ListLinks(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	links, err := lc.linkService.List(c.Request.Context(), owner)
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// GetLink handles GET /api/v1/links/:id
func (lc *LinkController) GetLink(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}
	id, ok := linkID(c)
	if !ok {
		return
	}

	link, err := lc.linkService.Get(c.Request.Context(), id, owner)
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// UpdateLink handles PUT /api/v1/links/:id
func (lc *LinkController) UpdateLink(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}
	id, ok := linkID(c)
	if !ok {
		return
	}

	var req models.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	link, err := lc.linkService.Update(c.Request.Context(), id, owner, &req)
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// DeleteLink handles DELETE /api/v1/links/:id
func (lc *LinkController) DeleteLink(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}
	id, ok := linkID(c)
	if !ok {
		return
	}

	if err := lc.linkService.Delete(c.Request.Context(), id, owner); err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Link deleted successfully"})
}

// LinkStatus handles GET /api/v1/status/:slug (public)
func (lc *LinkController) LinkStatus(c *gin.Context) {
	status, err := lc.linkService.Status(c.Request.Context(), c.Param("slug"), lc.now())
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Redirect handles GET /:slug - redirects to the destination for the client platform
func (lc *LinkController) Redirect(c *gin.Context) {
	dest, err := lc.linkService.Resolve(c.Request.Context(), c.Param("slug"), c.Request.UserAgent(), lc.now())
	if err != nil {
		writeLinkError(c, err)
		return
	}

	c.Redirect(http.StatusFound, dest.URL)
}
