package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artlink_backend/internal/middleware"
	"artlink_backend/internal/services"
	"artlink_backend/internal/services/dto"
)

type SocialHandler struct {
	*BaseHandler
	socialService services.SocialService
}

func NewSocialHandler(base *BaseHandler, socialService services.SocialService) *SocialHandler {
	return &SocialHandler{
		BaseHandler:   base,
		socialService: socialService,
	}
}

func (h *SocialHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.PUT("/:userId/follow", h.Follow)
		users.DELETE("/:userId/follow", h.Unfollow)
		users.GET("/:userId/follow", h.GetFollowState)
		users.GET("/:userId/followers/count", h.GetFollowerCount)
		users.GET("/:userId/following/count", h.GetFollowingCount)

		// Legacy toggle endpoints kept for older clients.
		users.POST("/:userId/follow", h.Follow)
		users.POST("/:userId/unfollow", h.Unfollow)
	}

	likes := r.Group("/likes")
	likes.Use(middleware.AuthMiddleware())
	{
		likes.PUT("/:targetType/:targetId", h.Like)
		likes.DELETE("/:targetType/:targetId", h.Unlike)
		likes.GET("/:targetType/:targetId/count", h.GetLikeCount)
	}
}

// Follow is idempotent; repeating it reports the same final state with
// stateChanged false, and the follow notification fires only on the call
// that actually created the edge.
func (h *SocialHandler) Follow(c *gin.Context) {
	h.setFollow(c, true)
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	h.setFollow(c, false)
}

func (h *SocialHandler) setFollow(c *gin.Context, desired bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.socialService.SetFollow(c.Request.Context(), userID, c.Param("userId"), desired)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FollowToggleResponse{
		IsFollowing:   result.IsActive,
		StateChanged:  result.StateChanged,
		PreviousState: result.PreviousState,
	})
}

func (h *SocialHandler) GetFollowState(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	following, err := h.socialService.IsFollowing(userID, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFollowing": following})
}

func (h *SocialHandler) GetFollowerCount(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	count, err := h.socialService.FollowerCount(c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FollowCountResponse{Count: count})
}

func (h *SocialHandler) GetFollowingCount(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	count, err := h.socialService.FollowingCount(c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FollowCountResponse{Count: count})
}

func (h *SocialHandler) Like(c *gin.Context) {
	h.setLike(c, true)
}

func (h *SocialHandler) Unlike(c *gin.Context) {
	h.setLike(c, false)
}

func (h *SocialHandler) setLike(c *gin.Context, desired bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// owner_id drives the like notification; without it the like still
	// lands but nobody is notified.
	ownerID := c.Query("owner_id")

	result, err := h.socialService.SetLike(c.Request.Context(), userID, c.Param("targetType"), c.Param("targetId"), ownerID, desired)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LikeToggleResponse{
		IsLiked:       result.IsActive,
		StateChanged:  result.StateChanged,
		PreviousState: result.PreviousState,
	})
}

func (h *SocialHandler) GetLikeCount(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	count, err := h.socialService.LikeCount(c.Param("targetType"), c.Param("targetId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
