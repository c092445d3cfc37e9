package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerLikeEmoji POST /api/like-emoji
func (a *API) registerLikeEmoji() {
	a.router.POST("/api/like-emoji", a.requireSession(), func(c *gin.Context) {
		var body struct {
			EmojiID int64 `json:"emojiId"`
		}

		if err := c.ShouldBindJSON(&body); err != nil || body.EmojiID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing emojiId"})
			return
		}

		res, err := a.deps.Toggler.Toggle(c.Request.Context(), currentUser(c), body.EmojiID)
		if err != nil {
			a.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"likesCount": res.LikesCount,
			"liked":      res.Liked,
		})
	})
}
