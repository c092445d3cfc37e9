package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// registerGetEmojis GET /api/emojis
func (a *API) registerGetEmojis() {
	type emojiModel struct {
		ID            int64     `json:"id"`
		ImageURL      string    `json:"image_url"`
		Prompt        string    `json:"prompt"`
		LikesCount    int64     `json:"likes_count"`
		CreatorUserID string    `json:"creator_user_id"`
		CreatedAt     time.Time `json:"created_at"`
		Liked         bool      `json:"liked"`
	}

	a.router.GET("/api/emojis", a.requireSession(), func(c *gin.Context) {
		var param struct {
			Limit  int `form:"limit,default=50" binding:"min=0,max=100"`
			Offset int `form:"offset" binding:"min=0"`
		}

		if err := c.ShouldBindQuery(&param); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		listings, err := a.deps.Catalog.ListEmojis(c.Request.Context(), currentUser(c), param.Limit, param.Offset)
		if err != nil {
			a.fail(c, err)
			return
		}

		em := make([]*emojiModel, len(listings))
		for i, l := range listings {
			em[i] = &emojiModel{l.ID, l.ImageURL, l.Prompt, l.LikesCount, l.CreatorUserID, l.CreatedAt, l.Liked}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "emojis": em})
	})
}
