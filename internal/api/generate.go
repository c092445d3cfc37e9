package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerGenerateEmoji POST /api/generate-emoji
func (a *API) registerGenerateEmoji() {
	a.router.POST("/api/generate-emoji", a.requireSession(), func(c *gin.Context) {
		var body struct {
			Prompt string `json:"prompt"`
		}

		if err := c.ShouldBindJSON(&body); err != nil || body.Prompt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Prompt is required"})
			return
		}

		res, err := a.deps.Generator.Generate(c.Request.Context(), currentUser(c), body.Prompt)
		if err != nil {
			a.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"emoji":       res.ImageURL,
			"base64Image": res.Base64Image,
		})
	})
}
