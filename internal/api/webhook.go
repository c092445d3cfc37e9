package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emojimaker/server/internal/fault"
	"github.com/emojimaker/server/internal/identity"
)

// registerIdentityWebhook POST /api/user
//
// Unlike the session-guarded routes, every verification failure here maps to
// 400: the caller is the identity provider's delivery system, not a user
// with a session to refresh.
func (a *API) registerIdentityWebhook() {
	a.router.POST("/api/user", func(c *gin.Context) {
		id := c.GetHeader(identity.HeaderID)
		timestamp := c.GetHeader(identity.HeaderTimestamp)
		signature := c.GetHeader(identity.HeaderSignature)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unreadable payload"})
			return
		}

		if err := a.deps.Verifier.Verify(payload, id, timestamp, signature); err != nil {
			a.logger.Infof("Rejected webhook delivery: %s.", err)
			msg := "Invalid webhook signature"
			if fault.IsKind(err, fault.KindValidation) {
				msg = "Missing webhook signature headers"
			}
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
			return
		}

		handled, err := a.deps.Identity.Process(c.Request.Context(), payload)
		if err != nil {
			a.fail(c, err)
			return
		}

		if handled {
			c.JSON(http.StatusOK, gin.H{"message": "User processed successfully"})
		} else {
			c.JSON(http.StatusOK, gin.H{"message": "Non-user event received"})
		}
	})
}
