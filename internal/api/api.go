// Package api exposes the HTTP surface: emoji generation, like toggling,
// the catalog listing and the identity webhook.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/fault"
	"github.com/emojimaker/server/internal/generate"
	"github.com/emojimaker/server/internal/likes"
	"github.com/emojimaker/server/internal/storage/model"
)

type Config struct {
	Port uint16
	// SessionSecret verifies the HS256 session tokens issued by the
	// identity provider.
	SessionSecret string
}

func NewConfig(port uint16, sessionSecret string) *Config {
	return &Config{Port: port, SessionSecret: sessionSecret}
}

// Generator is the generation pipeline as the handlers see it.
type Generator interface {
	Generate(ctx context.Context, callerID, promptText string) (*generate.Result, error)
}

// Toggler is the like toggle engine as the handlers see it.
type Toggler interface {
	Toggle(ctx context.Context, userID string, emojiID int64) (*likes.Result, error)
}

// EventVerifier authenticates webhook deliveries.
type EventVerifier interface {
	Verify(payload []byte, id, timestamp, signature string) error
}

// EventSink applies verified identity events.
type EventSink interface {
	Process(ctx context.Context, payload []byte) (handled bool, err error)
}

// Lister reads the catalog for the listing endpoint.
type Lister interface {
	ListEmojis(ctx context.Context, viewerID string, limit, offset int) ([]*model.EmojiListing, error)
}

// Deps are the injected collaborators. Everything the handlers touch comes
// in through here; the package holds no process-wide state.
type Deps struct {
	Generator Generator
	Toggler   Toggler
	Verifier  EventVerifier
	Identity  EventSink
	Catalog   Lister
}

type API struct {
	ctx        context.Context
	logger     *zap.SugaredLogger
	deps       Deps
	sessionKey []byte
	router     *gin.Engine
	serv       *http.Server
}

func NewAPI(ctx context.Context, logger *zap.SugaredLogger, config *Config, deps Deps) *API {
	a := &API{
		ctx:        ctx,
		logger:     logger,
		deps:       deps,
		sessionKey: []byte(config.SessionSecret),
		router:     gin.New(),
	}
	a.serv = &http.Server{Addr: fmt.Sprintf(":%d", config.Port), Handler: a.router}
	a.registerGenerateEmoji()
	a.registerLikeEmoji()
	a.registerGetEmojis()
	a.registerIdentityWebhook()
	return a
}

func (a *API) Listen() {
	go func() {
		if err := a.serv.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Errorf("Server returned with error: %s.", err)
			}
		}
	}()
}

func (a *API) Close() error {
	return a.serv.Close()
}

// fail maps a typed failure to its status code and response body. Unknown
// errors are logged and masked behind a generic 500.
func (a *API) fail(c *gin.Context, err error) {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		a.logger.Errorf("Unclassified handler error: %s.", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	var status int
	switch fe.Kind {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindAuth:
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
		a.logger.Errorf("Request failed: %s.", fe)
	}

	body := gin.H{"success": false, "error": fe.Msg}
	if fe.Detail != "" {
		body["details"] = fe.Detail
	}
	c.JSON(status, body)
}
