// Package identity mirrors external identities into local profiles from
// signed webhook events.
package identity

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/fault"
)

// Profiles is the catalog surface the sync writes through.
type Profiles interface {
	EnsureProfile(ctx context.Context, userID, email string) (created bool, err error)
}

type Syncer struct {
	logger   *zap.SugaredLogger
	profiles Profiles
}

func NewSyncer(logger *zap.SugaredLogger, profiles Profiles) *Syncer {
	return &Syncer{logger: logger, profiles: profiles}
}

// event is the slice of the identity provider's payload we care about. The
// email_addresses field doubles as the marker for identity-creation events.
type event struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// Process applies one verified event. Email-bearing identity payloads upsert
// a profile keyed on the external user id; replays of the same identity are
// no-ops. Events without identity data are acknowledged without effect.
// Reports whether a profile upsert was performed.
func (s *Syncer) Process(ctx context.Context, payload []byte) (bool, error) {
	var ev event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return false, fault.Wrap(fault.KindValidation, "Malformed event payload", err)
	}

	if ev.Data.ID == "" || ev.Data.EmailAddresses == nil {
		s.logger.Infof("Acknowledging non-identity event %q.", ev.Type)
		return false, nil
	}

	var email string
	if len(ev.Data.EmailAddresses) > 0 {
		email = ev.Data.EmailAddresses[0].EmailAddress
	}

	created, err := s.profiles.EnsureProfile(ctx, ev.Data.ID, email)
	if err != nil {
		return false, fault.Wrap(fault.KindPersistence, "Error creating user", err)
	}

	if created {
		s.logger.Infof("Provisioned profile for identity %s.", ev.Data.ID)
	} else {
		s.logger.Debugf("Profile for identity %s already present.", ev.Data.ID)
	}
	return true, nil
}
