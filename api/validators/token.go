package validators

import (
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

// TrackingToken validates a public tracking token from the URL path.
// Malformed tokens report not found so the endpoint does not reveal
// whether a token shape was close to valid.
func TrackingToken(raw string) (string, error) {
	if !security.IsTrackingToken(raw) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	return raw, nil
}
