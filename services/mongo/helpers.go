package mongo

import (
	"errors"
	"fmt"

	"github.com/mytrueresume-stack/SprintTracker/services/mongo/command"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"go.mongodb.org/mongo-driver/mongo"
)

// storeErr maps driver errors onto the tracker sentinels so services can
// tell a missing document or a unique-index violation from an outage.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, command.ErrNoMatch):
		return tracker.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return tracker.ErrDuplicateKey
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
