package consent

import (
	"context"
	"fmt"

	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Inserter is the storage dependency of the recorder.
type Inserter interface {
	Insert(ctx context.Context, patientID string, d Decision, meta Meta) (string, error)
	HasAccepted(ctx context.Context, patientID string, t Type) (bool, error)
}

// Recorder validates and persists consent submissions.
type Recorder struct {
	store  Inserter
	logger *logging.Logger
}

func NewRecorder(store Inserter, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record persists one row per submitted decision. The mandatory privacy
// consent must be present and accepted or nothing is written; partial
// consent must never unlock progression.
func (r *Recorder) Record(ctx context.Context, patientID string, decisions []Decision, meta Meta) error {
	if len(decisions) == 0 {
		return ErrNoDecisions
	}

	privacyAccepted := false
	for _, d := range decisions {
		if !d.ConsentType.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownType, d.ConsentType)
		}
		if d.ConsentType == TypePrivacy && d.Accepted {
			privacyAccepted = true
		}
	}
	if !privacyAccepted {
		return ErrPrivacyRequired
	}

	for _, d := range decisions {
		id, err := r.store.Insert(ctx, patientID, d, meta)
		if err != nil {
			return err
		}
		r.logger.Info("consent recorded",
			"record_id", id,
			"patient_id", patientID,
			"consent_type", string(d.ConsentType),
			"accepted", d.Accepted,
		)
	}
	return nil
}

// HasAccepted reports whether the patient has at least one accepted row of
// the given type.
func (r *Recorder) HasAccepted(ctx context.Context, patientID string, t Type) (bool, error) {
	return r.store.HasAccepted(ctx, patientID, t)
}
