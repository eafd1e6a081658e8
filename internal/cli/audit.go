package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"
)

var ErrReputationMismatch = errors.New("stored reputation differs from confirmed stories")

// RunAuditCommand prints every user whose stored reps or stars disagree with the sum of their
// confirmed stories and fails with ErrReputationMismatch when any do.
func RunAuditCommand(ctx context.Context, database *gorm.DB, out io.Writer) error {
	audits, err := newLedger(database).AuditAll(ctx)
	if err != nil {
		return fmt.Errorf("audit reputation: %w", err)
	}

	mismatched := 0
	for _, audit := range audits {
		if audit.Consistent {
			continue
		}
		mismatched++
		fmt.Fprintf(out, "%s (%s): reps %d, expected %d; stars %d, expected %d\n",
			audit.UserID, audit.DisplayName,
			audit.StoredReps, audit.ExpectedReps,
			audit.StoredStars, audit.ExpectedStars,
		)
	}

	if mismatched > 0 {
		return fmt.Errorf("%w: %d of %d user(s)", ErrReputationMismatch, mismatched, len(audits))
	}
	fmt.Fprintf(out, "Reputation consistent for %d user(s)\n", len(audits))
	return nil
}
