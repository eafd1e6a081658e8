package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/services"
	"gorm.io/gorm"
)

func newLedger(database *gorm.DB) *services.LedgerService {
	repositories := db.NewRepositories(database)
	return services.NewLedgerService(repositories.Stories, repositories.Users)
}

// RunResetWeeklyCommand zeroes every user's weekly growth. Meant to be run by an external
// scheduler at the start of each period.
func RunResetWeeklyCommand(ctx context.Context, database *gorm.DB, out io.Writer) error {
	affected, err := newLedger(database).ResetWeeklyGrowth(ctx)
	if err != nil {
		return fmt.Errorf("reset weekly growth: %w", err)
	}

	fmt.Fprintf(out, "Weekly growth reset for %d user(s)\n", affected)
	return nil
}
