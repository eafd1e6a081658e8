package api

import (
	"errors"
	"time"

	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	authCookieName = "giverr_auth"
	contextUserKey = "current_user"
	contextClaims  = "identity_claims"

	defaultImportRateLimit  = 10
	defaultImportRateWindow = time.Minute
	maxContactsUploadBytes  = 1 << 20
)

type Options struct {
	IdentitySecret   []byte
	Logger           *zap.Logger
	ImportRateLimit  int
	ImportRateWindow time.Duration
}

type Handler struct {
	identitySecret []byte
	logger         *zap.Logger

	identities *services.IdentityService
	ledger     *services.LedgerService
	directory  *services.DirectoryService

	importLimiter *attemptLimiter
	importLimit   int
	importWindow  time.Duration
	now           func() time.Time
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if len(options.IdentitySecret) == 0 {
		return nil, errors.New("identity secret is required")
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	importLimit := options.ImportRateLimit
	if importLimit <= 0 {
		importLimit = defaultImportRateLimit
	}
	importWindow := options.ImportRateWindow
	if importWindow <= 0 {
		importWindow = defaultImportRateWindow
	}

	repositories := db.NewRepositories(database)
	return &Handler{
		identitySecret: options.IdentitySecret,
		logger:         logger,
		identities:     services.NewIdentityService(repositories.Users),
		ledger:         services.NewLedgerService(repositories.Stories, repositories.Users),
		directory:      services.NewDirectoryService(repositories.Users, repositories.Connections),
		importLimiter:  newAttemptLimiter(),
		importLimit:    importLimit,
		importWindow:   importWindow,
		now:            time.Now,
	}, nil
}
