package ports

import (
	"github.com/talodu/marketplace-client/internal/core/domain"
)

// CredentialStore persists the credential pair and user snapshot across
// process restarts. Implementations are best-effort: Load reports absent
// (ok == false) for missing, partial, or unreadable data and never
// returns partially decoded state. Save and Clear errors are advisory;
// callers log them and carry on.
type CredentialStore interface {
	Save(pair domain.TokenPair, user *domain.User) error
	Load() (pair domain.TokenPair, user *domain.User, ok bool)
	Clear() error
}
