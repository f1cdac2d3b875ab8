package resettoken

import (
	"errors"
	"time"
)

// Token is a single-use emailed code: used flips false->true exactly
// once and never reverts. Expiry is enforced at read time by Consume,
// so correctness does not depend on the storage layer having TTLs.
type Token struct {
	ID        int64
	UserID    int64
	Purpose   string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Purposes
const (
	PurposeReset  = "password_reset"
	PurposeVerify = "email_verification"
)

// DefaultTTL is how long a code stays valid.
const DefaultTTL = 15 * time.Minute

// ErrInvalidCode covers unknown, expired and already-used codes. The
// three cases are deliberately indistinguishable to the caller.
var ErrInvalidCode = errors.New("invalid or expired code")
