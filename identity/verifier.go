package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	interrors "github.com/jrsteele09/go-chat-bridge/internal/errors"
)

// Result is the outcome of a credential check.
type Result struct {
	Verified bool
	UserID   string // Set only when Verified is true
}

// Verifier checks a submitted password against a stored salted hash.
type Verifier struct {
	repo    Repo
	nowTime func() time.Time
}

// VerifierOption modifies a Verifier instance.
type VerifierOption func(*Verifier)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.nowTime = nowFunc
	}
}

func NewVerifier(repo Repo, options ...VerifierOption) *Verifier {
	v := &Verifier{repo: repo, nowTime: time.Now}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Verify looks up the active credential for username and compares the submitted
// password against the stored hash. An unknown or disabled user yields
// errors.ErrUnknownOrDisabledUser; a plain mismatch yields Verified=false with
// no error. Comparison is constant-time beyond match/no-match.
func (v *Verifier) Verify(ctx context.Context, username, password string) (Result, error) {
	cred, err := v.repo.ActiveCredential(ctx, username)
	if err != nil {
		return Result{}, errors.Wrap(err, "[Verifier.Verify] ActiveCredential")
	}
	if cred == nil || !cred.Active(v.nowTime()) {
		return Result{}, interrors.ErrUnknownOrDisabledUser
	}

	match, err := compareHash(cred, password)
	if err != nil {
		return Result{}, errors.Wrap(err, "[Verifier.Verify] compareHash")
	}
	if !match {
		return Result{Verified: false}, nil
	}
	return Result{Verified: true, UserID: cred.UserID}, nil
}

func compareHash(cred *Credential, password string) (bool, error) {
	switch cred.Algorithm {
	case AlgorithmBcrypt:
		return CheckPasswordHash(password, cred.PasswordHash), nil
	case AlgorithmSHA256:
		digest := sha256.Sum256([]byte(cred.Salt + password))
		computed := hex.EncodeToString(digest[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(cred.PasswordHash)) == 1, nil
	default:
		return false, errors.Errorf("[compareHash] unsupported hash algorithm %q", cred.Algorithm)
	}
}
