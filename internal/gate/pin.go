package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type credentialKey struct{}

// WithCredential attaches the PIN the user typed to ctx.
func WithCredential(ctx context.Context, pin string) context.Context {
	return context.WithValue(ctx, credentialKey{}, pin)
}

func credentialFrom(ctx context.Context) (string, bool) {
	pin, ok := ctx.Value(credentialKey{}).(string)
	return pin, ok && pin != ""
}

// FallbackCredential is the value a client sends when the user picks the
// alternative method instead of entering a PIN.
const FallbackCredential = "fallback"

type PINConfig struct {
	// Hash is a bcrypt hash of the device PIN. Empty means not enrolled.
	Hash           []byte
	MaxAttempts    int
	LockoutPeriod  time.Duration
	PermanentAfter int
}

// PINPlatform is a software Platform backed by a bcrypt-hashed PIN.
// Repeated failures lock it out, first temporarily and then permanently.
type PINPlatform struct {
	cfg PINConfig
	now func() time.Time

	mu          sync.Mutex
	failures    int
	lockouts    int
	lockedUntil time.Time
	permanent   bool
}

func NewPINPlatform(cfg PINConfig) *PINPlatform {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.LockoutPeriod <= 0 {
		cfg.LockoutPeriod = 30 * time.Second
	}
	if cfg.PermanentAfter <= 0 {
		cfg.PermanentAfter = 3
	}
	return &PINPlatform{cfg: cfg, now: time.Now}
}

// HashPIN hashes a plain PIN for PINConfig.Hash.
func HashPIN(pin string, cost int) ([]byte, error) {
	if pin == "" {
		return nil, errors.New("pin must not be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(pin), cost)
}

func (p *PINPlatform) HasHardware(ctx context.Context) (bool, error) {
	return true, nil
}

func (p *PINPlatform) IsEnrolled(ctx context.Context) (bool, error) {
	return len(p.cfg.Hash) > 0, nil
}

func (p *PINPlatform) Challenge(ctx context.Context, prompt string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{Reason: ReasonSystemCancel}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.permanent {
		return Outcome{Reason: ReasonLockoutPermanent}, nil
	}
	if p.now().Before(p.lockedUntil) {
		return Outcome{Reason: ReasonLockout}, nil
	}

	pin, ok := credentialFrom(ctx)
	if !ok {
		return Outcome{Reason: ReasonUserCancel}, nil
	}
	if pin == FallbackCredential {
		return Outcome{Reason: ReasonUserFallback}, nil
	}

	err := bcrypt.CompareHashAndPassword(p.cfg.Hash, []byte(pin))
	if err == nil {
		p.failures = 0
		p.lockouts = 0
		return Outcome{Success: true}, nil
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return Outcome{}, err
	}

	p.failures++
	if p.failures < p.cfg.MaxAttempts {
		return Outcome{Reason: ReasonFailed}, nil
	}

	p.failures = 0
	p.lockouts++
	if p.lockouts >= p.cfg.PermanentAfter {
		p.permanent = true
		return Outcome{Reason: ReasonLockoutPermanent}, nil
	}
	p.lockedUntil = p.now().Add(p.cfg.LockoutPeriod)
	return Outcome{Reason: ReasonLockout}, nil
}
