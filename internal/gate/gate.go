package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Code string

const (
	CodeNotAvailable         Code = "NOT_AVAILABLE"
	CodeUserCancel           Code = "USER_CANCEL"
	CodeSystemCancel         Code = "SYSTEM_CANCEL"
	CodeUserFallback         Code = "USER_FALLBACK"
	CodeNotEnrolled          Code = "NOT_ENROLLED"
	CodeLockout              Code = "LOCKOUT"
	CodeLockoutPermanent     Code = "LOCKOUT_PERMANENT"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"
	CodeUnknown              Code = "UNKNOWN_ERROR"

	// CodeSuccess is only reported to observers.
	CodeSuccess Code = "SUCCESS"
)

const DefaultPrompt = "Authentication required"

// Reason is the raw outcome reported by a platform challenge.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUserCancel       Reason = "user_cancel"
	ReasonSystemCancel     Reason = "system_cancel"
	ReasonUserFallback     Reason = "user_fallback"
	ReasonNotEnrolled      Reason = "not_enrolled"
	ReasonLockout          Reason = "lockout"
	ReasonLockoutPermanent Reason = "lockout_permanent"
	ReasonFailed           Reason = "authentication_failed"
)

type Outcome struct {
	Success bool
	Reason  Reason
}

// Platform is the device-level authentication facility the gate wraps.
type Platform interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	Challenge(ctx context.Context, prompt string) (Outcome, error)
}

// Error is a structured gate failure. It is returned as an error by callers
// that abort on a failed check.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Code, e.Message)
}

type Result struct {
	Success bool
	Error   *Error
}

// Err returns nil on success and the structured failure otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == nil {
		return &Error{Code: CodeUnknown, Message: messageFor(CodeUnknown)}
	}
	return r.Error
}

type Observer func(code Code)

type Gate struct {
	platform Platform
	logger   *zap.Logger
	observe  Observer
}

func New(platform Platform, logger *zap.Logger, observe Observer) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		platform: platform,
		logger:   logger.Named("gate"),
		observe:  observe,
	}
}

// Authenticate runs the device check. The platform is never prompted unless
// hardware is present and the user is enrolled.
func (g *Gate) Authenticate(ctx context.Context, prompt string) Result {
	if prompt == "" {
		prompt = DefaultPrompt
	}

	if !g.available(ctx) {
		return g.fail(CodeNotAvailable)
	}

	outcome, err := g.platform.Challenge(ctx, prompt)
	if err != nil {
		g.logger.Error("challenge failed", zap.Error(err))
		return g.fail(CodeUnknown)
	}
	if outcome.Success {
		g.record(CodeSuccess)
		return Result{Success: true}
	}
	return g.fail(codeFor(outcome.Reason))
}

func (g *Gate) available(ctx context.Context) bool {
	hasHardware, err := g.platform.HasHardware(ctx)
	if err != nil {
		g.logger.Warn("hardware check failed", zap.Error(err))
		return false
	}
	if !hasHardware {
		return false
	}
	enrolled, err := g.platform.IsEnrolled(ctx)
	if err != nil {
		g.logger.Warn("enrollment check failed", zap.Error(err))
		return false
	}
	return enrolled
}

func (g *Gate) fail(code Code) Result {
	g.record(code)
	g.logger.Info("authentication rejected", zap.String("code", string(code)))
	return Result{
		Success: false,
		Error:   &Error{Code: code, Message: messageFor(code)},
	}
}

func (g *Gate) record(code Code) {
	if g.observe != nil {
		g.observe(code)
	}
}

func codeFor(reason Reason) Code {
	switch reason {
	case ReasonUserCancel:
		return CodeUserCancel
	case ReasonSystemCancel:
		return CodeSystemCancel
	case ReasonUserFallback:
		return CodeUserFallback
	case ReasonNotEnrolled:
		return CodeNotEnrolled
	case ReasonLockout:
		return CodeLockout
	case ReasonLockoutPermanent:
		return CodeLockoutPermanent
	case ReasonFailed, ReasonNone:
		return CodeAuthenticationFailed
	default:
		return CodeUnknown
	}
}

func messageFor(code Code) string {
	switch code {
	case CodeNotAvailable:
		return "Device authentication is not available"
	case CodeUserCancel:
		return "Authentication cancelled by user"
	case CodeSystemCancel:
		return "Authentication cancelled by system"
	case CodeUserFallback:
		return "User chose to use alternative method"
	case CodeNotEnrolled:
		return "No credential registered"
	case CodeLockout:
		return "Too many failed attempts. Try again later"
	case CodeLockoutPermanent:
		return "Authentication permanently locked"
	case CodeAuthenticationFailed:
		return "Authentication failed"
	default:
		return "Unknown authentication error"
	}
}
