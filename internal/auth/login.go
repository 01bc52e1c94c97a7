package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/sitepolicy/internal/controller"
)

var (
	// ErrTokenRejected means a supplied token did not yield a tenant.
	// It is never retried.
	ErrTokenRejected = errors.New("AUTH_TOKEN login failure, please check token")

	// ErrLoginCancelled is returned when the operator interrupts the
	// interactive login or the context is cancelled.
	ErrLoginCancelled = errors.New("login cancelled")

	// ErrLoginAttemptsExhausted is returned when a bounded login loop
	// runs out of attempts.
	ErrLoginAttemptsExhausted = errors.New("login attempts exhausted")
)

// Session is the part of the controller session authentication needs.
type Session interface {
	Login(ctx context.Context, email, password string) error
	UseToken(ctx context.Context, token string) error
	TenantID() string
}

// Authenticate binds session to a tenant. A token credential is tried
// exactly once; an interactive credential runs loop. A token that never
// reached the controller is reported as the transport error, not as a
// rejected token.
func Authenticate(ctx context.Context, session Session, cred Credential, loop *LoginLoop) error {
	if cred.Token != "" {
		if err := session.UseToken(ctx, cred.Token); err != nil {
			if controller.IsTransport(err) || ctx.Err() != nil {
				return err
			}
			return fmt.Errorf("%w: %w", ErrTokenRejected, err)
		}
		if session.TenantID() == "" {
			return ErrTokenRejected
		}
		return nil
	}

	if loop == nil {
		return fmt.Errorf("interactive login required but no prompter is configured")
	}
	return loop.Run(ctx)
}

type loginState int

const (
	statePrompt loginState = iota
	stateAttempt
)

// LoginLoop is the interactive login state machine:
//
//	prompt -> attempt -> done
//	            |
//	            +-> failed: clear credentials -> prompt
//
// Only rejected credentials (401/403 or no tenant) send it back to the
// prompt. Connection errors retry with the same credentials until the
// circuit breaker opens; any other controller error ends the loop.
type LoginLoop struct {
	session     Session
	prompter    Prompter
	limiter     *RateLimiter
	maxAttempts int

	email    string
	password string
	attempts int
}

// LoginOption configures a LoginLoop.
type LoginOption func(*LoginLoop)

// WithMaxAttempts bounds the loop. Zero means unlimited.
func WithMaxAttempts(n int) LoginOption {
	return func(l *LoginLoop) {
		l.maxAttempts = n
	}
}

// WithLimiter paces attempts.
func WithLimiter(limiter *RateLimiter) LoginOption {
	return func(l *LoginLoop) {
		l.limiter = limiter
	}
}

// WithEmail pre-fills the email for the first attempt only.
func WithEmail(email string) LoginOption {
	return func(l *LoginLoop) {
		l.email = email
	}
}

// NewLoginLoop creates an interactive login loop.
func NewLoginLoop(session Session, prompter Prompter, opts ...LoginOption) *LoginLoop {
	l := &LoginLoop{
		session:  session,
		prompter: prompter,
		limiter:  NewRateLimiter(0, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Attempts returns how many logins were tried.
func (l *LoginLoop) Attempts() int {
	return l.attempts
}

// Run drives the loop to completion.
func (l *LoginLoop) Run(ctx context.Context) error {
	state := statePrompt

	for {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrLoginCancelled, ctx.Err())
		}

		switch state {
		case statePrompt:
			if l.maxAttempts > 0 && l.attempts >= l.maxAttempts {
				return fmt.Errorf("%w after %d attempts", ErrLoginAttemptsExhausted, l.attempts)
			}
			if err := l.collect(); err != nil {
				return err
			}
			state = stateAttempt

		case stateAttempt:
			if err := l.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%w: %w", ErrLoginCancelled, err)
			}

			l.attempts++
			err := l.session.Login(ctx, l.email, l.password)
			if err == nil && l.session.TenantID() != "" {
				slog.Debug("interactive login succeeded", slog.Int("attempts", l.attempts))
				l.password = ""
				return nil
			}

			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrLoginCancelled, ctx.Err())
			}
			if errors.Is(err, controller.ErrCircuitOpen) {
				return fmt.Errorf("controller unreachable, giving up on login: %w", err)
			}

			switch {
			case controller.IsTransport(err):
				// Keep the credentials; the controller never judged them.
				slog.Warn("login attempt could not reach controller",
					slog.Int("attempt", l.attempts),
					slog.String("error", err.Error()),
				)
			case err == nil || controller.IsUnauthorized(err) || errors.Is(err, controller.ErrNoTenant):
				slog.Warn("login failed",
					slog.Int("attempt", l.attempts),
					slog.Any("error", err),
				)
				l.email, l.password = "", ""
			default:
				return fmt.Errorf("login failed: %w", err)
			}
			state = statePrompt
		}
	}
}

// collect prompts for whichever credentials are missing.
func (l *LoginLoop) collect() error {
	if l.email == "" {
		email, err := l.prompter.Email()
		if err != nil {
			return err
		}
		l.email = email
	}
	if l.password == "" {
		password, err := l.prompter.Password()
		if err != nil {
			return err
		}
		l.password = password
	}
	return nil
}
