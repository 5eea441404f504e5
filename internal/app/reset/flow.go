// Package reset drives the password reset link from token exchange to the new password.
package reset

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"alumni_connect/internal/app/forms"
	"alumni_connect/internal/app/session"
	"alumni_connect/internal/common"
)

type State string

const (
	AwaitingTokens     State = "awaiting_tokens"
	SessionEstablished State = "session_established"
	PasswordUpdated    State = "password_updated"
	Failed             State = "failed"
)

const (
	MsgMissingTokens = "Invalid reset link. Please request a new password reset."
	MsgExpiredLink   = "Invalid or expired reset link. Please request a new password reset."
	MsgUpdated       = "Password updated successfully! Redirecting..."
)

// Snapshot is what the reset page renders.
type Snapshot struct {
	State         State  `json:"state"`
	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
	RedirectTo    string `json:"redirect_to,omitempty"`
	RedirectAfter int64  `json:"redirect_after_ms,omitempty"`
}

type Flow struct {
	identity      session.IdentityService
	redirectDelay time.Duration

	state       State
	errMsg      string
	accessToken string
}

func NewFlow(identity session.IdentityService, redirectDelay time.Duration) *Flow {
	return &Flow{identity: identity, redirectDelay: redirectDelay, state: AwaitingTokens}
}

// Begin exchanges the link tokens for a recovery session. Missing tokens fail the flow
// without contacting the identity service.
func (f *Flow) Begin(ctx context.Context, query url.Values) Snapshot {
	if f.state != AwaitingTokens {
		return f.Snapshot()
	}
	access := query.Get("access_token")
	refresh := query.Get("refresh_token")
	if access == "" || refresh == "" {
		return f.fail(MsgMissingTokens)
	}

	sess, err := f.identity.SetSession(ctx, access, refresh)
	if err != nil {
		if !errors.Is(err, common.ErrUnauthorized) {
			log.Printf("WARN: reset token exchange failed: %v", err)
		}
		return f.fail(MsgExpiredLink)
	}
	f.accessToken = sess.AccessToken
	f.state = SessionEstablished
	return f.Snapshot()
}

// Submit is only accepted in SessionEstablished. Errors keep the flow there so the user can retry.
func (f *Flow) Submit(ctx context.Context, form forms.NewPassword) Snapshot {
	if f.state != SessionEstablished {
		return f.Snapshot()
	}
	if err := form.Validate(); err != nil {
		f.errMsg = common.PublicMessage(err)
		return f.Snapshot()
	}
	if err := f.identity.UpdatePassword(ctx, f.accessToken, form.Password); err != nil {
		if common.HTTPStatusFromError(err) == http.StatusInternalServerError {
			log.Printf("ERROR: reset password update failed: %v", err)
		}
		f.errMsg = common.PublicMessage(err)
		return f.Snapshot()
	}
	f.errMsg = ""
	f.state = PasswordUpdated
	return f.Snapshot()
}

func (f *Flow) fail(msg string) Snapshot {
	f.state = Failed
	f.errMsg = msg
	return f.Snapshot()
}

func (f *Flow) State() State { return f.state }

func (f *Flow) Snapshot() Snapshot {
	s := Snapshot{State: f.state, Error: f.errMsg}
	if f.state == PasswordUpdated {
		s.Message = MsgUpdated
		s.RedirectTo = "/"
		s.RedirectAfter = f.redirectDelay.Milliseconds()
	}
	return s
}
