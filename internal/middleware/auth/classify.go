// Package auth decides what happens to a request based on its route class
// and the state of its session token.
package auth

import (
	"net/http"

	"github.com/google/uuid"
)

type RouteClass int

const (
	Public RouteClass = iota
	AuthPage
	ProtectedUI
	ProtectedAPI
)

func (r RouteClass) String() string {
	switch r {
	case Public:
		return "public"
	case AuthPage:
		return "auth_page"
	case ProtectedUI:
		return "protected_ui"
	case ProtectedAPI:
		return "protected_api"
	}
	return "unknown"
}

type TokenState int

const (
	NoToken TokenState = iota
	ValidToken
	InvalidToken
	MisconfiguredSecret
)

func (s TokenState) String() string {
	switch s {
	case NoToken:
		return "no_token"
	case ValidToken:
		return "valid"
	case InvalidToken:
		return "invalid"
	case MisconfiguredSecret:
		return "misconfigured_secret"
	}
	return "unknown"
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Principal struct {
	UserID uuid.UUID
	Email  string
}

type ActionKind int

const (
	Allow ActionKind = iota
	Redirect
	RespondError
)

type Action struct {
	Kind ActionKind
	// Principal is set when Kind is Allow and the token was valid.
	Principal *Principal
	Location  string
	Status    int
	Body      map[string]string
	// ClearToken asks the adapter to expire the session cookie.
	ClearToken bool
}

// Classify is the whole gate policy. It has no side effects.
func Classify(class RouteClass, state TokenState, p *Principal) Action {
	bad := state == InvalidToken || state == MisconfiguredSecret
	if state == ValidToken && p == nil {
		state, bad = InvalidToken, true
	}

	switch class {
	case AuthPage:
		if state == ValidToken {
			return Action{Kind: Redirect, Location: DashboardPath}
		}
		return Action{Kind: Allow, ClearToken: bad}

	case ProtectedUI:
		if state == ValidToken {
			return Action{Kind: Allow, Principal: p}
		}
		return Action{Kind: Redirect, Location: LoginPath, ClearToken: bad}

	case ProtectedAPI:
		if state == ValidToken {
			return Action{Kind: Allow, Principal: p}
		}
		return Action{
			Kind:       RespondError,
			Status:     http.StatusUnauthorized,
			Body:       map[string]string{"error": "Unauthorized"},
			ClearToken: bad,
		}
	}

	if state == ValidToken {
		return Action{Kind: Allow, Principal: p}
	}
	return Action{Kind: Allow, ClearToken: bad}
}
