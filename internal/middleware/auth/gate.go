package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/tokens"
)

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// Gate adapts Classify to echo.
type Gate struct {
	Tokens       Verifier
	SecureCookie bool
	// AppURL overrides the request-derived base for redirects.
	AppURL string
}

func NewGate(v Verifier, secureCookie bool, appURL string) *Gate {
	return &Gate{Tokens: v, SecureCookie: secureCookie, AppURL: appURL}
}

func (g *Gate) Require(class RouteClass) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state, p := g.inspect(c)
			act := Classify(class, state, p)

			if state != NoToken && state != ValidToken {
				logging.FromContext(c.Request().Context()).Debug("auth_gate",
					"route_class", class.String(), "token_state", state.String())
			}
			if act.ClearToken {
				c.SetCookie(DeleteCookie(g.SecureCookie))
			}

			switch act.Kind {
			case Redirect:
				return c.Redirect(http.StatusFound, BaseURL(c.Request(), g.AppURL)+act.Location)
			case RespondError:
				return c.JSON(act.Status, act.Body)
			}

			if act.Principal != nil {
				setPrincipal(c, *act.Principal)
			}
			return next(c)
		}
	}
}

func (g *Gate) inspect(c echo.Context) (TokenState, *Principal) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return NoToken, nil
	}

	claims, err := g.Tokens.Verify(cookie.Value)
	if err != nil {
		if errors.Is(err, apperr.ErrConfiguration) {
			logging.Critical(c.Request().Context(), "auth_gate_misconfigured", "error", err)
			return MisconfiguredSecret, nil
		}
		return InvalidToken, nil
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return InvalidToken, nil
	}
	return ValidToken, &Principal{UserID: id, Email: claims.Email}
}

// BaseURL is scheme://host as the client saw it.
func BaseURL(r *http.Request, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}

	proto := firstValue(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}
	host := firstValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}
	return proto + "://" + host
}

func firstValue(h string) string {
	v, _, _ := strings.Cut(h, ",")
	return strings.TrimSpace(v)
}
