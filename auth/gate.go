package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"eshop/apperr"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the request-locals key under which the gate stores the
// decoded claims for downstream handlers.
const ClaimsKey = "auth_claims"

// Rule exempts requests from credential verification. Either Path (literal,
// exact match) or Pattern must be set. An empty Methods list matches any
// method.
type Rule struct {
	Path    string
	Pattern *regexp.Regexp
	Methods []string
}

func (r Rule) matches(path, method string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if strings.EqualFold(m, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.Pattern != nil {
		return r.Pattern.MatchString(path)
	}
	return r.Path == path
}

type GateConfig struct {
	Secret     string
	Exemptions []Rule

	// AllowAll disables verification entirely. It must be set explicitly;
	// a catch-all exemption rule is rejected so the open posture is always
	// a visible startup decision.
	AllowAll bool
}

var (
	ErrNoSecret         = errors.New("gate: signing secret is required")
	ErrOpenExemption    = errors.New("gate: exemption rule matches every path; set AllowAll to disable the gate")
	ErrEmptyRule        = errors.New("gate: exemption rule needs a path or a pattern")
	ErrMissingToken     = errors.New("missing authorization token")
	ErrCredentialRevoke = errors.New("credential lacks admin privilege")
)

// catchAllProbe cannot appear in a real request path, so a rule matching it
// matches everything.
const catchAllProbe = "/\x00never-served"

// NewGate builds the authentication middleware. Requests matching an
// exemption rule pass through without the token being decoded; everything
// else requires a valid admin bearer token.
func NewGate(cfg GateConfig) (fiber.Handler, error) {
	if !cfg.AllowAll && cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	for i, r := range cfg.Exemptions {
		if r.Path == "" && r.Pattern == nil {
			return nil, fmt.Errorf("%w (rule %d)", ErrEmptyRule, i)
		}
		if r.Pattern != nil && len(r.Methods) == 0 && r.Pattern.MatchString(catchAllProbe) && !cfg.AllowAll {
			return nil, fmt.Errorf("%w (rule %d)", ErrOpenExemption, i)
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.AllowAll {
			return c.Next()
		}
		for _, r := range cfg.Exemptions {
			if r.matches(c.Path(), c.Method()) {
				return c.Next()
			}
		}

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apperr.Wrap(apperr.Auth, "authorization required", ErrMissingToken)
		}

		claims, err := ParseToken(cfg.Secret, token)
		if err != nil {
			return apperr.Wrap(apperr.Auth, "invalid or expired token", err)
		}
		if !IsAuthorized(claims) {
			return apperr.Wrap(apperr.Auth, "access denied", ErrCredentialRevoke)
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// ClaimsFrom returns the claims the gate attached to the request, if any.
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*Claims)
	return claims, ok
}
