// Package token implements the stateless identity token codec and
// lifecycle: HS256-signed access/refresh pairs, validation with typed
// failure kinds, and subject extraction. There is no revocation list;
// a leaked refresh token stays usable until it expires, which is why
// refresh tokens carry identity only and their TTL is bounded in
// config.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"slotbook/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
	ErrUnknown   = errors.New("token validation failed")
)

// Claims is the decoded view of a verified token.
type Claims struct {
	Subject   int64
	Roles     []string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Pair bundles the two tokens returned by login and refresh.
type Pair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Manager issues and validates token pairs. The signing key is
// prepared once at construction and shared by both kinds; refresh
// tokens embed the subject only.
type Manager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      domain.Clock
}

func NewManager(key []byte, accessTTL, refreshTTL time.Duration, clock domain.Clock) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Manager{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// IssueAccessToken signs a short-lived token carrying subject and
// roles.
func (m *Manager) IssueAccessToken(subjectID int64, roles []string) (string, time.Time, error) {
	now := m.clock.Now()
	exp := now.Add(m.accessTTL)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(subjectID, 10),
		"roles": roles,
		"typ":   string(KindAccess),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// IssueRefreshToken signs a longer-lived identity-only token. No role
// claims: a leaked refresh token must be worth as little as possible.
func (m *Manager) IssueRefreshToken(subjectID int64) (string, time.Time, error) {
	now := m.clock.Now()
	exp := now.Add(m.refreshTTL)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(subjectID, 10),
		"typ": string(KindRefresh),
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, exp, nil
}

// IssuePair mints a fresh access+refresh pair for the subject. Used by
// login and by rotation after a refresh token validates.
func (m *Manager) IssuePair(subjectID int64, roles []string) (Pair, error) {
	access, accessExp, err := m.IssueAccessToken(subjectID, roles)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := m.IssueRefreshToken(subjectID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Validate verifies signature, expiry and kind, and decodes the
// claims. Failures map to exactly one of ErrExpired, ErrMalformed or
// ErrUnknown so callers can attach the reason without re-parsing.
func (m *Manager) Validate(raw string, kind Kind) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
	)

	tok, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrUnknown
		}
	}

	claims, err := decodeClaims(tok)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	if claims.Kind != kind {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}

// ExtractSubject reads the subject without verifying expiry. Callers
// that care about freshness must Validate first.
func (m *Manager) ExtractSubject(raw string) (int64, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return 0, ErrMalformed
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return 0, ErrMalformed
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}

func decodeClaims(tok *jwt.Token) (Claims, error) {
	mapClaims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("unexpected claims type")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil {
		return Claims{}, err
	}
	subject, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Claims{}, err
	}

	claims := Claims{Subject: subject}

	if typ, ok := mapClaims["typ"].(string); ok {
		claims.Kind = Kind(typ)
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if rawRoles, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	}

	return claims, nil
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
