// Package auth issues and validates the bearer tokens shared by every service,
// and hashes user passwords.
package auth

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/crypto/bcrypt"

	wealth "github.com/sri-akshat/wealth-manager"
)

const (
	// DefaultTTL is the lifetime of an access token.
	DefaultTTL = 30 * time.Minute
	// MinSecretLength is the shortest secret, in bytes, accepted as an HS256
	// key.
	MinSecretLength = 32
)

var (
	// ErrNotAuthenticated means no usable bearer token was presented.
	ErrNotAuthenticated = errors.New("Not authenticated")
	// ErrInvalidToken means a token was presented but could not be validated.
	ErrInvalidToken = errors.New("Could not validate credentials")
)

// Principal is the authenticated caller.
type Principal struct {
	Email  string
	Role   wealth.Role
	UserID int64
}

// claims are the private claims carried next to the registered ones.
type claims struct {
	Role wealth.Role `json:"role,omitempty"`
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A zero ttl means DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret is %d bytes, it must be at least %d", len(secret), MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of the tokens issued by Issue.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed token for email, valid for the issuer TTL.
func (i *Issuer) Issue(email string, role wealth.Role) (string, error) {
	return i.IssueFor(email, role, i.ttl)
}

// IssueFor returns a signed token valid for ttl.
func (i *Issuer) IssueFor(email string, role wealth.Role, ttl time.Duration) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: i.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("cannot create token signer: %w", err)
	}
	now := i.now()
	registered := jwt.Claims{
		Subject:  email,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.Signed(signer).Claims(registered).Claims(claims{Role: role}).Serialize()
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}
	return token, nil
}

// Parse validates token and returns its principal. Every failure wraps ErrInvalidToken.
func (i *Issuer) Parse(token string) (Principal, error) {
	parsed, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var registered jwt.Claims
	var private claims
	if err := parsed.Claims(i.secret, &registered, &private); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if registered.Expiry == nil {
		return Principal{}, fmt.Errorf("%w: token has no expiry", ErrInvalidToken)
	}
	if err := registered.ValidateWithLeeway(jwt.Expected{Time: i.now()}, 0); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if registered.Subject == "" {
		return Principal{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return Principal{
		Email:  registered.Subject,
		Role:   private.Role,
		UserID: UserID(registered.Subject),
	}, nil
}

// UserID derives the numeric owner id of investments from an email.
// It is stable across processes and always a positive 31-bit integer.
func UserID(email string) int64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(email)))
	return int64(h.Sum32() & 0x7fffffff)
}

// BearerToken extracts the token of an Authorization header value.
// Anything but "Bearer <token>" is ErrNotAuthenticated.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", ErrNotAuthenticated
	}
	return fields[1], nil
}

// Hasher hashes passwords with bcrypt.
type Hasher struct {
	Cost int // bcrypt cost, zero means bcrypt.DefaultCost
}

// Hash returns the bcrypt hash of password.
func (h Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cannot hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hashed.
func (Hasher) Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
