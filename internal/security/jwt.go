package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/errs"

	"github.com/golang-jwt/jwt"
	"github.com/jonboulle/clockwork"
)

// AccessClaims is what the auth service puts into an access token:
// sub = user id, email = account email.
type AccessClaims struct {
	jwt.StandardClaims
	Email string `json:"email"`
}

// Verifier checks RS256 access tokens issued by the auth service.
type Verifier struct {
	public    *rsa.PublicKey
	issuer    string
	audience  string
	clockSkew time.Duration
	clock     clockwork.Clock
}

func NewVerifier(public *rsa.PublicKey, issuer, audience string, clockSkew time.Duration, clock clockwork.Clock) *Verifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Verifier{
		public:    public,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
		clock:     clock,
	}
}

// Verify turns a raw token into a Principal. Every failure wraps one of the errs sentinels.
func (v *Verifier) Verify(tokenStr string) (domain.Principal, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return domain.Principal{}, errs.ErrMissingToken
	}

	claims := &AccessClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true} // exp/nbf checked below with skew
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok || t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errs.ErrInvalidToken
		}
		return v.public, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Principal{}, errs.ErrInvalidToken
	}

	if !claims.VerifyIssuer(v.issuer, true) {
		return domain.Principal{}, errs.ErrInvalidIssuer
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return domain.Principal{}, errs.ErrInvalidAudience
	}

	now := v.clock.Now()
	nbf := time.Unix(claims.NotBefore, 0).Add(-v.clockSkew)
	exp := time.Unix(claims.ExpiresAt, 0).Add(v.clockSkew)
	if claims.ExpiresAt == 0 || now.Before(nbf) || now.After(exp) {
		return domain.Principal{}, errs.ErrTokenExpired
	}

	uid, err := SubjectAsUserID(claims)
	if err != nil {
		return domain.Principal{}, err
	}
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return domain.Principal{}, errs.ErrInvalidEmail
	}

	return domain.Principal{UserID: uid, Email: email}, nil
}

// SubjectAsUserID parses sub into a positive user id.
func SubjectAsUserID(claims *AccessClaims) (domain.UserID, error) {
	if claims == nil || claims.Subject == "" {
		return 0, errs.ErrInvalidSubject
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrInvalidSubject
	}

	return domain.UserID(id), nil
}

// Signer issues tokens the Verifier accepts. The service itself only verifies;
// Signer backs the dev token tool and tests.
type Signer struct {
	private   *rsa.PrivateKey
	issuer    string
	audience  string
	ttl       time.Duration
	clockSkew time.Duration
}

func NewSigner(private *rsa.PrivateKey, issuer, audience string, ttl, clockSkew time.Duration) *Signer {
	return &Signer{
		private:   private,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		clockSkew: clockSkew,
	}
}

func (s *Signer) Sign(p domain.Principal, now time.Time) (string, error) {
	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(int64(p.UserID), 10),
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  now.Unix(),
			NotBefore: now.Add(-s.clockSkew).Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Email: p.Email,
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.private)
}

func LoadRSAPrivateKeyFromPEM(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}

	return pk, nil
}

func LoadRSAPublicKeyFromPEM(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPublicKeyFromPEM(b)
}
