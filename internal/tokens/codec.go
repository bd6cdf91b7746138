package tokens

import (
	"crypto/ecdsa"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects which lifetime a token is issued with and which transports
// carry it.
type Kind int

const (
	KindAccess Kind = iota
	KindRefresh
)

func (k Kind) String() string {
	if k == KindRefresh {
		return "refresh"
	}
	return "access"
}

type Claims struct {
	UserID      uint `json:"user_id"`
	IsSuperuser bool `json:"is_superuser"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens with an EC key pair. Verification
// needs only the public key, so other services can check tokens without
// being able to mint them.
type Codec struct {
	private    *ecdsa.PrivateKey
	public     *ecdsa.PublicKey
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(private *ecdsa.PrivateKey, public *ecdsa.PublicKey, issuer string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		private:    private,
		public:     public,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a token of the given kind. Expiry, jti and issuer are always
// set here, never by the caller.
func (c *Codec) Issue(kind Kind, userID uint, isSuperuser bool) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:      userID,
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return t.SignedString(c.private)
}

// Read verifies signature, issuer and expiry and returns the claims.
// Malformed or invalid input is an expected condition and reports ok=false.
func (c *Codec) Read(raw string) (*Claims, bool) {
	if raw == "" {
		return nil, false
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.public, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, false
	}
	if claims.Subject == "" {
		return nil, false
	}
	return &claims, true
}
