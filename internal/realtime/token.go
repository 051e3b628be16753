package realtime

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nfrund/rollcall/internal/domain"
)

// Purpose selects the capability set a credential grants.
type Purpose string

const (
	// PurposeStudents grants subscribe and history on the students channel.
	// Change notifications are server-published, so clients never need
	// publish rights here.
	PurposeStudents Purpose = "students"
	// PurposeChat grants subscribe and publish on the chat-room channel.
	PurposeChat Purpose = "chat"
)

// TokenTTL is the fixed credential lifetime. Expiry is coarse: it is checked
// at attach time, not re-checked mid-session.
const TokenTTL = time.Hour

// Capability permissions.
const (
	CapSubscribe = "subscribe"
	CapPublish   = "publish"
	CapHistory   = "history"
)

// Credential is a short-lived, capability-scoped token minted per connecting
// client. It is never persisted; once expired the holder must request a new
// one.
type Credential struct {
	ClientID   string              `json:"clientId"`
	KeyName    string              `json:"keyName"`
	Capability map[string][]string `json:"capability"`
	Token      string              `json:"token"`
	Issued     int64               `json:"issued"`
	Expires    int64               `json:"expires"`
}

// Claims are the verified contents of a credential token, as seen by the
// websocket bridge at attach time.
type Claims struct {
	ClientID   string
	Capability map[string][]string
	ExpiresAt  time.Time
}

// Can reports whether the credential grants the given permission on a channel.
func (c *Claims) Can(channel, permission string) bool {
	for _, p := range c.Capability[channel] {
		if p == permission {
			return true
		}
	}
	return false
}

// Issuer mints and verifies credentials. Stateless: every Issue call embeds a
// freshly generated client identifier so concurrently connecting clients
// never collide.
type Issuer struct {
	signingKey []byte
	keyName    string
}

// NewIssuer creates an Issuer. An empty signing key is allowed here so the
// server can boot without realtime configured; Issue and Verify then fail
// with domain.ErrNotConfigured.
func NewIssuer(signingKey string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		keyName:    "rollcall.realtime",
	}
}

// Configured reports whether a signing key is present.
func (i *Issuer) Configured() bool {
	return len(i.signingKey) > 0
}

// Issue mints a credential for the given purpose. The client identifier has
// the form <prefix>-<epoch-ms>-<random-suffix>.
func (i *Issuer) Issue(purpose Purpose) (*Credential, error) {
	if !i.Configured() {
		return nil, fmt.Errorf("realtime signing key: %w", domain.ErrNotConfigured)
	}

	var prefix string
	var capability map[string][]string
	switch purpose {
	case PurposeChat:
		prefix = "chat"
		capability = map[string][]string{
			ChannelChatRoom: {CapSubscribe, CapPublish},
		}
	case PurposeStudents, "":
		prefix = "student-app"
		capability = map[string][]string{
			ChannelStudents: {CapSubscribe, CapHistory},
		}
	default:
		return nil, fmt.Errorf("unknown credential purpose %q", purpose)
	}

	now := time.Now()
	clientID := fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), uuid.NewString()[:8])

	claims := gojwt.MapClaims{
		"sub":        clientID,
		"capability": capability,
		"iat":        now.Unix(),
		"exp":        now.Add(TokenTTL).Unix(),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}

	return &Credential{
		ClientID:   clientID,
		KeyName:    i.keyName,
		Capability: capability,
		Token:      token,
		Issued:     now.UnixMilli(),
		Expires:    now.Add(TokenTTL).UnixMilli(),
	}, nil
}

// Verify parses and validates a credential token, returning its claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if !i.Configured() {
		return nil, fmt.Errorf("realtime signing key: %w", domain.ErrNotConfigured)
	}

	parsed, err := gojwt.Parse(token, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}

	mapClaims, ok := parsed.Claims.(gojwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	claims := &Claims{Capability: make(map[string][]string)}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.ClientID = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if capability, ok := mapClaims["capability"].(map[string]any); ok {
		for channel, perms := range capability {
			list, ok := perms.([]any)
			if !ok {
				continue
			}
			for _, p := range list {
				if s, ok := p.(string); ok {
					claims.Capability[channel] = append(claims.Capability[channel], s)
				}
			}
		}
	}

	if claims.ClientID == "" {
		return nil, fmt.Errorf("credential has no client identifier")
	}
	return claims, nil
}
