// Package sharetoken produces and verifies the signed, expiring tokens that
// grant read-only public access to one booking. Tokens are stateless: every
// field needed for verification is embedded in the token itself.
package sharetoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	signatureLen = sha256.Size

	// expiryDays is added to max(departure date, today).
	expiryDays = 120
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad signature")
	ErrExpired        = errors.New("token expired")
)

// Codec signs and verifies share tokens with the process-wide secret.
// Now is injectable for tests and defaults to time.Now.
type Codec struct {
	Secret []byte
	Now    func() time.Time
}

func New(secret string) Codec {
	return Codec{Secret: []byte(secret)}
}

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Issue builds a token for one booking. Expiry is max(departure, today)
// plus 120 days, so links shared long before travel stay alive for the
// whole window.
func (c Codec) Issue(bookingID int64, departure time.Time) string {
	now := c.now()
	anchor := now
	if departure.After(anchor) {
		anchor = departure
	}
	expires := anchor.AddDate(0, 0, expiryDays)
	return c.IssueAt(bookingID, now.Unix(), expires.Unix())
}

// IssueAt signs explicit issue/expiry timestamps. Deterministic: the same
// inputs and secret always produce the same token.
func (c Codec) IssueAt(bookingID, issuedUnix, expiresUnix int64) string {
	prefix := fmt.Sprintf("%d:%d:%d", bookingID, issuedUnix, expiresUnix)
	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(prefix))
	raw := append([]byte(prefix), mac.Sum(nil)...)
	return base64.StdEncoding.EncodeToString(raw)
}

// Verify decodes and checks a token, returning the embedded booking id.
// The signature comparison is constant time. An expired token is rejected
// even when the signature is valid.
func (c Codec) Verify(token string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil || len(raw) <= signatureLen {
		return 0, ErrMalformedToken
	}

	prefix := raw[:len(raw)-signatureLen]
	sig := raw[len(raw)-signatureLen:]

	bookingID, _, expires, err := parsePrefix(string(prefix))
	if err != nil {
		return 0, ErrMalformedToken
	}

	mac := hmac.New(sha256.New, c.Secret)
	mac.Write(prefix)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return 0, ErrBadSignature
	}

	if c.now().Unix() > expires {
		return 0, ErrExpired
	}
	return bookingID, nil
}

func parsePrefix(prefix string) (bookingID, issued, expires int64, err error) {
	parts := strings.Split(prefix, ":")
	if len(parts) != 3 {
		return 0, 0, 0, ErrMalformedToken
	}
	if bookingID, err = strconv.ParseInt(parts[0], 10, 64); err != nil || bookingID <= 0 {
		return 0, 0, 0, ErrMalformedToken
	}
	if issued, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, 0, ErrMalformedToken
	}
	if expires, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return 0, 0, 0, ErrMalformedToken
	}
	return bookingID, issued, expires, nil
}

// ExpiresIn reports whole days until a token's expiry, for the share API
// response. Returns 0 for anything unverifiable.
func (c Codec) ExpiresIn(token string) int {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil || len(raw) <= signatureLen {
		return 0
	}
	_, _, expires, err := parsePrefix(string(raw[:len(raw)-signatureLen]))
	if err != nil {
		return 0
	}
	days := int(time.Unix(expires, 0).Sub(c.now()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
