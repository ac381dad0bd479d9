package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks the provider's hashKey. With no secret configured every
// notification is rejected.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Sign(n Notification) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(n.SignedString()))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) Verify(n Notification) bool {
	if len(v.secret) == 0 || n.Signature() == "" {
		return false
	}
	return hmac.Equal([]byte(v.Sign(n)), []byte(n.Signature()))
}
