package dcx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer implements CoinDCX API request signing.
// Signature = HMAC-SHA256(secret, exact JSON body bytes), hex-encoded.
// The signature is computed over the same byte sequence that goes on the
// wire, so the client must serialize once and reuse those bytes.
type Signer struct {
	apiKey string
	secret []byte
}

func NewSigner(apiKey, secret string) *Signer {
	return &Signer{apiKey: apiKey, secret: []byte(secret)}
}

func (s *Signer) Enabled() bool {
	return s.apiKey != "" && len(s.secret) > 0
}

func (s *Signer) APIKey() string {
	return s.apiKey
}

func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
