// Package zkgateway is the client for the verification-gateway
// collaborator the Authorization contract consults for ZK-proof-gated
// admission. The gateway service itself runs out-of-process; this package
// only models the authenticated client contract and the public-input hash
// binding authorization checks against.
package zkgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"lukechampine.com/blake3"
)

// ErrProofRejected is returned when the gateway reports a proof as invalid
// against its registered verification key.
var ErrProofRejected = errors.New("zkgateway: proof rejected")

// VerificationKeyID names a registered circuit verification key.
type VerificationKeyID string

// Proof is an opaque, gateway-specific proof blob.
type Proof []byte

// PublicInputs is the proof's public-input vector; authorization requires
// it to encode the message payloads' hash.
type PublicInputs []byte

// Gateway is the capability set the Authorization contract depends on.
type Gateway interface {
	// VerifyProof reports whether proof validates against keyID's
	// registered verification key, given publicInputs.
	VerifyProof(ctx context.Context, keyID VerificationKeyID, proof Proof, publicInputs PublicInputs) (bool, error)
	// RegisterVerificationKey registers key under keyID, mirroring the
	// account-factory key-registration step from
	// original_source/zk/cosmwasm_account_factory.
	RegisterVerificationKey(ctx context.Context, keyID VerificationKeyID, key []byte) error
}

// HashMessagePayloads computes the public-input binding hash authorization
// checks a proof's public inputs against. Payloads are hashed in order with
// length-prefixing so no ambiguity exists between e.g. ["ab","c"] and
// ["a","bc"].
func HashMessagePayloads(payloads [][]byte) [32]byte {
	h := blake3.New(32, nil)
	for _, p := range payloads {
		var lenPrefix [8]byte
		putUint64(lenPrefix[:], uint64(len(p)))
		h.Write(lenPrefix[:])
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// HTTPGateway is an HTTP-backed Gateway implementation, authenticating
// every request with a bearer JWT that it mints itself, signed with
// HMAC-SHA256 and carrying issuer, audience, issued-at and expiry claims.
type HTTPGateway struct {
	BaseURL    string
	HTTPClient *http.Client
	Issuer     string
	Audience   string
	signingKey []byte
	tokenTTL   time.Duration
}

// NewHTTPGateway constructs an HTTPGateway that signs its bearer tokens
// with signingKey using HMAC-SHA256.
func NewHTTPGateway(baseURL string, signingKey []byte, issuer, audience string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		Issuer:     issuer,
		Audience:   audience,
		signingKey: signingKey,
		tokenTTL:   2 * time.Minute,
	}
}

func (g *HTTPGateway) bearerToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": g.Issuer,
		"aud": g.Audience,
		"iat": now.Unix(),
		"exp": now.Add(g.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.signingKey)
}

type verifyRequest struct {
	KeyID        string `json:"key_id"`
	Proof        []byte `json:"proof"`
	PublicInputs []byte `json:"public_inputs"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// VerifyProof implements Gateway.
func (g *HTTPGateway) VerifyProof(ctx context.Context, keyID VerificationKeyID, proof Proof, publicInputs PublicInputs) (bool, error) {
	body, err := json.Marshal(verifyRequest{KeyID: string(keyID), Proof: proof, PublicInputs: publicInputs})
	if err != nil {
		return false, fmt.Errorf("zkgateway: marshal request: %w", err)
	}
	var resp verifyResponse
	if err := g.do(ctx, "/v1/verify", body, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

type registerKeyRequest struct {
	KeyID string `json:"key_id"`
	Key   []byte `json:"key"`
}

// RegisterVerificationKey implements Gateway.
func (g *HTTPGateway) RegisterVerificationKey(ctx context.Context, keyID VerificationKeyID, key []byte) error {
	body, err := json.Marshal(registerKeyRequest{KeyID: string(keyID), Key: key})
	if err != nil {
		return fmt.Errorf("zkgateway: marshal request: %w", err)
	}
	return g.do(ctx, "/v1/verification-keys", body, nil)
}

func (g *HTTPGateway) do(ctx context.Context, path string, body []byte, out any) error {
	token, err := g.bearerToken()
	if err != nil {
		return fmt.Errorf("zkgateway: mint bearer token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("zkgateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("zkgateway: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("zkgateway: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zkgateway: %s returned %d: %s", path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("zkgateway: unmarshal response: %w", err)
	}
	return nil
}

// MemGateway is an in-process Gateway stand-in used by tests and the
// cmd/valenced demo wiring: a registered key accepts any non-empty proof,
// modeling "proof validates" without a real circuit; the public inputs
// are not checked.
type MemGateway struct {
	keys map[VerificationKeyID][]byte
}

// NewMemGateway constructs an empty in-memory gateway.
func NewMemGateway() *MemGateway {
	return &MemGateway{keys: make(map[VerificationKeyID][]byte)}
}

// RegisterVerificationKey implements Gateway.
func (g *MemGateway) RegisterVerificationKey(_ context.Context, keyID VerificationKeyID, key []byte) error {
	g.keys[keyID] = append([]byte(nil), key...)
	return nil
}

// VerifyProof implements Gateway: the proof is considered valid when a key
// is registered for keyID and proof is non-empty; the public inputs are
// not independently checked here since no real circuit backs this stand-in.
func (g *MemGateway) VerifyProof(_ context.Context, keyID VerificationKeyID, proof Proof, _ PublicInputs) (bool, error) {
	if _, ok := g.keys[keyID]; !ok {
		return false, fmt.Errorf("zkgateway: unknown verification key %q", keyID)
	}
	return len(proof) > 0, nil
}
