package signer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/eatglobe/globe-middleware/pkg/ledger"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// Bundle signature types, matching the upload gateway's vocabulary.
const (
	signatureTypeArweave = 1 // RSA-PSS
	signatureTypeSolana  = 2 // ed25519
)

// gatewayClient is a signing client that wraps the payload as a single-item
// bundle, has the wallet provider sign its digest, and posts it to the
// upload gateway. The wallet never leaves its sandbox; this client only
// ferries bytes.
type gatewayClient struct {
	chain         wallet.Chain
	address       string
	provider      wallet.Provider
	signatureType int
	uploadURL     string
	httpClient    *http.Client
	logger        *zap.Logger
}

func newArweaveClient(address string, provider wallet.Provider, uploadURL string, hc *http.Client, logger *zap.Logger) *gatewayClient {
	return &gatewayClient{
		chain:         wallet.ChainArweave,
		address:       address,
		provider:      provider,
		signatureType: signatureTypeArweave,
		uploadURL:     uploadURL,
		httpClient:    hc,
		logger:        logger,
	}
}

func newSolanaClient(address string, provider wallet.Provider, uploadURL string, hc *http.Client, logger *zap.Logger) *gatewayClient {
	return &gatewayClient{
		chain:         wallet.ChainSolana,
		address:       address,
		provider:      provider,
		signatureType: signatureTypeSolana,
		uploadURL:     uploadURL,
		httpClient:    hc,
		logger:        logger,
	}
}

func (c *gatewayClient) Chain() wallet.Chain {
	return c.chain
}

func (c *gatewayClient) Address() string {
	return c.address
}

type uploadRequest struct {
	Owner         string       `json:"owner"`
	Chain         string       `json:"chain"`
	SignatureType int          `json:"signatureType"`
	Data          string       `json:"data"` // base64
	Tags          []ledger.Tag `json:"tags"`
	Signature     string       `json:"signature"` // base64
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload signs and submits a single-item upload, returning the new record's
// content identifier. One attempt, no retry.
func (c *gatewayClient) Upload(ctx context.Context, data []byte, tags []ledger.Tag) (string, error) {
	digest := itemDigest(c.address, data, tags)
	signature, err := c.provider.SignData(ctx, digest)
	if err != nil {
		return "", fmt.Errorf("wallet signing failed: %w", err)
	}

	reqBody := uploadRequest{
		Owner:         c.address,
		Chain:         c.chain.String(),
		SignatureType: c.signatureType,
		Data:          base64.StdEncoding.EncodeToString(data),
		Tags:          tags,
		Signature:     base64.StdEncoding.EncodeToString(signature),
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload gateway returned status %d", resp.StatusCode)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("upload gateway returned empty record id")
	}
	return decoded.ID, nil
}

// itemDigest computes the signing digest over owner, data and tags. Tags are
// length-prefixed so that boundary shifts cannot produce colliding digests.
func itemDigest(owner string, data []byte, tags []ledger.Tag) []byte {
	h := sha256.New()
	writeLengthPrefixed(h, []byte(owner))
	writeLengthPrefixed(h, data)
	for _, t := range tags {
		writeLengthPrefixed(h, []byte(t.Name))
		writeLengthPrefixed(h, []byte(t.Value))
	}
	sum := h.Sum(nil)
	return sum
}

func writeLengthPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(b)))
	_, _ = h.Write(size[:])
	_, _ = h.Write(b)
}
