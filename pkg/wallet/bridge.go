package wallet

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// BridgeProvider talks to a local wallet bridge over HTTP. The bridge fronts
// the actual vendor extension; this process never sees private keys.
type BridgeProvider struct {
	chain      Chain
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBridgeProvider creates a provider backed by the wallet bridge at baseURL.
func NewBridgeProvider(chain Chain, baseURL string, logger *zap.Logger) *BridgeProvider {
	return &BridgeProvider{
		chain:   chain,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // connect prompts wait on the user
		},
		logger: logger,
	}
}

type bridgeAccountsResponse struct {
	Addresses []string `json:"addresses"`
}

type bridgeSignRequest struct {
	Data string `json:"data"` // base64
}

type bridgeSignResponse struct {
	Signature string `json:"signature"` // base64
}

type bridgeSignMessageRequest struct {
	Message string `json:"message"`
}

type bridgeSignMessageResponse struct {
	Signature string `json:"signature"` // base64
	PublicKey string `json:"publicKey,omitempty"`
}

// Connect prompts the wallet and returns the active address.
func (p *BridgeProvider) Connect(ctx context.Context) (string, error) {
	var resp bridgeAccountsResponse
	if err := p.do(ctx, http.MethodPost, "/connect", nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Addresses) == 0 {
		return "", ErrWalletNotConnected
	}
	return resp.Addresses[0], nil
}

// Accounts returns the currently authorized addresses.
func (p *BridgeProvider) Accounts(ctx context.Context) ([]string, error) {
	var resp bridgeAccountsResponse
	if err := p.do(ctx, http.MethodGet, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

// SignData forwards raw bytes to the wallet for signing.
func (p *BridgeProvider) SignData(ctx context.Context, data []byte) ([]byte, error) {
	req := bridgeSignRequest{Data: base64.StdEncoding.EncodeToString(data)}
	var resp bridgeSignResponse
	if err := p.do(ctx, http.MethodPost, "/sign", &req, &resp); err != nil {
		return nil, err
	}
	sig, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding from bridge: %w", err)
	}
	return sig, nil
}

// SignMessage asks the wallet to sign a plain-text message with the chain's
// personal message scheme.
func (p *BridgeProvider) SignMessage(ctx context.Context, message string) (*MessageProof, error) {
	req := bridgeSignMessageRequest{Message: message}
	var resp bridgeSignMessageResponse
	if err := p.do(ctx, http.MethodPost, "/sign-message", &req, &resp); err != nil {
		return nil, err
	}
	sig, err := base64.StdEncoding.DecodeString(resp.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding from bridge: %w", err)
	}
	return &MessageProof{Signature: sig, PublicKey: resp.PublicKey}, nil
}

// Disconnect revokes access.
func (p *BridgeProvider) Disconnect(ctx context.Context) error {
	return p.do(ctx, http.MethodPost, "/disconnect", nil, nil)
}

func (p *BridgeProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode bridge request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: bridge unreachable: %v", ErrWalletUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrWalletNotConnected
	default:
		return fmt.Errorf("wallet bridge returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode bridge response: %w", err)
		}
	}
	return nil
}
