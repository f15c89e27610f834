package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// RPCClient talks JSON-RPC 2.0 to a Solana node: transaction submission,
// confirmation polling and balance lookups.
type RPCClient struct {
	http      *resty.Client
	limiter   *WindowLimiter
	requestID atomic.Uint64

	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

func NewRPCClient(config Config) *RPCClient {
	return &RPCClient{
		http:            newHTTPClient(config.SolanaRPCURL, 30*time.Second),
		limiter:         NewWindowLimiter(config.RPCRateLimit, config.RateLimitWindow),
		confirmTimeout:  config.ConfirmTimeout,
		confirmInterval: config.ConfirmInterval,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	var parsed rpcResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post("")
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("rpc %s: HTTP %d: %s", method, resp.StatusCode(), resp.String())
	}
	if parsed.Error != nil {
		return fmt.Errorf("rpc %s: %w", method, parsed.Error)
	}
	if result != nil && parsed.Result != nil {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("rpc %s: decode result: %w", method, err)
		}
	}
	return nil
}

// SendTransaction submits a base64-encoded signed transaction and returns its
// signature.
func (c *RPCClient) SendTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	var signature string
	err := c.call(ctx, "sendTransaction", []interface{}{
		signedTxBase64,
		map[string]interface{}{"encoding": "base64", "preflightCommitment": "confirmed"},
	}, &signature)
	if err != nil {
		return "", err
	}
	return signature, nil
}

type signatureStatus struct {
	ConfirmationStatus string          `json:"confirmationStatus"`
	Err                json.RawMessage `json:"err"`
}

type signatureStatusResult struct {
	Value []*signatureStatus `json:"value"`
}

// ConfirmTransaction polls the signature status at a fixed interval until the
// transaction confirms, fails, or the timeout elapses. A timeout is reported
// as timed-out, never assumed successful.
func (c *RPCClient) ConfirmTransaction(ctx context.Context, signature string) (ConfirmStatus, error) {
	log := logger.WithFields(logger.Fields{
		"component": "RPCClient",
		"signature": signature,
	})

	deadline := time.Now().Add(c.confirmTimeout)
	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	for {
		var result signatureStatusResult
		err := c.call(ctx, "getSignatureStatuses", []interface{}{
			[]string{signature},
			map[string]interface{}{"searchTransactionHistory": false},
		}, &result)
		if err != nil {
			log.WithError(err).Warn("Signature status poll failed")
		} else if len(result.Value) > 0 && result.Value[0] != nil {
			status := result.Value[0]
			if status.Err != nil && string(status.Err) != "null" {
				log.WithField("err", string(status.Err)).Error("Transaction failed on chain")
				return ConfirmFailed, nil
			}
			if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
				log.Info("Transaction confirmed")
				return ConfirmConfirmed, nil
			}
		}

		if time.Now().After(deadline) {
			log.Warn("Transaction confirmation timed out")
			return ConfirmTimedOut, nil
		}

		select {
		case <-ctx.Done():
			return ConfirmTimedOut, ctx.Err()
		case <-ticker.C:
		}
	}
}

type balanceResult struct {
	Value uint64 `json:"value"`
}

// GetBalance returns the SOL balance of an account.
func (c *RPCClient) GetBalance(ctx context.Context, pubkey string) (float64, error) {
	var result balanceResult
	if err := c.call(ctx, "getBalance", []interface{}{pubkey}, &result); err != nil {
		return 0, err
	}
	return float64(result.Value) / 1e9, nil
}

type tokenAmount struct {
	Amount   string  `json:"amount"`
	Decimals int     `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount tokenAmount `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// GetTokenBalance sums the wallet's parsed token-account balances for a mint.
func (c *RPCClient) GetTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	var result tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]interface{}{"mint": mint},
		map[string]interface{}{"encoding": "jsonParsed"},
	}, &result)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, account := range result.Value {
		total += account.Account.Data.Parsed.Info.TokenAmount.UIAmount
	}
	return total, nil
}
