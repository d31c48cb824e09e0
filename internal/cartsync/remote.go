package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// RemoteCart is the server-side cart surface the agent pushes to and pulls
// from once a shopper is signed in.
type RemoteCart interface {
	Push(ctx context.Context, token string, productID uuid.UUID, size string, quantity int) error
	Pull(ctx context.Context, token string) (types.CartData, error)
}

// HTTPRemote talks to the storefront cart API over HTTP.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote builds a remote cart client for the given API base URL.
func NewHTTPRemote(baseURL string, client *http.Client) (*HTTPRemote, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemote{baseURL: baseURL, client: client}, nil
}

type pushEntryRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

type cartResponse struct {
	Data struct {
		Cart types.CartData `json:"cart"`
	} `json:"data"`
}

// Push upserts a single cart entry on the server.
func (r *HTTPRemote) Push(ctx context.Context, token string, productID uuid.UUID, size string, quantity int) error {
	body, err := json.Marshal(pushEntryRequest{ProductID: productID, Size: size, Quantity: quantity})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/cart/entries", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pushing cart entry")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteError(resp)
	}
	return nil
}

// Pull fetches the server cart in full.
func (r *HTTPRemote) Pull(ctx context.Context, token string) (types.CartData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/v1/cart", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pulling cart")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp)
	}

	var payload cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cart response")
	}
	if payload.Data.Cart == nil {
		return types.CartData{}, nil
	}
	return payload.Data.Cart, nil
}

func remoteError(resp *http.Response) error {
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		return pkgerrors.New(pkgerrors.CodeDependency, envelope.Error.Message)
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("cart api returned status %d", resp.StatusCode))
}
