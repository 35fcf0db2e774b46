package catedra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"boleteria/internal/shared/config"
)

// Failure taxonomy surfaced to callers.
var (
	// ErrTokenExpired means the cached credential was rejected; the client
	// already re-authenticated, and the caller should retry the logical
	// operation once. The client never retries the business call itself, to
	// avoid double-locking or double-selling.
	ErrTokenExpired = errors.New("catedra: token expired, re-authenticated, retry the operation")

	// ErrUnauthorized means re-authentication was already attempted and failed.
	ErrUnauthorized = errors.New("catedra: unauthorized after credential refresh")

	// ErrRemoteUnavailable covers network errors, timeouts and 5xx responses.
	ErrRemoteUnavailable = errors.New("catedra: remote authority unavailable")

	// ErrRemoteRejected covers non-auth 4xx rejections.
	ErrRemoteRejected = errors.New("catedra: remote authority rejected the request")
)

// Client is the interface to the remote ticketing authority, the single
// source of truth for seat occupancy.
type Client interface {
	// GetOccupancy fetches the occupied-seat snapshot for an event. An absent
	// snapshot means fully available and returns an empty slice.
	GetOccupancy(ctx context.Context, remoteEventID int64) ([]OccupiedSeat, error)

	// LockSeats requests a short-lived lock on the given seats.
	LockSeats(ctx context.Context, remoteEventID int64, seats []SeatRef) (*LockResult, error)

	// SellSeats finalizes a sale for previously locked seats.
	SellSeats(ctx context.Context, req SaleRequest) (*SaleResult, error)

	// ListEvents fetches the remote catalog listing for synchronization.
	ListEvents(ctx context.Context) ([]RemoteEvent, error)

	// IsAvailable is a lightweight liveness probe. It never returns an error.
	IsAvailable(ctx context.Context) bool
}

type client struct {
	baseURL  string
	username string
	password string
	http     *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a client for the remote ticketing authority.
func NewClient(cfg config.CatedraConfig) Client {
	return &client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *client) GetOccupancy(ctx context.Context, remoteEventID int64) ([]OccupiedSeat, error) {
	var seats []OccupiedSeat
	path := fmt.Sprintf("/eventos/%d/asientos", remoteEventID)
	status, err := c.do(ctx, http.MethodGet, path, nil, &seats)
	if err != nil {
		if status == http.StatusNotFound {
			// No snapshot for this event means fully available.
			return []OccupiedSeat{}, nil
		}
		return nil, err
	}
	return seats, nil
}

func (c *client) LockSeats(ctx context.Context, remoteEventID int64, seats []SeatRef) (*LockResult, error) {
	req := LockRequest{
		RemoteEventID: remoteEventID,
		Seats:         seats,
	}

	var result LockResult
	if _, err := c.do(ctx, http.MethodPost, "/asientos/bloquear", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) SellSeats(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	var result SaleResult
	if _, err := c.do(ctx, http.MethodPost, "/ventas", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) ListEvents(ctx context.Context) ([]RemoteEvent, error) {
	var events []RemoteEvent
	if _, err := c.do(ctx, http.MethodGet, "/eventos", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/salud", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}

// do performs one authenticated request. On a 401 it invalidates the cached
// token, re-authenticates once and returns ErrTokenExpired so the caller can
// retry the logical operation; a failed re-authentication yields
// ErrUnauthorized. Returns the HTTP status code when a response was received.
func (c *client) do(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return 0, err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateToken()
		if _, err := c.ensureToken(ctx); err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, ErrTokenExpired

	case resp.StatusCode >= http.StatusInternalServerError:
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)

	case resp.StatusCode >= http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", ErrRemoteRejected, resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// ensureToken returns the cached bearer token, authenticating if necessary.
func (c *client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	data, err := json.Marshal(authRequest{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if auth.Token == "" {
		return "", ErrUnauthorized
	}

	c.token = auth.Token
	return c.token, nil
}

func (c *client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
