package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
)

const maxBody = 1 << 20

type Config struct {
	BaseURL string
	Secret  string // bearer
	Timeout time.Duration
}

// Room — ответ провайдера: id и полный payload как есть.
type Room struct {
	ID  string
	Raw json.RawMessage
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		http:    &http.Client{Timeout: timeout},
	}
}

type createRoomRequest struct {
	Name string `json:"name"`
}

// CreateRoom — POST {base}/rooms {name}. Любой сбой оборачивается в domain.ErrProvider.
func (c *Client) CreateRoom(ctx context.Context, name string) (*Room, error) {
	body, err := json.Marshal(createRoomRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", domain.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rooms", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", domain.ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProvider, resp.StatusCode)
	}

	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProvider, err)
	}
	if head.ID == "" {
		return nil, fmt.Errorf("%w: empty room id", domain.ErrProvider)
	}

	return &Room{ID: head.ID, Raw: json.RawMessage(raw)}, nil
}
