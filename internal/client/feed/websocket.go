package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/groupfeed/internal/common"
	"github.com/dmitrijs2005/groupfeed/internal/logging"
)

// HTTPClient implements Client against the reference feed server: snapshots
// arrive over a websocket (one JSON frame per emission), appends go over a
// plain HTTP POST.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	logger  logging.Logger
}

func NewHTTPClient(baseURL string, logger logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		dialer:  websocket.DefaultDialer,
		logger:  logger.With("module", "feed_client"),
	}
}

// wsURL rewrites the configured http(s) base URL into its ws(s) counterpart.
func (c *HTTPClient) wsURL(roomID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/rooms/" + url.PathEscape(roomID)
	return u.String(), nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, roomID string) (Subscription, error) {
	addr, err := c.wsURL(roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed URL: %v", common.ErrTransport, err)
	}

	conn, _, err := c.dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %v", common.ErrTransport, roomID, err)
	}

	sub := &wsSubscription{
		conn:   conn,
		ch:     make(chan RawSnapshot),
		done:   make(chan struct{}),
		logger: c.logger.With("room", roomID),
	}
	go sub.readLoop()

	c.logger.Debug(ctx, "subscribed", "room", roomID)
	return sub, nil
}

type appendResponse struct {
	ID string `json:"id"`
}

func (c *HTTPClient) Append(ctx context.Context, roomID string, entry OutgoingEntry) (string, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("%w: encode entry: %v", common.ErrTransport, err)
	}

	addr := fmt.Sprintf("%s/api/rooms/%s/messages", c.baseURL, url.PathEscape(roomID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: append: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: append: status %d: %s", common.ErrTransport, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var ar appendResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("%w: decode append response: %v", common.ErrTransport, err)
	}
	return ar.ID, nil
}

// wsSubscription is one live websocket listener. The read loop owns the
// connection; Unsubscribe closes it at most once and the loop winds down.
type wsSubscription struct {
	conn   *websocket.Conn
	ch     chan RawSnapshot
	done   chan struct{}
	once   sync.Once
	logger logging.Logger

	mu  sync.Mutex
	err error
}

func (s *wsSubscription) Snapshots() <-chan RawSnapshot { return s.ch }

func (s *wsSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wsSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *wsSubscription) readLoop() {
	defer close(s.ch)

	for {
		var snap RawSnapshot
		if err := s.conn.ReadJSON(&snap); err != nil {
			select {
			case <-s.done:
				// Deliberate unsubscribe, not a failure.
			default:
				s.mu.Lock()
				s.err = fmt.Errorf("%w: subscription: %v", common.ErrTransport, err)
				s.mu.Unlock()
				s.Unsubscribe()
			}
			return
		}

		select {
		case s.ch <- snap:
		case <-s.done:
			return
		}
	}
}
