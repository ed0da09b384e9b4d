package stream

import (
	"context"
	"strings"
	"sync"

	"backend-touristsafety/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "safety:"
	channelSuffix = ":updates"
	clientBuffer  = 64

	// AlertsTopic carries alert events. Device IDs start with a letter or digit
	// so they never collide with it.
	AlertsTopic = "_alerts"
)

// Hub fans safety updates out to the websocket clients following a device.
// With redis, updates travel through pub/sub so every instance sees them once.
type Hub struct {
	redis   *redis.Client
	cancel  context.CancelFunc
	ready   chan struct{}
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	last    map[string][]byte
}

type Client struct {
	DeviceID string
	Send     chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		ready:   make(chan struct{}),
		clients: map[string]map[*Client]struct{}{},
		last:    map[string][]byte{},
	}

	if redisClient == nil {
		close(h.ready)
		return h
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.subscribeRedis(ctx)
	return h
}

// Ready is closed once the hub receives updates, which with redis means the
// pattern subscription is confirmed.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Register adds a client for deviceID. The latest update for the device, if any,
// is queued for it straight away.
func (h *Hub) Register(deviceID string) *Client {
	client := &Client{
		DeviceID: deviceID,
		Send:     make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[deviceID] == nil {
		h.clients[deviceID] = map[*Client]struct{}{}
	}
	h.clients[deviceID][client] = struct{}{}
	if payload, ok := h.last[deviceID]; ok {
		client.Send <- payload
	}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	deviceClients, ok := h.clients[client.DeviceID]
	if !ok {
		return
	}
	if _, ok := deviceClients[client]; !ok {
		return
	}
	delete(deviceClients, client)
	if len(deviceClients) == 0 {
		delete(h.clients, client.DeviceID)
	}
	close(client.Send)
}

// Subscribers reports how many clients follow deviceID.
func (h *Hub) Subscribers(deviceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[deviceID])
}

func (h *Hub) Broadcast(deviceID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(deviceID), payload).Err()
		if err == nil {
			return
		}
		logger.L().Error("redis_publish_failed", "device_id", deviceID, "err", err)
	}
	h.deliver(deviceID, payload)
}

// Forget drops the remembered update for deviceID and disconnects its
// followers, whose Send channels are closed.
func (h *Hub) Forget(deviceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.last, deviceID)
	for client := range h.clients[deviceID] {
		close(client.Send)
	}
	delete(h.clients, deviceID)
}

func (h *Hub) deliver(deviceID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[deviceID] = payload
	for client := range h.clients[deviceID] {
		select {
		case client.Send <- payload:
		default:
			logger.L().Warn("stream_client_slow", "device_id", deviceID)
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	go func() {
		<-ctx.Done()
		_ = pubsub.Close()
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		logger.L().Error("redis_subscribe_failed", "err", err)
		close(h.ready)
		return
	}
	close(h.ready)

	for msg := range pubsub.Channel() {
		deviceID := deviceIDFromChannel(msg.Channel)
		if deviceID == "" {
			continue
		}
		h.deliver(deviceID, []byte(msg.Payload))
	}
}

// Close stops the redis subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func redisChannel(deviceID string) string {
	return channelPrefix + deviceID + channelSuffix
}

func deviceIDFromChannel(ch string) string {
	// safety:{device}:updates
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
