package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"glowcart/internal/events"
	applog "glowcart/internal/log"
	"glowcart/internal/store"
	"glowcart/internal/validate"
)

const (
	ordersIndex    = "orders"
	orderKeyPrefix = "order:"
	orderIDLen     = 8
	idAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// createdAt layout, millisecond precision in UTC
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// ErrBadJSON wraps a body that could not be parsed. It is deliberately not a
// validation error: callers answer it as a server error.
var ErrBadJSON = errors.New("order body is not valid JSON")

// OrderService takes order submissions and serves the admin listing.
type OrderService struct {
	kv    store.Store
	pub   events.Publisher
	admin AdminAuth
	opts  validate.Options

	newID func() (string, error)
	now   func() time.Time
}

func NewOrderService(kv store.Store, pub events.Publisher, admin AdminAuth, opts validate.Options) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{kv: kv, pub: pub, admin: admin, opts: opts, newID: NewOrderID, now: time.Now}
}

// WithIDs swaps the id generator (tests use fixed ids).
func (s *OrderService) WithIDs(gen func() (string, error)) *OrderService {
	s.newID = gen
	return s
}

func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Strict reports whether payloads get field-level validation.
func (s *OrderService) Strict() bool { return s.opts.Strict }

// Create validates body and stores it as a new order, returning its id. The
// record is written before the index entry; if the index push fails the
// record is removed again. Resubmitting the same body creates another order.
func (s *OrderService) Create(ctx context.Context, body []byte) (string, error) {
	payload, err := decodeBody(body)
	if err != nil {
		return "", err
	}
	if err := validate.Order(payload, s.opts); err != nil {
		return "", err
	}
	fields := payload.(map[string]any) // validation guarantees an object

	id, err := s.freshID(ctx)
	if err != nil {
		return "", err
	}
	createdAt := s.now().UTC().Format(timestampLayout)

	record := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		record[k] = v
	}
	record["id"] = id
	record["createdAt"] = createdAt

	raw, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}
	key := orderKeyPrefix + id
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return "", fmt.Errorf("store order %s: %w", id, err)
	}
	if err := s.kv.LPush(ctx, ordersIndex, id); err != nil {
		if derr := s.kv.Del(context.WithoutCancel(ctx), key); derr != nil {
			applog.L().Error("order.compensate.fail", zap.String("order_id", id), zap.Error(derr))
		}
		return "", fmt.Errorf("index order %s: %w", id, err)
	}

	if err := s.pub.PublishOrderCreated(ctx, orderEvent(id, createdAt, fields)); err != nil {
		applog.L().Warn("order.event.fail", zap.String("order_id", id), zap.Error(err))
	}
	return id, nil
}

// List returns every readable order, newest first. Index entries whose
// record is gone or unreadable are skipped. The result is never nil.
func (s *OrderService) List(ctx context.Context, key string) ([]json.RawMessage, error) {
	if !s.admin.Check(key) {
		return nil, ErrUnauthorized
	}
	out := []json.RawMessage{}
	ids, err := s.kv.LRange(ctx, ordersIndex)
	if err != nil {
		return nil, fmt.Errorf("read order index: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKeyPrefix + id
	}
	raws, err := s.kv.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	for i, raw := range raws {
		if !isObject(raw) {
			if raw != "" {
				applog.L().Warn("order.record.corrupt", zap.String("order_id", ids[i]))
			}
			continue
		}
		out = append(out, json.RawMessage(raw))
	}
	return out, nil
}

// Reconcile drops index entries that have no record behind them and reports
// how many were removed.
func (s *OrderService) Reconcile(ctx context.Context) (int, error) {
	ids, err := s.kv.LRange(ctx, ordersIndex)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKeyPrefix + id
	}
	raws, err := s.kv.MGet(ctx, keys...)
	if err != nil {
		return 0, err
	}
	removed := 0
	for i, raw := range raws {
		if raw != "" {
			continue
		}
		n, err := s.kv.LRem(ctx, ordersIndex, ids[i])
		if err != nil {
			return removed, fmt.Errorf("drop orphan %s: %w", ids[i], err)
		}
		removed += int(n)
	}
	return removed, nil
}

// RunSweeper calls Reconcile every interval until ctx is done.
func (s *OrderService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Reconcile(ctx)
			switch {
			case err != nil && ctx.Err() == nil:
				applog.L().Error("order.sweep.fail", zap.Error(err))
			case n > 0:
				applog.L().Info("order.sweep", zap.Int("removed", n))
			}
		}
	}
}

func (s *OrderService) freshID(ctx context.Context) (string, error) {
	for i := 0; i < 3; i++ {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("order id: %w", err)
		}
		_, err = s.kv.Get(ctx, orderKeyPrefix+id)
		if errors.Is(err, store.ErrNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("order id check: %w", err)
		}
	}
	return "", errors.New("order id: too many collisions")
}

// NewOrderID returns 8 uppercase base-36 characters from crypto/rand.
func NewOrderID() (string, error) {
	out := make([]byte, 0, orderIDLen)
	buf := make([]byte, 2*orderIDLen)
	for len(out) < orderIDLen {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 252 { // 7*36; keeps the mod unbiased
				continue
			}
			out = append(out, idAlphabet[b%36])
			if len(out) == orderIDLen {
				break
			}
		}
	}
	return string(out), nil
}

// decodeBody parses a request body. A body that is itself a JSON string is
// unwrapped and parsed again. An empty body decodes to nil.
func decodeBody(body []byte) (any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
		}
		body = []byte(inner)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrBadJSON)
	}
	return v, nil
}

func isObject(raw string) bool {
	b := bytes.TrimSpace([]byte(raw))
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}

func orderEvent(id, createdAt string, body map[string]any) events.OrderCreated {
	ev := events.OrderCreated{OrderID: id, CreatedAt: createdAt}
	if items, ok := body["items"].([]any); ok {
		ev.ItemCount = len(items)
	}
	if totals, ok := body["totals"].(map[string]any); ok {
		if n, ok := totals["total"].(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				ev.Total = &f
			}
		}
	}
	return ev
}
