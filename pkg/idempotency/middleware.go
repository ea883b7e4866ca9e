package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Header is the request header carrying the client-chosen idempotency key.
const Header = "Idempotency-Key"

const pending = "pending"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("idem:%s:%d:%d", topic, partition, offset)
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

type response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Middleware replays the first completed response for a repeated Idempotency-Key.
// scope namespaces keys, typically by route parameters. A request arriving while
// the first one is still running gets 409. Redis failures fail open. A 5xx
// response or a panic releases the key so the request can be retried.
func (s *Store) Middleware(log *slog.Logger, scope func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(Header))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			redisKey := "idem:http:" + scope(r) + ":" + key

			acquired, err := s.rdb.SetNX(ctx, redisKey, pending, s.ttl).Result()
			if err != nil {
				log.Warn("idempotency store unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				s.replay(ctx, log, w, redisKey)
				return
			}

			// Recorded even after the client disconnects.
			storeCtx := context.WithoutCancel(ctx)
			stored := false
			defer func() {
				if stored {
					return
				}
				if err := s.rdb.Del(storeCtx, redisKey).Err(); err != nil {
					log.Warn("idempotency key release failed", "key", key, "err", err)
				}
			}()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				return
			}
			raw, _ := json.Marshal(response{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err := s.rdb.Set(storeCtx, redisKey, raw, s.ttl).Err(); err != nil {
				log.Warn("idempotency response not stored", "key", key, "err", err)
				return
			}
			stored = true
		})
	}
}

func (s *Store) replay(ctx context.Context, log *slog.Logger, w http.ResponseWriter, redisKey string) {
	raw, err := s.rdb.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) || (err == nil && string(raw) == pending) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"request with this idempotency key is in progress"}`))
		return
	}
	var resp response
	if err == nil {
		err = json.Unmarshal(raw, &resp)
	}
	if err != nil {
		log.Error("idempotency replay failed", "err", err)
		http.Error(w, "idempotency replay failed", http.StatusInternalServerError)
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
