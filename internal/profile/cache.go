package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// DefaultCacheTTL è la durata di vita delle voci di cache dei profili.
const DefaultCacheTTL = 5 * time.Minute

// errCacheMiss segnala l'assenza della chiave nella cache.
var errCacheMiss = errors.New("cache miss")

// keyValueClient è il sottoinsieme di operazioni chiave-valore usato dalla
// cache; nei test viene sostituito da una mappa in memoria.
type keyValueClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// redisKV adatta go-redis all'interfaccia keyValueClient.
type redisKV struct {
	client *redis.Client
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errCacheMiss
	}
	return v, err
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// CachedStore è un decoratore read-through sullo store dei profili: le
// letture passano da redis con TTL, i load concorrenti dello stesso business
// vengono deduplicati con singleflight. L'invalidazione è esplicita: chi
// modifica il profilo chiama Invalidate.
type CachedStore struct {
	inner  Store
	kv     keyValueClient
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedStore decora lo store con la cache redis.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		inner:  inner,
		kv:     &redisKV{client: client},
		ttl:    ttl,
		logger: logger,
	}
}

// LoadProfile legge dalla cache, con fallback sullo store interno. Un errore
// della cache non è mai fatale: degrada a lettura diretta.
func (s *CachedStore) LoadProfile(ctx context.Context, businessID string) (*model.BusinessProfile, error) {
	key := cacheKey(businessID)

	if raw, err := s.kv.Get(ctx, key); err == nil {
		var profile model.BusinessProfile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			return &profile, nil
		}
		// Voce corrotta: si rimuove e si ricarica.
		_ = s.kv.Del(ctx, key)
	} else if err != errCacheMiss {
		s.logger.Warn("Profile cache read failed", zap.String("business_id", businessID), zap.Error(err))
	}

	v, err, _ := s.group.Do(businessID, func() (any, error) {
		profile, err := s.inner.LoadProfile(ctx, businessID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return (*model.BusinessProfile)(nil), nil
		}

		if raw, err := json.Marshal(profile); err == nil {
			if err := s.kv.Set(ctx, key, string(raw), s.ttl); err != nil {
				s.logger.Warn("Profile cache write failed", zap.String("business_id", businessID), zap.Error(err))
			}
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.BusinessProfile), nil
}

// Invalidate rimuove la voce di cache del business. Va chiamata dopo ogni
// modifica al profilo: fino ad allora le letture possono servire la versione
// precedente, al massimo per il TTL.
func (s *CachedStore) Invalidate(ctx context.Context, businessID string) error {
	if err := s.kv.Del(ctx, cacheKey(businessID)); err != nil {
		return fmt.Errorf("invalidate profile %s: %w", businessID, err)
	}
	return nil
}

func cacheKey(businessID string) string {
	return "profile:" + businessID
}
