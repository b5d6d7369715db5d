package service

import (
	"time"

	"github.com/emzola/bookrating/config"
	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/repository"
	"github.com/jellydator/ttlcache/v3"
)

type Service interface {
	works
	editions
	authors
	workAuthors
	tags
	ratings
	aggregates
}

// Services defines a service layer.
type service struct {
	config        config.Config
	logger        *jsonlog.Logger
	repo          repository.Repository
	alsoLoved     *ttlcache.Cache[int64, []*data.WorkWithFanCount]
	distributions *ttlcache.Cache[int64, *data.RatingDistribution]
}

const defaultCacheTTL = 5 * time.Minute

// New creates a new instance of Service. Aggregate results are cached for
// cfg.Cache.TTL; an unparsable TTL falls back to five minutes.
func New(cfg config.Config, logger *jsonlog.Logger, repo repository.Repository) *service {
	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil || ttl <= 0 {
		logger.PrintInfo("using default cache ttl", map[string]string{"configured": cfg.Cache.TTL})
		ttl = defaultCacheTTL
	}
	s := &service{
		config:        cfg,
		logger:        logger,
		repo:          repo,
		alsoLoved:     ttlcache.New(ttlcache.WithTTL[int64, []*data.WorkWithFanCount](ttl)),
		distributions: ttlcache.New(ttlcache.WithTTL[int64, *data.RatingDistribution](ttl)),
	}
	go s.alsoLoved.Start()
	go s.distributions.Start()
	return s
}

// Shutdown stops the cache expiry loops.
func (s *service) Shutdown() {
	s.alsoLoved.Stop()
	s.distributions.Stop()
}

// invalidateAggregates drops cached aggregates after a write that can change
// them. Rating writes through the API are rare, so everything is dropped.
func (s *service) invalidateAggregates() {
	s.alsoLoved.DeleteAll()
	s.distributions.DeleteAll()
}
