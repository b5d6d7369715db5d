package service

import (
	"sort"

	"github.com/emzola/bookrating/data"
	"github.com/jellydator/ttlcache/v3"
)

type aggregates interface {
	AlsoLoved(workID int64) ([]*data.WorkWithFanCount, error)
	RatingDistribution(workID int64) (*data.RatingDistribution, error)
}

// AlsoLoved service lists the works that fans of workID also rated five
// stars, each with the number of distinct fans that did so. The work itself
// never appears. A work without fans yields an empty list.
func (s *service) AlsoLoved(workID int64) ([]*data.WorkWithFanCount, error) {
	if _, err := s.repo.GetWork(workID); err != nil {
		return nil, notFound(err)
	}
	if item := s.alsoLoved.Get(workID); item != nil {
		return item.Value(), nil
	}
	counts, err := s.repo.GetFanOverlapCounts(workID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(counts))
	for id, count := range counts {
		if id != workID && count > 0 {
			ids = append(ids, id)
		}
	}
	works, err := s.repo.GetWorksByIDs(ids)
	if err != nil {
		return nil, err
	}
	result := rankAlsoLoved(workID, works, counts)
	s.alsoLoved.Set(workID, result, ttlcache.DefaultTTL)
	return result, nil
}

// rankAlsoLoved joins works with their fan counts and orders them by average
// rating, then fan count, both descending. Ties fall back to ascending ID.
func rankAlsoLoved(workID int64, works []*data.Work, counts map[int64]int64) []*data.WorkWithFanCount {
	result := make([]*data.WorkWithFanCount, 0, len(works))
	for _, w := range works {
		count := counts[w.ID]
		if w.ID == workID || count <= 0 {
			continue
		}
		result = append(result, &data.WorkWithFanCount{
			ID:            w.ID,
			Title:         w.Title,
			AvgRating:     w.AvgRating,
			FiveStarCount: count,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if a.FiveStarCount != b.FiveStarCount {
			return a.FiveStarCount > b.FiveStarCount
		}
		return a.ID < b.ID
	})
	return result
}

// RatingDistribution service summarises the ratings of all editions of a
// work: rounded mean, total and an ascending histogram.
func (s *service) RatingDistribution(workID int64) (*data.RatingDistribution, error) {
	if _, err := s.repo.GetWork(workID); err != nil {
		return nil, notFound(err)
	}
	if item := s.distributions.Get(workID); item != nil {
		return item.Value(), nil
	}
	buckets, err := s.repo.GetRatingBuckets(workID)
	if err != nil {
		return nil, err
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Rating < buckets[j].Rating })
	dist := data.NewRatingDistribution(workID, buckets)
	s.distributions.Set(workID, dist, ttlcache.DefaultTTL)
	return dist, nil
}
