package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emzola/bookrating/config"
	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/data/dto"
	"github.com/emzola/bookrating/internal/jsonlog"
	"github.com/emzola/bookrating/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService stubs the service methods used by these tests. Anything else
// panics on the nil embedded interface.
type fakeService struct {
	service.Service

	createRating  func(dto.CreateRatingRequestBody) (*data.Rating, error)
	alsoLoved     func(int64) ([]*data.WorkWithFanCount, error)
	distribution  func(int64) (*data.RatingDistribution, error)
	listWorks     func(dto.QsListWorks) ([]*data.Work, error)
	topRatedWorks func(dto.QsListWorks) ([]*data.Work, error)
}

func (f *fakeService) CreateRating(body dto.CreateRatingRequestBody) (*data.Rating, error) {
	return f.createRating(body)
}

func (f *fakeService) AlsoLoved(workID int64) ([]*data.WorkWithFanCount, error) {
	return f.alsoLoved(workID)
}

func (f *fakeService) RatingDistribution(workID int64) (*data.RatingDistribution, error) {
	return f.distribution(workID)
}

func (f *fakeService) ListWorks(qs dto.QsListWorks) ([]*data.Work, error) {
	return f.listWorks(qs)
}

func (f *fakeService) ListTopRatedWorks(qs dto.QsListWorks) ([]*data.Work, error) {
	return f.topRatedWorks(qs)
}

func newTestRoutes(t *testing.T, svc service.Service) http.Handler {
	t.Helper()
	var cfg config.Config
	cfg.Server.Env = "testing"
	cfg.BasicAuth.Username = "admin"
	cfg.BasicAuth.Password = "secret"
	return New(cfg, jsonlog.New(io.Discard, jsonlog.LevelOff), svc).Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateRatingHandler(t *testing.T) {
	svc := &fakeService{
		createRating: func(body dto.CreateRatingRequestBody) (*data.Rating, error) {
			switch string(body.Rating) {
			case "6":
				return nil, &service.ValidationError{Errors: map[string]string{"rating": "must be between 0 and 5"}}
			case "2":
				return nil, &service.ValidationError{Errors: map[string]string{service.NonFieldErrors: "the fields user_id, edition must make a unique set"}}
			}
			return &data.Rating{ID: 11, UserID: body.UserID, EditionID: body.EditionID, Rating: 4}, nil
		},
	}
	routes := newTestRoutes(t, svc)

	t.Run("created", func(t *testing.T) {
		rec := do(t, routes, http.MethodPost, "/v1/ratings", `{"user_id": 7, "edition": 3, "rating": 4}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/v1/ratings/11", rec.Header().Get("Location"))
		body := decodeBody(t, rec)
		assert.Equal(t, map[string]any{"id": 11.0, "user_id": 7.0, "edition": 3.0, "rating": 4.0}, body["rating"])
	})

	t.Run("out of range", func(t *testing.T) {
		rec := do(t, routes, http.MethodPost, "/v1/ratings", `{"user_id": 7, "edition": 3, "rating": 6}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, map[string]any{"rating": "must be between 0 and 5"}, body["error"])
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := do(t, routes, http.MethodPost, "/v1/ratings", `{"user_id": 7, "edition": 3, "rating": 2}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], service.NonFieldErrors)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, routes, http.MethodPost, "/v1/ratings", `{"user_id": 7,`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := do(t, routes, http.MethodPost, "/v1/ratings", `{"user": 7}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown key")
	})
}

func TestRatingDistributionHandler(t *testing.T) {
	avg := 4.25
	svc := &fakeService{
		distribution: func(workID int64) (*data.RatingDistribution, error) {
			if workID != 1 {
				return nil, service.ErrRecordNotFound
			}
			return &data.RatingDistribution{
				WorkID:    1,
				Average:   &avg,
				Total:     4,
				Histogram: data.RatingHistogram{{Rating: 3, Count: 1}, {Rating: 4, Count: 1}, {Rating: 5, Count: 2}},
			}, nil
		},
	}
	routes := newTestRoutes(t, svc)

	rec := do(t, routes, http.MethodGet, "/v1/works/1/rating-distribution", "")
	require.Equal(t, http.StatusOK, rec.Code)
	compact := strings.Join(strings.Fields(rec.Body.String()), "")
	assert.Contains(t, compact, `"histogram":{"3":1,"4":1,"5":2}`)
	assert.Contains(t, compact, `"average":4.25`)

	rec = do(t, routes, http.MethodGet, "/v1/works/2/rating-distribution", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, routes, http.MethodGet, "/v1/works/abc/rating-distribution", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlsoLovedHandler(t *testing.T) {
	svc := &fakeService{
		alsoLoved: func(workID int64) ([]*data.WorkWithFanCount, error) {
			return []*data.WorkWithFanCount{
				{ID: 6, Title: "Acclaimed", AvgRating: 4.5, FiveStarCount: 3},
				{ID: 5, Title: "Popular", AvgRating: 4.2, FiveStarCount: 10},
			}, nil
		},
	}
	routes := newTestRoutes(t, svc)

	rec := do(t, routes, http.MethodGet, "/v1/works/1/also-loved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Works []data.WorkWithFanCount `json:"works"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Works, 2)
	assert.EqualValues(t, 6, body.Works[0].ID)
	assert.EqualValues(t, 10, body.Works[1].FiveStarCount)
}

func TestListWorksHandler_Filters(t *testing.T) {
	var got dto.QsListWorks
	svc := &fakeService{
		listWorks: func(qs dto.QsListWorks) ([]*data.Work, error) {
			got = qs
			return []*data.Work{}, nil
		},
		topRatedWorks: func(qs dto.QsListWorks) ([]*data.Work, error) {
			got = qs
			return []*data.Work{}, nil
		},
	}
	routes := newTestRoutes(t, svc)

	rec := do(t, routes, http.MethodGet, "/v1/top-rated-works?min_rating=4&author=rowl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.MinRating)
	assert.Equal(t, 4.0, *got.MinRating)
	assert.Equal(t, "rowl", got.Author)

	rec = do(t, routes, http.MethodGet, "/v1/works", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.MinRating)

	rec = do(t, routes, http.MethodGet, "/v1/works?min_rating=high", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRoutes_Ambient(t *testing.T) {
	routes := newTestRoutes(t, &fakeService{})

	rec := do(t, routes, http.MethodGet, "/v1/healthcheck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, routes, http.MethodGet, "/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, routes, http.MethodPost, "/v1/healthcheck", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, routes, http.MethodGet, "/debug/vars", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
