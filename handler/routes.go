package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/works", h.listWorksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/works", h.createWorkHandler)
	router.HandlerFunc(http.MethodGet, "/v1/works/:workId", h.showWorkHandler)
	router.HandlerFunc(http.MethodPut, "/v1/works/:workId", h.updateWorkHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/works/:workId", h.updateWorkHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/works/:workId", h.deleteWorkHandler)
	router.HandlerFunc(http.MethodGet, "/v1/works/:workId/editions", h.listWorkEditionsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/works/:workId/ratings", h.listWorkRatingsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/works/:workId/rating-distribution", h.ratingDistributionHandler)
	router.HandlerFunc(http.MethodGet, "/v1/works/:workId/also-loved", h.alsoLovedHandler)
	// httprouter cannot mix a static segment with :workId, so top-rated
	// lives outside the /v1/works/ subtree.
	router.HandlerFunc(http.MethodGet, "/v1/top-rated-works", h.listTopRatedWorksHandler)

	router.HandlerFunc(http.MethodGet, "/v1/editions", h.listEditionsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/editions", h.createEditionHandler)
	router.HandlerFunc(http.MethodGet, "/v1/editions/:editionId", h.showEditionHandler)
	router.HandlerFunc(http.MethodPut, "/v1/editions/:editionId", h.updateEditionHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/editions/:editionId", h.updateEditionHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/editions/:editionId", h.deleteEditionHandler)
	router.HandlerFunc(http.MethodGet, "/v1/editions/:editionId/tags", h.listEditionTagsHandler)

	router.HandlerFunc(http.MethodGet, "/v1/authors", h.listAuthorsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/authors", h.createAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:authorId", h.showAuthorHandler)
	router.HandlerFunc(http.MethodPut, "/v1/authors/:authorId", h.updateAuthorHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/authors/:authorId", h.updateAuthorHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/authors/:authorId", h.deleteAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:authorId/works", h.listAuthorWorksHandler)

	router.HandlerFunc(http.MethodGet, "/v1/work-authors", h.listWorkAuthorsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/work-authors", h.createWorkAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/v1/work-authors/:linkId", h.showWorkAuthorHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/work-authors/:linkId", h.deleteWorkAuthorHandler)

	router.HandlerFunc(http.MethodGet, "/v1/tags", h.listTagsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags/:tagId", h.showTagHandler)

	router.HandlerFunc(http.MethodGet, "/v1/ratings", h.listRatingsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/ratings", h.createRatingHandler)
	router.HandlerFunc(http.MethodGet, "/v1/ratings/:ratingId", h.showRatingHandler)
	router.HandlerFunc(http.MethodPut, "/v1/ratings/:ratingId", h.updateRatingHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/ratings/:ratingId", h.updateRatingHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/ratings/:ratingId", h.deleteRatingHandler)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.metrics(h.assignRequestID(h.recoverPanic(h.enableCORS(h.rateLimit(router)))))
}
