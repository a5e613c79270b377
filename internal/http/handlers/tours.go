package handlers

import (
	"context"
	"net/http"

	"github.com/Trishit-H/tourhub/internal/cache"
	"github.com/Trishit-H/tourhub/internal/domain/tour"
	"github.com/Trishit-H/tourhub/internal/query"
	"github.com/gin-gonic/gin"
)

type ToursRepository interface {
	Create(ctx context.Context, req tour.CreateTourRequest) (tour.Tour, error)
	List(ctx context.Context, spec query.Spec) ([]tour.Tour, int, error)
	GetByID(ctx context.Context, id string) (tour.Tour, error)
	Update(ctx context.Context, id string, req tour.UpdateTourRequest) (tour.Tour, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]tour.Stats, error)
}

type ToursHandler struct {
	repo      ToursRepository
	listCache *cache.Cache
}

func NewToursHandler(repo ToursRepository, listCache *cache.Cache) *ToursHandler {
	return &ToursHandler{repo: repo, listCache: listCache}
}

type cachedList struct {
	docs    any
	results int
	total   int
}

// ListTours runs the full refinement pipeline over the raw query string.
func (h *ToursHandler) ListTours(ctx *gin.Context) {
	spec := query.Parse(ctx.Request.URL.Query())
	h.list(ctx, spec, "tours:"+ctx.Request.URL.RawQuery)
}

// TopTours is the preset alias: five best-rated, cheapest first on ties.
func (h *ToursHandler) TopTours(ctx *gin.Context) {
	spec := query.New().
		Sort("-ratingsAverage,price").
		Fields("name,price,ratingsAverage,summary,difficulty").
		Paginate("1", "5")

	h.list(ctx, spec, "tours:top-5-cheap")
}

func (h *ToursHandler) list(ctx *gin.Context, spec query.Spec, cacheKey string) {
	if h.listCache != nil {
		if v, ok := h.listCache.Get(cacheKey); ok {
			if c, ok := v.(cachedList); ok {
				RespondList(ctx, c.results, c.total, gin.H{"tours": c.docs})
				return
			}
		}
	}

	tours, total, err := h.repo.List(ctx.Request.Context(), spec)

	if err != nil {
		RespondError(ctx, err)
		return
	}

	docs := shapeDocs(tours, spec)

	if h.listCache != nil {
		h.listCache.Set(cacheKey, cachedList{docs: docs, results: len(tours), total: total})
	}

	RespondList(ctx, len(tours), total, gin.H{"tours": docs})
}

func (h *ToursHandler) GetTour(ctx *gin.Context) {
	t, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"tour": t})
}

func (h *ToursHandler) CreateTour(ctx *gin.Context) {
	var req tour.CreateTourRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondError(ctx, err)
		return
	}

	h.invalidate()

	RespondData(ctx, http.StatusCreated, gin.H{"tour": t})
}

func (h *ToursHandler) UpdateTour(ctx *gin.Context) {
	var req tour.UpdateTourRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.repo.Update(ctx.Request.Context(), ctx.Param("id"), req)

	if err != nil {
		RespondError(ctx, err)
		return
	}

	h.invalidate()

	RespondData(ctx, http.StatusOK, gin.H{"tour": t})
}

func (h *ToursHandler) DeleteTour(ctx *gin.Context) {
	err := h.repo.Delete(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		RespondError(ctx, err)
		return
	}

	h.invalidate()

	ctx.Status(http.StatusNoContent)
}

func (h *ToursHandler) TourStats(ctx *gin.Context) {
	stats, err := h.repo.Stats(ctx.Request.Context())

	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"stats": stats})
}

func (h *ToursHandler) invalidate() {
	if h.listCache != nil {
		h.listCache.Clear()
	}
}
