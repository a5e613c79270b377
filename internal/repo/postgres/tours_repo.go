package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/domain/tour"
	"github.com/Trishit-H/tourhub/internal/observability"
	"github.com/Trishit-H/tourhub/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tourColumnsSQL = `id, name, duration, max_group_size, difficulty,
	ratings_average, ratings_quantity, price, price_discount,
	summary, description, image_cover, images, start_dates, secret,
	created_at, updated_at`

type ToursRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewToursRepo(pool *pgxpool.Pool, prom *observability.Prom) *ToursRepo {
	return &ToursRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ToursRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanTour(row interface{ Scan(dest ...any) error }, t *tour.Tour) error {
	return row.Scan(
		&t.ID,
		&t.Name,
		&t.Duration,
		&t.MaxGroupSize,
		&t.Difficulty,
		&t.RatingsAverage,
		&t.RatingsQuantity,
		&t.Price,
		&t.PriceDiscount,
		&t.Summary,
		&t.Description,
		&t.ImageCover,
		&t.Images,
		&t.StartDates,
		&t.Secret,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (r *ToursRepo) Create(ctx context.Context, req tour.CreateTourRequest) (tour.Tour, error) {
	now := time.Now().UTC()

	t := tour.Tour{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Duration:        req.Duration,
		MaxGroupSize:    req.MaxGroupSize,
		Difficulty:      req.Difficulty,
		RatingsAverage:  req.RatingsAverage,
		RatingsQuantity: 0,
		Price:           req.Price,
		Summary:         req.Summary,
		Description:     req.Description,
		ImageCover:      req.ImageCover,
		Images:          req.Images,
		StartDates:      req.StartDates,
		Secret:          req.Secret,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if t.RatingsAverage == 0 {
		t.RatingsAverage = 4.5
	}
	if req.PriceDiscount > 0 {
		d := req.PriceDiscount
		t.PriceDiscount = &d
	}

	err := r.observe("tours.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tours(id, name, duration, max_group_size, difficulty,
				ratings_average, ratings_quantity, price, price_discount,
				summary, description, image_cover, images, start_dates, secret,
				created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			t.ID, t.Name, t.Duration, t.MaxGroupSize, t.Difficulty,
			t.RatingsAverage, t.RatingsQuantity, t.Price, t.PriceDiscount,
			t.Summary, t.Description, t.ImageCover, t.Images, t.StartDates, t.Secret,
			t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		return tour.Tour{}, apperr.FromDB(err, "Tour not found")
	}

	return t, nil
}

// List runs a spec-driven query. Secret tours never appear in listings.
func (r *ToursRepo) List(ctx context.Context, spec query.Spec) ([]tour.Tour, int, error) {
	conds, args, err := whereFromSpec(spec, tourColumns, 1)

	if err != nil {
		return nil, 0, err
	}

	conds = append(conds, "secret = FALSE")

	sql := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total
		FROM tours
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		tourColumnsSQL,
		strings.Join(conds, " AND "),
		orderFromSpec(spec, tourColumns),
		len(args)+1, len(args)+2,
	)

	args = append(args, spec.Limit, spec.Offset())

	var output []tour.Tour
	total := 0

	err = r.observe("tours.list", func() error {
		rows, err := r.pool.Query(ctx, sql, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]tour.Tour, 0, spec.Limit)

		for rows.Next() {
			var t tour.Tour

			err = rows.Scan(
				&t.ID, &t.Name, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
				&t.RatingsAverage, &t.RatingsQuantity, &t.Price, &t.PriceDiscount,
				&t.Summary, &t.Description, &t.ImageCover, &t.Images, &t.StartDates, &t.Secret,
				&t.CreatedAt, &t.UpdatedAt, &total,
			)

			if err != nil {
				return err
			}

			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, apperr.FromDB(err, "Tour not found")
	}

	return output, total, nil
}

func (r *ToursRepo) GetByID(ctx context.Context, id string) (tour.Tour, error) {
	var t tour.Tour

	err := r.observe("tours.get", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+tourColumnsSQL+` FROM tours WHERE id = $1`, id)
		return scanTour(row, &t)
	})

	if err != nil {
		return tour.Tour{}, apperr.FromDB(err, "No tour found with that ID")
	}

	return t, nil
}

func (r *ToursRepo) Update(ctx context.Context, id string, req tour.UpdateTourRequest) (tour.Tour, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	pos := 2

	set := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
		args = append(args, val)
		pos++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Duration != nil {
		set("duration", *req.Duration)
	}
	if req.MaxGroupSize != nil {
		set("max_group_size", *req.MaxGroupSize)
	}
	if req.Difficulty != nil {
		set("difficulty", *req.Difficulty)
	}
	if req.RatingsAverage != nil {
		set("ratings_average", *req.RatingsAverage)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.PriceDiscount != nil {
		set("price_discount", *req.PriceDiscount)
	}
	if req.Summary != nil {
		set("summary", *req.Summary)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.ImageCover != nil {
		set("image_cover", *req.ImageCover)
	}
	if req.Images != nil {
		set("images", req.Images)
	}
	if req.StartDates != nil {
		set("start_dates", req.StartDates)
	}
	if req.Secret != nil {
		set("secret", *req.Secret)
	}

	if len(sets) == 1 {
		return tour.Tour{}, apperr.BadRequest("Nothing to update")
	}

	sql := fmt.Sprintf(`UPDATE tours SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), tourColumnsSQL)

	var t tour.Tour

	err := r.observe("tours.update", func() error {
		row := r.pool.QueryRow(ctx, sql, args...)
		return scanTour(row, &t)
	})

	if err != nil {
		return tour.Tour{}, apperr.FromDB(err, "No tour found with that ID")
	}

	return t, nil
}

func (r *ToursRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("tours.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.FromDB(err, "No tour found with that ID")
	}

	if affected == 0 {
		return apperr.NotFound("No tour found with that ID")
	}

	return nil
}

// Stats aggregates visible tours per difficulty.
func (r *ToursRepo) Stats(ctx context.Context) ([]tour.Stats, error) {
	var out []tour.Stats

	err := r.observe("tours.stats", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT difficulty,
				COUNT(*) AS num_tours,
				AVG(ratings_average) AS avg_rating,
				AVG(price) AS avg_price,
				MIN(price) AS min_price,
				MAX(price) AS max_price
			FROM tours
			WHERE secret = FALSE
			GROUP BY difficulty
			ORDER BY avg_price ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var s tour.Stats

			err = rows.Scan(&s.Difficulty, &s.NumTours, &s.AvgRating, &s.AvgPrice, &s.MinPrice, &s.MaxPrice)

			if err != nil {
				return err
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, apperr.FromDB(err, "Tour not found")
	}

	return out, nil
}
