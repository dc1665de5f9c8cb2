// Package httpapi exposes the render pipeline over HTTP. It is the seam the
// interactive UI consumes; nothing here is part of the pipeline core.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sekaiwx/vissrview/internal/fetch"
	"github.com/sekaiwx/vissrview/internal/pipeline"
	"github.com/sekaiwx/vissrview/internal/satellite"
	"github.com/sekaiwx/vissrview/internal/vissr"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, p *pipeline.Pipeline) {
	v1 := app.Group("/api/v1")

	v1.Get("/image", func(c *fiber.Ctx) error {
		req, err := parseImageQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		artifact, err := p.Render(c.Context(), req.instant)
		if err != nil {
			return mapPipelineError(err)
		}

		var buf bytes.Buffer
		name := fmt.Sprintf("VISSR_%s_UTC", req.instant.UTC().Format("20060102_1500"))
		switch req.Format {
		case "jpeg", "jpg":
			if err := artifact.EncodeJPEG(&buf, req.Quality); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to encode image")
			}
			c.Set(fiber.HeaderContentType, "image/jpeg")
			name += ".jpg"
		default:
			if err := artifact.EncodePNG(&buf); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to encode image")
			}
			c.Set(fiber.HeaderContentType, "image/png")
			name += ".png"
		}
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+name+`"`)
		return c.Send(buf.Bytes())
	})
}

// imageQuery holds the validated request parameters. Either a single `time`
// parameter or the positional year/month/day/hour set is accepted.
type imageQuery struct {
	Year    int    `validate:"required,min=1995,max=2005"`
	Month   int    `validate:"required,min=1,max=12"`
	Day     int    `validate:"required,min=1,max=31"`
	Hour    int    `validate:"min=0,max=23"`
	Format  string `validate:"omitempty,oneof=png jpeg jpg"`
	Quality int    `validate:"min=1,max=100"`

	instant time.Time
}

func parseImageQuery(c *fiber.Ctx) (imageQuery, error) {
	q := imageQuery{
		Format:  c.Query("format", "png"),
		Quality: c.QueryInt("quality", 90),
	}

	if ts := c.Query("time"); ts != "" {
		instant, err := parseTime(ts)
		if err != nil {
			return q, err
		}
		q.instant = instant.UTC()
		q.Year, q.Month, q.Day, q.Hour = q.instant.Year(), int(q.instant.Month()), q.instant.Day(), q.instant.Hour()
	} else {
		q.Year = c.QueryInt("year")
		q.Month = c.QueryInt("month")
		q.Day = c.QueryInt("day")
		q.Hour = c.QueryInt("hour")
		q.instant = time.Date(q.Year, time.Month(q.Month), q.Day, q.Hour, 0, 0, 0, time.UTC)
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

// mapPipelineError translates the pipeline's error taxonomy into HTTP
// status codes. The structured detail stays in the body; presentation is
// the UI's concern.
func mapPipelineError(err error) error {
	var (
		oob      *satellite.OutOfCoverageError
		notFound *fetch.NotFoundError
		retr     *fetch.RetrievalError
		corrupt  *fetch.CorruptArchiveError
		decode   *vissr.DecodeError
	)
	switch {
	case errors.As(err, &oob):
		return fiber.NewError(fiber.StatusBadRequest, oob.Error())
	case errors.As(err, &notFound):
		return fiber.NewError(fiber.StatusNotFound, notFound.Error())
	case errors.As(err, &retr):
		return fiber.NewError(fiber.StatusBadGateway, retr.Error())
	case errors.As(err, &corrupt):
		return fiber.NewError(fiber.StatusBadGateway, corrupt.Error())
	case errors.As(err, &decode):
		return fiber.NewError(fiber.StatusBadGateway, decode.Error())
	case errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusRequestTimeout, "request canceled")
	default:
		// LocatorError and anything unclassified: internal.
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
