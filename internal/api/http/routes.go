package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/emissions-explorer/internal/chart"
	"github.com/i474232898/emissions-explorer/internal/export"
	"github.com/i474232898/emissions-explorer/internal/indicators"
)

var validate = validator.New()

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultMetric is
// served when a request names no metric.
func RegisterRoutes(app *fiber.App, service *indicators.Service, defaultMetric string) {
	v1 := app.Group("/api/v1")

	v1.Get("/metrics", func(c *fiber.Ctx) error {
		metrics, err := service.Metrics()
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"metrics": metrics,
			"default": defaultMetric,
			"regions": service.Regions(),
		})
	})

	v1.Get("/metrics/world", func(c *fiber.Ctx) error {
		q, err := parseMetricQuery(c, defaultMetric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		series, err := service.WorldSeries(q.Metric)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"metric": q.Metric,
			"entity": indicators.WorldEntity,
			"series": series,
		})
	})

	v1.Get("/metrics/regions", func(c *fiber.Ctx) error {
		q, err := parseMetricQuery(c, defaultMetric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		matrix, err := service.RegionMatrix(q.Metric)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"metric":  q.Metric,
			"regions": matrix,
		})
	})

	v1.Get("/metrics/view", func(c *fiber.Ctx) error {
		q, err := parseMetricQuery(c, defaultMetric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := service.View(q.Metric)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"metric":    view.Metric,
			"world":     view.World,
			"regions":   view.Regions,
			"stackable": chart.Stackable(view.Metric),
			"traces":    chart.BuildTraces(view),
		})
	})

	v1.Get("/metrics/chart.png", func(c *fiber.Ctx) error {
		q, err := parseMetricQuery(c, defaultMetric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := service.View(q.Metric)
		if err != nil {
			return toFiberError(err)
		}
		return sendPNG(c, chart.Figure{Title: view.Metric, Traces: chart.BuildTraces(view)})
	})

	v1.Get("/metrics/export.xlsx", func(c *fiber.Ctx) error {
		q, err := parseMetricQuery(c, defaultMetric)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := service.View(q.Metric)
		if err != nil {
			return toFiberError(err)
		}

		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, view); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build workbook")
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "metric.xlsx"))
		return c.Send(buf.Bytes())
	})

	v1.Get("/figures/ghg", func(c *fiber.Ctx) error {
		ds, err := service.Dataset()
		if err != nil {
			return toFiberError(err)
		}
		fig, err := chart.Composite(ds, "Greenhouse gas emissions", "CO2 equivalent (kt)", chart.GreenhouseGasParts())
		if err != nil {
			return toFiberError(err)
		}
		if c.Query("format") == "png" {
			return sendPNG(c, fig)
		}
		return c.JSON(fig)
	})

	v1.Get("/entities/:entity", func(c *fiber.Ctx) error {
		var q entityQuery
		if err := q.bind(c, defaultMetric); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		series, err := service.EntitySeries(q.Entity, q.Metric.Metric)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{
			"metric": q.Metric.Metric,
			"entity": q.Entity,
			"series": series,
		})
	})
}

func sendPNG(c *fiber.Ctx, fig chart.Figure) error {
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, fig); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

// toFiberError maps lookup failures to 404 and an unloaded dataset to 503.
func toFiberError(err error) error {
	switch {
	case errors.Is(err, indicators.ErrMetricNotFound), errors.Is(err, indicators.ErrEntityNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, indicators.ErrNotLoaded):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read indicator data")
	}
}

// metricQuery holds the selected metric display name.
type metricQuery struct {
	Metric string `validate:"required,max=512"`
}

func parseMetricQuery(c *fiber.Ctx, defaultMetric string) (metricQuery, error) {
	var q metricQuery

	q.Metric = c.Query("metric", defaultMetric)

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// entityQuery holds the path and query parameters of the entity endpoint.
type entityQuery struct {
	Entity string `validate:"required,max=256"`
	Metric metricQuery
}

func (e *entityQuery) bind(c *fiber.Ctx, defaultMetric string) error {
	entity, err := url.PathUnescape(c.Params("entity"))
	if err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}
	e.Entity = entity

	m, err := parseMetricQuery(c, defaultMetric)
	if err != nil {
		return err
	}
	e.Metric = m

	return validate.Struct(e)
}
