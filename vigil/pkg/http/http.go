package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/diag"
	"nsight/vigil/pkg/mg"
	"nsight/vigil/pkg/report"

	"github.com/gin-gonic/gin"
)

type httpStore interface {
	mg.ReadingStore
	mg.AlertStore
}

// ReportProvider serves the most recently computed report per period.
type ReportProvider interface {
	Report(period string) (*report.Report, bool)
}

type HealthProvider interface {
	Health() diag.Health
}

type HttpServer struct {
	Store   httpStore
	Reports ReportProvider
	Checks  HealthProvider
	Builder *report.Builder

	Addr string
}

func New(store httpStore, reports ReportProvider, checks HealthProvider, builder *report.Builder, addr string) *HttpServer {
	return &HttpServer{
		Store:   store,
		Reports: reports,
		Checks:  checks,
		Builder: builder,
		Addr:    addr,
	}
}

// Serve blocks running the HTTP listener.
func (s *HttpServer) Serve() error {
	r := gin.Default()

	r.GET("/glucose", func(c *gin.Context) {
		end := c.DefaultQuery("end", "")
		endUnix, err := strconv.Atoi(end)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for end")
			return
		}

		start := c.DefaultQuery("start", "")
		startUnix, err := strconv.Atoi(start)
		if err != nil {
			c.String(http.StatusBadRequest, "expected unix timestamp for start")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
		defer cancel()

		readings, err := s.Store.ReadReadings(ctx, time.Unix(int64(startUnix), 0), time.Unix(int64(endUnix), 0))
		if err != nil {
			c.String(http.StatusInternalServerError, "something went wrong reading glucose: %v", err)
			return
		}

		c.JSON(http.StatusOK, readings)
	})

	r.GET("/alerts", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
		defer cancel()

		alerts, err := s.Store.ReadAlerts(ctx, time.Now().Add(defs.LookbackInterval), time.Now())
		if err != nil {
			c.String(http.StatusInternalServerError, "something went wrong reading alerts: %v", err)
			return
		}
		c.JSON(http.StatusOK, alerts)
	})

	r.GET("/report/:period", func(c *gin.Context) {
		period := c.Param("period")
		if _, ok := report.PeriodByName(period); !ok {
			c.String(http.StatusNotFound, "unknown period %q", period)
			return
		}

		rep, ok := s.Reports.Report(period)
		if !ok {
			c.String(http.StatusServiceUnavailable, "report for %q not computed yet", period)
			return
		}
		c.JSON(http.StatusOK, rep)
	})

	r.GET("/compare", func(c *gin.Context) {
		first, ok := report.PeriodByName(c.Query("first"))
		if !ok {
			c.String(http.StatusBadRequest, "unknown period for first")
			return
		}
		second, ok := report.PeriodByName(c.Query("second"))
		if !ok {
			c.String(http.StatusBadRequest, "unknown period for second")
			return
		}

		cmp, err := s.Builder.Compare(c.Request.Context(), first, second)
		if err != nil {
			c.String(http.StatusBadGateway, "unable to build comparison: %v", err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	})

	r.GET("/health", func(c *gin.Context) {
		h := s.Checks.Health()
		code := http.StatusOK
		if h.Overall != diag.LevelOK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, h)
	})

	return r.Run(s.Addr)
}
