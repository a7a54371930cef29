package main

import (
	"context"
	"flag"
	"io"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/shapestone/shape-httpreq/internal/config"
	"github.com/shapestone/shape-httpreq/internal/metrics"
	"github.com/shapestone/shape-httpreq/pkg/adapter"
	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

const headerRequestID = "X-Request-Id"

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	ctx = withLogger(ctx, cfg, stderr)
	log := clog.FromContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	h, err := newHandler(ctx, cfg, reg)
	if err != nil {
		return err
	}

	srv := &fasthttp.Server{
		Handler:                       h.handle,
		Name:                          "httpreq",
		DisableHeaderNamesNormalizing: true,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.Address)
		errCh <- srv.ListenAndServe(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Infof("shutting down")
		return srv.Shutdown()
	}
}

// handler answers each request with its simplified record.
type handler struct {
	ctx         context.Context
	collector   *httpreq.Collector
	pretty      bool
	metricsPath string
	metrics     fasthttp.RequestHandler
}

// newHandler builds the serve handler. Body metrics are registered with reg
// and exposed at cfg.Server.MetricsPath unless it is empty.
func newHandler(ctx context.Context, cfg config.Config, reg *prometheus.Registry) (*handler, error) {
	opts := cfg.CollectorOptions()
	h := &handler{
		ctx:         ctx,
		pretty:      cfg.Server.Pretty,
		metricsPath: cfg.Server.MetricsPath,
	}

	if h.metricsPath != "" {
		m, err := metrics.New(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpreq.WithObserver(m))
		h.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	h.collector = httpreq.NewCollector(opts...)
	return h, nil
}

func (h *handler) handle(ctx *fasthttp.RequestCtx) {
	if h.metrics != nil && string(ctx.Path()) == h.metricsPath {
		h.metrics(ctx)
		return
	}

	id := uuid.NewString()
	log := clog.FromContext(h.ctx).With("request_id", id)
	ctx.Response.Header.Set(headerRequestID, id)

	req, err := h.collector.CreateFrom(clog.WithLogger(h.ctx, log), adapter.FromFastHTTP(ctx))
	if err != nil {
		log.Warnf("rejecting %s %s: %v", ctx.Method(), ctx.RequestURI(), err)
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}

	body, err := render(req, formatJSON, h.pretty)
	if err != nil {
		log.Errorf("encoding record: %v", err)
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}

	log.Infof("%s %s from %s", req.Method, req.Path, req.RequestFrom)
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}
