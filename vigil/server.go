package vigil

import (
	"context"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/diag"
	vhttp "nsight/vigil/pkg/http"
	"nsight/vigil/pkg/mg"
	"nsight/vigil/pkg/nightscout"
	"nsight/vigil/pkg/ranges"
	"nsight/vigil/pkg/report"

	"go.uber.org/zap"
)

const (
	defaultHTTPAddr = ":4242"
	monitorTimeout  = 10 * time.Second
)

type Server struct {
	Nightscout *nightscout.Client
	Store      *mg.MongoStore
	Stats      *StatsUpdater
	Monitor    *Monitor
	DDNS       *diag.DDNS
	HTTP       *vhttp.HttpServer

	Logger   *zap.Logger
	Location *time.Location

	glucoseConfig defs.GlucoseConfig
	ddnsInterval  time.Duration
}

func New(config defs.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defs.TimeoutInterval)
	defer cancel()

	var err error

	loc := time.Local
	if config.Timezone != "" {
		loc, err = time.LoadLocation(config.Timezone)
		if err != nil {
			return nil, err
		}
	}

	ms, err := mg.New(ctx, config.Mongo, defs.DefaultDB, config.Logger)
	if err != nil {
		return nil, err
	}

	client := nightscout.New(config.Nightscout.URL, config.Nightscout.APISecret, config.Logger)

	tables := ranges.Defaults()
	if config.RangesFile != "" {
		tables, err = ranges.Load(config.RangesFile)
		if err != nil {
			return nil, err
		}
	}

	builder := &report.Builder{
		Source:  client,
		Tables:  tables,
		Glucose: config.Glucose,
		Logger:  config.Logger,
	}

	su := &StatsUpdater{Builder: builder, Logger: config.Logger}
	mon := &Monitor{
		Checker: &diag.Checker{Source: client, Logger: config.Logger},
		Logger:  config.Logger,
	}

	var ddns *diag.DDNS
	ddnsInterval := time.Duration(config.DDNS.Interval) * time.Hour
	if config.DDNS.Enabled {
		ddns = diag.NewDDNS(config.DDNS.UpdateURL, config.Logger)
		if ddnsInterval <= 0 {
			ddnsInterval = 24 * time.Hour
		}
	}

	addr := config.HTTPAddr
	if addr == "" {
		addr = defaultHTTPAddr
	}
	hs := vhttp.New(ms, su, mon, builder, addr)

	config.Logger.Debug("finished server setup", zap.Any("config", config))

	return &Server{
		Nightscout:   client,
		Store:        ms,
		Stats:        su,
		Monitor:      mon,
		DDNS:         ddns,
		HTTP:         hs,
		Logger:        config.Logger,
		Location:      loc,
		glucoseConfig: config.Glucose,
		ddnsInterval:  ddnsInterval,
	}, nil
}

func (s *Server) ExecuteTask(interval time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for ; true; <-ticker.C {
		task()
	}
}

func (s *Server) FetchUploadReadings() {
	f := Fetcher{Source: s.Nightscout, Store: s.Store, Logger: s.Logger}
	if err := f.FetchAndLoad(); err != nil {
		s.Logger.Debug("unable to fetch and load", zap.Error(err))
	}
}

func (s *Server) UpdateReports() {
	if err := s.Stats.UpdateAll(); err != nil {
		s.Logger.Debug("unable to update reports", zap.Error(err))
	}
}

func (s *Server) AnalyzeGlucose() {
	a := Alerter{Store: s.Store, Logger: s.Logger, GlucoseConfig: s.glucoseConfig}
	if err := a.AnalyzeGlucose(); err != nil {
		s.Logger.Debug("unable to analyze glucose", zap.Error(err))
	}
}

func (s *Server) CheckHealth() {
	s.Monitor.RunCheck()
}

func (s *Server) UpdateDDNS() {
	ctx, cancel := context.WithTimeout(context.Background(), monitorTimeout)
	defer cancel()
	if err := s.DDNS.Update(ctx); err != nil {
		s.Logger.Warn("ddns update failed", zap.Error(err))
	}
}

// Run wires the server and drives its periodic tasks until the HTTP
// listener stops.
func Run(config defs.Config) {
	s, err := New(config)
	if err != nil {
		panic(err)
	}

	if err := s.Nightscout.TestConnection(context.Background()); err != nil {
		s.Logger.Warn("nightscout connection test failed", zap.Error(err))
	}

	go s.ExecuteTask(defs.FetcherInterval, s.FetchUploadReadings)
	go s.ExecuteTask(defs.FetcherInterval, s.AnalyzeGlucose)
	go s.ExecuteTask(defs.StatsInterval, s.UpdateReports)
	go s.ExecuteTask(defs.MonitorInterval, s.CheckHealth)
	if s.DDNS != nil {
		go s.ExecuteTask(s.ddnsInterval, s.UpdateDDNS)
	}

	if err := s.HTTP.Serve(); err != nil {
		panic(err)
	}
}
