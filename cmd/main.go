package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/wareyard/layoutcore/collision"
	"github.com/wareyard/layoutcore/featureflag"
	layouthttp "github.com/wareyard/layoutcore/http"
	"github.com/wareyard/layoutcore/models"
	"github.com/wareyard/layoutcore/placement"
	"github.com/wareyard/layoutcore/spatial"
)

var (
	// The layoutcheck version number. Set at build.
	version = "v0.3.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "layoutcheck_info",
		Help:        "Layoutcheck information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Snapshot     string   `cli:""        env:"LAYOUTCHECK_SNAPSHOT"      help:"Path to the layout entity snapshot (JSON) to validate."`
	CellSize     float64  `cli:""        env:"LAYOUTCHECK_CELL_SIZE"     help:"Spatial grid cell size in world units."`
	LogLevel     string   `cli:""        env:"LAYOUTCHECK_LOG_LEVEL"     help:"Log level (debug|info|warning|error)."`
	LogIndent    bool     `cli:""        env:"LAYOUTCHECK_LOG_INDENT"    help:"Indent logs."`
	AdminAddr    string   `cli:",hidden" env:"LAYOUTCHECK_ADMIN_ADDR"    help:"Admin listening address for metrics and profiling. Empty runs the check and exits."`
	FeatureFlags []string `cli:",hidden" env:"LAYOUTCHECK_FEATURE_FLAGS" help:"Comma separated feature flags."`
	Version      bool     `cli:""        env:"-"                         help:"Show version."`
	Help         bool     `cli:""        env:"-"                         help:"Show help."`
}

type snapshot struct {
	Entities []*models.Entity `json:"entities"`
}

func main() {
	conf := config{
		Snapshot: "layout.json",
		CellSize: spatial.DefaultCellSize,
		LogLevel: logs.InfoLevel.String(),
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Validates every placement in a warehouse layout snapshot.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	snap, err := loadSnapshot(conf.Snapshot)
	if err != nil {
		logs.Fatal(errors.New("loading layout snapshot failed").Wrap(err))
	}

	store := models.NewEntityStore()
	store.Hydrate(snap.Entities)

	detector := collision.NewDetector(store,
		collision.WithCellSize(conf.CellSize),
		collision.WithFeatureFlags(featureflag.New(conf.FeatureFlags)),
	)
	detector.Initialize(store.List())

	validator := placement.NewValidator(store, detector)

	logs.WithTag("version", version).
		WithTag("snapshot", conf.Snapshot).
		WithTag("entity_count", len(snap.Entities)).
		WithTag("cell_size", conf.CellSize).
		Info("checking layout")

	var invalid int
	for _, e := range store.List() {
		if e.Deleted {
			continue
		}

		verdict := validator.ValidatePlacement(e.ID, models.BlockFromEntity(e), e.ParentID)
		if verdict.Valid {
			continue
		}
		invalid++
		logs.WithTag("entity_id", e.ID).
			WithTag("entity_name", e.DisplayName()).
			WithTag("entity_type", e.Type).
			WithTag("parent_id", e.ParentID).
			WithTag("reason", verdict.Reason).
			Warn("invalid placement")
	}

	for floorID, info := range detector.Stats() {
		logs.WithTag("floor_id", floorID).
			WithTag("cell_count", info.CellCount).
			WithTag("entity_count", info.EntityCount).
			Debug("floor grid")
	}

	logs.WithTag("invalid_count", invalid).
		Info("layout checked")

	if conf.AdminAddr != "" {
		var admin http.ServeMux
		admin.Handle("/metrics", promhttp.Handler())
		admin.HandleFunc("/health", layouthttp.HandleHealthCheck)
		admin.HandleFunc("/version", layouthttp.HandleVersion(version))
		admin.HandleFunc("/debug/pprof/", pprof.Index)
		admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
		admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
		admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
		admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))

		layouthttp.ListenAndServe(ctx,
			&http.Server{Addr: conf.AdminAddr, Handler: &admin},
		)
	}

	if invalid > 0 {
		os.Exit(1)
	}
}

func loadSnapshot(filename string) (snapshot, error) {
	var snap snapshot

	b, err := os.ReadFile(filename)
	if err != nil {
		return snap, errors.New("reading snapshot file failed").
			WithTag("file_name", filename).
			Wrap(err)
	}

	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, errors.New("decoding snapshot failed").
			WithTag("file_name", filename).
			Wrap(err)
	}
	return snap, nil
}
