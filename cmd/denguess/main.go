package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	_ "modernc.org/sqlite"

	"github.com/denguess/denguess/internal/api"
	"github.com/denguess/denguess/internal/climate"
	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/forecast"
	"github.com/denguess/denguess/internal/ingest"
	"github.com/denguess/denguess/internal/metrics"
	"github.com/denguess/denguess/internal/model"
	"github.com/denguess/denguess/internal/store"
)

type cli struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name='env-file',help='Optional .env file to load.'"`

	DB        string `kong:"default='data/denguess.db',env='DENGUESS_DB',help='Path to the SQLite database.'"`
	Port      string `kong:"default='8080',env='PORT',help='HTTP server port.'"`
	ModelPath string `kong:"default='model/rf_dengue_model.json',env='DENGUESS_MODEL',help='Path to the classifier artifact.'"`

	ModelServer string `kong:"optional,env='DENGUESS_MODEL_SERVER',help='Base URL of a remote model server. Overrides the embedded artifact for prediction.'"`

	FTPHost   string `kong:"optional,env='DENGUESS_FTP_HOST',help='Weather bureau FTP host for bulk climate fetch.'"`
	FTPPath   string `kong:"optional,env='DENGUESS_FTP_PATH',help='Remote climate CSV path on the FTP host.'"`
	FetchOnce bool   `kong:"help='Fetch climate data from FTP once and exit.'"`
}

func main() {
	var flags cli
	kong.Parse(&flags,
		kong.Name("denguess"),
		kong.Description("Dengue outbreak forecasting service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", flags.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	if flags.FetchOnce {
		if flags.FTPHost == "" || flags.FTPPath == "" {
			log.Fatal("--fetch-once requires --ftp-host and --ftp-path")
		}
		fetchClimate(st, flags.FTPHost, flags.FTPPath)
		return
	}

	// The service stays up without a model artifact and serves fallback
	// forecasts, so a bad deploy degrades instead of crash-looping.
	var forest *model.Forest
	if f, err := model.Load(flags.ModelPath); err != nil {
		log.Printf("model artifact unavailable, serving fallbacks: %v", err)
	} else {
		forest = f
		log.Printf("model loaded: %s with %d trees, %d features",
			f.ModelType(), f.NumTrees(), len(f.FeatureNames()))
	}

	var builder *features.Builder
	var classifier model.Classifier
	if forest != nil {
		builder = features.NewBuilder(features.NewEncoder(forest.EncoderClasses()), forest.FeatureNames())
		classifier = forest
	} else {
		builder = features.NewBuilder(nil, nil)
	}
	if flags.ModelServer != "" {
		log.Printf("using remote model server at %s", flags.ModelServer)
		classifier = model.NewRemote(flags.ModelServer)
	}

	baselines := climate.NewBaselineCache(st)
	estimator := climate.NewEstimator(baselines)
	engine := forecast.NewEngine(builder, estimator, classifier)
	server := api.NewServer(st, engine, forest, baselines, flags.Port)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", flags.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func fetchClimate(st *store.Store, host, remotePath string) {
	log.Printf("fetching climate data from ftp://%s%s", host, remotePath)

	result, err := ingest.NewFTPClient(host, remotePath).Fetch()
	if err != nil {
		log.Fatalf("ftp fetch: %v", err)
	}

	inserted := 0
	for _, r := range result.Readings {
		if err := st.InsertClimateReading(r); err != nil {
			log.Printf("insert reading %s: %v", r.Date.Format("2006-01-02"), err)
			continue
		}
		inserted++
	}
	metrics.ClimateRowsIngested.WithLabelValues("climate").Add(float64(inserted))

	log.Printf("done: %d rows inserted, %d dropped, %d flagged",
		inserted, result.Dropped, result.Flagged)
}
