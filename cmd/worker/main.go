package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/amazingchow/ai-teacher/internal/pkg/consul"
	"github.com/amazingchow/ai-teacher/internal/pkg/filer"
	"github.com/amazingchow/ai-teacher/internal/pkg/postgres"
	"github.com/amazingchow/ai-teacher/internal/pkg/transcriber"
	"github.com/amazingchow/ai-teacher/internal/pkg/utils"
	"github.com/amazingchow/ai-teacher/internal/pkg/worker"
	api "github.com/hashicorp/consul/api"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/color"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"
)

func main() {
	goapp.StartWithDefault()
	cfg := goapp.Config

	data := &worker.ServiceData{}
	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}

	goapp.Log.Info().Int32("max_conn", dbConfig.MaxConns).Int32("min_conn", dbConfig.MinConns).Msg("db info")

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	data.GueClient, err = gue.NewClient(pgxv5.NewConnPool(dbPool))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}
	data.WorkerCount = cfg.GetInt("worker.count")
	data.Testing = cfg.GetBool("worker.testing")
	data.Language = cfg.GetString("transcriber.language")
	data.MsgSender, err = postgres.NewSender(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}
	data.Filer, err = filer.NewLocal(cfg.GetString("filer.dir"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init filer")
	}
	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}

	data.DB = db

	ctx, cancelFunc := context.WithCancel(context.Background())
	var registryCh <-chan struct{}
	if cfg.GetString("consul.address") != "" {
		provider, err := consul.NewProvider(&api.Config{Address: cfg.GetString("consul.address")},
			cfg.GetString("transcriber.srvName"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init consul provider")
		}
		registryCh, err = provider.StartRegistryLoop(ctx, cfg.GetDuration("consul.checkInterval"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't start consul registry loop")
		}
		data.Transcribers = provider
	} else {
		provider, err := transcriber.NewStaticProvider(cfg.GetString("transcriber.url"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init transcriber")
		}
		data.Transcribers = provider
	}

	go utils.RunPerfEndpoint()

	printBanner()

	doneCh, err := worker.StartWorkerService(ctx, data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start worker service")
	}
	/////////////////////// Waiting for terminate
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
	if registryCh != nil {
		select {
		case <-registryCh:
		case <-time.After(time.Second * 2):
		}
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
    ___    ____      __                  __
   /   |  /  _/     / /____  ____ ______/ /_  ___  _____
  / /| |  / /______/ __/ _ \/ __ ` + "`" + `/ ___/ __ \/ _ \/ ___/
 / ___ |_/ /_____/ /_/  __/ /_/ / /__/ / / /  __/ /
/_/  |_/___/     \__/\___/\__,_/\___/_/ /_/\___/_/   v: %s

                      __
 _      ______  _____/ /_____  _____
| | /| / / __ \/ ___/ //_/ _ \/ ___/
| |/ |/ / /_/ / /  / ,< /  __/ /
|__/|__/\____/_/  /_/|_|\___/_/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/amazingchow/ai-teacher"))
}
