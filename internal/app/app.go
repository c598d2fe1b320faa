package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sourcing/internal/config"
	"sourcing/internal/controller"
	"sourcing/internal/notify"
	"sourcing/internal/router"
	"sourcing/internal/search"
	"sourcing/internal/service"
	"sourcing/internal/store"
	"sourcing/internal/syncer"
)

type App struct {
	store      store.Store
	index      search.Index
	syncer     *syncer.Syncer
	service    *service.Service
	controller *controller.Controller
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	app.store, err = store.Open(app.cfg)
	if err != nil {
		return nil, err
	}

	app.index, err = search.Open(context.Background(), app.cfg)
	if err != nil {
		app.store.Close()
		return nil, err
	}

	app.syncer = syncer.New(app.store, app.index, notify.NewService(app.store), app.cfg.SyncQueueSize)
	app.syncer.Start()

	app.service = service.New(app.store, app.syncer)
	app.controller = controller.NewController(app.service)

	return app, nil
}

// Run serves HTTP until an interrupt, then shuts down in dependency order:
// server first, then the synchronizer drain, then the stores.
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		log.Printf("Received signal: %s\n", sig)
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Println("Http server error:", err)
		}
	}()

	go app.runSchedules(ctx)

	log.Printf("Server started at %s, listening for connections...\n", app.cfg.ServerAddress)
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	log.Println("Shutting down http server...")
	server.Shutdown(timeout)

	app.Close()
	close(app.Done)
	log.Println("Exiting app.")
}

// runSchedules drives the recurring maintenance work: the daily expiry sweep
// and the expiring-soon warnings.
func (app *App) runSchedules(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Sweep(ctx); err != nil {
				log.Println("Expiry sweep error:", err)
			}
			if _, err := app.service.NotifyExpiring(ctx, app.cfg.ExpiringSoonWindow); err != nil {
				log.Println("Expiring-soon notify error:", err)
			}
		}
	}
}

// Sweep runs the batch expiry once and returns the moved project ids.
func (app *App) Sweep(ctx context.Context) ([]string, error) {
	return app.service.ExpireDue(ctx)
}

// Reindex rebuilds both search indices from the store of record.
func (app *App) Reindex(ctx context.Context) error {
	return search.NewIndexer(app.store, app.index).ReindexAll(ctx)
}

func (app *App) Close() error {
	log.Println("Draining synchronizer...")
	app.syncer.Close()

	log.Println("Closing store and index...")
	return errors.Join(app.store.Close(), app.index.Close())
}
