package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"GeoSuite/internal/auth"
	"GeoSuite/internal/calc/batch"
	"GeoSuite/internal/calc/bearing"
	"GeoSuite/internal/calc/earth"
	"GeoSuite/internal/calc/footing"
	"GeoSuite/internal/calc/importer"
	"GeoSuite/internal/calc/report"
	"GeoSuite/internal/calc/settlement"
	"GeoSuite/internal/calc/slope"
	"GeoSuite/internal/calc/triaxial"
	"GeoSuite/internal/config"
	"GeoSuite/internal/history"
	"GeoSuite/internal/log"
	"GeoSuite/internal/render"
	"GeoSuite/internal/repo"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, store *repo.Store) {
	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: store, SecureCookie: cfg.TLS()}
	rec := &history.Recorder{Store: store}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.LoginHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	slopeH := &slope.Handler{History: rec}
	batchH := &batch.Handler{History: rec}
	importH := &importer.Handler{History: rec}
	reportH := &report.Handler{}
	bearingH := &bearing.Handler{History: rec}
	earthH := &earth.Handler{History: rec}
	triaxialH := &triaxial.Handler{History: rec}
	settlementH := &settlement.Handler{History: rec}
	footingH := &footing.Handler{History: rec}
	plotH := &render.Handler{}
	historyH := &history.Handler{Store: store}

	secureApi.HandleFunc("/tools/slope/calc", slopeH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/slope/plot", plotH.Slope).Methods("POST")
	secureApi.HandleFunc("/tools/slope/report", reportH.Slope).Methods("POST")
	secureApi.HandleFunc("/tools/slope/batch", batchH.Slope).Methods("POST")
	secureApi.HandleFunc("/tools/slope/search", batchH.Search).Methods("POST")
	secureApi.HandleFunc("/tools/slope/import", importH.Slope).Methods("POST")
	secureApi.HandleFunc("/tools/slope/export", importH.Export).Methods("POST")

	secureApi.HandleFunc("/tools/bearing/calc", bearingH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/earth/calc", earthH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/earth/plot", plotH.Earth).Methods("POST")
	secureApi.HandleFunc("/tools/triaxial/calc", triaxialH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/triaxial/plot", plotH.Triaxial).Methods("POST")
	secureApi.HandleFunc("/tools/settlement/calc", settlementH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/settlement/plot", plotH.Settlement).Methods("POST")
	secureApi.HandleFunc("/tools/footing/calc", footingH.Calc).Methods("POST")

	secureApi.HandleFunc("/history", historyH.List).Methods("GET")
	secureApi.HandleFunc("/history/{id}", historyH.Get).Methods("GET")

	mainFileServer := http.FileServer(http.Dir(cfg.StaticDir))
	mux.PathPrefix("/").
		Handler(mainFileServer)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := repo.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	mux := mux.NewRouter()
	HandleList(mux, cfg, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			log.Infow("starting server", "addr", cfg.ListenAddr, "tls", true)
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			log.Infow("starting server", "addr", cfg.ListenAddr, "tls", false)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	wg.Wait()
	log.Info("server stopped")
}
