// Command corehost wires a production runtime.Environment, the composite
// Application model, and a Runtime, then serves a read-only model snapshot
// plus a Prometheus /metrics endpoint. It is a headless harness, not a UI:
// flag-parse, wire collaborators, serve, wait for a shutdown signal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/addonify/core/internal/config"
	"github.com/addonify/core/internal/corelog"
	"github.com/addonify/core/internal/httpenv"
	"github.com/addonify/core/internal/models"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/storage"
)

var log = corelog.New("corehost")

func main() {
	envFile := flag.String("envfile", ".env", "optional .env file to source before reading process config")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Warn("load env file %s: %v", *envFile, err)
	}
	cfg := config.Load()

	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		log.Error("open storage %s: %v", cfg.StoragePath, err)
		os.Exit(1)
	}
	defer store.Close()

	env := httpenv.New(store, cfg.APIURL)

	app := models.New()
	settings, err := cfg.LoadSettings()
	if err != nil {
		log.Warn("load settings overlay: %v", err)
	} else {
		app.Ctx.Profile.Settings = settings
	}

	rt := runtime.New(app, env, cfg.ChannelCapacity)
	go drainNotifications(rt)

	mux := http.NewServeMux()
	mux.HandleFunc("/state", stateHandler(rt))
	mux.HandleFunc("/dispatch", dispatchHandler(rt))
	mux.Handle("/metrics", promhttp.Handler())

	addr := cfg.ListenAddr
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != addr {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
				log.Error("metrics listener on %s: %v", cfg.MetricsAddr, err)
			}
		}()
	}

	log.Info("listening on %s", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("http: %v", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}

// drainNotifications keeps the Runtime's outbound channel from filling up
// when nothing else is subscribed; it just logs NewModel/Event activity.
func drainNotifications(rt *runtime.Runtime) {
	for n := range rt.Notifications() {
		if n.Event != nil {
			log.Info("event %T", n.Event)
		}
	}
}

// stateHandler returns the current model snapshot as JSON — a read-only
// debugging view, not a stable API (no UI rendering is in scope).
func stateHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rt.Model()); err != nil {
			log.Error("encode state: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// dispatchRequest names one msg.Action variant a caller wants applied.
// The msg taxonomy is closed, so only the variants switched on in
// decodeAction are reachable through this endpoint.
type dispatchRequest struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

func dispatchHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		action, err := decodeAction(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rt.Dispatch(r.Context(), action)
		w.WriteHeader(http.StatusAccepted)
	}
}

func decodeAction(req dispatchRequest) (msg.Action, error) {
	switch req.Action {
	case "LoadContinueWatching":
		return msg.ActionLoadContinueWatching{}, nil
	case "LoadNotifications":
		return msg.ActionLoadNotifications{}, nil
	case "Unload":
		var a msg.ActionUnload
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &a); err != nil {
				return nil, err
			}
		}
		return a, nil
	case "LoadCatalogWithFilters":
		var a msg.ActionLoadCatalogWithFilters
		if err := json.Unmarshal(req.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	case "LoadLibraryWithFilters":
		var a msg.ActionLoadLibraryWithFilters
		if err := json.Unmarshal(req.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}
}
