package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/moontick/lanerush/game"
)

func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(cfg *Config, w http.ResponseWriter, statusCode int, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	corsHeaders(w)
	securityHeaders(cfg, w)
	w.WriteHeader(statusCode)

	return w.Write(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type joinRequest struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

func serveStatus(cfg *Config, eng *game.Engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		written, err := writeJSON(cfg, w, http.StatusOK, eng.Status())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Status snapshot (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveJoin(cfg *Config, eng *game.Engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		var req joinRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
			return
		}
		if req.UUID == "" {
			_, _ = writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "uuid required"})
			return
		}

		receipt, err := eng.Join(req.UUID, req.Name)
		switch {
		case errors.Is(err, game.ErrGameFull):
			_, _ = writeJSON(cfg, w, http.StatusConflict, errorResponse{Error: "Game full"})
			return
		case err != nil:
			errs <- err
			_, _ = writeJSON(cfg, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		logf(cfg, "ROUND: Assigned lane %s to %s", receipt.Ball, realIP(r))

		if _, err := writeJSON(cfg, w, http.StatusOK, receipt); err != nil {
			errs <- err
		}
	}
}

func serveStart(cfg *Config, eng *game.Engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		eng.ForceStart()

		logf(cfg, "ROUND: Force start requested by %s", realIP(r))

		if _, err := writeJSON(cfg, w, http.StatusOK, okResponse{OK: true}); err != nil {
			errs <- err
		}
	}
}

func serveReset(cfg *Config, eng *game.Engine, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		eng.Reset()

		logf(cfg, "ROUND: Reset requested by %s", realIP(r))

		if _, err := writeJSON(cfg, w, http.StatusOK, okResponse{OK: true}); err != nil {
			errs <- err
		}
	}
}

// registerRoundAPI wires the polled game endpoints:
//   - GET  /status → discriminated phase snapshot (triggers catch-up)
//   - POST /join   → lane assignment, 409 when full
//   - POST /start  → bot fill + force start
//   - POST /reset  → fresh round
func registerRoundAPI(cfg *Config, eng *game.Engine, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/status", serveStatus(cfg, eng, errs))
	mux.POST(cfg.prefix+"/join", serveJoin(cfg, eng, errs))
	mux.POST(cfg.prefix+"/start", serveStart(cfg, eng, errs))
	mux.POST(cfg.prefix+"/reset", serveReset(cfg, eng, errs))
}
