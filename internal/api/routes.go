package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/exporter"
	"clipforge/internal/preview"
	"clipforge/internal/timeline"
)

// NewRouter builds the chi router with all editing and export routes
func NewRouter(cfg *ServerConfig) *chi.Mux {
	if cfg.Preview == nil {
		cfg.Preview = preview.NewPlayer(30)
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler())

	r.Post("/assets", addAssetHandler(cfg))
	r.Get("/assets", listAssetsHandler(cfg))

	r.Get("/timeline", timelineHandler(cfg))
	r.Post("/clips", addClipHandler(cfg))
	r.Patch("/clips/{id}", updateClipHandler(cfg))
	r.Delete("/clips/{id}", removeClipHandler(cfg))
	r.Post("/text-layers", addTextLayerHandler(cfg))
	r.Delete("/text-layers/{id}", removeTextLayerHandler(cfg))

	r.Get("/preview", previewStateHandler(cfg))
	r.Post("/preview/play", previewPlayHandler(cfg))
	r.Post("/preview/pause", previewPauseHandler(cfg))
	r.Post("/preview/stop", previewStopHandler(cfg))
	r.Post("/preview/seek", previewSeekHandler(cfg))

	r.Post("/export", startExportHandler(cfg))
	r.Get("/export/job", exportJobHandler(cfg))
	r.Get("/export/artifacts/{name}", artifactHandler(cfg))

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: Version})
	}
}

func addAssetHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		asset, err := cfg.Library.Register(req.Name, req.SourceHandle, req.DurationSeconds, req.Width, req.Height)
		cfg.editMu.Unlock()
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		WriteJSON(w, http.StatusCreated, assetToResponse(asset))
	}
}

func listAssetsHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets := cfg.Library.All()
		out := make([]assetResponse, 0, len(assets))
		for _, asset := range assets {
			out = append(out, assetToResponse(asset))
		}
		WriteJSON(w, http.StatusOK, out)
	}
}

func timelineHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.editMu.Lock()
		defer cfg.editMu.Unlock()

		resp := timelineResponse{
			Clips:      make([]clipResponse, 0),
			TextLayers: make([]textLayerResponse, 0),
			Duration:   cfg.Timeline.Duration(),
		}
		for _, clip := range cfg.Timeline.Clips() {
			resp.Clips = append(resp.Clips, clipToResponse(clip))
		}
		for _, layer := range cfg.Timeline.TextLayers() {
			resp.TextLayers = append(resp.TextLayers, textLayerToResponse(layer))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func addClipHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		defer cfg.editMu.Unlock()

		asset := cfg.Library.Find(req.AssetID)
		if asset == nil {
			WriteError(w, http.StatusNotFound, "asset not found")
			return
		}

		clip, err := cfg.Timeline.AddClip(asset, req.TimelinePosition, req.TrackID)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		WriteJSON(w, http.StatusCreated, clipToResponse(clip))
	}
}

func updateClipHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clipID := chi.URLParam(r, "id")

		var req clipUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		defer cfg.editMu.Unlock()

		clip := cfg.Timeline.FindClip(clipID)
		if clip == nil {
			WriteError(w, http.StatusNotFound, "clip not found")
			return
		}

		if req.TrimStart != nil || req.TrimEnd != nil {
			trimStart := clip.TrimStart
			trimEnd := clip.TrimEnd
			if req.TrimStart != nil {
				trimStart = *req.TrimStart
			}
			if req.TrimEnd != nil {
				trimEnd = *req.TrimEnd
			}
			if err := cfg.Timeline.Retrim(clipID, trimStart, trimEnd); err != nil {
				WriteError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}

		if req.TimelinePosition != nil {
			if err := cfg.Timeline.MoveClip(clipID, *req.TimelinePosition); err != nil {
				WriteError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}

		if req.Effects != nil {
			if err := cfg.Timeline.UpdateClipEffects(clipID, effectsFromSchema(*req.Effects)); err != nil {
				WriteError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}

		WriteJSON(w, http.StatusOK, clipToResponse(clip))
	}
}

func removeClipHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clipID := chi.URLParam(r, "id")

		cfg.editMu.Lock()
		defer cfg.editMu.Unlock()

		// The model removes silently; the API distinguishes for callers.
		if cfg.Timeline.FindClip(clipID) == nil {
			WriteError(w, http.StatusNotFound, "clip not found")
			return
		}
		cfg.Timeline.RemoveClip(clipID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func addTextLayerHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textLayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		layer, err := cfg.Timeline.AddTextLayer(timeline.TextLayerParams{
			Text:      req.Text,
			X:         req.X,
			Y:         req.Y,
			FontSize:  req.FontSize,
			Color:     req.Color,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		cfg.editMu.Unlock()
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		WriteJSON(w, http.StatusCreated, textLayerToResponse(layer))
	}
}

func removeTextLayerHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layerID := chi.URLParam(r, "id")

		cfg.editMu.Lock()
		cfg.Timeline.RemoveTextLayer(layerID)
		cfg.editMu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

func previewStateHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, previewStateResponse{
			CurrentTime: cfg.Preview.CurrentTime(),
			Playing:     cfg.Preview.Playing(),
		})
	}
}

func previewPlayHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.editMu.Lock()
		cfg.Preview.SetDuration(cfg.Timeline.Duration())
		cfg.editMu.Unlock()

		cfg.Preview.Play()
		w.WriteHeader(http.StatusNoContent)
	}
}

func previewPauseHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Preview.Pause()
		w.WriteHeader(http.StatusNoContent)
	}
}

func previewStopHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Preview.Stop()
		w.WriteHeader(http.StatusNoContent)
	}
}

func previewSeekHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req previewSeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		cfg.Preview.SetDuration(cfg.Timeline.Duration())
		cfg.editMu.Unlock()

		cfg.Preview.SeekTo(req.Time)
		WriteJSON(w, http.StatusOK, previewStateResponse{
			CurrentTime: cfg.Preview.CurrentTime(),
			Playing:     cfg.Preview.Playing(),
		})
	}
}

func startExportHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg.editMu.Lock()
		snap := cfg.Timeline.Snapshot()
		cfg.editMu.Unlock()

		job, err := cfg.Exporter.Start(r.Context(), snap, exporter.Request{
			Format:  exporter.Format(req.Format),
			Quality: exporter.Quality(req.Quality),
		})
		switch {
		case errors.Is(err, exporter.ErrExportInFlight):
			WriteError(w, http.StatusConflict, err.Error())
			return
		case errors.Is(err, exporter.ErrNoClips):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		WriteJSON(w, http.StatusAccepted, jobToResponse(job))
	}
}

func exportJobHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := cfg.Exporter.Job()
		if !ok {
			WriteError(w, http.StatusNotFound, "no export has been started")
			return
		}
		WriteJSON(w, http.StatusOK, jobToResponse(job))
	}
}

func artifactHandler(cfg *ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		data, err := cfg.Exporter.ReadArtifact(name)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", "attachment; filename="+name)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
