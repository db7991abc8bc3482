package api

import (
	"encoding/json"
	"net/http"

	"clipforge/internal/exporter"
	"clipforge/internal/media"
	"clipforge/internal/timeline"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type assetRequest struct {
	Name            string  `json:"name"`
	SourceHandle    string  `json:"source_handle"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}

type assetResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}

type clipRequest struct {
	AssetID          string  `json:"asset_id"`
	TimelinePosition float64 `json:"timeline_position"`
	TrackID          string  `json:"track_id"`
}

type cropSchema struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

type scaleSchema struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type effectsSchema struct {
	Brightness     float64      `json:"brightness"`
	Contrast       float64      `json:"contrast"`
	Saturation     float64      `json:"saturation"`
	Blur           float64      `json:"blur"`
	Sharpen        float64      `json:"sharpen"`
	Volume         float64      `json:"volume"`
	RotateDegrees  float64      `json:"rotate_degrees"`
	Flip           string       `json:"flip"`
	Crop           *cropSchema  `json:"crop,omitempty"`
	Scale          *scaleSchema `json:"scale,omitempty"`
	FadeInSeconds  float64      `json:"fade_in_seconds"`
	FadeOutSeconds float64      `json:"fade_out_seconds"`
}

type clipUpdateRequest struct {
	// Effects replaces the clip's effect set wholesale when present.
	Effects          *effectsSchema `json:"effects,omitempty"`
	TrimStart        *float64       `json:"trim_start,omitempty"`
	TrimEnd          *float64       `json:"trim_end,omitempty"`
	TimelinePosition *float64       `json:"timeline_position,omitempty"`
}

type clipResponse struct {
	ID               string        `json:"id"`
	AssetID          string        `json:"asset_id"`
	TrackID          string        `json:"track_id"`
	TrimStart        float64       `json:"trim_start"`
	TrimEnd          float64       `json:"trim_end"`
	TimelinePosition float64       `json:"timeline_position"`
	Effects          effectsSchema `json:"effects"`
}

type textLayerRequest struct {
	Text      string  `json:"text"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	FontSize  int     `json:"font_size"`
	Color     string  `json:"color"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type textLayerResponse struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	FontSize  int     `json:"font_size"`
	Color     string  `json:"color"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type timelineResponse struct {
	Clips      []clipResponse      `json:"clips"`
	TextLayers []textLayerResponse `json:"text_layers"`
	Duration   float64             `json:"duration"`
}

type previewStateResponse struct {
	CurrentTime float64 `json:"current_time"`
	Playing     bool    `json:"playing"`
}

type previewSeekRequest struct {
	Time float64 `json:"time"`
}

type exportRequest struct {
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

type artifactResponse struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	Href string `json:"href"`
}

type jobResponse struct {
	ID              string             `json:"id"`
	Format          string             `json:"format"`
	Quality         string             `json:"quality"`
	Stage           string             `json:"stage"`
	ProgressPercent int                `json:"progress_percent"`
	Artifacts       []artifactResponse `json:"artifacts,omitempty"`
	Error           string             `json:"error,omitempty"`
	LogTail         []string           `json:"log_tail,omitempty"`
	Troubleshooting []string           `json:"troubleshooting,omitempty"`
}

func assetToResponse(asset *media.Asset) assetResponse {
	return assetResponse{
		ID:              asset.ID,
		Name:            asset.Name,
		DurationSeconds: asset.DurationSeconds,
		Width:           asset.Width,
		Height:          asset.Height,
	}
}

func effectsToSchema(effects timeline.Effects) effectsSchema {
	out := effectsSchema{
		Brightness:     effects.Brightness,
		Contrast:       effects.Contrast,
		Saturation:     effects.Saturation,
		Blur:           effects.Blur,
		Sharpen:        effects.Sharpen,
		Volume:         effects.Volume,
		RotateDegrees:  effects.RotateDegrees,
		Flip:           string(effects.Flip),
		FadeInSeconds:  effects.FadeInSeconds,
		FadeOutSeconds: effects.FadeOutSeconds,
	}
	if effects.Crop != nil {
		out.Crop = &cropSchema{Width: effects.Crop.Width, Height: effects.Crop.Height, X: effects.Crop.X, Y: effects.Crop.Y}
	}
	if effects.Scale != nil {
		out.Scale = &scaleSchema{Width: effects.Scale.Width, Height: effects.Scale.Height}
	}
	return out
}

func effectsFromSchema(schema effectsSchema) timeline.Effects {
	out := timeline.Effects{
		Brightness:     schema.Brightness,
		Contrast:       schema.Contrast,
		Saturation:     schema.Saturation,
		Blur:           schema.Blur,
		Sharpen:        schema.Sharpen,
		Volume:         schema.Volume,
		RotateDegrees:  schema.RotateDegrees,
		Flip:           timeline.Flip(schema.Flip),
		FadeInSeconds:  schema.FadeInSeconds,
		FadeOutSeconds: schema.FadeOutSeconds,
	}
	if schema.Crop != nil {
		out.Crop = &timeline.Crop{Width: schema.Crop.Width, Height: schema.Crop.Height, X: schema.Crop.X, Y: schema.Crop.Y}
	}
	if schema.Scale != nil {
		out.Scale = &timeline.Scale{Width: schema.Scale.Width, Height: schema.Scale.Height}
	}
	return out
}

func clipToResponse(clip *timeline.Clip) clipResponse {
	return clipResponse{
		ID:               clip.ID,
		AssetID:          clip.Asset.ID,
		TrackID:          clip.TrackID,
		TrimStart:        clip.TrimStart,
		TrimEnd:          clip.TrimEnd,
		TimelinePosition: clip.TimelinePosition,
		Effects:          effectsToSchema(clip.Effects),
	}
}

func textLayerToResponse(layer *timeline.TextLayer) textLayerResponse {
	return textLayerResponse{
		ID:        layer.ID,
		Text:      layer.Text,
		X:         layer.X,
		Y:         layer.Y,
		FontSize:  layer.FontSize,
		Color:     layer.Color,
		StartTime: layer.StartTime,
		EndTime:   layer.EndTime,
	}
}

func jobToResponse(job exporter.Job) jobResponse {
	resp := jobResponse{
		ID:              job.ID,
		Format:          string(job.Format),
		Quality:         string(job.Quality),
		Stage:           string(job.Stage),
		ProgressPercent: job.Progress,
		Error:           job.Err,
		LogTail:         job.LogTail,
	}
	for _, artifact := range job.Artifacts {
		resp.Artifacts = append(resp.Artifacts, artifactResponse{
			Name: artifact.Name,
			Size: artifact.Size,
			Href: "/export/artifacts/" + artifact.Name,
		})
	}
	if job.Stage == exporter.StageFailed {
		resp.Troubleshooting = exporter.TroubleshootingTips
	}
	return resp
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}
