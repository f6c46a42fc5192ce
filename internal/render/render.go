// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/tile"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/units"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// TileSource provides cached tile images. *tilecache.Cache implements it.
type TileSource interface {
	Get(ctx context.Context, t tile.Tile) (string, error)
	Prefetch(ctx context.Context, tiles []tile.Tile) error
	Newest(tiles []tile.Tile) time.Time
	Dir() string
	IgnoreCache() bool
}

// Photo is a geotagged image to mark on the map.
type Photo struct {
	Path  string
	Coord geo.Coord
}

// Options configures a Renderer.
type Options struct {
	StrokeWidth int
	Legend      bool

	// Output is the image name; frames get a "-{fx}x{fy}" suffix.
	Output string

	// FrameX and FrameY are tiles per frame; zero renders one image.
	FrameX int
	FrameY int

	// MaxTiles limits the tiles of one image; zero means tile.MaxTiles.
	MaxTiles int
}

// Renderer draws maps.
type Renderer struct {
	tiles     TileSource
	waypoints *waypoint.Store
	opts      Options

	labelFace  font.Face
	legendFace font.Face
}

// New returns a Renderer. waypoints may be nil.
func New(tiles TileSource, waypoints *waypoint.Store, opts Options) (*Renderer, error) {
	if opts.StrokeWidth < 1 {
		opts.StrokeWidth = 1
	}
	if opts.Output == "" {
		opts.Output = "output.png"
	}
	if opts.MaxTiles <= 0 {
		opts.MaxTiles = tile.MaxTiles
	}
	if (opts.FrameX > 0) != (opts.FrameY > 0) {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.FrameX, opts.FrameY)
	}
	if _, err := outputFormat(opts.Output); err != nil {
		return nil, err
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &Renderer{
		tiles:      tiles,
		waypoints:  waypoints,
		opts:       opts,
		labelFace:  truetype.NewFace(f, &truetype.Options{Size: waypointFontSize}),
		legendFace: truetype.NewFace(f, &truetype.Options{Size: legendFontSize}),
	}, nil
}

// Render draws the extent, split into frames when configured, and returns
// the written file names.
func (r *Renderer) Render(ctx context.Context, e tile.Extent, traces []*trace.Activity, photos []Photo) ([]string, error) {
	if r.opts.FrameX == 0 {
		out, err := r.renderImage(ctx, e, OutputName(r.opts.Output, ""), traces, photos)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	grown, frames, err := tile.Frames(e, r.opts.FrameX, r.opts.FrameY)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().
		Str("extent", grown.Name()).
		Int("frames", len(frames)).
		Msg("Rendering frames")

	outputs := make([]string, 0, len(frames))
	for _, f := range frames {
		out, err := r.renderImage(ctx, f.Extent, OutputName(r.opts.Output, f.Suffix()), traces, photos)
		if err != nil {
			return outputs, fmt.Errorf("frame %dx%d: %w", f.FX, f.FY, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// renderImage draws one image of extent e to name.
func (r *Renderer) renderImage(ctx context.Context, e tile.Extent, name string, traces []*trace.Activity, photos []Photo) (string, error) {
	if err := e.CheckLimit(r.opts.MaxTiles); err != nil {
		return "", err
	}

	base, err := r.baseMap(ctx, e)
	if err != nil {
		return "", err
	}

	dc := gg.NewContext(e.PixelWidth(), e.PixelHeight())
	dc.DrawImage(base, 0, 0)

	for i, a := range traces {
		r.drawTrace(dc, e, a, TraceColor(i, len(traces)))
	}
	r.drawWaypoints(dc, e)
	r.drawPhotos(dc, e, photos)

	img := dc.Image()
	if r.opts.Legend && len(traces) > 0 {
		img = r.withLegend(img, traces)
	}

	if err := writeImage(name, img); err != nil {
		return "", err
	}
	metrics.RecordFrame()
	logging.Ctx(ctx).Info().Str("file", name).Msg("Map image ready")
	return name, nil
}

// BaseMapPath returns where the base map of e is kept.
func (r *Renderer) BaseMapPath(e tile.Extent) string {
	return filepath.Join(r.tiles.Dir(), e.Name()+".png")
}

// baseMap fetches the tiles of e and returns the assembled base map,
// reusing the stored one when it is still current.
func (r *Renderer) baseMap(ctx context.Context, e tile.Extent) (image.Image, error) {
	tiles := e.Tiles()
	if err := r.tiles.Prefetch(ctx, tiles); err != nil {
		return nil, err
	}

	path := r.BaseMapPath(e)
	if !needsRebuild(path, r.tiles.Newest(tiles), r.tiles.IgnoreCache()) {
		img, err := gg.LoadImage(path)
		if err == nil {
			logging.Debug().Str("file", path).Msg("Base map already exists")
			return img, nil
		}
		logging.Warn().Err(err).Str("file", path).Msg("Rebuilding unreadable base map")
	}

	logging.Ctx(ctx).Info().Int("tiles", len(tiles)).Str("file", path).Msg("Assembling base map")
	dst := image.NewRGBA(image.Rect(0, 0, e.PixelWidth(), e.PixelHeight()))
	for _, t := range tiles {
		tp, err := r.tiles.Get(ctx, t)
		if err != nil {
			return nil, err
		}
		src, err := gg.LoadImage(tp)
		if err != nil {
			return nil, fmt.Errorf("decode tile %s: %w", t, err)
		}
		at := image.Pt((t.X-e.MinX)*tile.Size, (t.Y-e.MinY)*tile.Size)
		draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(image.Pt(tile.Size, tile.Size))}, src, src.Bounds().Min, draw.Src)
	}

	if err := writeImage(path, dst); err != nil {
		return nil, fmt.Errorf("store base map: %w", err)
	}
	return dst, nil
}

// needsRebuild reports whether the base map at path must be assembled again.
func needsRebuild(path string, newestTile time.Time, ignoreCache bool) bool {
	if ignoreCache {
		return true
	}
	fi, err := os.Stat(path)
	if err != nil {
		return true
	}
	return fi.ModTime().Before(newestTile)
}

func (r *Renderer) drawTrace(dc *gg.Context, e tile.Extent, a *trace.Activity, c color.Color) {
	var pts []image.Point
	for _, p := range a.Positions() {
		x, y := e.Pixel(p)
		pts = append(pts, image.Pt(x, y))
	}
	pts = thinPoints(pts, r.opts.StrokeWidth)
	if len(pts) < 2 {
		return
	}

	dc.SetColor(c)
	dc.SetLineWidth(float64(r.opts.StrokeWidth))
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.MoveTo(float64(pts[0].X), float64(pts[0].Y))
	for _, p := range pts[1:] {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.Stroke()
}

func (r *Renderer) drawWaypoints(dc *gg.Context, e tile.Extent) {
	if r.waypoints == nil {
		return
	}
	idx := r.waypoints.TileIndex(e.Zoom)
	dc.SetFontFace(r.labelFace)
	for _, t := range e.Tiles() {
		for _, id := range idx[t] {
			w, ok := r.waypoints.Get(id)
			if !ok {
				continue
			}
			px, py := e.PixelOnTile(w.Coord, t)
			x, y := float64(px), float64(py)

			dc.DrawCircle(x, y, waypointRadius)
			dc.SetColor(waypointFill)
			dc.FillPreserve()
			dc.SetColor(waypointStroke)
			dc.SetLineWidth(waypointStrokeWidth)
			dc.Stroke()

			dc.SetColor(waypointText)
			dc.DrawString(id, x+waypointLabelDX, y+waypointLabelDY)
		}
	}
}

func (r *Renderer) drawPhotos(dc *gg.Context, e tile.Extent, photos []Photo) {
	for _, p := range photos {
		if !e.Contains(tile.FromCoord(p.Coord, e.Zoom)) {
			continue
		}
		px, py := e.Pixel(p.Coord)
		dc.DrawCircle(float64(px), float64(py), photoRadius)
		dc.SetColor(photoFill)
		dc.FillPreserve()
		dc.SetColor(photoStroke)
		dc.SetLineWidth(2)
		dc.Stroke()
	}
}

// withLegend appends one strip per trace below img:
// "file start elevation-gain-ft" on the trace colour.
func (r *Renderer) withLegend(img image.Image, traces []*trace.Activity) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	dc := gg.NewContext(w, h+legendHeight*len(traces))
	dc.DrawImage(img, 0, 0)
	dc.SetFontFace(r.legendFace)

	for i, a := range traces {
		top := float64(h + i*legendHeight)
		dc.SetColor(TraceColor(i, len(traces)))
		dc.DrawRectangle(0, top, float64(w), legendHeight)
		dc.Fill()

		dc.SetColor(legendText)
		dc.DrawStringAnchored(LegendText(a), float64(w)/2, top+legendHeight/2, 0.5, 0.5)
	}
	return dc.Image()
}

// LegendText is the legend line of a trace.
func LegendText(a *trace.Activity) string {
	return fmt.Sprintf("%s %s %.0f", filepath.Base(a.Path), a.StartID, units.MetersToFeet(a.ElevationGain()))
}

// writeImage encodes img by the extension of name, through a temporary file.
func writeImage(name string, img image.Image) error {
	format, err := outputFormat(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(name)
	f, err := os.CreateTemp(dir, ".render-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	tmp := f.Name()

	switch format {
	case "jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, name)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
