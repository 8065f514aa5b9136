// Package export captures annotation snippets from a deep-zoom viewer and
// assembles them into a PDF report. For each annotation it steers the viewer
// back to the view the annotation was created in, waits for tiles to settle,
// and crops a marked snippet around the pin.
package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cosmic-canvas/canvas-api/internal/services/annotations"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// Options tune the capture pipeline. The defaults reproduce the interactive
// viewer's export behavior.
type Options struct {
	// SnippetSize is the edge length in pixels of the square cropped around
	// each annotation.
	SnippetSize int

	// MinTiles is how many tile-loaded events count as a settled view.
	MinTiles int

	// StabilizeTimeout bounds the wait for MinTiles; slow or sparse pyramids
	// are captured as-is once it elapses.
	StabilizeTimeout time.Duration

	// FallbackZoomRatio picks the capture zoom, as a fraction of the viewer's
	// maximum, for annotations that recorded no zoom level.
	FallbackZoomRatio float64

	// CenterTolerance and ZoomTolerance decide whether the viewer settled on
	// the requested view. One corrective re-apply is attempted on a miss.
	CenterTolerance float64
	ZoomTolerance   float64
}

// DefaultOptions returns the standard capture tuning.
func DefaultOptions() Options {
	return Options{
		SnippetSize:       500,
		MinTiles:          6,
		StabilizeTimeout:  2 * time.Second,
		FallbackZoomRatio: 0.3,
		CenterTolerance:   0.001,
		ZoomTolerance:     0.01,
	}
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	annotations annotations.Service
	opts        Options

	// busy serializes exports; a second request while one runs is refused
	// rather than queued, because both would fight over the viewer transform.
	busy sync.Mutex
}

// NewService creates a new export service. Unset option fields fall back to
// the defaults individually, so a partially populated Options (e.g. built
// from config, which does not carry the tolerances) still settles captures
// with the standard tolerances.
func NewService(annotationService annotations.Service, opts Options) Service {
	defaults := DefaultOptions()
	if opts.SnippetSize <= 0 {
		opts.SnippetSize = defaults.SnippetSize
	}
	if opts.MinTiles <= 0 {
		opts.MinTiles = defaults.MinTiles
	}
	if opts.StabilizeTimeout <= 0 {
		opts.StabilizeTimeout = defaults.StabilizeTimeout
	}
	if opts.FallbackZoomRatio <= 0 {
		opts.FallbackZoomRatio = defaults.FallbackZoomRatio
	}
	if opts.CenterTolerance <= 0 {
		opts.CenterTolerance = defaults.CenterTolerance
	}
	if opts.ZoomTolerance <= 0 {
		opts.ZoomTolerance = defaults.ZoomTolerance
	}
	return &ServiceImpl{annotations: annotationService, opts: opts}
}

// Export implements Service.
func (s *ServiceImpl) Export(ctx context.Context, viewer Viewer, imageID, imageName string, w io.Writer) (string, error) {
	records := s.annotations.List(ctx, imageID)
	if len(records) == 0 {
		return "", apperrors.New(apperrors.ErrCodeNothingToExport, "no annotations to export")
	}
	if viewer == nil || !viewer.IsOpen() {
		return "", apperrors.New(apperrors.ErrCodeViewerUnavailable, "viewer has no open image")
	}
	if !s.busy.TryLock() {
		return "", apperrors.New(apperrors.ErrCodeExportInProgress, "an export is already running")
	}
	defer s.busy.Unlock()

	origCenter := viewer.Center()
	origZoom := viewer.Zoom()
	defer func() {
		viewer.PanTo(origCenter, false)
		viewer.ZoomTo(origZoom, false)
	}()

	report := newReport(imageName, len(records))
	for i, record := range records {
		snippet, err := s.captureSnippet(ctx, viewer, record)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			log.Printf("export: capture failed for annotation %s: %v", record.ID, err)
			report.AddErrorPage(i+1, record)
			continue
		}
		report.AddAnnotationPage(i+1, record, snippet)
	}

	if err := report.Output(w); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "writing PDF report")
	}
	return Filename(imageName, time.Now()), nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds the download name for a report, slugging the image name.
func Filename(imageName string, now time.Time) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(imageName), "-"), "-")
	if slug == "" {
		slug = "image"
	}
	return fmt.Sprintf("annotations-%s-%s.pdf", slug, now.Format("2006-01-02"))
}
