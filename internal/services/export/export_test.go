package export

import (
	"bytes"
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	"github.com/cosmic-canvas/canvas-api/internal/services/annotations"
	"github.com/cosmic-canvas/canvas-api/internal/services/viewport"
	"github.com/cosmic-canvas/canvas-api/internal/storage"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// fakeViewer settles instantly: every transform lands exactly where it was
// asked, and ForceRedraw emits a burst of tile-loaded events.
type fakeViewer struct {
	mu       sync.Mutex
	open     bool
	center   viewport.Point
	zoom     float64
	maxZoom  float64
	handlers map[viewport.Event][]func()

	tilesPerRedraw int
	frameErr       error
	frameGate      chan struct{}
}

func newFakeViewer() *fakeViewer {
	return &fakeViewer{
		open:           true,
		center:         viewport.Point{X: 0.5, Y: 0.5},
		zoom:           1,
		maxZoom:        10,
		handlers:       map[viewport.Event][]func(){},
		tilesPerRedraw: 8,
	}
}

func (v *fakeViewer) IsOpen() bool { return v.open }

func (v *fakeViewer) Center() viewport.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}
func (v *fakeViewer) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}
func (v *fakeViewer) MaxZoom() float64 { return v.maxZoom }

func (v *fakeViewer) Rotation() float64 { return 0 }

func (v *fakeViewer) AspectRatio() float64 { return 1 }

func (v *fakeViewer) ContainerSize() (int, int) { return 800, 800 }

func (v *fakeViewer) PanTo(center viewport.Point, _ bool) {
	v.mu.Lock()
	v.center = center
	v.mu.Unlock()
}

func (v *fakeViewer) ZoomTo(zoom float64, _ bool) {
	if zoom > v.maxZoom {
		zoom = v.maxZoom
	}
	v.mu.Lock()
	v.zoom = zoom
	v.mu.Unlock()
}

func (v *fakeViewer) Subscribe(event viewport.Event, fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handlers[event] = append(v.handlers[event], fn)
	return func() {}
}

func (v *fakeViewer) ForceRedraw() {
	v.mu.Lock()
	fns := append([]func(){}, v.handlers[viewport.EventTileLoaded]...)
	n := v.tilesPerRedraw
	v.mu.Unlock()

	go func() {
		for i := 0; i < n; i++ {
			for _, fn := range fns {
				fn()
			}
		}
	}()
}

func (v *fakeViewer) Frame() (*image.RGBA, error) {
	if v.frameGate != nil {
		<-v.frameGate
	}
	if v.frameErr != nil {
		return nil, v.frameErr
	}
	return image.NewRGBA(image.Rect(0, 0, 800, 800)), nil
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.StabilizeTimeout = 100 * time.Millisecond
	return opts
}

func seededService(t *testing.T, count int) annotations.Service {
	t.Helper()
	svc := annotations.NewService(annotations.NewRepository(storage.NewMemory()))
	zoom := 2.5
	for i := 0; i < count; i++ {
		text := ""
		if i == 0 {
			text = "Crater A"
		}
		_, err := svc.Create(context.Background(), "mars", 0.2706, 0.0581, text, "", &zoom)
		require.NoError(t, err)
	}
	return svc
}

func TestExportBuildsReport(t *testing.T) {
	svc := NewService(seededService(t, 2), testOptions())
	viewer := newFakeViewer()

	var buf bytes.Buffer
	filename, err := svc.Export(context.Background(), viewer, "mars", "Mars Surface", &buf)
	require.NoError(t, err)

	assert.Regexp(t, `^annotations-mars-surface-\d{4}-\d{2}-\d{2}\.pdf$`, filename)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	// The viewer transform is back where it started.
	assert.Equal(t, viewport.Point{X: 0.5, Y: 0.5}, viewer.Center())
	assert.Equal(t, 1.0, viewer.Zoom())
}

// driftingViewer lands off target, the way a real viewer does when a
// transform arrives mid animation. settleAfter bounds how many pans drift;
// past it the viewer lands exactly where asked.
type driftingViewer struct {
	*fakeViewer
	settleAfter int
	panCalls    int
}

func (v *driftingViewer) PanTo(center viewport.Point, animate bool) {
	v.mu.Lock()
	v.panCalls++
	drift := v.panCalls <= v.settleAfter
	v.mu.Unlock()

	if drift {
		center.X += 0.05
	}
	v.fakeViewer.PanTo(center, animate)
}

func (v *driftingViewer) pans() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panCalls
}

func TestExportCorrectsOffTargetViewOnce(t *testing.T) {
	t.Run("settles after one corrective re-apply", func(t *testing.T) {
		svc := NewService(seededService(t, 1), testOptions())
		viewer := &driftingViewer{fakeViewer: newFakeViewer(), settleAfter: 1}

		var buf bytes.Buffer
		_, err := svc.Export(context.Background(), viewer, "mars", "Mars", &buf)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

		// One miss, one corrective re-apply, one restore.
		assert.Equal(t, 3, viewer.pans())
	})

	t.Run("captures as-is when the viewer never settles", func(t *testing.T) {
		svc := NewService(seededService(t, 1), testOptions())
		viewer := &driftingViewer{fakeViewer: newFakeViewer(), settleAfter: 1 << 30}

		var buf bytes.Buffer
		_, err := svc.Export(context.Background(), viewer, "mars", "Mars", &buf)
		require.NoError(t, err, "a view that never settles is captured as-is, not failed")
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

		// The re-apply is bounded at one: two capture pans plus the restore,
		// no matter how long the viewer keeps drifting.
		assert.Equal(t, 3, viewer.pans())
	})
}

func TestNewServiceDefaultsUnsetOptions(t *testing.T) {
	// The server config carries no tolerance settings, so the options built
	// from it leave both zero; they must not reach the settle check as-is.
	svc := NewService(seededService(t, 0), Options{
		SnippetSize:       500,
		MinTiles:          6,
		StabilizeTimeout:  2 * time.Second,
		FallbackZoomRatio: 0.3,
	})

	opts := svc.(*ServiceImpl).opts
	defaults := DefaultOptions()
	assert.Equal(t, defaults.CenterTolerance, opts.CenterTolerance)
	assert.Equal(t, defaults.ZoomTolerance, opts.ZoomTolerance)
	assert.Equal(t, 500, opts.SnippetSize, "populated fields are kept")
}

func TestExportWithNoAnnotations(t *testing.T) {
	svc := NewService(seededService(t, 0), testOptions())

	_, err := svc.Export(context.Background(), newFakeViewer(), "mars", "Mars", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNothingToExport, apperrors.GetCode(err))
}

func TestExportWithoutViewer(t *testing.T) {
	svc := NewService(seededService(t, 1), testOptions())

	_, err := svc.Export(context.Background(), nil, "mars", "Mars", &bytes.Buffer{})
	assert.Equal(t, apperrors.ErrCodeViewerUnavailable, apperrors.GetCode(err))

	closed := newFakeViewer()
	closed.open = false
	_, err = svc.Export(context.Background(), closed, "mars", "Mars", &bytes.Buffer{})
	assert.Equal(t, apperrors.ErrCodeViewerUnavailable, apperrors.GetCode(err))
}

func TestExportRefusesConcurrentRun(t *testing.T) {
	svc := NewService(seededService(t, 1), testOptions())

	slow := newFakeViewer()
	slow.frameGate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Export(context.Background(), slow, "mars", "Mars", &bytes.Buffer{})
		done <- err
	}()

	// The first export is parked in Frame; a second one must be refused.
	require.Eventually(t, func() bool {
		_, err := svc.Export(context.Background(), newFakeViewer(), "mars", "Mars", &bytes.Buffer{})
		return apperrors.GetCode(err) == apperrors.ErrCodeExportInProgress
	}, time.Second, 10*time.Millisecond)

	close(slow.frameGate)
	require.NoError(t, <-done)
}

func TestExportContinuesPastCaptureFailure(t *testing.T) {
	svc := NewService(seededService(t, 2), testOptions())

	viewer := newFakeViewer()
	viewer.frameErr = apperrors.New(apperrors.ErrCodeViewerUnavailable, "no frame rendered yet")

	var buf bytes.Buffer
	_, err := svc.Export(context.Background(), viewer, "mars", "Mars", &buf)
	require.NoError(t, err, "capture failures become error pages, not export failures")
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportSurvivesSilentViewer(t *testing.T) {
	svc := NewService(seededService(t, 1), testOptions())

	// No tile-loaded events at all: the stabilization wait must time out and
	// the capture proceed with whatever frame exists.
	viewer := newFakeViewer()
	viewer.tilesPerRedraw = 0

	var buf bytes.Buffer
	start := time.Now()
	_, err := svc.Export(context.Background(), viewer, "mars", "Mars", &buf)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExportHonorsCancellation(t *testing.T) {
	opts := testOptions()
	opts.StabilizeTimeout = time.Minute
	svc := NewService(seededService(t, 1), opts)

	viewer := newFakeViewer()
	viewer.tilesPerRedraw = 0

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Export(ctx, viewer, "mars", "Mars", &bytes.Buffer{})
	assert.Equal(t, apperrors.ErrCodeCaptureTimeout, apperrors.GetCode(err))
}

func TestReportPageLayout(t *testing.T) {
	zoom := 2.5
	records := []models.Annotation{
		{ID: "a1", ImageID: "mars", X: 0.2706, Y: 0.0581, Text: "Crater A", Color: "#ef4444", Timestamp: 1700000000000, ZoomLevel: &zoom},
		{ID: "a2", ImageID: "mars", X: 0.5, Y: 0.5, Text: "", Color: models.DefaultPinColor, Timestamp: 1700000000000},
	}

	snippet := encodeTestSnippet(t)
	report := newReport("Mars Surface", len(records))
	report.AddAnnotationPage(1, records[0], snippet)
	report.AddErrorPage(2, records[1])

	assert.Equal(t, 3, report.PageCount(), "title page plus one page per annotation")

	var buf bytes.Buffer
	require.NoError(t, report.Output(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func encodeTestSnippet(t *testing.T) []byte {
	t.Helper()
	s := &ServiceImpl{opts: DefaultOptions()}
	out, err := s.captureSnippetImage(image.NewRGBA(image.Rect(0, 0, 800, 800)), models.DefaultPinColor)
	require.NoError(t, err)
	return out
}

func TestFilenameSlugging(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "annotations-mars-surface-2026-08-29.pdf", Filename("Mars Surface", now))
	assert.Equal(t, "annotations-m101-spiral-galaxy-2026-08-29.pdf", Filename("M101: Spiral / Galaxy!", now))
	assert.Equal(t, "annotations-image-2026-08-29.pdf", Filename("***", now))
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#ef4444")
	assert.Equal(t, [3]uint8{0xef, 0x44, 0x44}, [3]uint8{r, g, b})

	r, g, b = hexToRGB("garbage")
	assert.Equal(t, [3]uint8{59, 130, 246}, [3]uint8{r, g, b})
}
