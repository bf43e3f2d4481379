package buddha

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Status is the lifecycle state of a render job.
type Status uint8

const (
	StatusPending Status = iota
	StatusRunning
	StatusCancelled
	StatusComplete
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCancelled:
		return "cancelled"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Metrics summarizes a completed render.
type Metrics struct {
	Elapsed          time.Duration
	SamplesPerSecond float64
	MemoryBytes      uint64 // accumulation buffer footprint
}

// Callbacks delivered to the host. All three are invoked from the job's own
// goroutine, strictly in order; no progress report ever follows the
// completion or failure report.
type (
	ProgressFunc func(progress float64, maxDensity float32)
	CompleteFunc func(buf *Buffer)
	ErrorFunc    func(err error)
)

// Controller owns render parameters, the viewport interaction surface and
// the lifecycle of render jobs. At most one job runs at a time; starting a
// new one supersedes (cancels) the previous one. Construct one per rendering
// surface and hand it to whatever UI layer needs it; there is no package
// singleton.
type Controller struct {
	width  int
	height int

	mu     sync.Mutex
	params Params
	gen    uint64 // last issued job id, monotonic
	cur    *Job
}

// maxRenderCells bounds the histogram size. Batch hit lists carry flat cell
// indices as int32, and upscaled exports re-render at up to 3x the controller
// resolution, so (3*width)*(3*height) must stay within int32.
const maxRenderCells = math.MaxInt32 / 9

// NewController creates a controller rendering at the given resolution with
// DefaultParams pending.
func NewController(width, height int) (*Controller, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resolution %dx%d", ErrInvalidParameters, width, height)
	}
	if uint64(width)*uint64(height) > maxRenderCells {
		return nil, fmt.Errorf("%w: resolution %dx%d exceeds %d cells", ErrInvalidParameters, width, height, int64(maxRenderCells))
	}
	return &Controller{width: width, height: height, params: DefaultParams}, nil
}

// SetParameters validates and stores pending parameters. A running job is
// unaffected; parameters are captured when Render starts.
func (c *Controller) SetParameters(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.params = p
	c.mu.Unlock()
	return nil
}

// Parameters returns the pending parameters.
func (c *Controller) Parameters() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// LoadPreset merges a named preset into the pending parameters.
func (c *Controller) LoadPreset(name string) error {
	p, err := PresetByName(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.params = p
	c.mu.Unlock()
	return nil
}

// Viewport derives the current mapping from pending parameters.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportLocked()
}

func (c *Controller) viewportLocked() Viewport {
	return Viewport{
		Width:   c.width,
		Height:  c.height,
		Zoom:    c.params.Zoom,
		CenterX: c.params.CenterX,
		CenterY: c.params.CenterY,
	}
}

// ZoomIn multiplies the pending zoom by factor (> 1 zooms in).
func (c *Controller) ZoomIn(factor float64) error {
	if !(factor > 0) {
		return fmt.Errorf("%w: zoom factor must be > 0", ErrInvalidParameters)
	}
	c.mu.Lock()
	c.params.Zoom *= factor
	c.mu.Unlock()
	return nil
}

// ZoomOut divides the pending zoom by factor.
func (c *Controller) ZoomOut(factor float64) error {
	if !(factor > 0) {
		return fmt.Errorf("%w: zoom factor must be > 0", ErrInvalidParameters)
	}
	c.mu.Lock()
	c.params.Zoom /= factor
	c.mu.Unlock()
	return nil
}

// PanTo recenters the pending view on the given pixel of the current view.
func (c *Controller) PanTo(screenX, screenY int) {
	c.mu.Lock()
	center := c.viewportLocked().ToComplex(screenX, screenY)
	c.params.CenterX = real(center)
	c.params.CenterY = imag(center)
	c.mu.Unlock()
}

// ResetView restores the default zoom and center, keeping the pending
// iteration/sample counts and color scheme.
func (c *Controller) ResetView() {
	c.mu.Lock()
	c.params.Zoom = DefaultParams.Zoom
	c.params.CenterX = DefaultParams.CenterX
	c.params.CenterY = DefaultParams.CenterY
	c.mu.Unlock()
}

// Render validates the pending parameters, supersedes any running job and
// starts a new one on a background goroutine. Validation failures are
// returned synchronously and leave the previous job running. Any callback
// may be nil.
func (c *Controller) Render(onProgress ProgressFunc, onComplete CompleteFunc, onError ErrorFunc) (*Job, error) {
	c.mu.Lock()
	p := c.params
	if err := p.Validate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.gen++
	j := newJob(c.gen, p, c.width, c.height)
	prev := c.cur
	c.cur = j
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	logger().Info("render job started",
		"job", j.id, "samples", p.Samples, "iterations", p.Iterations, "zoom", p.Zoom)

	go j.run(onProgress, onComplete, onError)
	return j, nil
}

// Preview rasterizes the current job's buffer, in progress or complete,
// with the job's own color scheme. Returns ErrNotComplete when there is no
// job or its buffer has been discarded.
func (c *Controller) Preview() (*image.RGBA, error) {
	c.mu.Lock()
	j := c.cur
	c.mu.Unlock()
	if j == nil {
		return nil, fmt.Errorf("no render job: %w", ErrNotComplete)
	}
	return j.snapshot()
}

// Metrics returns performance figures for the current job. Valid only after
// the job reached Complete.
func (c *Controller) Metrics() (Metrics, error) {
	c.mu.Lock()
	j := c.cur
	c.mu.Unlock()
	if j == nil {
		return Metrics{}, fmt.Errorf("no render job: %w", ErrNotComplete)
	}
	return j.Metrics()
}

// Job is one render: a generation id, immutable parameters and the buffer
// being accumulated. The zero value is not usable; jobs come from
// Controller.Render.
type Job struct {
	id     uint64
	params Params
	width  int
	height int

	mu       sync.Mutex
	status   Status
	progress float64
	buf      *Buffer
	err      error
	metrics  Metrics

	done chan struct{}
}

func newJob(id uint64, p Params, width, height int) *Job {
	return &Job{
		id:     id,
		params: p,
		width:  width,
		height: height,
		buf:    NewBuffer(width, height),
		done:   make(chan struct{}),
	}
}

// ID returns the job's generation id.
func (j *Job) ID() uint64 { return j.id }

// Params returns the parameters the job was started with.
func (j *Job) Params() Params { return j.params }

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns the fraction of samples processed so far, in [0, 1].
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Err returns the failure reason after StatusFailed.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// Metrics is valid only once the job is Complete.
func (j *Job) Metrics() (Metrics, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusComplete {
		return Metrics{}, fmt.Errorf("job %d is %s: %w", j.id, j.status, ErrNotComplete)
	}
	return j.metrics, nil
}

// Buffer returns the accumulation buffer once the job is Complete; before
// that the buffer is exclusively owned by the job's goroutine.
func (j *Job) Buffer() (*Buffer, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusComplete {
		return nil, fmt.Errorf("job %d is %s: %w", j.id, j.status, ErrNotComplete)
	}
	return j.buf, nil
}

// Cancel transitions a pending or running job to Cancelled and discards its
// buffer. Cancellation is cooperative, checked once per batch, but Cancel is
// synchronous with respect to accumulation: once it returns, no further
// batch can commit under this job's generation id.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.status != StatusPending && j.status != StatusRunning {
		j.mu.Unlock()
		return
	}
	j.status = StatusCancelled
	j.buf = nil
	progress := j.progress
	close(j.done)
	j.mu.Unlock()
	// Log outside the lock: a host-installed handler may call back into the
	// job's accessors.
	logger().Info("render job cancelled", "job", j.id, "progress", progress)
}

// begin moves Pending to Running. False means the job was cancelled before
// its first batch.
func (j *Job) begin() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusPending {
		return false
	}
	j.status = StatusRunning
	return true
}

// commit writes one batch's hits into the buffer, but only if the job is
// still the live generation. A straggling batch from a superseded or
// cancelled job is dropped here, never merged.
func (j *Job) commit(hits []int32, processed, total uint64) (progress float64, maxDensity float32, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning {
		return 0, 0, false
	}
	for _, i := range hits {
		j.buf.add(int(i))
	}
	j.progress = float64(processed) / float64(total)
	return j.progress, j.buf.max, true
}

// complete moves Running to Complete and records metrics.
func (j *Job) complete(m Metrics) (*Buffer, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning {
		return nil, false
	}
	j.status = StatusComplete
	j.progress = 1
	j.metrics = m
	close(j.done)
	return j.buf, true
}

// fail discards the buffer and records the failure reason.
func (j *Job) fail(err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusPending && j.status != StatusRunning {
		return false
	}
	j.status = StatusFailed
	j.buf = nil
	j.err = err
	close(j.done)
	return true
}

// snapshot rasterizes the buffer under the job lock so an in-flight commit
// never tears the preview.
func (j *Job) snapshot() (*image.RGBA, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.buf == nil {
		return nil, fmt.Errorf("job %d is %s, buffer discarded: %w", j.id, j.status, ErrNotComplete)
	}
	return rasterize(j.buf, j.params.Scheme), nil
}

// run drives the batch loop. It is the only goroutine that ever touches the
// buffer while the job is running, so no lock is held during sampling; the
// lock guards only commits and state transitions.
func (j *Job) run(onProgress ProgressFunc, onComplete CompleteFunc, onError ErrorFunc) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("computation failure: %v", r)
			logger().Error("render job failed", "job", j.id, "err", err)
			if j.fail(err) && onError != nil {
				onError(err)
			}
		}
	}()

	if !j.begin() {
		return
	}
	start := time.Now()

	vp := Viewport{Width: j.width, Height: j.height, Zoom: j.params.Zoom, CenterX: j.params.CenterX, CenterY: j.params.CenterY}
	rng := rand.New(rand.NewPCG(rand.Uint64(), j.id))

	var traj []complex128
	hits := make([]int32, 0, 4*defaultBatchSize)
	total := j.params.Samples
	var processed uint64
	for processed < total {
		n := defaultBatchSize
		if rem := total - processed; rem < uint64(n) {
			n = int(rem)
		}
		hits, traj = sampleBatch(rng, vp, j.params.Iterations, n, traj, hits[:0])
		processed += uint64(n)

		progress, maxDensity, live := j.commit(hits, processed, total)
		if !live {
			logger().Warn("discarding batch for superseded job", "job", j.id)
			return
		}
		if onProgress != nil {
			onProgress(progress, maxDensity)
		}
	}

	elapsed := time.Since(start)
	m := Metrics{
		Elapsed:     elapsed,
		MemoryBytes: uint64(j.width) * uint64(j.height) * 4,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		m.SamplesPerSecond = float64(total) / secs
	}
	if buf, ok := j.complete(m); ok {
		logger().Info("render job complete",
			"job", j.id, "elapsed", elapsed, "samples_per_sec", m.SamplesPerSecond, "max_density", buf.max)
		if onComplete != nil {
			onComplete(buf)
		}
	}
}
