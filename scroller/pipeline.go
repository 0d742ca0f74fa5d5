package scroller

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/alexballas/xscroller/imgproc"
)

// ErrDecodeFailure marks images that could not be read, decoded or
// processed. Panics raised while processing are reported as this too.
var ErrDecodeFailure = errors.New("image decode failure")

// Params is the immutable snapshot of processing settings a job runs with.
type Params struct {
	Width, Height int // target pixels, 0 keeps the aspect ratio
	Algorithm     imgproc.Algorithm
	Brightness    imgproc.Brightness
}

// Job is a processing request. Item is carried back in the Result and never
// dereferenced by workers.
type Job struct {
	Item   *Item
	Gen    uint64
	Path   string
	Raw    image.Image
	Params Params
}

// Result is produced once per job.
type Result struct {
	Item  *Item
	Gen   uint64
	Image image.Image
	Err   error
}

// Pipeline turns items into displayable images.
type Pipeline interface {
	// Open prepares a newly admitted item on the control context.
	Open(it *Item) error
	// Run processes job synchronously on the caller's goroutine.
	Run(job Job) Result
	// Submit processes job; ok is true when the result is already available.
	Submit(job Job) (res Result, ok bool)
	// Wake fires once for any number of results completed since the last
	// Drain. Nil when results are never asynchronous.
	Wake() <-chan struct{}
	// Drain returns and clears the completed results.
	Drain() []Result
	// Forget releases anything cached for it.
	Forget(it *Item)
	Close()
}

// InlinePipeline decodes images at admission and scales them on the control
// context. It suits small images and few items.
type InlinePipeline struct{}

// Open decodes the full resolution image into it.Raw.
func (InlinePipeline) Open(it *Item) error {
	img, err := decodeSafely(imgproc.Decode, it.Path)
	if err != nil {
		if !errors.Is(err, ErrDecodeFailure) {
			err = fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		}
		return err
	}
	it.Raw = img
	return nil
}

func (InlinePipeline) Run(job Job) Result {
	return process(job, imgproc.Decode)
}

func (p InlinePipeline) Submit(job Job) (Result, bool) {
	return p.Run(job), true
}

func (InlinePipeline) Wake() <-chan struct{} { return nil }
func (InlinePipeline) Drain() []Result       { return nil }
func (InlinePipeline) Forget(*Item)          {}
func (InlinePipeline) Close()                {}

// process decodes (unless job carries the source) and transforms one image.
func process(job Job, decode func(string) (image.Image, error)) (res Result) {
	res = Result{Item: job.Item, Gen: job.Gen}
	defer func() {
		if r := recover(); r != nil {
			res.Image = nil
			res.Err = fmt.Errorf("%w: %s: panic: %v", ErrDecodeFailure, job.Path, r)
		}
	}()

	src := job.Raw
	if src == nil {
		img, err := decode(job.Path)
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrDecodeFailure, err)
			return res
		}
		src = img
	}

	p := job.Params
	img, err := imgproc.Process(src, p.Width, p.Height, p.Algorithm, p.Brightness)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", job.Path, err)
		return res
	}
	res.Image = img
	return res
}

// decodeSafely calls decode, reporting a panic as ErrDecodeFailure.
func decodeSafely(decode func(string) (image.Image, error), path string) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: %s: panic: %v", ErrDecodeFailure, path, r)
		}
	}()
	return decode(path)
}

// statImage is the pooled pipeline's admission check: decoding happens on
// the workers, so only unreadable paths are rejected up front.
func statImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrDecodeFailure, path)
	}
	return nil
}
