package scroller

import (
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/alexballas/xscroller/imgproc"
)

// PoolPipeline processes jobs on a fixed set of worker goroutines.
// Completed results are queued and announced through a single coalesced
// wake-up; the control context drains them when it gets to it.
type PoolPipeline struct {
	jobs    []Job
	jobLock sync.Mutex
	jobCond *sync.Cond
	closed  bool

	results []Result
	resLock sync.Mutex
	wake    chan struct{}

	// Decoded sources of live items. An item is live from its first Run or
	// Submit until Forget; workers finishing after Forget must not store.
	srcLock sync.Mutex
	sources map[uuid.UUID]image.Image
	live    map[uuid.UUID]struct{}

	cache  *DiskCache
	decode func(string) (image.Image, error)
	log    *slog.Logger

	wg sync.WaitGroup
}

// NewPoolPipeline starts workers goroutines. cache may be nil.
func NewPoolPipeline(workers int, cache *DiskCache, log *slog.Logger) *PoolPipeline {
	if log == nil {
		log = slog.Default()
	}
	p := &PoolPipeline{
		jobs:    make([]Job, 0, 16),
		wake:    make(chan struct{}, 1),
		sources: make(map[uuid.UUID]image.Image),
		live:    make(map[uuid.UUID]struct{}),
		cache:   cache,
		decode:  imgproc.Decode,
		log:     log,
	}
	p.jobCond = sync.NewCond(&p.jobLock)

	for range workers {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *PoolPipeline) Open(it *Item) error {
	return statImage(it.Path)
}

// Run processes job on the calling goroutine, used for the startup burst.
func (p *PoolPipeline) Run(job Job) Result {
	p.retain(job.Item)
	return p.runJob(job)
}

func (p *PoolPipeline) Submit(job Job) (Result, bool) {
	p.jobLock.Lock()
	defer p.jobLock.Unlock()
	if p.closed {
		return Result{}, false
	}
	p.retain(job.Item)
	p.jobs = append(p.jobs, job)
	p.jobCond.Signal()
	return Result{}, false
}

func (p *PoolPipeline) Wake() <-chan struct{} { return p.wake }

func (p *PoolPipeline) Drain() []Result {
	p.resLock.Lock()
	defer p.resLock.Unlock()
	out := p.results
	p.results = nil
	return out
}

func (p *PoolPipeline) Forget(it *Item) {
	p.srcLock.Lock()
	defer p.srcLock.Unlock()
	delete(p.live, it.ID)
	delete(p.sources, it.ID)
}

// Sources returns the number of decoded sources held.
func (p *PoolPipeline) Sources() int {
	p.srcLock.Lock()
	defer p.srcLock.Unlock()
	return len(p.sources)
}

func (p *PoolPipeline) retain(it *Item) {
	if it == nil {
		return
	}
	p.srcLock.Lock()
	p.live[it.ID] = struct{}{}
	p.srcLock.Unlock()
}

func (p *PoolPipeline) source(id uuid.UUID) (image.Image, bool) {
	p.srcLock.Lock()
	defer p.srcLock.Unlock()
	img, ok := p.sources[id]
	return img, ok
}

// keep stores img unless the item was forgotten while it was decoded.
func (p *PoolPipeline) keep(id uuid.UUID, img image.Image) {
	p.srcLock.Lock()
	defer p.srcLock.Unlock()
	if _, ok := p.live[id]; ok {
		p.sources[id] = img
	}
}

// Close stops the workers once their current job is done. Queued jobs are dropped.
func (p *PoolPipeline) Close() {
	p.jobLock.Lock()
	p.closed = true
	p.jobs = nil
	p.jobCond.Broadcast()
	p.jobLock.Unlock()
	p.wg.Wait()
}

// Pending returns the number of queued jobs not yet picked up.
func (p *PoolPipeline) Pending() int {
	p.jobLock.Lock()
	defer p.jobLock.Unlock()
	return len(p.jobs)
}

func (p *PoolPipeline) worker() {
	defer p.wg.Done()
	for {
		p.jobLock.Lock()
		for len(p.jobs) == 0 && !p.closed {
			p.jobCond.Wait()
		}
		if p.closed {
			p.jobLock.Unlock()
			return
		}
		job := p.jobs[0]
		p.jobs[0] = Job{}
		p.jobs = p.jobs[1:]
		p.jobLock.Unlock()

		res := p.runJob(job)

		p.resLock.Lock()
		p.results = append(p.results, res)
		p.resLock.Unlock()

		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

func (p *PoolPipeline) runJob(job Job) Result {
	var key string
	if p.cache != nil {
		if k, err := p.cache.Key(job.Path, job.Params); err == nil {
			key = k
			if img, ok := p.cache.Load(key); ok {
				return Result{Item: job.Item, Gen: job.Gen, Image: img}
			}
		}
	}

	if job.Item == nil {
		return process(job, p.decode)
	}
	id := job.Item.ID
	res := process(job, func(path string) (image.Image, error) {
		if cached, ok := p.source(id); ok {
			return cached, nil
		}
		img, err := p.decode(path)
		if err != nil {
			return nil, err
		}
		p.keep(id, img)
		return img, nil
	})

	if res.Err == nil && key != "" {
		if err := p.cache.Store(key, res.Image); err != nil {
			p.log.Debug("pipeline: cannot write cache entry", "path", job.Path, "error", err)
		}
	}
	return res
}
