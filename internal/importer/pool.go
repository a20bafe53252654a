package importer

import "sync"

// pool is a bounded worker pool. Jobs are executed by a fixed number of
// workers; submit blocks only when every worker is busy and the queue is
// full.
type pool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}

	p := &pool{jobs: make(chan func(), workers*2)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}

	return p
}

func (p *pool) submit(job func()) {
	p.jobs <- job
}

// close stops accepting jobs and waits for the queue to drain.
func (p *pool) close() {
	close(p.jobs)
	p.wg.Wait()
}
