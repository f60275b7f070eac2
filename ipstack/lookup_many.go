package ipstack

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 16

	workerPoolExpireTime = time.Minute
)

// LookupResult is a result of a single lookup made by LookupMany.
type LookupResult struct {
	Address  string
	Response *StandardResponse
	Err      error
}

type lookupTask struct {
	ctx      context.Context
	lookuper Lookuper
	params   url.Values
	opts     []RequestOption
	result   *LookupResult
	wg       *sync.WaitGroup
}

func runLookupTask(arg interface{}) {
	task := arg.(*lookupTask)
	defer task.wg.Done()

	task.result.Response, task.result.Err = task.lookuper.Lookup(task.ctx,
		task.result.Address, task.params, task.opts...)
}

// LookupMany makes independent single lookups in parallel using a pool
// of workers. Each lookup has its own retry. Results have the same order
// as addresses; an error of each lookup is stored in its result.
//
// Unlike BulkLookup, this one works with any plan of ipstack.
func LookupMany(ctx context.Context,
	lookuper Lookuper,
	addresses []string,
	params url.Values,
	workers int,
	opts ...RequestOption) ([]LookupResult, error) {
	if workers <= 0 {
		workers = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPoolWithFunc(workers, runLookupTask,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	defer pool.Release()

	rv := make([]LookupResult, len(addresses))
	wg := &sync.WaitGroup{}

	for i, v := range addresses {
		rv[i].Address = v

		if err := ctx.Err(); err != nil {
			rv[i].Err = err

			continue
		}

		wg.Add(1)

		task := &lookupTask{
			ctx:      ctx,
			lookuper: lookuper,
			params:   params,
			opts:     opts,
			result:   &rv[i],
			wg:       wg,
		}

		if err := pool.Invoke(task); err != nil {
			wg.Done()

			rv[i].Err = fmt.Errorf("cannot schedule a task: %w", err)
		}
	}

	wg.Wait()

	return rv, nil
}
