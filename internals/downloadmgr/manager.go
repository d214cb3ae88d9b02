package downloadmgr

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// LabelDone is the reserved label of the final update of a batch
const LabelDone = "_"

// DefaultWorkers is the number of concurrent transfers if nothing else is configured
const DefaultWorkers = 16

// Task is a single file to download
type Task struct {
	URL    string
	Target string
	// Label is the category shown to the user (eg. "Downloading libraries")
	Label string
	// Size is the declared size in bytes. Only used for reporting
	Size int64
	// Sha1 is checked after the transfer when set
	Sha1 string
	// Then is called after the task succeeded. The returned tasks join the
	// running batch
	Then func(ctx context.Context) ([]*Task, error)
}

// Event is sent exactly once for every finished task. Failed tasks report 0 bytes
type Event struct {
	Bytes int64
	Label string
}

// Update is a progress update for the caller
type Update struct {
	// Percent is between 0 and 100
	Percent int
	Label   string
}

// Done reports if this is the final update of a batch
func (u Update) Done() bool {
	return u.Label == LabelDone
}

// DownloadManager runs a batch of download tasks concurrently
type DownloadManager struct {
	Client *http.Client
	Fs     afero.Fs
	// Workers limits the number of concurrent transfers
	Workers int
	Log     logrus.FieldLogger
}

// New creates a new downloadmgr
func New(client *http.Client, fs afero.Fs, log logrus.FieldLogger) *DownloadManager {
	if client == nil {
		client = &defaultClient
	}
	return &DownloadManager{
		Client:  client,
		Fs:      fs,
		Workers: DefaultWorkers,
		Log:     log,
	}
}

// Run downloads all tasks (and the tasks their follow-ups return) and sends
// progress updates to `updates`. total is the declared byte count of the batch,
// if it is 0 progress is counted in tasks instead.
//
// Every task reports once, failed tasks with 0 bytes. The last update is always
// the one labeled LabelDone. Run returns after that update was sent. Task failures
// do not stop the batch, they are returned together once it completed.
func (d *DownloadManager) Run(ctx context.Context, tasks []*Task, total int64, updates chan<- Update) error {
	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	planned := &atomic.Int64{}
	planned.Store(int64(len(tasks)))

	queue := newEventQueue()
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		aggregate(queue, planned, total, updates)
	}()

	var (
		sem    = semaphore.NewWeighted(int64(workers))
		group  errgroup.Group
		mu     sync.Mutex
		result *multierror.Error
	)
	fail := func(err error) {
		mu.Lock()
		result = multierror.Append(result, err)
		mu.Unlock()
	}

	var spawn func(t *Task)
	spawn = func(t *Task) {
		group.Go(func() error {
			n, err := d.transfer(ctx, sem, t)
			if err != nil {
				d.logger().WithFields(logrus.Fields{"url": t.URL, "target": t.Target}).WithError(err).Warn("download failed")
				fail(err)
				n = 0
			} else if t.Then != nil {
				more, err := t.Then(ctx)
				if err != nil {
					fail(err)
				}
				// the follow-ups have to be planned before this task reports
				planned.Add(int64(len(more)))
				for _, next := range more {
					spawn(next)
				}
			}
			queue.push(Event{Bytes: n, Label: t.Label})
			return nil
		})
	}

	for _, t := range tasks {
		spawn(t)
	}

	group.Wait()
	queue.close()
	<-aggregated

	return result.ErrorOrNil()
}

// Download transfers a single task without progress reporting
func (d *DownloadManager) Download(ctx context.Context, t *Task) (int64, error) {
	return d.download(ctx, t)
}

func (d *DownloadManager) transfer(ctx context.Context, sem *semaphore.Weighted, t *Task) (int64, error) {
	if err := sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer sem.Release(1)
	return d.download(ctx, t)
}

func (d *DownloadManager) logger() logrus.FieldLogger {
	if d.Log == nil {
		return discardLogger
	}
	return d.Log
}

// aggregate is the only owner of the received counters
func aggregate(queue *eventQueue, planned *atomic.Int64, total int64, updates chan<- Update) {
	send := func(u Update) {
		if updates != nil {
			updates <- u
		}
	}

	if planned.Load() == 0 {
		send(Update{Percent: 100, Label: LabelDone})
		return
	}

	var received, cumulative int64
	for {
		events, ok := queue.next()
		if !ok {
			break
		}
		for _, e := range events {
			received++
			cumulative += e.Bytes
			send(Update{Percent: percent(cumulative, total, received, planned.Load()), Label: e.Label})

			if received == planned.Load() {
				send(Update{Percent: 100, Label: LabelDone})
				return
			}
		}
	}
	// all producers are gone
	send(Update{Percent: 100, Label: LabelDone})
}

func percent(cumulative, total, received, planned int64) int {
	var p int64
	switch {
	case total > 0:
		p = cumulative * 100 / total
	case planned > 0:
		p = received * 100 / planned
	}
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
