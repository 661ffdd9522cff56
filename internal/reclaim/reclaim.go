package reclaim

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Deleter removes the object behind a locator. Deletion must be
// idempotent by key.
type Deleter interface {
	DeleteURL(ctx context.Context, url string) error
}

// Lister enumerates every stored object as a locator.
type Lister interface {
	ListURLs(ctx context.Context) ([]string, error)
}

// Worker deletes blob objects after their owning rows are gone. Blob
// outcome never affects the caller-visible result of a relational
// operation: failures are logged and left for the reconciliation sweep.
type Worker struct {
	objects Deleter
	timeout time.Duration
}

func NewWorker(objects Deleter, timeout time.Duration) *Worker {
	return &Worker{objects: objects, timeout: timeout}
}

// Reclaim attempts each deletion in parallel with an independent
// per-object timeout, so one unreachable object cannot stall the batch.
// It blocks until every attempt finishes.
func (w *Worker) Reclaim(locators []string) {
	var wg sync.WaitGroup
	for _, locator := range locators {
		wg.Add(1)
		go func(locator string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
			defer cancel()

			if err := w.objects.DeleteURL(ctx, locator); err != nil {
				log.WithError(err).WithField("locator", locator).Warn("blob reclamation failed, object orphaned")
			}
		}(locator)
	}
	wg.Wait()
}

// ReclaimAsync runs the batch in the background. The relational
// transaction has already committed by the time this is called, so a
// caller abort must not stop the cleanup; context.Background is used
// deliberately.
func (w *Worker) ReclaimAsync(locators []string) {
	if len(locators) == 0 {
		return
	}
	go w.Reclaim(locators)
}

// Orphans lists the blob store and returns every locator with no
// referencing image row. known is the full set of locators the
// relational store knows about.
func Orphans(ctx context.Context, objects Lister, known []string) ([]string, error) {
	stored, err := objects.ListURLs(ctx)
	if err != nil {
		return nil, err
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, u := range known {
		knownSet[u] = struct{}{}
	}

	var orphans []string
	for _, u := range stored {
		if _, ok := knownSet[u]; !ok {
			orphans = append(orphans, u)
		}
	}

	return orphans, nil
}
