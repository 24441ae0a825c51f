package worker

import (
	"time"

	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/postloom/postloom/internal/repository"
)

const defaultBackoffBase = time.Minute

// Worker handles queue tasks. It is the only writer of delivery-row status
// after creation; every dependency is injected so tests can run it against
// fakes.
type Worker struct {
	pr          repository.PostRepository
	pp          repository.PostPlatformRepository
	sa          repository.SocialAccountRepository
	am          repository.AccountMetricsRepository
	registry    *platform.Registry
	enqueuer    queue.Enqueuer
	secretKey   []byte
	maxAttempts int
	backoffBase time.Duration
	now         func() time.Time
}

func New(
	pr repository.PostRepository,
	pp repository.PostPlatformRepository,
	sa repository.SocialAccountRepository,
	am repository.AccountMetricsRepository,
	registry *platform.Registry,
	enqueuer queue.Enqueuer,
	secretKey []byte,
	maxAttempts int) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		pr:          pr,
		pp:          pp,
		sa:          sa,
		am:          am,
		registry:    registry,
		enqueuer:    enqueuer,
		secretKey:   secretKey,
		maxAttempts: maxAttempts,
		backoffBase: defaultBackoffBase,
		now:         time.Now,
	}
}

// retryDelay doubles per attempt: base, 2*base, 4*base, ...
func (w *Worker) retryDelay(attempt int) time.Duration {
	delay := w.backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
