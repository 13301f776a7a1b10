package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed задача отправлена после Close
var ErrClosed = errors.New("workerpool: closed")

// Options настройки пула
type Options struct {
	Name      string
	Workers   int
	QueueSize int
}

type task struct {
	ctx context.Context
	key int64
	fn  func(ctx context.Context)
}

// Pool ограниченный пул воркеров. Задачи с одним ключом попадают
// в один шард и выполняются по очереди, разные ключи идут параллельно.
// Паника в задаче логируется и не роняет воркер.
type Pool struct {
	name   string
	shards []chan task
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New запускает пул; нулевые настройки заменяются значениями по умолчанию
func New(opts Options, logger *zap.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Name == "" {
		opts.Name = "pool"
	}
	perShard := max(1, opts.QueueSize/opts.Workers)

	p := &Pool{
		name:   opts.Name,
		shards: make([]chan task, opts.Workers),
		logger: logger.With(zap.String("pool", opts.Name)),
	}
	p.wg.Add(opts.Workers)
	for i := range p.shards {
		p.shards[i] = make(chan task, perShard)
		go p.worker(p.shards[i])
	}
	return p
}

func (p *Pool) shard(key int64) chan task {
	idx := key % int64(len(p.shards))
	if idx < 0 {
		idx = -idx
	}
	return p.shards[idx]
}

// Submit ставит задачу в очередь шарда key, ожидая места в очереди
func (p *Pool) Submit(ctx context.Context, key int64, fn func(ctx context.Context)) error {
	if fn == nil {
		return fmt.Errorf("workerpool %s: nil task", p.name)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.shard(key) <- task{ctx: ctx, key: key, fn: fn}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close перестаёт принимать задачи и ждёт выполнения уже поставленных
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, ch := range p.shards {
		close(ch)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(tasks <-chan task) {
	defer p.wg.Done()
	for t := range tasks {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panicked",
				zap.Int64("key", t.key),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	t.fn(ctx)
}
