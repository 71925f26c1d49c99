// internal/common/camunda/worker.go
package camunda

import (
	"fmt"

	"travelease/internal/common/logger"
)

// JobWorker is a registrable job handler, one per task type.
type JobWorker interface {
	Register() error
	Close()
	GetTaskType() string
}

// Pool owns the planning workers of one process.
type Pool struct {
	workers []JobWorker
	logger  logger.Logger
}

func NewPool(log logger.Logger) *Pool {
	return &Pool{logger: log.With(map[string]interface{}{"component": "camunda"})}
}

// Add queues w for Start.
func (p *Pool) Add(w JobWorker) {
	p.workers = append(p.workers, w)
}

// Start registers every worker. On the first failure the ones already
// registered are closed again.
func (p *Pool) Start() error {
	for i, w := range p.workers {
		if err := w.Register(); err != nil {
			for _, started := range p.workers[:i] {
				started.Close()
			}
			return fmt.Errorf("register %s: %w", w.GetTaskType(), err)
		}
		p.logger.Info("worker started", map[string]interface{}{"taskType": w.GetTaskType()})
	}
	return nil
}

// Stop closes every worker in reverse order.
func (p *Pool) Stop() {
	for i := len(p.workers) - 1; i >= 0; i-- {
		p.logger.Info("stopping worker", map[string]interface{}{"taskType": p.workers[i].GetTaskType()})
		p.workers[i].Close()
	}
}
