package lifecycle

import "github.com/openvend/openvend/logger"

// journal collects compensation steps for one purchase invocation. When a
// stage fails, every prior mutation unwinds in reverse order, so the whole
// operation either fully commits or has no effect.
type journal struct {
	undos []func() error
	log   logger.Logger
}

func newJournal(log logger.Logger) *journal {
	return &journal{log: log}
}

func (j *journal) add(undo func() error) {
	j.undos = append(j.undos, undo)
}

func (j *journal) unwind() {
	for i := len(j.undos) - 1; i >= 0; i-- {
		if err := j.undos[i](); err != nil {
			j.log.Error("purchase unwind step failed", map[string]any{
				"step":  i,
				"error": err.Error(),
			})
		}
	}
	j.undos = nil
}
