package record

import (
	"io"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/task"
)

// PairProducer pairs two record sources positionally and emits one task
// per complete pair. Restartable only by re-opening the sources.
type PairProducer struct {
	sourceA  Reader
	sourceB  Reader
	features compare.FeatureMask
}

// NewPairProducer builds a producer over two opened readers.
func NewPairProducer(sourceA, sourceB Reader, features compare.FeatureMask) *PairProducer {
	return &PairProducer{
		sourceA:  sourceA,
		sourceB:  sourceB,
		features: features,
	}
}

// Produce reads both sources to exhaustion, returning the created tasks
// in creation order plus the count of unpaired records (records on one
// side with no counterpart on the other).
//
// Task identifiers start at 1 and increase with creation order.
func (p *PairProducer) Produce() ([]*task.Task, int, error) {
	var (
		tasks    []*task.Task
		unpaired int
		nextID   int64 = 1
	)

	for {
		recA, doneA, err := next(p.sourceA)
		if err != nil {
			return nil, 0, err
		}
		recB, doneB, err := next(p.sourceB)
		if err != nil {
			return nil, 0, err
		}

		if doneA && doneB {
			return tasks, unpaired, nil
		}

		switch {
		case recA != "" && recB != "":
			tasks = append(tasks, task.New(nextID, recA, recB, p.features))
			nextID++
		case (recA == "") != (recB == ""):
			// One side exhausted first; keep draining to count the tail.
			unpaired++
		default:
			// Both sides empty without end-of-stream on both.
			return tasks, unpaired, nil
		}
	}
}

func next(r Reader) (string, bool, error) {
	rec, err := r.Next()
	if err == io.EOF {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec, false, nil
}
