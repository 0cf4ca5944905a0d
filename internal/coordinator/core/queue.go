package core

import (
	"container/heap"
	"errors"
	"sync"
)

// RunPriority defines run urgency levels (lower value means higher priority).
type RunPriority int

const (
	RunPriorityHigh   RunPriority = 0
	RunPriorityNormal RunPriority = 1
	RunPriorityLow    RunPriority = 2
)

// ErrQueueEmpty is returned when Pop() is called on an empty queue.
var ErrQueueEmpty = errors.New("priority queue is empty")

// RunPriorityQueue is a thread-safe min-heap for pending runs, popping
// highest-priority runs first. Runs with the same priority are served in
// FIFO order.
type RunPriorityQueue interface {
	Push(run *JobRun) error
	Pop() (*JobRun, error)
	Len() int
}

type heapRunPriorityQueue struct {
	pq       priorityQueue
	mu       sync.RWMutex
	sequence uint64
}

func NewRunPriorityQueue() RunPriorityQueue {
	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	return &heapRunPriorityQueue{pq: pq}
}

func (rpq *heapRunPriorityQueue) Push(run *JobRun) error {
	if run == nil {
		return errors.New("cannot push nil run")
	}

	rpq.mu.Lock()
	defer rpq.mu.Unlock()

	heap.Push(&rpq.pq, &item{
		run:      run,
		sequence: rpq.sequence,
	})
	rpq.sequence++
	return nil
}

func (rpq *heapRunPriorityQueue) Pop() (*JobRun, error) {
	rpq.mu.Lock()
	defer rpq.mu.Unlock()

	if rpq.pq.Len() == 0 {
		return nil, ErrQueueEmpty
	}
	it := heap.Pop(&rpq.pq).(*item)
	return it.run, nil
}

func (rpq *heapRunPriorityQueue) Len() int {
	rpq.mu.RLock()
	defer rpq.mu.RUnlock()
	return rpq.pq.Len()
}

// item wraps a JobRun with its sequence number and index in the heap.
type item struct {
	run      *JobRun
	sequence uint64 // Insertion order for FIFO within same priority
	index    int    // Required by heap.Interface
}

// priorityQueue satisfies heap.Interface.
type priorityQueue []*item

func (pq priorityQueue) Len() int {
	return len(pq)
}

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].run.Priority != pq[j].run.Priority {
		return pq[i].run.Priority < pq[j].run.Priority
	}
	// If priorities are equal, maintain FIFO order (lower sequence = earlier)
	return pq[i].sequence < pq[j].sequence
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	it := x.(*item)
	it.index = n
	*pq = append(*pq, it)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[0 : n-1]
	return it
}
