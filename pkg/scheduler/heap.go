package scheduler

// pendingTask pairs a task with the order in which it was scheduled,
// so tasks sharing an ExecuteAt keep FIFO order.
type pendingTask struct {
	task Task
	seq  uint64
}

// taskHeap implements heap.Interface for pending tasks, ordered by ExecuteAt time.
type taskHeap []pendingTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	ti, tj := h[i].task.ExecuteAt(), h[j].task.ExecuteAt()
	if ti.Equal(tj) {
		return h[i].seq < h[j].seq
	}
	return ti.Before(tj)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(pendingTask))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = pendingTask{}
	*h = old[0 : n-1]
	return task
}
