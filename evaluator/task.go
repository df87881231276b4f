package evaluator

// Progress is reported through a tree of tasks that mirrors the search.
// Each task knows its own fraction done and tells its parent when that
// fraction has moved by at least reportIncrement.

const reportIncrement = 0.05

type progressParent interface {
	onChildProgress(child *Task)
}

// Task is a leaf of the progress tree.
type Task struct {
	parent    progressParent
	pct       float64
	threshold float64
}

func (t *Task) reportProgress(pct float64) {
	pct = max(0, min(1, pct))
	t.pct = pct
	if pct < t.threshold {
		return
	}
	t.threshold = min(pct+reportIncrement, 1)
	if t.parent != nil {
		t.parent.onChildProgress(t)
	}
}

func (t *Task) complete() {
	t.reportProgress(1)
}

// MultiStepTask tracks a candidate move and the plies projected after it.
// The child currently running counts as a fraction of the next step.
type MultiStepTask struct {
	Task
	steps          int
	stepsCompleted int
}

func (t *MultiStepTask) onChildProgress(child *Task) {
	t.reportProgress((float64(t.stepsCompleted) + child.pct) / float64(t.steps))
}

func (t *MultiStepTask) stepCompleted() {
	t.stepsCompleted = min(t.stepsCompleted+1, t.steps)
	t.reportProgress(float64(t.stepsCompleted) / float64(t.steps))
}

func (t *MultiStepTask) complete() {
	t.stepsCompleted = t.steps
	t.reportProgress(1)
}

// RecursiveTask is one ply of the search: the average of its children.
// Every child must be registered before any of them reports, or the
// average would go backward.
type RecursiveTask struct {
	Task
	children []*Task
}

func newRecursiveTask(parent progressParent) *RecursiveTask {
	return &RecursiveTask{Task: Task{parent: parent}}
}

func (t *RecursiveTask) newLeaf() *Task {
	c := &Task{parent: t}
	t.children = append(t.children, c)
	return c
}

func (t *RecursiveTask) newMultiStep(steps int) *MultiStepTask {
	c := &MultiStepTask{steps: max(steps, 1)}
	c.parent = t
	t.children = append(t.children, &c.Task)
	return c
}

func (t *RecursiveTask) onChildProgress(*Task) {
	var sum float64
	for _, c := range t.children {
		sum += c.pct
	}
	t.reportProgress(sum / float64(len(t.children)))
}

// TopLevelTask forwards progress to the caller. What it surfaces never
// goes backward, and 1 is surfaced once.
type TopLevelTask struct {
	callback func(float64)
	last     float64
	started  bool
}

func newTopLevelTask(callback func(float64)) *TopLevelTask {
	return &TopLevelTask{callback: callback}
}

func (t *TopLevelTask) emit(pct float64) {
	if t.started && pct <= t.last {
		return
	}
	t.started = true
	t.last = pct
	if t.callback != nil {
		t.callback(pct)
	}
}

func (t *TopLevelTask) onChildProgress(child *Task) {
	t.emit(child.pct)
}

func (t *TopLevelTask) start() {
	t.emit(0)
}

func (t *TopLevelTask) finish() {
	t.emit(1)
}
