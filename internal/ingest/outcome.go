package ingest

// State 是单个目标集合批次的终态。
type State int

const (
	StateCommitted State = iota + 1
	StatePartiallyRecovered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCommitted:
		return "committed"
	case StatePartiallyRecovered:
		return "partially_recovered"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome 是单个目标集合的写入结果。
// Count 是该批次的文档数，Inserted 是存储层本次实际新写入的条数（重复文档不计入）。
type Outcome struct {
	Destination string
	State       State
	Count       int
	Inserted    int
	Retried     bool
	Err         error
}

// OK 表示批次已 Committed 或 PartiallyRecovered。
func (o Outcome) OK() bool {
	return o.State == StateCommitted || o.State == StatePartiallyRecovered
}

// Result 是整个请求的汇总结果，只在所有批次到达终态后生成。
type Result struct {
	Outcomes []Outcome
	Total    int
	Err      *CommitError
}

// Success 当且仅当所有批次都成功。
func (r Result) Success() bool {
	return r.Err == nil
}

func aggregate(outcomes []Outcome) Result {
	res := Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			res.Total += o.Count
			continue
		}
		if res.Err == nil {
			res.Err = &CommitError{Destination: o.Destination, Cause: o.Err}
		}
	}
	return res
}
