package workflow

// transitions 实例状态转换表
// pending 可以保持 pending(节点前进)或进入任一终态;
// 终态之间不允许转换,回退(back)只改变节点指针,不离开 pending
var transitions = map[InstanceStatus][]InstanceStatus{
	StatusPending: {
		StatusPending,
		StatusCompleted,
		StatusRejected,
		StatusCancelled,
	},
	StatusCompleted: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// CanTransition 判断实例状态是否允许从 from 转换到 to
func CanTransition(from, to InstanceStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
