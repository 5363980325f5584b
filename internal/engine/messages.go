package engine

const (
	msgUnauthorized           = "该操作仅限管理员执行"
	msgConstraintUnauthorized = "不能添加或删除其他人的约束"
	msgSessionExpired         = "登录已过期，请重新登录"
	msgNotFound               = "目标不存在"

	msgFetchShiftsFailed   = "获取排班失败"
	msgSaveShiftsFailed    = "保存排班失败"
	msgSaveShiftsSucceeded = "排班已保存"
	msgUnassignFailed      = "取消排班失败"
	msgUnassignSucceeded   = "已取消排班"
	msgShiftNotAssigned    = "该班次尚未排班"
	msgSuggestFailed       = "获取建议排班失败"
	msgSuggestSucceeded    = "已生成建议排班，请确认后保存"
	msgResetFailed         = "重置一周排班失败"
	msgResetSucceeded      = "一周排班已重置"
	msgRecalculateFailed   = "重新计算分数失败"
	msgRecalculateDone     = "分数已重新计算"

	msgFetchConstraintsFailed    = "获取约束失败"
	msgSaveConstraintsFailed     = "保存约束失败"
	msgSaveConstraintsSucceeded  = "约束已保存"
	msgRemoveConstraintFailed    = "删除约束失败"
	msgRemoveConstraintSucceeded = "约束已删除"
	msgConstraintNotFound        = "约束不存在"

	msgFetchPresetsFailed   = "获取预设失败"
	msgSavePresetFailed     = "保存预设失败"
	msgSavePresetSucceeded  = "预设已保存"
	msgSelectPresetFailed   = "切换预设失败"
	msgSelectPresetDone     = "已切换当前预设"
	msgPresetNotFound       = "预设不存在"
	msgNoDraft              = "没有正在编辑的预设"
)
