package request

// TimeRangeRequest 时间范围查询请求
// 查询参数为 ISO-8601 格式字符串，如 2024-01-02T15:04:05Z
type TimeRangeRequest struct {
	StartTime string `form:"startTime" binding:"required"`
	EndTime   string `form:"endTime" binding:"required"`
}
