package api

import (
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportHandler 统计报表处理器，只读，不持有任何状态
type ReportHandler struct{}

// NewReportHandler 创建统计报表处理器
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// SummaryResponse 收支汇总
type SummaryResponse struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// CategoryBreakdownItem 按分类统计的单项，未分类的交易归入空分类组
type CategoryBreakdownItem struct {
	CategoryName  string  `json:"category_name"`
	CategoryColor string  `json:"category_color"`
	CategoryIcon  string  `json:"category_icon"`
	Type          string  `json:"type"`
	Total         float64 `json:"total"`
	Count         int64   `json:"count"`
}

// MonthlyTrendItem 月度趋势的单项，month 格式为 YYYY-MM
type MonthlyTrendItem struct {
	Month string  `json:"month"`
	Type  string  `json:"type"`
	Total float64 `json:"total"`
}

// filteredQuery 构建应用了通用筛选条件的交易查询，每次调用返回独立的查询链
func filteredQuery(userID uint, req *TransactionFilterRequest) (*gorm.DB, error) {
	query := database.DB.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	return applyTransactionFilters(query, req)
}

// Summary 收支汇总
// @Summary 收支汇总
// @Description 统计筛选范围内的收入总和、支出总和与结余（收入-支出），无记录时各项为 0
// @Tags 统计报表
// @Produce json
// @Security BearerAuth
// @Param type query string false "类型筛选（income/expense）"
// @Param category query int false "分类ID筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 400 {object} Response "筛选参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var income, expense float64

	incomeQ, err := filteredQuery(userID, &req)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-01-01")
		return
	}
	if err := incomeQ.Where("transactions.type = ?", models.TypeIncome).
		Select("COALESCE(SUM(amount), 0)").Scan(&income).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	expenseQ, _ := filteredQuery(userID, &req)
	if err := expenseQ.Where("transactions.type = ?", models.TypeExpense).
		Select("COALESCE(SUM(amount), 0)").Scan(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, SummaryResponse{
		Income:  income,
		Expense: expense,
		Balance: income - expense,
	})
}

// ByCategory 按分类统计
// @Summary 按分类统计
// @Description 按（分类名称、颜色、图标、收支类型）分组统计筛选范围内的金额与笔数，按金额倒序；无分类的交易单独成组
// @Tags 统计报表
// @Produce json
// @Security BearerAuth
// @Param type query string false "类型筛选（income/expense）"
// @Param category query int false "分类ID筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]CategoryBreakdownItem} "获取成功"
// @Failure 400 {object} Response "筛选参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/by-category [get]
func (h *ReportHandler) ByCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	query, err := filteredQuery(userID, &req)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-01-01")
		return
	}

	var items []CategoryBreakdownItem
	if err := query.
		Select("COALESCE(categories.name, '') AS category_name, " +
			"COALESCE(categories.color, '') AS category_color, " +
			"COALESCE(categories.icon, '') AS category_icon, " +
			"transactions.type, SUM(transactions.amount) AS total, COUNT(transactions.id) AS count").
		Joins(transactionJoin).
		Group("categories.name, categories.color, categories.icon, transactions.type").
		Order("total DESC").
		Scan(&items).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, items)
}

// MonthlyTrend 月度收支趋势
// @Summary 月度收支趋势
// @Description 统计最近一段时间（默认 180 天，见 report.trend_window_days 配置）内按月、按收支类型分组的金额，按月份升序。该接口不接受日期筛选参数
// @Tags 统计报表
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]MonthlyTrendItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/monthly-trend [get]
func (h *ReportHandler) MonthlyTrend(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	// 固定统计窗口：以服务器当前日期（UTC）为终点向前回溯，不受调用方筛选参数影响
	now := time.Now().UTC()
	end := now.Format(dateLayout)
	start := now.AddDate(0, 0, -config.TrendWindowDays()).Format(dateLayout)

	var items []MonthlyTrendItem
	if err := database.DB.Model(&models.Transaction{}).
		Select("DATE_FORMAT(transactions.date, '%Y-%m') AS month, transactions.type, SUM(transactions.amount) AS total").
		Where("transactions.user_id = ? AND transactions.date >= ? AND transactions.date <= ?", userID, start, end).
		Group("month, transactions.type").
		Order("month ASC, transactions.type ASC").
		Scan(&items).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, items)
}
