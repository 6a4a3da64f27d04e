package api

import (
	"math"
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// BudgetResponse 预算响应，spent/percentage 为每次读取时的实时计算值
type BudgetResponse struct {
	ID            uint      `json:"id"`
	CategoryID    uint      `json:"category"`
	CategoryName  string    `json:"category_name"`
	CategoryColor string    `json:"category_color"`
	Amount        float64   `json:"amount"`
	Period        string    `json:"period"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Spent         float64   `json:"spent"`
	Percentage    float64   `json:"percentage"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// budgetColumns 预算列表/详情的查询列
const budgetColumns = "budgets.id, budgets.category_id, " +
	"COALESCE(categories.name, '') AS category_name, " +
	"COALESCE(categories.color, '') AS category_color, " +
	"budgets.amount, budgets.period, " +
	"DATE_FORMAT(budgets.start_date, '%Y-%m-%d') AS start_date, " +
	"DATE_FORMAT(budgets.end_date, '%Y-%m-%d') AS end_date, " +
	"budgets.created_at, budgets.updated_at"

// budgetJoin 预算的分类为强引用，但分类软删除与预算删除在同一事务内完成，LEFT JOIN 仅作兜底
const budgetJoin = "LEFT JOIN categories ON categories.id = budgets.category_id AND categories.deleted_at IS NULL"

// CreateBudgetRequest 创建预算请求，amount 用指针承载以允许上限为 0 的预算
type CreateBudgetRequest struct {
	Category  uint     `json:"category" binding:"required" example:"1"`
	Amount    *float64 `json:"amount" binding:"required,gte=0" example:"100.00"`
	Period    string  `json:"period" binding:"omitempty,oneof=monthly yearly" example:"monthly"`
	StartDate string  `json:"start_date" binding:"required" example:"2024-01-01"`
	EndDate   string  `json:"end_date" binding:"required" example:"2024-01-31"`
}

// UpdateBudgetRequest 更新预算请求，未出现的字段保持不变
type UpdateBudgetRequest struct {
	Category  *uint    `json:"category"`
	Amount    *float64 `json:"amount" binding:"omitempty,gte=0"`
	Period    string   `json:"period" binding:"omitempty,oneof=monthly yearly"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

// BudgetListRequest 预算列表请求
type BudgetListRequest struct {
	Period string `form:"period" binding:"omitempty,oneof=monthly yearly" example:"monthly"`
}

// budgetSpent 计算预算区间内该分类的实际支出（两端均含当天），无记录时为 0
func budgetSpent(userID, categoryID uint, startDate, endDate string) (float64, error) {
	var spent float64
	err := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date <= ?",
			userID, categoryID, models.TypeExpense, startDate, endDate).
		Scan(&spent).Error
	return spent, err
}

// budgetPercentage 花费占预算上限的百分比，保留两位小数；上限为 0 时恒为 0，避免除零
func budgetPercentage(spent, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return math.Round(spent/amount*100*100) / 100
}

// fetchBudget 按ID读取单条预算的响应结构并计算花费
func fetchBudget(userID, id uint) (*BudgetResponse, error) {
	var resp BudgetResponse
	err := database.DB.Model(&models.Budget{}).
		Select(budgetColumns).
		Joins(budgetJoin).
		Where("budgets.id = ? AND budgets.user_id = ?", id, userID).
		Scan(&resp).Error
	if err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	spent, err := budgetSpent(userID, resp.CategoryID, resp.StartDate, resp.EndDate)
	if err != nil {
		return nil, err
	}
	resp.Spent = spent
	resp.Percentage = budgetPercentage(resp.Spent, resp.Amount)
	return &resp, nil
}

// validateBudgetCategory 预算只能挂在当前用户的支出分类上
func validateBudgetCategory(userID, categoryID uint) (string, bool) {
	var cat models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
		return "分类不存在或不属于当前用户", false
	}
	if cat.Type != models.TypeExpense {
		return "预算只能设置在支出分类上", false
	}
	return "", true
}

// Create 创建预算
// @Summary 创建预算
// @Description 为某个支出分类在指定日期区间设置花费上限；(分类, 起始日期, 结束日期) 不可重复
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=BudgetResponse} "创建成功"
// @Failure 400 {object} Response "参数错误或校验失败"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2024-01-01")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2024-01-31")
		return
	}
	if start.After(end) {
		BadRequest(c, "开始日期不能晚于结束日期")
		return
	}

	if msg, ok := validateBudgetCategory(userID, req.Category); !ok {
		BadRequest(c, msg)
		return
	}

	// 唯一性校验：(用户, 分类, 起始日期, 结束日期)
	var existing models.Budget
	if err := database.DB.
		Where("user_id = ? AND category_id = ? AND start_date = ? AND end_date = ?",
			userID, req.Category, start, end).
		First(&existing).Error; err == nil {
		BadRequest(c, "该分类在此日期区间已存在预算")
		return
	}

	if req.Period == "" {
		req.Period = models.PeriodMonthly
	}

	budget := models.Budget{
		UserID:     userID,
		CategoryID: req.Category,
		Amount:     *req.Amount,
		Period:     req.Period,
		StartDate:  start,
		EndDate:    end,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	resp, err := fetchBudget(userID, budget.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", resp)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取当前用户的预算，支持按周期筛选；每条预算附带区间内实际支出 spent 与占比 percentage（实时计算）
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param period query string false "周期筛选（monthly/yearly）"
// @Success 200 {object} Response{data=[]BudgetResponse} "获取成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req BudgetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	query := database.DB.Model(&models.Budget{}).Where("budgets.user_id = ?", userID)
	if req.Period != "" {
		query = query.Where("budgets.period = ?", req.Period)
	}

	var list []BudgetResponse
	if err := query.
		Select(budgetColumns).
		Joins(budgetJoin).
		Order("budgets.id ASC").
		Scan(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 花费与占比每次读取实时计算，不做缓存：预算条目很少，正确性优先
	for i := range list {
		spent, err := budgetSpent(userID, list[i].CategoryID, list[i].StartDate, list[i].EndDate)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		list[i].Spent = spent
		list[i].Percentage = budgetPercentage(spent, list[i].Amount)
	}

	Success(c, list)
}

// Get 获取单条预算
// @Summary 获取单条预算
// @Description 根据ID获取预算详情（含实时花费）
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=BudgetResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	resp, err := fetchBudget(userID, uint(id))
	if err != nil {
		NotFound(c, "预算不存在")
		return
	}
	Success(c, resp)
}

// Update 更新预算
// @Summary 更新预算
// @Description 更新指定预算；变更分类或日期区间时重新执行全部校验
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=BudgetResponse} "更新成功"
// @Failure 400 {object} Response "参数错误或校验失败"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 推算更新后的分类与日期区间，再整体校验
	newCategoryID := budget.CategoryID
	if req.Category != nil && *req.Category > 0 {
		newCategoryID = *req.Category
	}
	newStart := budget.StartDate
	if req.StartDate != "" {
		if newStart, err = parseDate(req.StartDate); err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2024-01-01")
			return
		}
	}
	newEnd := budget.EndDate
	if req.EndDate != "" {
		if newEnd, err = parseDate(req.EndDate); err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2024-01-31")
			return
		}
	}
	if newStart.After(newEnd) {
		BadRequest(c, "开始日期不能晚于结束日期")
		return
	}
	if msg, ok := validateBudgetCategory(userID, newCategoryID); !ok {
		BadRequest(c, msg)
		return
	}

	// 改动后仍需满足 (用户, 分类, 起始日期, 结束日期) 唯一
	var existing models.Budget
	if err := database.DB.
		Where("user_id = ? AND category_id = ? AND start_date = ? AND end_date = ? AND id != ?",
			userID, newCategoryID, newStart, newEnd, budget.ID).
		First(&existing).Error; err == nil {
		BadRequest(c, "该分类在此日期区间已存在预算")
		return
	}

	updates := map[string]interface{}{}
	if req.Category != nil && *req.Category > 0 {
		updates["category_id"] = newCategoryID
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Period != "" {
		updates["period"] = req.Period
	}
	if req.StartDate != "" {
		updates["start_date"] = newStart
	}
	if req.EndDate != "" {
		updates["end_date"] = newEnd
	}
	if len(updates) == 0 {
		resp, _ := fetchBudget(userID, budget.ID)
		SuccessWithMessage(c, "无需更新", resp)
		return
	}

	if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	resp, err := fetchBudget(userID, budget.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", resp)
}

// Delete 删除预算
// @Summary 删除预算
// @Description 删除指定的预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
