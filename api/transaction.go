package api

import (
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// TransactionResponse 交易记录响应，附带所属分类的名称/颜色/图标
type TransactionResponse struct {
	ID            uint      `json:"id"`
	CategoryID    *uint     `json:"category"`
	CategoryName  string    `json:"category_name"`
	CategoryColor string    `json:"category_color"`
	CategoryIcon  string    `json:"category_icon"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// transactionColumns 交易列表/详情的查询列，分类信息通过 LEFT JOIN 带出，分类为空时退化为空串
const transactionColumns = "transactions.id, transactions.category_id, " +
	"COALESCE(categories.name, '') AS category_name, " +
	"COALESCE(categories.color, '') AS category_color, " +
	"COALESCE(categories.icon, '') AS category_icon, " +
	"transactions.amount, transactions.description, " +
	"DATE_FORMAT(transactions.date, '%Y-%m-%d') AS date, " +
	"transactions.type, transactions.created_at, transactions.updated_at"

// transactionJoin 分类为弱引用，必须 LEFT JOIN，且跳过已软删除的分类
const transactionJoin = "LEFT JOIN categories ON categories.id = transactions.category_id AND categories.deleted_at IS NULL"

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"50.00"`
	Type        string  `json:"type" binding:"required,oneof=income expense" example:"expense"`
	Date        string  `json:"date" binding:"required" example:"2024-01-10"`
	Category    *uint   `json:"category" example:"1"`
	Description string  `json:"description" example:"午餐"`
}

// UpdateTransactionRequest 更新交易请求，未出现的字段保持不变；category 传 0 表示清除分类
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Type        string   `json:"type" binding:"omitempty,oneof=income expense"`
	Date        string   `json:"date"`
	Category    *uint    `json:"category"`
	Description *string  `json:"description"`
}

// TransactionFilterRequest 交易筛选参数，列表与统计接口共用
type TransactionFilterRequest struct {
	Type      string `form:"type" binding:"omitempty,oneof=income expense" example:"expense"`
	Category  uint   `form:"category" example:"1"`
	StartDate string `form:"start_date" example:"2024-01-01"`
	EndDate   string `form:"end_date" example:"2024-12-31"`
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	TransactionFilterRequest
	Page     int `form:"page" example:"1"`
	PageSize int `form:"page_size" example:"10"`
}

// applyTransactionFilters 按类型/分类/日期范围（两端均含当天）过滤交易查询
func applyTransactionFilters(query *gorm.DB, req *TransactionFilterRequest) (*gorm.DB, error) {
	if req.Type != "" {
		query = query.Where("transactions.type = ?", req.Type)
	}
	if req.Category > 0 {
		query = query.Where("transactions.category_id = ?", req.Category)
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		query = query.Where("transactions.date >= ?", start)
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		query = query.Where("transactions.date <= ?", end)
	}
	return query, nil
}

// validateCategoryRef 校验交易引用的分类：必须存在、属于当前用户、且收支类型一致
func validateCategoryRef(userID, categoryID uint, txnType string) (string, bool) {
	var cat models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
		return "分类不存在或不属于当前用户", false
	}
	if cat.Type != txnType {
		return "分类的收支类型与交易类型不一致", false
	}
	return "", true
}

// fetchTransaction 按ID读取单条交易的响应结构
func fetchTransaction(userID, id uint) (*TransactionResponse, error) {
	var resp TransactionResponse
	err := database.DB.Model(&models.Transaction{}).
		Select(transactionColumns).
		Joins(transactionJoin).
		Where("transactions.id = ? AND transactions.user_id = ?", id, userID).
		Scan(&resp).Error
	if err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &resp, nil
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条收入或支出记录；指定分类时，分类必须属于当前用户且收支类型一致
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionResponse} "创建成功"
// @Failure 400 {object} Response "参数错误或分类校验失败"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-01-10")
		return
	}

	if req.Category != nil && *req.Category > 0 {
		if msg, ok := validateCategoryRef(userID, *req.Category, req.Type); !ok {
			BadRequest(c, msg)
			return
		}
	} else {
		req.Category = nil
	}

	txn := models.Transaction{
		UserID:      userID,
		CategoryID:  req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		Type:        req.Type,
	}

	if err := database.DB.Create(&txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	resp, err := fetchTransaction(userID, txn.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", resp)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录，支持按类型/分类/日期范围筛选和分页，按日期倒序、创建时间倒序排列
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型筛选（income/expense）"
// @Param category query int false "分类ID筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]TransactionResponse}} "获取成功"
// @Failure 400 {object} Response "筛选参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)
	query, err := applyTransactionFilters(query, &req.TransactionFilterRequest)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-01-01")
		return
	}

	var total int64
	query.Count(&total)

	var list []TransactionResponse
	offset := (req.Page - 1) * req.PageSize
	if err := query.
		Select(transactionColumns).
		Joins(transactionJoin).
		Order("transactions.date DESC, transactions.created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Scan(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     list,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Description 根据ID获取交易记录详情
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=TransactionResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	resp, err := fetchTransaction(userID, uint(id))
	if err != nil {
		NotFound(c, "记录不存在")
		return
	}
	Success(c, resp)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 更新指定的交易记录；变更分类或类型时重新校验分类归属与类型一致性
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionResponse} "更新成功"
// @Failure 400 {object} Response "参数错误或分类校验失败"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 先推算更新后的类型和分类，再整体校验一致性
	newType := txn.Type
	if req.Type != "" {
		newType = req.Type
	}
	newCategoryID := txn.CategoryID
	if req.Category != nil {
		if *req.Category == 0 {
			newCategoryID = nil
		} else {
			newCategoryID = req.Category
		}
	}
	if newCategoryID != nil {
		if msg, ok := validateCategoryRef(userID, *newCategoryID, newType); !ok {
			BadRequest(c, msg)
			return
		}
	}

	updates := map[string]interface{}{}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-01-10")
			return
		}
		updates["date"] = date
	}
	if req.Category != nil {
		updates["category_id"] = newCategoryID
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		resp, _ := fetchTransaction(userID, txn.ID)
		SuccessWithMessage(c, "无需更新", resp)
		return
	}

	if err := database.DB.Model(&txn).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	resp, err := fetchTransaction(userID, txn.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", resp)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除指定的交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
