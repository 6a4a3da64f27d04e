package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// categoryRows 构造 categories 表的查询结果
func categoryRows(id uint, userID uint, name, catType string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "name", "type", "color", "icon", "created_at", "deleted_at"}).
		AddRow(id, userID, name, catType, "#ef4444", "🍔", now, nil)
}

// transactionRespRows 构造交易列表/详情的联表查询结果
func transactionRespRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "category_id", "category_name", "category_color", "category_icon",
		"amount", "description", "date", "type", "created_at", "updated_at",
	})
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 校验分类：属于用户 1 的支出分类
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, 1).
		WillReturnRows(categoryRows(1, 1, "Food", "expense"))

	// INSERT transaction
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// 创建后回读
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1, 1).
		WillReturnRows(transactionRespRows().
			AddRow(1, 1, "Food", "#ef4444", "🍔", 50.00, "午餐", "2024-01-10", "expense", now, now))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"amount":50.00,"type":"expense","date":"2024-01-10","category":1,"description":"午餐"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 50.00, data["amount"])
	assert.Equal(t, "Food", data["category_name"])
	assert.Equal(t, "2024-01-10", data["date"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_TypeMismatch(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 分类是支出类型，但交易是收入：校验失败，不应有 INSERT
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1, 1).
		WillReturnRows(categoryRows(1, 1, "Food", "expense"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"amount":200.00,"type":"income","date":"2024-01-10","category":1}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "类型")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_CrossOwnerCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 分类属于其他用户：按 (id, user_id) 查询返回空
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"amount":10.00,"type":"expense","date":"2024-01-10","category":7}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "分类不存在或不属于当前用户")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_NoCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 不带分类的交易无需校验分类
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(3, 1).
		WillReturnRows(transactionRespRows().
			AddRow(3, nil, "", "", "", 9.90, "", "2024-02-01", "expense", now, now))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler().Create)

	body := `{"amount":9.90,"type":"expense","date":"2024-02-01"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["category"])
	assert.Equal(t, "", data["category_name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count.* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRespRows().
			AddRow(2, 1, "Food", "#ef4444", "🍔", 30.00, "", "2024-01-20", "expense", now, now).
			AddRow(1, 1, "Food", "#ef4444", "🍔", 50.00, "", "2024-01-10", "expense", now, now))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler().List)

	req := httptest.NewRequest("GET", "/transactions?type=expense&category=1&start_date=2024-01-01&end_date=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	list := data["list"].([]interface{})
	require.Len(t, list, 2)
	// 按日期倒序
	first := list[0].(map[string]interface{})
	assert.Equal(t, "2024-01-20", first["date"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_BadDate(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler().List)

	req := httptest.NewRequest("GET", "/transactions?start_date=not-a-date", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_Get_RoundTrip(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1, 1).
		WillReturnRows(transactionRespRows().
			AddRow(1, 1, "Food", "#ef4444", "🍔", 50.00, "午餐", "2024-01-10", "expense", now, now))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/:id", NewTransactionHandler().Get)

	req := httptest.NewRequest("GET", "/transactions/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, 50.00, data["amount"])
	assert.Equal(t, "午餐", data["description"])
	assert.Equal(t, "2024-01-10", data["date"])
	assert.Equal(t, "expense", data["type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 他人的记录按 (id, user_id) 查不到
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(99, 1).
		WillReturnRows(transactionRespRows())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/:id", NewTransactionHandler().Get)

	req := httptest.NewRequest("GET", "/transactions/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "amount", "description", "date", "type", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, nil, 50.00, "", now, "expense", now, now, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler().Delete)

	req := httptest.NewRequest("DELETE", "/transactions/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "删除成功")
	require.NoError(t, mock.ExpectationsWereMet())
}
