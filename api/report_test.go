package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 收入 200，支出 80 => 结余 120
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WithArgs(1, "income").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(200.0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WithArgs(1, "expense").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(80.0))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 200.0, data["income"])
	assert.Equal(t, 80.0, data["expense"])
	assert.Equal(t, 120.0, data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_Summary_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 无任何交易时各项为 0
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["income"])
	assert.Equal(t, 0.0, data["expense"])
	assert.Equal(t, 0.0, data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_Summary_DateFilter(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 日期筛选条件透传给两条 SUM 查询，日期参数以 time.Time 绑定
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WithArgs(1, start, end, "income").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(100.0))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WithArgs(1, start, end, "expense").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(30.0))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary?start_date=2024-01-01&end_date=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 70.0, data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_Summary_StoreError(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 查询失败时返回 500，而不是用 0 值充当统计结果
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `transactions`").
		WillReturnError(errors.New("connection lost"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_Summary_BadDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary?start_date=01/01/2024", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "日期格式错误")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_ByCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"category_name", "category_color", "category_icon", "type", "total", "count"}).
		AddRow("Food", "#ef4444", "🍔", "expense", 80.0, 2).
		AddRow("Transport", "#f59e0b", "🚗", "expense", 20.0, 1)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1).
		WillReturnRows(rows)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/by-category", NewReportHandler().ByCategory)

	req := httptest.NewRequest("GET", "/reports/by-category", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Food", first["category_name"])
	assert.Equal(t, 80.0, first["total"])
	assert.Equal(t, 2.0, first["count"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_ByCategory_Uncategorized(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 无分类的交易归入空名称组
	rows := sqlmock.NewRows([]string{"category_name", "category_color", "category_icon", "type", "total", "count"}).
		AddRow("", "", "", "expense", 15.0, 1)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1).
		WillReturnRows(rows)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/by-category", NewReportHandler().ByCategory)

	req := httptest.NewRequest("GET", "/reports/by-category", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, "", item["category_name"])
	assert.Equal(t, 15.0, item["total"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_MonthlyTrend(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"month", "type", "total"}).
		AddRow("2024-01", "expense", 30.0).
		AddRow("2024-01", "income", 100.0).
		AddRow("2024-02", "expense", 45.0)
	mock.ExpectQuery("SELECT DATE_FORMAT\\(transactions.date, '%Y-%m'\\) AS month").
		WillReturnRows(rows)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/monthly-trend", NewReportHandler().MonthlyTrend)

	req := httptest.NewRequest("GET", "/reports/monthly-trend", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 3)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "2024-01", first["month"])
	assert.Equal(t, "expense", first["type"])
	assert.Equal(t, 30.0, first["total"])
	require.NoError(t, mock.ExpectationsWereMet())
}
