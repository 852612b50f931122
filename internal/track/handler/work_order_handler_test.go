package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/bitfantasy/filmtrack/internal/track/sse"
	"github.com/bitfantasy/filmtrack/internal/track/testutil"
)

func setupWorkOrderTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	cache := service.NewListCache(nil, 0)
	hub := sse.NewHub()
	woSvc := service.NewWorkOrderService(repos.WorkOrder, repos.Product, repos.Account, cache, hub, 3)
	handler := NewWorkOrderHandler(woSvc, cache)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	workOrders := api.Group("/work-orders")
	workOrders.POST("", handler.Create)
	workOrders.GET("/:id", handler.Get)
	workOrders.GET("/:id/status-options", handler.StatusOptions)
	workOrders.PUT("/:id/status", handler.UpdateStatus)
	workOrders.POST("/:id/complete", handler.Complete)
	workOrders.POST("/:id/deliver", handler.Deliver)
	workOrders.PUT("/:id/plate-status", handler.UpdatePlateStatus)
	workOrders.POST("/:id/plate-ready", handler.MarkPlateReady)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func seedPrintedProduct(t *testing.T, env *testutil.TestEnv) *entity.Product {
	t.Helper()
	testutil.SeedAccount(t, env.DB, "acc-001", "C001", "胶片客户A")
	return testutil.SeedProduct(t, env.DB, "prod-001", "acc-001", "P001", "印刷胶片", 0.07, 20, 13, entity.PrintSideSingle)
}

// TestWorkOrderLifecycle walks a work order from creation through delivery
func TestWorkOrderLifecycle(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	seedPrintedProduct(t, env)

	// 创建工单
	body := map[string]interface{}{
		"product_id":     "prod-001",
		"deliver_by":     time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
		"order_quantity": 1000,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	woID := data["id"].(string)
	if data["work_order_status"].(string) != entity.WOStatusNotStarted {
		t.Errorf("new work order status = %v, want NOT_STARTED", data["work_order_status"])
	}
	if data["order_weight"].(string) != "4.2" {
		t.Errorf("order_weight = %v, want 4.2", data["order_weight"])
	}

	// 推进状态
	for _, status := range []string{entity.WOStatusExtruding, entity.WOStatusPrinting, entity.WOStatusCutting} {
		w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+woID+"/status",
			map[string]interface{}{"status": status}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("status %s: expected 200, got %d: %s", status, w.Code, w.Body.String())
		}
	}

	// 完工
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders/"+woID+"/complete",
		map[string]interface{}{"completed_quantity": 980}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["work_order_status"].(string) != entity.WOStatusCompleted {
		t.Errorf("status after complete = %v, want COMPLETED", data["work_order_status"])
	}
	if data["completed_at"] == nil {
		t.Error("completed_at not set after complete")
	}
	if data["completed_quantity"].(float64) != 980 {
		t.Errorf("completed_quantity = %v, want 980", data["completed_quantity"])
	}

	// 完工后不可再变更状态
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+woID+"/status",
		map[string]interface{}{"status": entity.WOStatusCutting}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status change after complete: expected 400, got %d", w.Code)
	}

	// 出货确认
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders/"+woID+"/deliver",
		map[string]interface{}{"delivered_quantity": 980}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["delivered_at"] == nil {
		t.Error("delivered_at not set after deliver")
	}
}

// TestWorkOrderStatusRules verifies the two hard gating rules
func TestWorkOrderStatusRules(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	seedPrintedProduct(t, env)
	noPrint := testutil.SeedProduct(t, env.DB, "prod-002", "acc-001", "P002", "无印刷胶片", 0.07, 20, 13, entity.PrintSideNone)

	wo := testutil.SeedWorkOrder(t, env.DB, "wo-noprint-01", noPrint, entity.WOStatusExtruding, 500, time.Now().AddDate(0, 0, 10))

	// 无印刷产品不可进入印刷状态
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+wo.ID+"/status",
		map[string]interface{}{"status": entity.WOStatusPrinting}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("PRINTING for NONE print side: expected 400, got %d", w.Code)
	}

	// 状态选项中也不提供印刷
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/work-orders/"+wo.ID+"/status-options", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status-options: expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	for _, opt := range data["options"].([]interface{}) {
		if opt.(string) == entity.WOStatusPrinting {
			t.Error("status options include PRINTING for NONE print side")
		}
		if opt.(string) == entity.WOStatusCompleted {
			t.Error("status options include COMPLETED")
		}
	}

	// COMPLETED 不能经状态接口进入
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+wo.ID+"/status",
		map[string]interface{}{"status": entity.WOStatusCompleted}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("direct COMPLETED: expected 400, got %d", w.Code)
	}

	// 仅裁切中可完工
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders/"+wo.ID+"/complete",
		map[string]interface{}{"completed_quantity": 500}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("complete from EXTRUDING: expected 400, got %d", w.Code)
	}

	// 回退纠错是允许的
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+wo.ID+"/status",
		map[string]interface{}{"status": entity.WOStatusNotStarted}, token)
	if w.Code != http.StatusOK {
		t.Errorf("backward move: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestPlateStatusSuggestion verifies the one-shot new-plate suggestion
// and the joint plate_status / is_plate_ready update
func TestPlateStatusSuggestion(t *testing.T) {
	env := setupWorkOrderTest(t)
	token := testutil.DefaultTestToken()
	product := seedPrintedProduct(t, env)

	wo := testutil.SeedWorkOrder(t, env.DB, "wo-plate-01", product, entity.WOStatusNotStarted, 500, time.Now().AddDate(0, 0, 10))
	env.DB.Model(&entity.WorkOrder{}).Where("id = ?", wo.ID).
		Updates(map[string]interface{}{"plate_status": entity.PlateStatusNew, "is_plate_ready": false})

	// NEW → CONFIRM 触发一次性建议，且就绪标志联动置位
	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+wo.ID+"/plate-status",
		map[string]interface{}{"plate_status": entity.PlateStatusConfirm}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("plate-status: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["suggest_new_plate"].(bool) != true {
		t.Error("NEW→CONFIRM should suggest a new plate")
	}
	woData := data["work_order"].(map[string]interface{})
	if woData["plate_status"].(string) != entity.PlateStatusConfirm || woData["is_plate_ready"].(bool) != true {
		t.Errorf("plate fields = (%v, %v), want (CONFIRM, true)", woData["plate_status"], woData["is_plate_ready"])
	}

	// 重复推进到 CONFIRM 不再触发建议
	w = testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/work-orders/"+wo.ID+"/plate-status",
		map[string]interface{}{"plate_status": entity.PlateStatusConfirm}, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["suggest_new_plate"].(bool) != false {
		t.Error("repeated CONFIRM should not suggest again")
	}

	// UPDATE → CONFIRM 也不触发建议
	wo2 := testutil.SeedWorkOrder(t, env.DB, "wo-plate-02", product, entity.WOStatusNotStarted, 500, time.Now().AddDate(0, 0, 10))
	env.DB.Model(&entity.WorkOrder{}).Where("id = ?", wo2.ID).
		Updates(map[string]interface{}{"plate_status": entity.PlateStatusUpdate, "is_plate_ready": false})

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/work-orders/"+wo2.ID+"/plate-ready", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("plate-ready: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["suggest_new_plate"].(bool) != false {
		t.Error("UPDATE→CONFIRM should not suggest a new plate")
	}
	woData = data["work_order"].(map[string]interface{})
	if woData["is_plate_ready"].(bool) != true {
		t.Error("plate-ready should set is_plate_ready")
	}
}

func TestWorkOrderAuthRequired(t *testing.T) {
	env := setupWorkOrderTest(t)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/work-orders/any-id", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}
