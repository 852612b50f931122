package service

import (
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
)

func testWO(status string) *entity.WorkOrder {
	return &entity.WorkOrder{
		ID:              "wo-test-001",
		WOCode:          "WO-202608280001",
		WorkOrderStatus: status,
	}
}

func TestValidateStatusChange(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		target    string
		printSide string
		wantErr   bool
	}{
		{"正常推进", entity.WOStatusNotStarted, entity.WOStatusExtruding, entity.PrintSideSingle, false},
		{"跳级推进", entity.WOStatusNotStarted, entity.WOStatusCutting, entity.PrintSideSingle, false},
		{"回退纠错", entity.WOStatusCutting, entity.WOStatusPrinting, entity.PrintSideSingle, false},
		{"回退到未开始", entity.WOStatusCutting, entity.WOStatusNotStarted, entity.PrintSideNone, false},
		{"无印刷不可进入印刷", entity.WOStatusExtruding, entity.WOStatusPrinting, entity.PrintSideNone, true},
		{"双面印刷可进入印刷", entity.WOStatusExtruding, entity.WOStatusPrinting, entity.PrintSideDouble, false},
		{"不可直接置为完成", entity.WOStatusCutting, entity.WOStatusCompleted, entity.PrintSideSingle, true},
		{"已完成不可变更", entity.WOStatusCompleted, entity.WOStatusCutting, entity.PrintSideSingle, true},
		{"无效状态", entity.WOStatusNotStarted, "SHIPPED", entity.PrintSideSingle, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStatusChange(testWO(tt.current), tt.target, tt.printSide)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateStatusChange(%s→%s, %s) error = %v, wantErr %v",
					tt.current, tt.target, tt.printSide, err, tt.wantErr)
			}
		})
	}
}

// 状态校验错误必须携带工单号，批量操作的失败原因靠它定位
func TestValidateStatusChangeErrorCarriesWOCode(t *testing.T) {
	wo := testWO(entity.WOStatusCompleted)
	err := validateStatusChange(wo, entity.WOStatusCutting, entity.PrintSideSingle)
	if err == nil {
		t.Fatal("expected error for completed work order")
	}
	if !strings.Contains(err.Error(), wo.WOCode) {
		t.Errorf("error %q does not contain WO code %q", err.Error(), wo.WOCode)
	}
}

// 同一时刻生成的工单号不得重复，否则批量导入会把生成冲突
// 误报成用户数据的"编号重复"
func TestNewWOCodeUnique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		code := newWOCode()
		if !strings.HasPrefix(code, "WO-") || len(code) != len("WO-20060102-")+8 {
			t.Fatalf("unexpected code shape: %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}

func TestValidateComplete(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		qty     int
		wantErr bool
	}{
		{"裁切中可完工", entity.WOStatusCutting, 500, false},
		{"未开始不可完工", entity.WOStatusNotStarted, 500, true},
		{"压出中不可完工", entity.WOStatusExtruding, 500, true},
		{"印刷中不可完工", entity.WOStatusPrinting, 500, true},
		{"已完成不可再完工", entity.WOStatusCompleted, 500, true},
		{"完工数量为零", entity.WOStatusCutting, 0, true},
		{"完工数量为负", entity.WOStatusCutting, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateComplete(testWO(tt.status), tt.qty)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateComplete(%s, %d) error = %v, wantErr %v", tt.status, tt.qty, err, tt.wantErr)
			}
		})
	}
}

func TestBuildView(t *testing.T) {
	today := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	product := &entity.Product{
		Thickness: 0.07, Length: 20, Width: 13,
		PrintSide: entity.PrintSideSingle,
	}
	wo := &entity.WorkOrder{
		WOCode:           "WO-202608280001",
		OrderQuantity:    1000,
		DeliveryQuantity: 800,
		DeliverBy:        today.AddDate(0, 0, 1),
		PlateStatus:      entity.PlateStatusNew,
		DeliveryMethod:   entity.DeliveryCourier,
		WorkOrderStatus:  entity.WOStatusExtruding,
		Product:          product,
	}

	v := buildView(wo, today, 3)
	if v.OrderWeight != "4.2" {
		t.Errorf("OrderWeight = %q, want %q", v.OrderWeight, "4.2")
	}
	if v.DeliveryWeight != "3.3" {
		t.Errorf("DeliveryWeight = %q, want %q", v.DeliveryWeight, "3.3")
	}
	if v.CompletedWeight != "" {
		t.Errorf("CompletedWeight = %q, want empty when not completed", v.CompletedWeight)
	}
	if v.DeadlineClass != DeadlineImminent || v.DeadlineHint != DeadlineHintWarning {
		t.Errorf("deadline = (%q, %q), want imminent/warning", v.DeadlineClass, v.DeadlineHint)
	}
	if v.StatusLabel != "压出中" {
		t.Errorf("StatusLabel = %q", v.StatusLabel)
	}
	if len(v.StatusOptions) != 4 {
		t.Errorf("StatusOptions = %v, want 4 options for SINGLE print side", v.StatusOptions)
	}
}

// 产品规格缺失时重量与状态选项按无印刷产品降级，不报错
func TestBuildViewWithoutProduct(t *testing.T) {
	today := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	wo := &entity.WorkOrder{
		WOCode:          "WO-202608280002",
		OrderQuantity:   1000,
		DeliverBy:       today.AddDate(0, 0, 30),
		WorkOrderStatus: entity.WOStatusNotStarted,
	}
	v := buildView(wo, today, 3)
	if v.OrderWeight != "0.0" || v.DeliveryWeight != "0.0" {
		t.Errorf("weights = (%q, %q), want 0.0/0.0", v.OrderWeight, v.DeliveryWeight)
	}
	if len(v.StatusOptions) != 3 {
		t.Errorf("StatusOptions = %v, want 3 options when product is missing", v.StatusOptions)
	}
}
