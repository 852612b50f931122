package service

import (
	"testing"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
)

func TestSheetWeightKg(t *testing.T) {
	tests := []struct {
		name      string
		thickness float64
		length    float64
		width     float64
		quantity  int
		want      string
	}{
		{"标准规格", 0.07, 20, 13, 1000, "4.2"},
		{"小批量", 0.05, 30, 20, 500, "3.2"},
		{"厚度为零", 0, 20, 13, 1000, "0.0"},
		{"长度为零", 0.07, 0, 13, 1000, "0.0"},
		{"宽度为零", 0.07, 20, 0, 1000, "0.0"},
		{"数量为零", 0.07, 20, 13, 0, "0.0"},
		{"数量为负", 0.07, 20, 13, -5, "0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SheetWeightKg(tt.thickness, tt.length, tt.width, tt.quantity)
			if got != tt.want {
				t.Errorf("SheetWeightKg(%v, %v, %v, %d) = %q, want %q",
					tt.thickness, tt.length, tt.width, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestProductWeightKg(t *testing.T) {
	p := &entity.Product{Thickness: 0.07, Length: 20, Width: 13}
	if got := ProductWeightKg(p, 1000); got != "4.2" {
		t.Errorf("ProductWeightKg = %q, want %q", got, "4.2")
	}
	if got := ProductWeightKg(nil, 1000); got != "0.0" {
		t.Errorf("ProductWeightKg(nil) = %q, want %q", got, "0.0")
	}
}

func TestClassifyDeadline(t *testing.T) {
	today := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	tests := []struct {
		name      string
		deliverBy time.Time
		completed bool
		wantClass string
		wantHint  string
	}{
		{"昨天到期", day(-1), false, DeadlineOverdue, DeadlineHintDanger},
		{"一周前到期", day(-7), false, DeadlineOverdue, DeadlineHintDanger},
		{"今天到期", day(0), false, DeadlineImminent, DeadlineHintWarning},
		{"后天到期", day(2), false, DeadlineImminent, DeadlineHintWarning},
		{"三天后到期", day(3), false, DeadlineNeither, DeadlineHintNone},
		{"一个月后到期", day(30), false, DeadlineNeither, DeadlineHintNone},
		{"逾期但已完成", day(-7), true, DeadlineNeither, DeadlineHintNone},
		{"临近但已完成", day(1), true, DeadlineNeither, DeadlineHintNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, hint := ClassifyDeadline(today, tt.deliverBy, tt.completed, 3)
			if class != tt.wantClass || hint != tt.wantHint {
				t.Errorf("ClassifyDeadline = (%q, %q), want (%q, %q)", class, hint, tt.wantClass, tt.wantHint)
			}
		})
	}
}

// 夏令时切换日不足24小时，日期差不能按本地时间相减截断
func TestClassifyDeadlineAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2025-03-09 纽约进入夏令时，当天只有23小时
	today := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	deliverBy := time.Date(2025, 3, 9, 9, 0, 0, 0, loc)
	class, hint := ClassifyDeadline(today, deliverBy, false, 3)
	if class != DeadlineOverdue || hint != DeadlineHintDanger {
		t.Errorf("deliverBy yesterday across DST = (%q, %q), want (OVERDUE, danger)", class, hint)
	}

	// 三天后到期且中间跨过切换日，仍应在窗口之外
	today = time.Date(2025, 3, 8, 9, 0, 0, 0, loc)
	deliverBy = time.Date(2025, 3, 11, 9, 0, 0, 0, loc)
	class, _ = ClassifyDeadline(today, deliverBy, false, 3)
	if class != DeadlineNeither {
		t.Errorf("deliverBy in 3 days across DST = %q, want NEITHER", class)
	}

	// 退出夏令时当天有25小时，不得把一天差放大成两天
	today = time.Date(2025, 11, 1, 9, 0, 0, 0, loc)
	deliverBy = time.Date(2025, 11, 4, 9, 0, 0, 0, loc)
	class, _ = ClassifyDeadline(today, deliverBy, false, 3)
	if class != DeadlineNeither {
		t.Errorf("deliverBy in 3 days across DST end = %q, want NEITHER", class)
	}
}

// 交期比较按自然日进行，当天不同时刻不影响分类
func TestClassifyDeadlineIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, 8, 28, 23, 59, 0, 0, time.Local)
	deliverBy := time.Date(2026, 8, 28, 0, 1, 0, 0, time.Local)
	class, _ := ClassifyDeadline(today, deliverBy, false, 3)
	if class != DeadlineImminent {
		t.Errorf("same-day deadline classified as %q, want %q", class, DeadlineImminent)
	}
}

func TestStatusOptions(t *testing.T) {
	noPrint := StatusOptions(entity.PrintSideNone)
	for _, opt := range noPrint {
		if opt == entity.WOStatusPrinting {
			t.Error("NONE print side should not offer PRINTING")
		}
		if opt == entity.WOStatusCompleted {
			t.Error("COMPLETED should never be offered as a status option")
		}
	}
	if len(noPrint) != 3 {
		t.Errorf("NONE print side: got %d options, want 3", len(noPrint))
	}

	single := StatusOptions(entity.PrintSideSingle)
	if len(single) != 4 {
		t.Errorf("SINGLE print side: got %d options, want 4", len(single))
	}
	hasPrinting := false
	for _, opt := range single {
		if opt == entity.WOStatusPrinting {
			hasPrinting = true
		}
		if opt == entity.WOStatusCompleted {
			t.Error("COMPLETED should never be offered as a status option")
		}
	}
	if !hasPrinting {
		t.Error("SINGLE print side should offer PRINTING")
	}
}

func TestStatusLabels(t *testing.T) {
	if got := StatusLabel(entity.WOStatusExtruding); got != "压出中" {
		t.Errorf("StatusLabel(EXTRUDING) = %q", got)
	}
	if got := PlateStatusLabel(entity.PlateStatusConfirm); got != "确认" {
		t.Errorf("PlateStatusLabel(CONFIRM) = %q", got)
	}
	if got := DeliveryMethodLabel(entity.DeliveryExpress); got != "加急" {
		t.Errorf("DeliveryMethodLabel(EXPRESS) = %q", got)
	}
	// 未知取值原样返回
	if got := StatusLabel("UNKNOWN"); got != "UNKNOWN" {
		t.Errorf("StatusLabel(UNKNOWN) = %q", got)
	}
}
