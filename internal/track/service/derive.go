package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/entity"
)

// DeadlineClass 交期分类
const (
	DeadlineOverdue  = "OVERDUE"  // 已逾期
	DeadlineImminent = "IMMINENT" // 临近交期
	DeadlineNeither  = "NEITHER"
)

// 交期高亮提示，仅用于前端展示，不落库
const (
	DeadlineHintDanger  = "danger"
	DeadlineHintWarning = "warning"
	DeadlineHintNone    = ""
)

// SheetWeightKg 按张数换算重量(kg)
// 公式: 厚度 × (长度+5) × (宽度/100) × 0.0184 × 数量，保留一位小数
// 规格缺失或为零时返回 "0.0"，不报错
func SheetWeightKg(thickness, length, width float64, quantity int) string {
	if thickness <= 0 || length <= 0 || width <= 0 || quantity <= 0 {
		return "0.0"
	}
	kg := thickness * (length + 5) * (width / 100) * 0.0184 * float64(quantity)
	return fmt.Sprintf("%.1f", kg)
}

// ProductWeightKg 按产品规格换算重量
func ProductWeightKg(p *entity.Product, quantity int) string {
	if p == nil {
		return "0.0"
	}
	return SheetWeightKg(p.Thickness, p.Length, p.Width, quantity)
}

// ClassifyDeadline 交期分类: 逾期 / 临近 / 正常
// 已完成的工单一律返回 NEITHER。比较按自然日进行，imminentDays 为
// 含今天在内的前瞻窗口天数
func ClassifyDeadline(today, deliverBy time.Time, completed bool, imminentDays int) (class, hint string) {
	if completed {
		return DeadlineNeither, DeadlineHintNone
	}
	t := dateUTC(today)
	d := dateUTC(deliverBy)
	days := int(d.Sub(t).Hours() / 24)
	switch {
	case days < 0:
		return DeadlineOverdue, DeadlineHintDanger
	case days < imminentDays:
		return DeadlineImminent, DeadlineHintWarning
	default:
		return DeadlineNeither, DeadlineHintNone
	}
}

// 日期差按UTC重建的零点相减，本地时区夏令时切换日不足24小时，
// 直接相减会把跨切换日的一天差截断成零天
func dateUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatusOptions 可供选择的生产状态
// 无印刷产品不提供 PRINTING；COMPLETED 只能通过完工操作进入，不在列表中
func StatusOptions(printSide string) []string {
	if printSide == entity.PrintSideNone {
		return []string{entity.WOStatusNotStarted, entity.WOStatusExtruding, entity.WOStatusCutting}
	}
	return []string{entity.WOStatusNotStarted, entity.WOStatusExtruding, entity.WOStatusPrinting, entity.WOStatusCutting}
}

// StatusLabel 生产状态显示名
func StatusLabel(status string) string {
	switch status {
	case entity.WOStatusNotStarted:
		return "未开始"
	case entity.WOStatusExtruding:
		return "压出中"
	case entity.WOStatusPrinting:
		return "印刷中"
	case entity.WOStatusCutting:
		return "裁切中"
	case entity.WOStatusCompleted:
		return "已完成"
	}
	return status
}

// PlateStatusLabel 铜版状态显示名
func PlateStatusLabel(status string) string {
	switch status {
	case entity.PlateStatusNew:
		return "新版"
	case entity.PlateStatusUpdate:
		return "改版"
	case entity.PlateStatusConfirm:
		return "确认"
	}
	return status
}

// DeliveryMethodLabel 出货方式显示名
func DeliveryMethodLabel(method string) string {
	switch method {
	case entity.DeliveryTBD:
		return "待定"
	case entity.DeliveryCourier:
		return "快递"
	case entity.DeliveryDirect:
		return "直送"
	case entity.DeliveryExpress:
		return "加急"
	}
	return method
}
