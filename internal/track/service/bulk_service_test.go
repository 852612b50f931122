package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

// fakeBulkCreator 可编排每行成败的批量创建后端
// failAlways 的行每轮都失败；failFirstRound 的行仅第一轮失败，
// 模拟依赖同批其他行的情形(如产品行依赖同批客户行)
type fakeBulkCreator struct {
	rounds         int
	failAlways     map[string]bool
	failFirstRound map[string]bool
}

func (f *fakeBulkCreator) EntityName() string { return "fakes" }

func (f *fakeBulkCreator) CreateMany(ctx context.Context, rows []json.RawMessage) (int, []FailedRow, error) {
	f.rounds++
	created := 0
	var failed []FailedRow
	for _, raw := range rows {
		key := string(raw)
		if f.failAlways[key] || (f.rounds == 1 && f.failFirstRound[key]) {
			failed = append(failed, FailedRow{Row: raw, Reason: "测试失败"})
			continue
		}
		created++
	}
	return created, failed, nil
}

func testBulkService() *BulkService {
	return NewBulkService(zap.NewNop(), nil, NewListCache(nil, 0), nil, nil, "")
}

func testRows(n int) []json.RawMessage {
	rows := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, json.RawMessage(fmt.Sprintf(`{"code":"R%03d"}`, i)))
	}
	return rows
}

func TestBulkCreateAllSucceed(t *testing.T) {
	svc := testBulkService()
	creator := &fakeBulkCreator{}

	result, err := svc.BulkCreate(context.Background(), creator, testRows(3), "user-1")
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if result.CreatedCount != 3 {
		t.Errorf("CreatedCount = %d, want 3", result.CreatedCount)
	}
	if len(result.FailedList) != 0 {
		t.Errorf("FailedList = %v, want empty", result.FailedList)
	}
	if result.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", result.Rounds)
	}
}

// 第一轮因行间依赖失败的行，下一轮重新提交后应全部成功
func TestBulkCreateRetriesTransientFailures(t *testing.T) {
	svc := testBulkService()
	rows := testRows(5)
	creator := &fakeBulkCreator{
		failFirstRound: map[string]bool{
			string(rows[1]): true,
			string(rows[3]): true,
		},
	}

	result, err := svc.BulkCreate(context.Background(), creator, rows, "user-1")
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if result.CreatedCount != 5 {
		t.Errorf("CreatedCount = %d, want 5", result.CreatedCount)
	}
	if len(result.FailedList) != 0 {
		t.Errorf("FailedList = %v, want empty after retry", result.FailedList)
	}
	if result.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", result.Rounds)
	}
}

// 某一轮零进展时剩余失败为永久失败，循环必须立即停止
func TestBulkCreateStopsOnZeroProgress(t *testing.T) {
	svc := testBulkService()
	rows := testRows(5)
	creator := &fakeBulkCreator{
		failAlways: map[string]bool{
			string(rows[1]): true,
			string(rows[3]): true,
		},
	}

	result, err := svc.BulkCreate(context.Background(), creator, rows, "user-1")
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if result.CreatedCount != 3 {
		t.Errorf("CreatedCount = %d, want 3", result.CreatedCount)
	}
	if len(result.FailedList) != 2 {
		t.Fatalf("FailedList has %d rows, want 2", len(result.FailedList))
	}
	// 第一轮3行成功，第二轮重提2行零进展后停止
	if result.Rounds != 2 {
		t.Errorf("Rounds = %d, want 2", result.Rounds)
	}
	if creator.rounds != 2 {
		t.Errorf("creator invoked %d times, want 2", creator.rounds)
	}
	for _, f := range result.FailedList {
		if f.Reason == "" {
			t.Error("failed row missing reason")
		}
	}
}

func TestBulkCreateAllFailFirstRound(t *testing.T) {
	svc := testBulkService()
	rows := testRows(3)
	creator := &fakeBulkCreator{
		failAlways: map[string]bool{
			string(rows[0]): true,
			string(rows[1]): true,
			string(rows[2]): true,
		},
	}

	result, err := svc.BulkCreate(context.Background(), creator, rows, "user-1")
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if result.CreatedCount != 0 {
		t.Errorf("CreatedCount = %d, want 0", result.CreatedCount)
	}
	if len(result.FailedList) != 3 {
		t.Errorf("FailedList has %d rows, want 3", len(result.FailedList))
	}
	if result.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", result.Rounds)
	}
}

func TestBulkCreateCancelledContext(t *testing.T) {
	svc := testBulkService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.BulkCreate(ctx, &fakeBulkCreator{}, testRows(3), "user-1")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestBulkCreateEmptyRows(t *testing.T) {
	svc := testBulkService()
	creator := &fakeBulkCreator{}

	result, err := svc.BulkCreate(context.Background(), creator, nil, "user-1")
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if result.CreatedCount != 0 || result.Rounds != 0 {
		t.Errorf("result = %+v, want zero created and zero rounds", result)
	}
	if creator.rounds != 0 {
		t.Errorf("creator invoked %d times, want 0", creator.rounds)
	}
}

func TestExportFailures(t *testing.T) {
	svc := testBulkService()
	failed := []FailedRow{
		{Row: json.RawMessage(`{"code":"A001"}`), Reason: "编号重复"},
		{Row: json.RawMessage(`{"code":"A002"}`), Reason: "客户不存在: C9"},
	}

	f, objectName, err := svc.ExportFailures(context.Background(), "accounts", failed)
	if err != nil {
		t.Fatalf("ExportFailures failed: %v", err)
	}
	if objectName != "" {
		t.Errorf("objectName = %q, want empty without MinIO", objectName)
	}

	sheet := "失败明细"
	if v, _ := f.GetCellValue(sheet, "B1"); v != "失败原因" {
		t.Errorf("header B1 = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "B2"); v != "编号重复" {
		t.Errorf("cell B2 = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "C3"); v != `{"code":"A002"}` {
		t.Errorf("cell C3 = %q", v)
	}
}
