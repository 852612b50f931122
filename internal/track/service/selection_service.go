package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/filmtrack/internal/track/sse"
)

// SelectionService 勾选集协调器
// 维护每个用户在分页/虚拟滚动列表上的工作勾选集。列表未全量加载，
// 因此"全选"只作用于调用方当前可见的id集合；过滤条件变化后旧勾选
// 视为失效，先清空再应用本次操作。状态仅存在于进程内，随服务退出销毁
type SelectionService struct {
	mu   sync.Mutex
	sets map[string]*selectionSet

	woService *WorkOrderService
	hub       *sse.Hub
}

type selectionSet struct {
	filterSig string
	selected  map[string]struct{}
}

func NewSelectionService(woService *WorkOrderService, hub *sse.Hub) *SelectionService {
	return &SelectionService{
		sets:      make(map[string]*selectionSet),
		woService: woService,
		hub:       hub,
	}
}

func selectionKey(userID, scope string) string {
	return userID + "|" + scope
}

// 取出勾选集；filterSig变化时重置
func (s *SelectionService) setFor(userID, scope, filterSig string) *selectionSet {
	key := selectionKey(userID, scope)
	set, ok := s.sets[key]
	if !ok || set.filterSig != filterSig {
		set = &selectionSet{filterSig: filterSig, selected: make(map[string]struct{})}
		s.sets[key] = set
	}
	return set
}

// Toggle 切换单个id的勾选状态
func (s *SelectionService) Toggle(userID, scope, filterSig, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setFor(userID, scope, filterSig)
	if _, ok := set.selected[id]; ok {
		delete(set.selected, id)
	} else {
		set.selected[id] = struct{}{}
	}
}

// SelectAll 对可见id集合执行全选切换
// 可见行已全部勾选时取消它们，否则全部勾选；不触及未加载的行
func (s *SelectionService) SelectAll(userID, scope, filterSig string, visibleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setFor(userID, scope, filterSig)

	allSelected := len(visibleIDs) > 0
	for _, id := range visibleIDs {
		if _, ok := set.selected[id]; !ok {
			allSelected = false
			break
		}
	}
	for _, id := range visibleIDs {
		if allSelected {
			delete(set.selected, id)
		} else {
			set.selected[id] = struct{}{}
		}
	}
}

// Clear 清空勾选集
func (s *SelectionService) Clear(userID, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, selectionKey(userID, scope))
}

// SelectionState 勾选状态，Indeterminate为可见行部分勾选的三态信号
type SelectionState struct {
	SelectedIDs   []string `json:"selected_ids"`
	AllSelected   bool     `json:"all_selected"`
	Indeterminate bool     `json:"indeterminate"`
}

// State 当前勾选状态
func (s *SelectionService) State(userID, scope, filterSig string, visibleIDs []string) SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setFor(userID, scope, filterSig)

	state := SelectionState{SelectedIDs: make([]string, 0, len(set.selected))}
	for id := range set.selected {
		state.SelectedIDs = append(state.SelectedIDs, id)
	}
	visibleSelected := 0
	for _, id := range visibleIDs {
		if _, ok := set.selected[id]; ok {
			visibleSelected++
		}
	}
	state.AllSelected = len(visibleIDs) > 0 && visibleSelected == len(visibleIDs)
	state.Indeterminate = visibleSelected > 0 && visibleSelected < len(visibleIDs)
	return state
}

// Selected 当前勾选的id列表
func (s *SelectionService) Selected(userID, scope string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[selectionKey(userID, scope)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set.selected))
	for id := range set.selected {
		ids = append(ids, id)
	}
	return ids
}

// CompletionItem 批量完工时每个工单的完工数据
type CompletionItem struct {
	ID                string `json:"id"`
	CompletedQuantity int    `json:"completed_quantity"`
	CompletedAt       string `json:"completed_at"` // YYYY-MM-DD，缺省为今天
}

// CompletionResult 单个工单的完工结果
type CompletionResult struct {
	ID     string `json:"id"`
	WOCode string `json:"wo_code,omitempty"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// CompleteBatch 对当前勾选集执行批量完工
// 各工单独立调用完工操作，单个失败不回滚、不阻断其余工单；
// 成功的工单随即移出勾选集，结果逐个返回
func (s *SelectionService) CompleteBatch(ctx context.Context, userID, scope string, items []CompletionItem) []CompletionResult {
	selected := s.Selected(userID, scope)
	byID := make(map[string]CompletionItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	results := make([]CompletionResult, 0, len(selected))
	succeeded := 0
	for _, id := range selected {
		if ctx.Err() != nil {
			results = append(results, CompletionResult{ID: id, Reason: "操作已取消"})
			continue
		}
		item, ok := byID[id]
		if !ok {
			results = append(results, CompletionResult{ID: id, Reason: "缺少完工数据"})
			continue
		}

		completedAt := time.Now()
		if item.CompletedAt != "" {
			if t, err := time.Parse("2006-01-02", item.CompletedAt); err == nil {
				completedAt = t
			}
		}
		wo, err := s.woService.Complete(ctx, id, item.CompletedQuantity, completedAt, userID)
		if err != nil {
			results = append(results, CompletionResult{ID: id, Reason: fmt.Sprintf("%v", err)})
			continue
		}
		results = append(results, CompletionResult{ID: id, WOCode: wo.WOCode, OK: true})
		succeeded++
		s.unselect(userID, scope, id)
	}

	if s.hub != nil {
		s.hub.PublishBatchResult(userID, "work_order_completion", succeeded, len(results)-succeeded)
	}
	return results
}

func (s *SelectionService) unselect(userID, scope, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[selectionKey(userID, scope)]; ok {
		delete(set.selected, id)
	}
}
