package store

import (
	"context"
	"fmt"

	"listable/internal/model"
)

// CreateTask 持久化新任务。
func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask 按 ID 查询任务。
func (s *Store) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, wrap("get task", err)
	}
	return &task, nil
}

// UpdateTask 覆盖任务标题、内容与状态。
func (s *Store) UpdateTask(ctx context.Context, id uint, title, content string, status model.TaskStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "content": content, "status": string(status)})
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	return nil
}

// MoveTask 将任务改挂到另一个清单，只修改 list_id。
func (s *Store) MoveTask(ctx context.Context, id uint, listID uint) error {
	res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Update("list_id", listID)
	if res.Error != nil {
		return fmt.Errorf("move task: %w", res.Error)
	}
	return nil
}

// DeleteTask 删除任务。
func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
