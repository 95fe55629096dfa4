package store

import (
	"context"
	"fmt"

	"listable/internal/model"

	"gorm.io/gorm"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// CreateList 持久化新清单。
func (s *Store) CreateList(ctx context.Context, list *model.List) error {
	if err := s.db.WithContext(ctx).Omit("Tasks").Create(list).Error; err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

// GetList 按 ID 查询清单（不含任务）。
func (s *Store) GetList(ctx context.Context, id uint) (*model.List, error) {
	var list model.List
	if err := s.db.WithContext(ctx).First(&list, id).Error; err != nil {
		return nil, wrap("get list", err)
	}
	return &list, nil
}

// GetListWithTasks 查询清单及其任务，任务按 ID 升序。
func (s *Store) GetListWithTasks(ctx context.Context, id uint) (*model.List, error) {
	var list model.List
	if err := s.db.WithContext(ctx).Preload("Tasks", orderByID).First(&list, id).Error; err != nil {
		return nil, wrap("get list", err)
	}
	return &list, nil
}

// ListLists 返回清单集合（按 ID 升序）。ownerID 为空时返回全部清单。
func (s *Store) ListLists(ctx context.Context, ownerID *uint) ([]model.List, error) {
	lists := []model.List{}
	q := s.db.WithContext(ctx).Preload("Tasks", orderByID).Order("id ASC")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	if err := q.Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// UpdateList 覆盖清单名称与颜色。
func (s *Store) UpdateList(ctx context.Context, id uint, name, color string) error {
	res := s.db.WithContext(ctx).Model(&model.List{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "color": color})
	if res.Error != nil {
		return fmt.Errorf("update list: %w", res.Error)
	}
	return nil
}

// DeleteList 在同一事务中删除清单的全部任务及清单本身，任一步失败整体回滚。
func (s *Store) DeleteList(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.List{})
		if res.Error != nil {
			return fmt.Errorf("delete list: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
