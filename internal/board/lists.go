package board

import (
	"context"

	"listable/internal/model"
)

// CreateList 为调用者创建一个带默认名称与颜色的空清单。
func (s *Service) CreateList(ctx context.Context, caller Identity) (list *model.List, err error) {
	defer func() { s.observe("create_list", err) }()

	list = model.NewList(s.owner(caller))
	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, wrapf("create list", err)
	}
	return list, nil
}

// GetList 返回单个清单及其任务。
func (s *Service) GetList(ctx context.Context, caller Identity, id uint) (list *model.List, err error) {
	defer func() { s.observe("get_list", err) }()

	if _, err := s.loadList(ctx, "get_list", caller, id); err != nil {
		return nil, err
	}
	list, err = s.store.GetListWithTasks(ctx, id)
	if err != nil {
		return nil, wrapf("get list", translate(err))
	}
	return list, nil
}

// ListLists 返回调用者的全部清单（单用户模式下为全部清单），按 ID 升序。
func (s *Service) ListLists(ctx context.Context, caller Identity) (lists []model.List, err error) {
	defer func() { s.observe("list_lists", err) }()

	lists, err = s.store.ListLists(ctx, s.owner(caller))
	if err != nil {
		return nil, wrapf("list lists", err)
	}
	return lists, nil
}

// UpdateList 覆盖清单名称与颜色。颜色格式不做校验。
func (s *Service) UpdateList(ctx context.Context, caller Identity, id uint, name, color string) (list *model.List, err error) {
	defer func() { s.observe("update_list", err) }()

	list, err = s.loadList(ctx, "update_list", caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateList(ctx, id, name, color); err != nil {
		return nil, wrapf("update list", translate(err))
	}
	list.Name = name
	list.Color = color
	return list, nil
}

// DeleteList 原子地删除清单及其全部任务。
func (s *Service) DeleteList(ctx context.Context, caller Identity, id uint) (err error) {
	defer func() { s.observe("delete_list", err) }()

	if _, err := s.loadList(ctx, "delete_list", caller, id); err != nil {
		return err
	}
	if err := s.store.DeleteList(ctx, id); err != nil {
		return wrapf("delete list", translate(err))
	}
	return nil
}
