package board

import (
	"context"

	"listable/internal/model"
)

// CreateTask 在指定清单下创建默认任务（"New Task"，空内容，TODO）。
func (s *Service) CreateTask(ctx context.Context, caller Identity, listID uint) (task *model.Task, err error) {
	defer func() { s.observe("create_task", err) }()

	if _, err := s.loadList(ctx, "create_task", caller, listID); err != nil {
		return nil, err
	}
	task = model.NewTask(listID)
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, wrapf("create task", err)
	}
	return task, nil
}

// GetTask 返回单个任务。
func (s *Service) GetTask(ctx context.Context, caller Identity, id uint) (task *model.Task, err error) {
	defer func() { s.observe("get_task", err) }()

	return s.loadTask(ctx, "get_task", caller, id)
}

// UpdateTask 覆盖任务标题、内容与状态。
//
// 先校验存在与归属，再校验状态；StrictStatus 关闭时接受任意状态字符串。
func (s *Service) UpdateTask(ctx context.Context, caller Identity, id uint, title, content string, status model.TaskStatus) (task *model.Task, err error) {
	defer func() { s.observe("update_task", err) }()

	task, err = s.loadTask(ctx, "update_task", caller, id)
	if err != nil {
		return nil, err
	}
	if s.opts.StrictStatus && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.store.UpdateTask(ctx, id, title, content, status); err != nil {
		return nil, wrapf("update task", translate(err))
	}
	task.Title = title
	task.Content = content
	task.Status = status
	return task, nil
}

// DeleteTask 删除任务。
func (s *Service) DeleteTask(ctx context.Context, caller Identity, id uint) (err error) {
	defer func() { s.observe("delete_task", err) }()

	if _, err := s.loadTask(ctx, "delete_task", caller, id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return wrapf("delete task", translate(err))
	}
	return nil
}

// MoveTask 将任务移动到另一个清单，只修改 list_id。
//
// 归属校验基于任务移动前所在的清单；目标清单必须存在。
// CheckMoveDestination 开启时还要求调用者拥有目标清单。
func (s *Service) MoveTask(ctx context.Context, caller Identity, id uint, destListID uint) (task *model.Task, err error) {
	defer func() { s.observe("move_task", err) }()

	task, err = s.loadTask(ctx, "move_task", caller, id)
	if err != nil {
		return nil, err
	}
	dest, err := s.store.GetList(ctx, destListID)
	if err != nil {
		return nil, wrapf("move task", translate(err))
	}
	if s.opts.CheckMoveDestination {
		if err := s.authorize("move_task", caller, dest); err != nil {
			return nil, err
		}
	}
	if err := s.store.MoveTask(ctx, id, destListID); err != nil {
		return nil, wrapf("move task", translate(err))
	}
	task.ListID = destListID
	return task, nil
}
