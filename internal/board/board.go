// Package board 实现清单与任务的 CRUD 操作以及归属校验。
//
// 每个操作都显式接收调用者身份 Identity；多用户模式下只有清单的所有者
// 才能读写该清单及其中的任务，单用户模式下校验为空操作。
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"listable/internal/model"
	"listable/internal/pkg/metrics"
	"listable/internal/store"
)

var (
	// ErrNotFound 引用的清单或任务不存在。
	ErrNotFound = errors.New("not found")
	// ErrForbidden 调用者不是清单所有者。
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidStatus 任务状态不在枚举内。
	ErrInvalidStatus = errors.New("invalid task status")
)

// Identity 表示一次请求解析出的调用者身份。
type Identity struct {
	UserID        uint
	Authenticated bool
}

// User 返回已认证用户的身份。
func User(id uint) Identity {
	return Identity{UserID: id, Authenticated: true}
}

// Anonymous 返回匿名身份（单用户模式）。
func Anonymous() Identity {
	return Identity{}
}

// Store 是 Service 依赖的持久化接口。
type Store interface {
	CreateList(ctx context.Context, list *model.List) error
	GetList(ctx context.Context, id uint) (*model.List, error)
	GetListWithTasks(ctx context.Context, id uint) (*model.List, error)
	ListLists(ctx context.Context, ownerID *uint) ([]model.List, error)
	UpdateList(ctx context.Context, id uint, name, color string) error
	DeleteList(ctx context.Context, id uint) error

	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id uint) (*model.Task, error)
	UpdateTask(ctx context.Context, id uint, title, content string, status model.TaskStatus) error
	MoveTask(ctx context.Context, id uint, listID uint) error
	DeleteTask(ctx context.Context, id uint) error
}

// Options 控制归属模型与两处可配置的校验。
type Options struct {
	// MultiUser 为 false 时清单没有所有者，归属校验总是通过。
	MultiUser bool
	// StrictStatus 为 true 时更新任务拒绝枚举外的状态。
	StrictStatus bool
	// CheckMoveDestination 为 true 时移动任务还要求调用者拥有目标清单。
	CheckMoveDestination bool
}

// Service 提供清单与任务操作。
type Service struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewService 创建 Service。
func NewService(st Store, opts Options, logger *slog.Logger) *Service {
	return &Service{store: st, opts: opts, logger: logger}
}

// Options 返回当前配置。
func (s *Service) Options() Options {
	return s.opts
}

// owner 返回新建清单的所有者，单用户模式下为空。
func (s *Service) owner(caller Identity) *uint {
	if !s.opts.MultiUser {
		return nil
	}
	id := caller.UserID
	return &id
}

// authorize 校验调用者是否拥有清单。
func (s *Service) authorize(op string, caller Identity, list *model.List) error {
	if !s.opts.MultiUser {
		return nil
	}
	if caller.Authenticated && list.OwnedBy(caller.UserID) {
		return nil
	}
	metrics.ObserveDenied(op)
	if s.logger != nil {
		s.logger.Info("access denied",
			slog.String("op", op),
			slog.Uint64("user_id", uint64(caller.UserID)),
			slog.Uint64("list_id", uint64(list.ID)))
	}
	return ErrForbidden
}

// loadList 查询清单并执行归属校验；不存在优先于无权限。
func (s *Service) loadList(ctx context.Context, op string, caller Identity, id uint) (*model.List, error) {
	list, err := s.store.GetList(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.authorize(op, caller, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadTask 查询任务，并按其当前所属清单执行归属校验。
func (s *Service) loadTask(ctx context.Context, op string, caller Identity, id uint) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := s.loadList(ctx, op, caller, task.ListID); err != nil {
		return nil, err
	}
	return task, nil
}

func translate(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) observe(op string, err error) {
	if errors.Is(err, ErrForbidden) {
		return
	}
	metrics.ObserveOperation(op, err)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidStatus) && s.logger != nil {
		s.logger.Error("operation failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}

// IsDenied 判断错误是否属于静默拒绝（无权限）。
func IsDenied(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func wrapf(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidStatus) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
