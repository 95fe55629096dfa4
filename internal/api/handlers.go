package api

import (
	"net/http"
	"strconv"

	"listable/internal/model"

	"github.com/gin-gonic/gin"
)

// 更新请求按字段整体覆盖，只校验存储宽度，空字符串同样写入。
type updateListRequest struct {
	Name  string `json:"name" binding:"max=64"`
	Color string `json:"color" binding:"max=7"`
}

type updateTaskRequest struct {
	Title   string `json:"title" binding:"max=128"`
	Content string `json:"content"`
	Status  string `json:"status" binding:"max=32"`
}

// handleStatuses 返回任务状态及其展示颜色。
//
// GET /statuses
func (s *Server) handleStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, model.Statuses())
}

// handleListLists 返回调用者的全部清单（含任务）。
//
// GET /lists
func (s *Server) handleListLists(c *gin.Context) {
	lists, err := s.board.ListLists(c.Request.Context(), s.identity(c))
	if err != nil {
		s.respondError(c, "list lists", err)
		return
	}
	if lists == nil {
		lists = []model.List{} // JSON 输出 [] 而不是 null
	}
	c.JSON(http.StatusOK, lists)
}

// handleCreateList 以默认名称与颜色创建清单。
//
// POST /lists
func (s *Server) handleCreateList(c *gin.Context) {
	list, err := s.board.CreateList(c.Request.Context(), s.identity(c))
	if err != nil {
		s.respondError(c, "create list", err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GET /lists/:id
func (s *Server) handleGetList(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid list id")
	if !ok {
		return
	}
	list, err := s.board.GetList(c.Request.Context(), s.identity(c), id)
	if err != nil {
		s.respondError(c, "get list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PUT /lists/:id
func (s *Server) handleUpdateList(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid list id")
	if !ok {
		return
	}
	var req updateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list data"})
		return
	}
	list, err := s.board.UpdateList(c.Request.Context(), s.identity(c), id, req.Name, req.Color)
	if err != nil {
		s.respondError(c, "update list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// handleDeleteList 删除清单及其全部任务。
//
// DELETE /lists/:id
func (s *Server) handleDeleteList(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid list id")
	if !ok {
		return
	}
	if err := s.board.DeleteList(c.Request.Context(), s.identity(c), id); err != nil {
		s.respondError(c, "delete list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleCreateTask 在清单下创建默认任务。
//
// POST /lists/:id/tasks
func (s *Server) handleCreateTask(c *gin.Context) {
	listID, ok := parseID(c, "id", "invalid list id")
	if !ok {
		return
	}
	task, err := s.board.CreateTask(c.Request.Context(), s.identity(c), listID)
	if err != nil {
		s.respondError(c, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GET /tasks/:id
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task id")
	if !ok {
		return
	}
	task, err := s.board.GetTask(c.Request.Context(), s.identity(c), id)
	if err != nil {
		s.respondError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT /tasks/:id
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task data"})
		return
	}
	task, err := s.board.UpdateTask(c.Request.Context(), s.identity(c), id, req.Title, req.Content, model.TaskStatus(req.Status))
	if err != nil {
		s.respondError(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task id")
	if !ok {
		return
	}
	if err := s.board.DeleteTask(c.Request.Context(), s.identity(c), id); err != nil {
		s.respondError(c, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleMoveTask 将任务移动到另一个清单，只修改 list_id。
//
// POST /tasks/:id/move/:list_id
func (s *Server) handleMoveTask(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid task id")
	if !ok {
		return
	}
	listID, ok := parseID(c, "list_id", "invalid list id")
	if !ok {
		return
	}
	task, err := s.board.MoveTask(c.Request.Context(), s.identity(c), id, listID)
	if err != nil {
		s.respondError(c, "move task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// parseID 解析路径参数中的正整数 ID，失败时直接写入 400。
func parseID(c *gin.Context, key, msg string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return uint(v), true
}
