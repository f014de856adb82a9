package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskmanager/internal/adapter/http/dto"
	"taskmanager/internal/adapter/http/mapper"
	"taskmanager/internal/adapter/http/middleware"
	"taskmanager/internal/adapter/http/validation"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/ports"
	"taskmanager/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), requester, domain.ListTasksParams{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
	})
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidQuery, apierrors.MsgFailListTask, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      mapper.ToTaskItems(page.Tasks, time.Now()),
		Pagination: mapper.ToPagination(page.Pagination),
	})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidQuery, apierrors.MsgFailGetTask, "failed to get task", zap.String("task_id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{Task: mapper.ToTaskItem(task, time.Now())})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	raw, ok := readObject(c, lang)
	if !ok {
		return
	}

	input, err := validation.BuildCreateTaskInput(raw)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailCreateTask, "failed to decode task")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), requester, input)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailCreateTask, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, dto.TaskMessageResponse{
		Message: apierrors.GetTransMsg(apierrors.MsgTaskCreated, lang, nil),
		Task:    mapper.ToTaskItem(task, time.Now()),
	})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	raw, ok := readObject(c, lang)
	if !ok {
		return
	}

	input, err := validation.BuildUpdateTaskInput(raw)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailUpdateTask, "failed to decode task")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), requester, c.Param("id"), input)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailUpdateTask, "failed to update task", zap.String("task_id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.TaskMessageResponse{
		Message: apierrors.GetTransMsg(apierrors.MsgTaskUpdated, lang, nil),
		Task:    mapper.ToTaskItem(task, time.Now()),
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), requester, c.Param("id")); err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidQuery, apierrors.MsgFailDeleteTask, "failed to delete task", zap.String("task_id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: apierrors.GetTransMsg(apierrors.MsgTaskDeleted, lang, nil),
	})
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	raw, ok := readObject(c, lang)
	if !ok {
		return
	}

	status, err := validation.BuildStatusInput(raw)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailUpdateStatus, "failed to decode task status")
		return
	}

	task, err := h.taskService.SetTaskStatus(c.Request.Context(), requester, c.Param("id"), status)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailUpdateStatus, "failed to update task status", zap.String("task_id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.TaskMessageResponse{
		Message: apierrors.GetTransMsg(apierrors.MsgTaskStatusUpdated, lang, nil),
		Task:    mapper.ToTaskItem(task, time.Now()),
	})
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidTaskPayload, apierrors.MsgFailUpdateStatus, "failed to complete task", zap.String("task_id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.TaskMessageResponse{
		Message: apierrors.GetTransMsg(apierrors.MsgTaskStatusUpdated, lang, nil),
		Task:    mapper.ToTaskItem(task, time.Now()),
	})
}

func (h *TaskHandler) TaskStats(c *gin.Context) {
	lang := middleware.GetLang(c)
	requester, ok := requireUser(c, lang)
	if !ok {
		return
	}

	stats, err := h.taskService.TaskStats(c.Request.Context(), requester)
	if err != nil {
		respondError(c, err, lang, apierrors.MsgInvalidQuery, apierrors.MsgFailTaskStats, "failed to compute task stats")
		return
	}

	c.JSON(http.StatusOK, dto.TaskStatsResponse{Stats: mapper.ToTaskStats(stats)})
}

// requireUser guards against a route registered without the auth middleware.
func requireUser(c *gin.Context, lang string) (domain.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.AbortWithStatusJSON(
			http.StatusUnauthorized,
			apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgUnauthorized, lang),
		)
	}
	return user, ok
}

func readObject(c *gin.Context, lang string) (map[string]json.RawMessage, bool) {
	body, err := c.GetRawData()
	if err == nil {
		var raw map[string]json.RawMessage
		if raw, err = validation.DecodeObject(body); err == nil {
			return raw, true
		}
	}

	c.JSON(
		http.StatusBadRequest,
		apierrors.CreateValidationError(http.StatusBadRequest, apierrors.MsgInvalidTaskPayload, nil, lang),
	)
	return nil, false
}

// respondError maps service errors to responses. Only unexpected failures are
// logged; their detail never reaches the client.
func respondError(c *gin.Context, err error, lang, invalidMsgKey, failMsgKey, logMsg string, fields ...zap.Field) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(
			http.StatusBadRequest,
			apierrors.CreateValidationError(http.StatusBadRequest, invalidMsgKey, mapper.ToViolations(verr), lang),
		)
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(
			http.StatusNotFound,
			apierrors.CreateError(http.StatusNotFound, apierrors.MsgTaskNotFound, lang),
		)
	default:
		zap.L().Error(logMsg, append(fields, zap.Error(err))...)
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, failMsgKey, lang),
		)
	}
}
