package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"rhino-modeling-ai-api/internal/application/modeling"
	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/domain/repository"
	"rhino-modeling-ai-api/internal/interfaces/http/dto"
	"rhino-modeling-ai-api/pkg/logger"
)

// ModelingSessionHandler 建模会话处理器
type ModelingSessionHandler struct {
	cfg       *config.Config
	assistant *modeling.Assistant
}

func NewModelingSessionHandler(cfg *config.Config, assistant *modeling.Assistant) *ModelingSessionHandler {
	return &ModelingSessionHandler{
		cfg:       cfg,
		assistant: assistant,
	}
}

// CreateSession 创建建模会话
// @Summary 创建建模会话
// @Description 创建一个新的建模会话，描述可以稍后补充
// @Tags ModelingSessions
// @Accept json
// @Produce json
// @Param body body dto.CreateModelingSessionRequest false "会话描述"
// @Success 201 {object} dto.Response[dto.ModelingSessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions [post]
func (h *ModelingSessionHandler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateModelingSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := h.assistant.CreateSession(ctx, req.Description)
	if err != nil {
		writeError(c, ctx, err, "failed to create session")
		return
	}
	dto.Created(c, dto.ToModelingSessionResponse(session, ""))
}

// ListSessions 列出建模会话
// @Summary 列出建模会话
// @Description 按创建顺序分页列出会话
// @Tags ModelingSessions
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ModelingSessionListResponse]
// @Router /api/v1/modeling-sessions [get]
func (h *ModelingSessionHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	result, err := h.assistant.ListSessions(ctx, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		writeError(c, ctx, err, "failed to list sessions")
		return
	}

	sessions := make([]*dto.ModelingSessionSummaryResponse, 0, len(result.Items))
	for _, s := range result.Items {
		sessions = append(sessions, dto.ToModelingSessionSummaryResponse(s))
	}
	dto.SuccessWithPage(c, dto.ModelingSessionListResponse{Sessions: sessions},
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// GetSession 获取会话详情
// @Summary 获取会话详情
// @Description 返回描述、阶段、参数集、调参值、说明与当前脚本
// @Tags ModelingSessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.ModelingSessionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid} [get]
func (h *ModelingSessionHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)

	session, err := h.assistant.GetSession(ctx, sessionID)
	if err != nil {
		writeError(c, ctx, err, "failed to get session")
		return
	}

	html, err := modeling.RenderInstructionsHTML(session.Instructions)
	if err != nil {
		logger.Warn(ctx, "failed to render instructions html", "session_id", session.ID, "error", err.Error())
		html = ""
	}
	dto.Success(c, dto.ToModelingSessionResponse(session, html))
}

// ListTurns 列出会话轮次
// @Summary 列出会话轮次
// @Description 分页返回会话的输入输出记录
// @Tags ModelingSessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ModelingTurnListResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid}/turns [get]
func (h *ModelingSessionHandler) ListTurns(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)
	page := dto.BindPage(c)

	result, err := h.assistant.ListTurns(ctx, sessionID, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		writeError(c, ctx, err, "failed to list turns")
		return
	}

	turns := make([]*dto.ModelingTurnResponse, 0, len(result.Items))
	for _, t := range result.Items {
		turns = append(turns, dto.ToModelingTurnResponse(t))
	}
	dto.SuccessWithPage(c, dto.ModelingTurnListResponse{Turns: turns},
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// SuggestParameters 建议可调参数
// @Summary 建议可调参数
// @Description 基于会话描述向模型索要参数集并整体替换
// @Tags ModelingSessions
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.SuggestParametersRequest false "描述与模型覆写"
// @Success 200 {object} dto.Response[dto.ModelingSessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid}/parameters [post]
func (h *ModelingSessionHandler) SuggestParameters(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)

	var req dto.SuggestParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	session, err := h.assistant.SuggestParameters(ctx, &modeling.SuggestParametersInput{
		SessionID:   sessionID,
		Description: req.Description,
		Provider:    provider,
		Model:       model,
	})
	if err != nil {
		writeError(c, ctx, err, "failed to suggest parameters")
		return
	}
	dto.Success(c, dto.ToModelingSessionResponse(session, ""))
}

// TuneParameters 稀疏更新调参值
// @Summary 稀疏更新调参值
// @Description 请求体是对调参映射的 JSON merge patch
// @Tags ModelingSessions
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.ModelingSessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid}/parameters [patch]
func (h *ModelingSessionHandler) TuneParameters(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)

	patch, err := c.GetRawData()
	if err != nil {
		dto.BadRequest(c, "failed to read request body: "+err.Error())
		return
	}

	session, err := h.assistant.TuneParameters(ctx, &modeling.TuneParametersInput{
		SessionID: sessionID,
		Patch:     patch,
	})
	if err != nil {
		writeError(c, ctx, err, "failed to tune parameters")
		return
	}
	dto.Success(c, dto.ToModelingSessionResponse(session, ""))
}

// Generate 生成说明与脚本
// @Summary 生成说明与脚本
// @Description 按当前调参值生成建模步骤说明和 Rhino Python 脚本并落盘
// @Tags ModelingSessions
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.GenerateModelRequest false "模型覆写"
// @Success 200 {object} dto.Response[dto.GenerateModelResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid}/generate [post]
func (h *ModelingSessionHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)

	var req dto.GenerateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.assistant.GenerateModel(ctx, &modeling.GenerateInput{
		SessionID: sessionID,
		Provider:  provider,
		Model:     model,
	})
	if err != nil {
		writeError(c, ctx, err, "failed to generate model")
		return
	}
	dto.Success(c, dto.ToGenerateModelResponse(result))
}

// ApplyFeedback 按反馈修订脚本
// @Summary 按反馈修订脚本
// @Description 根据自由文本反馈修订当前脚本，总结改动并落盘
// @Tags ModelingSessions
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.FeedbackRequest true "反馈内容"
// @Success 200 {object} dto.Response[dto.FeedbackResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/modeling-sessions/{sid}/feedback [post]
func (h *ModelingSessionHandler) ApplyFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := dto.BindSessionID(c)

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.assistant.ApplyFeedback(ctx, &modeling.FeedbackInput{
		SessionID: sessionID,
		Feedback:  req.Feedback,
		Provider:  provider,
		Model:     model,
	})
	if err != nil {
		writeError(c, ctx, err, "failed to apply feedback")
		return
	}

	html, err := modeling.RenderInstructionsHTML(result.Session.Instructions)
	if err != nil {
		logger.Warn(ctx, "failed to render instructions html", "session_id", result.Session.ID, "error", err.Error())
		html = ""
	}
	dto.Success(c, dto.ToFeedbackResponse(result, html))
}
