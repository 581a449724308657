package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/trade-trigger/internal/metrics"
	model "github.com/zhouzirui/trade-trigger/internal/model/messaging"
	"github.com/zhouzirui/trade-trigger/internal/service/agent"
	"github.com/zhouzirui/trade-trigger/internal/service/inbox"
	"github.com/zhouzirui/trade-trigger/pkg/utils"
)

const replyTimeout = 60 * time.Second

// AgentID identifies replies written by the local agent.
const AgentID = model.DefaultTargetUserID

// Handler 中心频道消息的HTTP处理器
type Handler struct {
	inbox   *inbox.Service
	replier agent.Replier
}

// New 创建消息处理器。replier 为 nil 时不生成回复。
func New(inboxSvc *inbox.Service, replier agent.Replier) *Handler {
	return &Handler{inbox: inboxSvc, replier: replier}
}

// RegisterRoutes 注册消息相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messaging/central-channels/{channelID}/messages", h.handleSubmit)
	r.Get("/messaging/central-channels/{channelID}/messages", h.handleList)
}

// handleSubmit 接收一条消息并异步生成智能体回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var payload model.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.RawMessage.ChannelID != "" && payload.RawMessage.ChannelID != channelID {
		utils.RespondError(w, http.StatusBadRequest, "channelId does not match route")
		return
	}

	saved, err := h.inbox.Save(r.Context(), model.Message{
		ChannelID:  channelID,
		AuthorID:   payload.AuthorID,
		AuthorKind: model.AuthorUser,
		Content:    payload.Content,
		SourceType: payload.SourceType,
	})
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.InboxMessagesTotal.WithLabelValues(channelID).Inc()
	log.Printf("[messaging] stored message=%s channel=%s author=%s", saved.ID, channelID, saved.AuthorID)

	if h.replier != nil {
		go h.reply(saved)
	}

	utils.RespondData(w, http.StatusCreated, saved)
}

func (h *Handler) reply(prompt model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	text, err := h.replier.Reply(ctx, prompt.Content)
	if err != nil {
		log.Printf("[agent] reply to message=%s failed: %v", prompt.ID, err)
		return
	}

	reply, err := h.inbox.Save(ctx, model.Message{
		ChannelID:  prompt.ChannelID,
		AuthorID:   AgentID,
		AuthorKind: model.AuthorAgent,
		Content:    text,
		InReplyTo:  prompt.ID,
	})
	if err != nil {
		log.Printf("[agent] store reply to message=%s failed: %v", prompt.ID, err)
		return
	}
	log.Printf("[agent] replied message=%s: %s", reply.ID, reply.Content)
}

// handleList 返回频道内的全部消息
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	messages, err := h.inbox.List(r.Context(), channelID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, inbox.ErrChannelNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondData(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
