// Package telegram связывает команды и кнопки Telegram-бота с реестром подписчиков.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/traffic_alert_bot/internal/models"
	"github.com/shenikar/traffic_alert_bot/internal/service"
)

const (
	textAdminAlreadySet   = "Администратор уже назначен."
	textAdminNeedsName    = "Для назначения администратора нужен username в Telegram."
	textAdminAssigned     = "Теперь вы администратор (%s)."
	textAlreadySubscribed = "Вы уже подписаны на уведомления."
	textAlreadyQueued     = "Ваша заявка уже в очереди — ожидайте одобрения администратора."
	textAccessRequested   = "Пользователь @%s запросил доступ к уведомлениям."
	textNoAdmin           = "Заявка принята, но администратор не указан — попробуйте позже."
	textRequestSent       = "Заявка отправлена администратору. Ожидайте решения."
	textAskAccess         = "Запросите доступ у администратора."
	textAdminOnly         = "Только администратор может использовать эту команду."
	textAdminOnlyList     = "Только администратор может просматривать этот список."
	textNoSubscribers     = "Нет ни одного подписанного пользователя."
	textSubscribersTitle  = "📋 Список подписанных пользователей:\n\n"
	textPendingEmpty      = "Список ожидания пуст."
	textPendingTitle      = "Список ожидания (pending):"
	textNotPending        = "Пользователь не в списке ожидания."
	textApprovedUser      = "Ваша заявка одобрена. Вы подписаны на уведомления."
	textApprovedAdmin     = "Пользователь @%s одобрен."
	textDeniedUser        = "Ваша заявка отклонена администратором."
	textDeniedAdmin       = "Пользователь @%s отклонён."
	textUnknownUser       = "Неизвестный пользователь."
	textNotSubscribed     = "Пользователь не был в списке подписчиков."
	textRevokedUser       = "Вам закрыт доступ к уведомлениям администратора."
	textRevokedAdmin      = "Доступ у @%s отозван."
	textUsage             = "Использование: /%s username"
	textBadCallback       = "Непонятная команда."
	textUnknownAction     = "Неизвестное действие."
	textStorageFailed     = "Не удалось сохранить изменения, попробуйте позже."

	buttonApprove = "✅ Одобрить"
	buttonDeny    = "❌ Отклонить"

	actionApprove = "approve"
	actionDeny    = "deny"
)

// BotAPI - часть клиента Telegram, которой пользуется бот
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type commandFunc func(ctx context.Context, msg *tgbotapi.Message)

// Handler обрабатывает обновления бота
type Handler struct {
	bot       BotAPI
	registry  service.SubscriberService
	incidents service.IncidentReader
	logger    *logrus.Logger
	commands  map[string]commandFunc

	// Ограничение на каждый запрос к Telegram из цикла обновлений
	sendTimeout time.Duration
}

func NewHandler(bot BotAPI, registry service.SubscriberService, incidents service.IncidentReader, sendTimeout time.Duration, logger *logrus.Logger) *Handler {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	h := &Handler{
		bot:         bot,
		registry:    registry,
		incidents:   incidents,
		logger:      logger,
		sendTimeout: sendTimeout,
	}
	h.commands = map[string]commandFunc{
		"start":           h.start,
		"set_me_as_admin": h.setMeAsAdmin,
		"actual":          h.actual,
		"access_list":     h.accessList,
		"pending":         h.pending,
		"approve":         h.adminOnly(h.decisionCommand(actionApprove)),
		"deny":            h.adminOnly(h.decisionCommand(actionDeny)),
		"revoke":          h.adminOnly(h.revoke),
	}
	return h
}

// Run читает обновления long polling до отмены ctx
func (h *Handler) Run(ctx context.Context, pollTimeout int) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := h.bot.GetUpdatesChan(cfg)

	h.logger.Info("Telegram bot started")
	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.logger.Info("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram: updates channel closed")
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate разбирает одно обновление: команду или нажатие кнопки
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithField("update_id", update.UpdateID).Errorf("Panic while handling update: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.callback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand() && update.Message.Chat != nil:
		cmd, ok := h.commands[update.Message.Command()]
		if !ok {
			h.logger.WithField("command", update.Message.Command()).Debug("Unknown command ignored")
			return
		}
		cmd(ctx, update.Message)
	}
}

func (h *Handler) start(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	handle := models.HandleOrFallback(username(msg.From), chatID)
	log := h.logger.WithFields(logrus.Fields{"handler": "telegram", "command": "start", "chat_id": chatID, "handle": handle})

	result, err := h.registry.RequestAccess(ctx, handle, chatID)
	if err != nil {
		log.WithError(err).Error("Failed to register access request")
		h.reply(ctx, chatID, textStorageFailed)
		return
	}

	switch result {
	case service.AccessAlreadySubscribed:
		h.reply(ctx, chatID, textAlreadySubscribed)
		return
	case service.AccessAlreadyQueued:
		h.reply(ctx, chatID, textAlreadyQueued)
		return
	}

	adminID, ok := h.registry.Admin()
	if !ok {
		h.reply(ctx, chatID, textNoAdmin)
		return
	}

	notice := tgbotapi.NewMessage(adminID, fmt.Sprintf(textAccessRequested, handle))
	notice.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonApprove, actionApprove+":"+handle),
			tgbotapi.NewInlineKeyboardButtonData(buttonDeny, actionDeny+":"+handle),
		),
	)
	if err := h.send(ctx, notice); err != nil {
		log.WithError(err).Warn("Failed to notify administrator about access request")
	}
	h.reply(ctx, chatID, textRequestSent)
}

func (h *Handler) setMeAsAdmin(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := h.logger.WithFields(logrus.Fields{"handler": "telegram", "command": "set_me_as_admin", "chat_id": chatID})

	if _, ok := h.registry.Admin(); ok {
		h.reply(ctx, chatID, textAdminAlreadySet)
		return
	}
	name := username(msg.From)
	if name == "" {
		h.reply(ctx, chatID, textAdminNeedsName)
		return
	}

	if err := h.registry.ClaimAdmin(ctx, chatID); err != nil {
		if errors.Is(err, service.ErrAdminAlreadySet) {
			h.reply(ctx, chatID, textAdminAlreadySet)
			return
		}
		log.WithError(err).Error("Failed to assign administrator")
		h.reply(ctx, chatID, textStorageFailed)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf(textAdminAssigned, name))
}

func (h *Handler) actual(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.registry.IsApproved(chatID) {
		h.reply(ctx, chatID, textAskAccess)
		return
	}
	h.replyMarkdown(ctx, chatID, service.FormatActual(h.incidents.Current()))
}

func (h *Handler) accessList(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.registry.IsAdmin(chatID) {
		h.reply(ctx, chatID, textAdminOnly)
		return
	}

	subs := h.registry.Snapshot()
	if len(subs.Approved) == 0 {
		h.reply(ctx, chatID, textNoSubscribers)
		return
	}

	var b strings.Builder
	b.WriteString(textSubscribersTitle)
	for _, id := range subs.Approved {
		if handle, ok := subs.HandleFor(id); ok {
			fmt.Fprintf(&b, "• @%s — `%d`\n", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, handle), id)
		} else {
			fmt.Fprintf(&b, "• (username неизвестен) — `%d`\n", id)
		}
	}
	h.replyMarkdown(ctx, chatID, b.String())
}

func (h *Handler) pending(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.registry.IsAdmin(chatID) {
		h.reply(ctx, chatID, textAdminOnlyList)
		return
	}

	subs := h.registry.Snapshot()
	if len(subs.Pending) == 0 {
		h.reply(ctx, chatID, textPendingEmpty)
		return
	}

	lines := []string{textPendingTitle}
	for _, handle := range service.PendingHandles(subs) {
		lines = append(lines, "@"+handle+" (chat_id="+strconv.FormatInt(subs.Pending[handle], 10)+")")
	}
	h.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (h *Handler) adminOnly(next commandFunc) commandFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) {
		if !h.registry.IsAdmin(msg.Chat.ID) {
			h.reply(ctx, msg.Chat.ID, textAdminOnly)
			return
		}
		next(ctx, msg)
	}
}

func (h *Handler) decisionCommand(action string) commandFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) {
		handle := firstArg(msg)
		if handle == "" {
			h.reply(ctx, msg.Chat.ID, fmt.Sprintf(textUsage, action))
			return
		}
		text, _ := h.decide(ctx, action, handle)
		h.reply(ctx, msg.Chat.ID, text)
	}
}

// decide применяет решение администратора и возвращает текст для него
func (h *Handler) decide(ctx context.Context, action, handle string) (string, bool) {
	handle = models.NormalizeHandle(handle)
	log := h.logger.WithFields(logrus.Fields{"handler": "telegram", "action": action, "handle": handle})

	var (
		chatID    int64
		err       error
		userText  string
		adminText string
	)
	switch action {
	case actionApprove:
		chatID, err = h.registry.Approve(ctx, handle)
		userText, adminText = textApprovedUser, textApprovedAdmin
	case actionDeny:
		chatID, err = h.registry.Deny(ctx, handle)
		userText, adminText = textDeniedUser, textDeniedAdmin
	default:
		return textUnknownAction, false
	}

	if err != nil {
		if errors.Is(err, service.ErrNotPending) {
			return textNotPending, false
		}
		log.WithError(err).Error("Failed to apply decision")
		return textStorageFailed, false
	}

	if err := h.send(ctx, tgbotapi.NewMessage(chatID, userText)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Failed to inform user about decision")
	}
	return fmt.Sprintf(adminText, handle), true
}

func (h *Handler) revoke(ctx context.Context, msg *tgbotapi.Message) {
	adminID := msg.Chat.ID
	handle := models.NormalizeHandle(firstArg(msg))
	if handle == "" {
		h.reply(ctx, adminID, fmt.Sprintf(textUsage, "revoke"))
		return
	}
	log := h.logger.WithFields(logrus.Fields{"handler": "telegram", "command": "revoke", "handle": handle})

	chatID, err := h.registry.Revoke(ctx, handle)
	switch {
	case errors.Is(err, service.ErrUnknownHandle):
		h.reply(ctx, adminID, textUnknownUser)
		return
	case errors.Is(err, service.ErrNotSubscribed):
		h.reply(ctx, adminID, textNotSubscribed)
		return
	case err != nil:
		log.WithError(err).Error("Failed to revoke access")
		h.reply(ctx, adminID, textStorageFailed)
		return
	}

	if err := h.send(ctx, tgbotapi.NewMessage(chatID, textRevokedUser)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Failed to inform user about revocation")
	}
	h.reply(ctx, adminID, fmt.Sprintf(textRevokedAdmin, handle))
}

func (h *Handler) callback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	log := h.logger.WithFields(logrus.Fields{"handler": "telegram", "callback": query.Data})

	if query.From == nil || !h.registry.IsAdmin(query.From.ID) {
		if err := h.request(ctx, tgbotapi.NewCallback(query.ID, textAdminOnly)); err != nil {
			log.WithError(err).Warn("Failed to answer callback")
		}
		return
	}
	if err := h.request(ctx, tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.WithError(err).Warn("Failed to answer callback")
	}
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	action, handle, ok := strings.Cut(query.Data, ":")
	if !ok {
		h.edit(ctx, chatID, messageID, textBadCallback)
		return
	}
	if action != actionApprove && action != actionDeny {
		h.edit(ctx, chatID, messageID, textUnknownAction)
		return
	}

	result, ok := h.decide(ctx, action, handle)
	if !ok {
		h.edit(ctx, chatID, messageID, result)
		return
	}

	// Сообщение с кнопками убираем, а если удалить нельзя - заменяем текстом решения
	if err := h.request(ctx, tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.WithError(err).Debug("Failed to delete decision message, editing instead")
		h.edit(ctx, chatID, messageID, result)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.send(ctx, tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send reply")
	}
}

func (h *Handler) replyMarkdown(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if err := h.send(ctx, msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send reply")
	}
}

func (h *Handler) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if err := h.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to edit message")
	}
}

func (h *Handler) send(ctx context.Context, c tgbotapi.Chattable) error {
	ctx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()
	return sendWithContext(ctx, h.bot, c)
}

func (h *Handler) request(ctx context.Context, c tgbotapi.Chattable) error {
	ctx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()
	return callWithContext(ctx, func() error {
		_, err := h.bot.Request(c)
		return err
	})
}

func username(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return user.UserName
}

func firstArg(msg *tgbotapi.Message) string {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
