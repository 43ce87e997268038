package model

import (
	"fmt"
	"time"
)

// RequestState состояние заявки на вступление
type RequestState string

const (
	StatePending          RequestState = "pending"
	StateCollectingReason RequestState = "collecting_reason"
	StateAwaitingReview   RequestState = "awaiting_review"
	StateApproved         RequestState = "approved"
	StateDeclined         RequestState = "declined"
)

// IsTerminal проверяет, что из состояния больше нет переходов
func (s RequestState) IsTerminal() bool {
	return s == StateApproved || s == StateDeclined
}

// DecisionStatus итог рассмотрения заявки
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionDeclined DecisionStatus = "declined"
)

// Decision решение администратора. Устанавливается ровно один раз.
type Decision struct {
	Status    DecisionStatus `json:"status"`
	AdminID   int64          `json:"admin_id"`
	AdminName string         `json:"admin_name"`
	DecidedAt time.Time      `json:"decided_at"`
}

// JoinRequestContext сохраняемое состояние заявки
type JoinRequestContext struct {
	RequestID          string    `json:"request_id"`
	UserID             int64     `json:"user_id"`
	TargetChatID       int64     `json:"target_chat_id"`
	DisplayName        string    `json:"display_name"`
	Username           string    `json:"username,omitempty"`
	Reason             string    `json:"reason,omitempty"`
	AdditionalMessages []string  `json:"additional_messages"`
	AdminMsgID         *int      `json:"admin_msg_id,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Decision           *Decision `json:"decision,omitempty"`
}

// JoinRequestInput данные, необходимые для создания заявки
type JoinRequestInput struct {
	RequestID    string
	UserID       int64
	TargetChatID int64
	DisplayName  string
	Username     string
	Timestamp    time.Time
}

// TransitionObserver вызывается после каждого успешного перехода
type TransitionObserver func(jr *JoinRequest, from, to RequestState)

// JoinRequest доменная модель заявки с конечным автоматом.
// Все изменения контекста проходят через методы переходов.
type JoinRequest struct {
	ctx      JoinRequestContext
	state    RequestState
	rules    ValidationRules
	now      func() time.Time
	observer TransitionObserver
}

// NewJoinRequest создаёт заявку в состоянии pending
func NewJoinRequest(input JoinRequestInput, rules ValidationRules) *JoinRequest {
	return &JoinRequest{
		ctx: JoinRequestContext{
			RequestID:          input.RequestID,
			UserID:             input.UserID,
			TargetChatID:       input.TargetChatID,
			DisplayName:        input.DisplayName,
			Username:           input.Username,
			AdditionalMessages: []string{},
			Timestamp:          input.Timestamp,
		},
		state: StatePending,
		rules: rules,
		now:   time.Now,
	}
}

// State текущее состояние автомата
func (jr *JoinRequest) State() RequestState {
	return jr.state
}

// Context возвращает копию контекста
func (jr *JoinRequest) Context() JoinRequestContext {
	c := jr.ctx
	c.AdditionalMessages = append([]string(nil), jr.ctx.AdditionalMessages...)
	if jr.ctx.AdminMsgID != nil {
		id := *jr.ctx.AdminMsgID
		c.AdminMsgID = &id
	}
	if jr.ctx.Decision != nil {
		d := *jr.ctx.Decision
		c.Decision = &d
	}
	return c
}

// ID идентификатор заявки
func (jr *JoinRequest) ID() string {
	return jr.ctx.RequestID
}

// IsProcessed проверяет наличие решения
func (jr *JoinRequest) IsProcessed() bool {
	return jr.ctx.Decision != nil
}

// SetClock подменяет источник времени (для тестов)
func (jr *JoinRequest) SetClock(now func() time.Time) {
	jr.now = now
}

// Observe подписывает наблюдателя на переходы
func (jr *JoinRequest) Observe(observer TransitionObserver) {
	jr.observer = observer
}

// StartCollection переводит заявку из pending в collecting_reason
func (jr *JoinRequest) StartCollection() error {
	return jr.apply(startCollection{})
}

// SubmitReason проверяет причину и переводит заявку в awaiting_review
func (jr *JoinRequest) SubmitReason(text string) error {
	if jr.state != StateCollectingReason {
		return invalidState("request is not collecting a reason")
	}

	reason, err := jr.rules.ValidateReason(text)
	if err != nil {
		return validationFailed(err)
	}

	return jr.apply(submitReason{reason: reason})
}

// SubmitReasonOnBehalf заполняет причину за пользователя, до которого не удалось достучаться.
// Правила на количество слов не применяются: текст задаёт сам сервис.
func (jr *JoinRequest) SubmitReasonOnBehalf(text string) error {
	if jr.state != StateCollectingReason {
		return invalidState("request is not collecting a reason")
	}

	reason := NormalizeText(text)
	if reason == "" {
		return validationFailed(&ValidationError{Kind: ValidationEmpty})
	}

	return jr.apply(submitReason{reason: reason})
}

// SetAdminMsgID сохраняет идентификатор карточки модерации
func (jr *JoinRequest) SetAdminMsgID(id int) error {
	return jr.apply(setAdminMsgID{id: id})
}

// AddMessage добавляет дополнительное сообщение пользователя
func (jr *JoinRequest) AddMessage(text string) error {
	if jr.state != StateAwaitingReview {
		return invalidState("request is not awaiting review")
	}

	message, err := jr.rules.ValidateAdditionalMessage(text)
	if err != nil {
		return validationFailed(err)
	}

	return jr.apply(addMessage{message: message})
}

// Approve одобряет заявку
func (jr *JoinRequest) Approve(adminID int64, adminName string) error {
	return jr.apply(decide{status: DecisionApproved, adminID: adminID, adminName: adminName, at: jr.now()})
}

// Decline отклоняет заявку
func (jr *JoinRequest) Decline(adminID int64, adminName string) error {
	return jr.apply(decide{status: DecisionDeclined, adminID: adminID, adminName: adminName, at: jr.now()})
}

// ============ Автомат ============

type event interface {
	target(jr *JoinRequest) (RequestState, error)
	mutate(ctx *JoinRequestContext)
}

type startCollection struct{}

func (startCollection) target(jr *JoinRequest) (RequestState, error) {
	if jr.state != StatePending {
		return "", invalidState(fmt.Sprintf("cannot start collection from %s", jr.state))
	}
	return StateCollectingReason, nil
}

func (startCollection) mutate(*JoinRequestContext) {}

type submitReason struct {
	reason string
}

func (e submitReason) target(jr *JoinRequest) (RequestState, error) {
	if jr.state != StateCollectingReason {
		return "", invalidState("request is not collecting a reason")
	}
	if e.reason == "" {
		return "", validationFailed(&ValidationError{Kind: ValidationEmpty})
	}
	return StateAwaitingReview, nil
}

func (e submitReason) mutate(ctx *JoinRequestContext) {
	ctx.Reason = e.reason
}

type setAdminMsgID struct {
	id int
}

func (e setAdminMsgID) target(jr *JoinRequest) (RequestState, error) {
	if jr.state != StateAwaitingReview {
		return "", invalidState("request is not awaiting review")
	}
	if jr.ctx.AdminMsgID != nil {
		return "", invalidState("review card is already posted")
	}
	return StateAwaitingReview, nil
}

func (e setAdminMsgID) mutate(ctx *JoinRequestContext) {
	id := e.id
	ctx.AdminMsgID = &id
}

type addMessage struct {
	message string
}

func (e addMessage) target(jr *JoinRequest) (RequestState, error) {
	if jr.state != StateAwaitingReview || jr.ctx.Decision != nil {
		return "", invalidState("request is not awaiting review")
	}
	if e.message == "" {
		return "", validationFailed(&ValidationError{Kind: ValidationEmpty})
	}
	return StateAwaitingReview, nil
}

func (e addMessage) mutate(ctx *JoinRequestContext) {
	ctx.AdditionalMessages = append(ctx.AdditionalMessages, e.message)
}

type decide struct {
	status    DecisionStatus
	adminID   int64
	adminName string
	at        time.Time
}

func (e decide) target(jr *JoinRequest) (RequestState, error) {
	if jr.ctx.Decision != nil {
		return "", alreadyProcessed()
	}
	if jr.state != StateAwaitingReview || jr.ctx.Reason == "" {
		return "", invalidState("request is not awaiting review")
	}
	if e.status == DecisionApproved {
		return StateApproved, nil
	}
	return StateDeclined, nil
}

func (e decide) mutate(ctx *JoinRequestContext) {
	ctx.Decision = &Decision{
		Status:    e.status,
		AdminID:   e.adminID,
		AdminName: e.adminName,
		DecidedAt: e.at,
	}
}

func (jr *JoinRequest) apply(e event) error {
	next, err := e.target(jr)
	if err != nil {
		return err
	}

	from := jr.state
	e.mutate(&jr.ctx)
	jr.state = next

	if jr.observer != nil && from != next {
		jr.observer(jr, from, next)
	}
	return nil
}

// ============ Восстановление ============

// RestoreJoinRequest восстанавливает заявку из сохранённого контекста,
// повторяя ту же последовательность переходов, которая привела к нему.
// Тексты повторно не валидируются: они прошли проверку при записи.
func RestoreJoinRequest(saved JoinRequestContext, rules ValidationRules) (*JoinRequest, error) {
	jr := NewJoinRequest(JoinRequestInput{
		RequestID:    saved.RequestID,
		UserID:       saved.UserID,
		TargetChatID: saved.TargetChatID,
		DisplayName:  saved.DisplayName,
		Username:     saved.Username,
		Timestamp:    saved.Timestamp,
	}, rules)

	if err := jr.apply(startCollection{}); err != nil {
		return nil, restoreError(saved.RequestID, err)
	}

	if saved.Reason != "" {
		if err := jr.apply(submitReason{reason: saved.Reason}); err != nil {
			return nil, restoreError(saved.RequestID, err)
		}
	}

	if saved.AdminMsgID != nil {
		if err := jr.apply(setAdminMsgID{id: *saved.AdminMsgID}); err != nil {
			return nil, restoreError(saved.RequestID, err)
		}
	}

	for _, message := range saved.AdditionalMessages {
		if err := jr.apply(addMessage{message: message}); err != nil {
			return nil, restoreError(saved.RequestID, err)
		}
	}

	if saved.Decision != nil {
		d := *saved.Decision
		e := decide{status: d.Status, adminID: d.AdminID, adminName: d.AdminName, at: d.DecidedAt}

		if saved.Reason == "" {
			// Массовая очистка закрывает заявки, которые так и не получили причину
			jr.ctx.Decision = &d
			jr.state = StateDeclined
			if d.Status == DecisionApproved {
				jr.state = StateApproved
			}
			return jr, nil
		}

		if err := jr.apply(e); err != nil {
			return nil, restoreError(saved.RequestID, err)
		}
	}

	return jr, nil
}

func restoreError(requestID string, err error) error {
	return fmt.Errorf("restore join request %s: %w", requestID, err)
}
