package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/events"
	"rrhh/internal/logger"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"gorm.io/gorm"
)

// Pusher delivers a payload to the live connections of a user
type Pusher interface {
	SendToUser(userID uint, payload interface{}) int
}

type CreateNotificationRequest struct {
	UserID  uint   `json:"usuario_id" binding:"required"`
	Type    string `json:"tipo" binding:"omitempty,oneof=info alerta vacaciones contrato"`
	Title   string `json:"titulo" binding:"required,max=200"`
	Message string `json:"mensaje"`
}

// NotificationMessage is the frame pushed over the websocket
type NotificationMessage struct {
	Event        string              `json:"event"`
	Notification *model.Notification `json:"notificacion"`
	Unread       int64               `json:"no_leidas"`
}

type NotificationService interface {
	Create(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error)
	// NotifyEmployee notifies the user account mirroring the employee, if any.
	// Failures are logged, never returned.
	NotifyEmployee(ctx context.Context, employeeID uint, kind, title, message string)
	ListMine(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID, id uint) (bool, error)
}

type notificationService struct {
	repos  *repository.Repositories
	pusher Pusher
	pub    events.Publisher
	now    func() time.Time
}

func NewNotificationService(repos *repository.Repositories, pusher Pusher, pub events.Publisher) NotificationService {
	return &notificationService{repos: repos, pusher: pusher, pub: pub, now: time.Now}
}

func (s *notificationService) Create(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.ValidationFields(map[string]string{"titulo": "required"})
	}
	if err := requireReference(ctx, s.repos.Users, "usuario", req.UserID); err != nil {
		return nil, err
	}

	n := &model.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   title,
		Message: strings.TrimSpace(req.Message),
		Read:    false,
	}
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		return nil, apperror.Classify(err, "create notification")
	}

	s.push(ctx, n)
	emit(ctx, s.pub, EntityNotification, events.ActionCreated, n.ID, n)
	return n, nil
}

func (s *notificationService) push(ctx context.Context, n *model.Notification) {
	if s.pusher == nil {
		return
	}
	unread, err := s.repos.Notifications.CountUnread(ctx, n.UserID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Uint("usuario_id", n.UserID).Msg("count unread notifications")
	}
	delivered := s.pusher.SendToUser(n.UserID, NotificationMessage{
		Event:        "notificacion",
		Notification: n,
		Unread:       unread,
	})
	logger.FromContext(ctx).Debug().Uint("usuario_id", n.UserID).Int("conexiones", delivered).Msg("notification pushed")
}

func (s *notificationService) NotifyEmployee(ctx context.Context, employeeID uint, kind, title, message string) {
	log := logger.FromContext(ctx)

	emp, err := s.repos.Employees.FindByID(ctx, employeeID)
	if err != nil {
		log.Warn().Err(err).Uint("empleado_id", employeeID).Msg("notify: employee not loaded")
		return
	}
	user, err := s.repos.Users.FindByEmail(ctx, emp.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Uint("empleado_id", employeeID).Msg("notify: user lookup failed")
		return
	}
	if !user.Active {
		return
	}

	_, err = s.Create(ctx, CreateNotificationRequest{UserID: user.ID, Type: kind, Title: title, Message: message})
	if err != nil {
		log.Warn().Err(err).Uint("usuario_id", user.ID).Msg("notify: notification not stored")
	}
}

func (s *notificationService) ListMine(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	items, total, err := s.repos.Notifications.ListByUser(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, apperror.Classify(err, "list notifications")
	}
	return items, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repos.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Classify(err, "count unread notifications")
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uint) (bool, error) {
	ok, err := s.repos.Notifications.MarkRead(ctx, id, userID, s.now())
	if err != nil {
		return false, apperror.Classify(err, "mark notification read")
	}
	return ok, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repos.Notifications.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, apperror.Classify(err, "mark notifications read")
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id uint) (bool, error) {
	ok, err := s.repos.Notifications.Delete(ctx, id, userID)
	if err != nil {
		return false, apperror.Classify(err, "delete notification")
	}
	if ok {
		emit(ctx, s.pub, EntityNotification, events.ActionDeleted, id, nil)
	}
	return ok, nil
}
