package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"synacoding-backend/config"
	"synacoding-backend/internal/model"
	"synacoding-backend/internal/repository/interfaces"
	serviceErrors "synacoding-backend/internal/service/errors"
	"synacoding-backend/internal/util"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// NotificationService 站内通知 + 异步邮件投递
// 通知失败不影响主流程：核心操作提交后再调用 Notify
type NotificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	smtpHost         string
	smtpPort         int
	username         string
	password         string
	frontendURL      string
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		smtpHost:         config.AppConfig.SMTPHost,
		smtpPort:         config.AppConfig.SMTPPort,
		username:         config.AppConfig.SMTPUsername,
		password:         config.AppConfig.SMTPPassword,
		frontendURL:      config.AppConfig.FrontendURL,
	}
}

// Notify 创建一条站内通知，并尝试异步发送邮件副本
func (s *NotificationService) Notify(userID int, message, link string) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
		Link:    link,
	}
	if err := s.notificationRepo.CreateNotification(notification); err != nil {
		util.Logger.Error("创建通知失败", zap.Error(err), zap.Int("user_id", userID))
		return
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil || user == nil || user.Email == "" {
		return
	}

	body := message
	if link != "" {
		body = fmt.Sprintf("%s\n\n%s%s", message, s.frontendURL, link)
	}
	s.sendEmailAsync(user.Email, "Synacoding 通知", body)
}

// ListNotifications 获取用户的通知列表
func (s *NotificationService) ListNotifications(userID int) ([]*model.Notification, error) {
	notifications, err := s.notificationRepo.ListNotificationsByUser(userID)
	if err != nil {
		return nil, serviceErrors.Wrap(serviceErrors.ErrDatabase, "failed to list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) sendEmailAsync(to, subject, body string) {
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.smtpHost == "" || s.username == "" {
		// 未配置 SMTP 时只保留站内通知
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
