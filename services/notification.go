package services

import (
	"context"
	"fmt"
	"log"
	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
)

// NotificationService delivers best-effort push and email notifications.
// Callers fire its methods from a goroutine after the mutation commits;
// delivery failures are logged and never fail the request.
type NotificationService struct {
	messaging *messaging.Client
}

var notifService *NotificationService

func GetNotificationService() *NotificationService {
	if notifService == nil {
		notifService = &NotificationService{}

		app, err := firebase.NewApp(context.Background(), nil,
			option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
		if err != nil {
			log.Println("⚠️  Firebase not configured, running without push notifications:", err)
			return notifService
		}

		client, err := app.Messaging(context.Background())
		if err != nil {
			log.Println("⚠️  Firebase messaging unavailable:", err)
			return notifService
		}
		notifService.messaging = client
	}
	return notifService
}

func (ns *NotificationService) sendPush(fcmToken, title, body string, data map[string]string) {
	if ns.messaging == nil || fcmToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := ns.messaging.Send(context.Background(), msg); err != nil {
		log.Printf("❌ Push send error: %v", err)
	}
}

func (ns *NotificationService) sendEmail(toEmail, toName, subject, htmlBody string) {
	if config.AppConfig.SendGridAPIKey == "" {
		log.Printf("⚠️  SendGrid API key not set, skipping email to %s", toEmail)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ Email send error: %v", err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("⚠️  SendGrid returned status: %d", resp.StatusCode)
	}
}

func formatAmount(currency string, amount int64) string {
	return fmt.Sprintf("%s %.2f", currency, float64(amount)/100)
}

// NotifyExpenseAdded pushes to every participant except the payer.
func (ns *NotificationService) NotifyExpenseAdded(expense models.SharedExpense, participants []models.ExpenseParticipant, payer models.User, group models.TravelGroup) {
	for _, p := range participants {
		if p.UserID == expense.PaidBy {
			continue
		}

		var user models.User
		if err := database.DB.First(&user, p.UserID).Error; err != nil {
			continue
		}

		ns.sendPush(user.FCMToken,
			group.Name,
			fmt.Sprintf("%s added \"%s\" — your share is %s",
				payer.Name, expense.Description, formatAmount(expense.Currency, p.ShareAmount)),
			map[string]string{
				"type":       "expense_added",
				"group_id":   group.ID.String(),
				"expense_id": expense.ID.String(),
			})
	}
}

// NotifySettlement tells the recipient they were paid.
func (ns *NotificationService) NotifySettlement(settlement models.Settlement, fromUser, toUser models.User, group models.TravelGroup) {
	ns.sendPush(toUser.FCMToken,
		group.Name,
		fmt.Sprintf("%s paid you %s", fromUser.Name, formatAmount(settlement.Currency, settlement.Amount)),
		map[string]string{
			"type":     "settlement",
			"group_id": group.ID.String(),
		})
}

// SendInvitationEmail mails a join link for a group invitation.
func (ns *NotificationService) SendInvitationEmail(invitation models.GroupInvitation, inviter models.User, group models.TravelGroup) {
	joinURL := fmt.Sprintf("%s/groups/join/%s", config.AppConfig.AppURL, invitation.Token)
	body := fmt.Sprintf(
		`<p>%s invited you to join the travel group <strong>%s</strong> on %s.</p>
<p><a href="%s">Accept invitation</a></p>
<p>This invitation expires on %s.</p>`,
		inviter.Name, group.Name, config.AppConfig.AppName,
		joinURL, invitation.ExpiresAt.Format("Jan 2, 2006"))

	ns.sendEmail(invitation.Email, "", fmt.Sprintf("Join %s on %s", group.Name, config.AppConfig.AppName), body)
}

// SendPasswordResetEmail mails a reset link.
func (ns *NotificationService) SendPasswordResetEmail(user models.User, token string) {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", config.AppConfig.AppURL, token)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		user.Name, resetURL)

	ns.sendEmail(user.Email, user.Name, "Reset your password", body)
}
