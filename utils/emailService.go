package utils

import (
	"fmt"
	"log"
	"skillhire/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid dynamic template ids. Templates live in the SendGrid dashboard;
// these defaults match the template slugs used there.
const (
	TemplateWelcome            = "d-welcome"
	TemplateSurveyJobSeeking   = "d-survey"
	TemplateAssessmentResults  = "d-assessment-results"
	TemplateCvUnlocked         = "d-cv-unlocked"
	TemplateInternshipDecision = "d-internship-decision"
	TemplateReactivation       = "d-reactivation-success"
)

// SendTemplateEmail sends a transactional email using a SendGrid dynamic
// template. When SendGrid is not configured the send is logged and skipped.
func SendTemplateEmail(to, templateID string, data map[string]interface{}) error {
	if config.AppConfig == nil || config.AppConfig.SendGridAPIKey == "" {
		log.Printf("[EMAIL] SendGrid not configured, skipping %s to %s", templateID, to)
		return nil
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(config.AppConfig.SendGridFromName, config.AppConfig.SendGridFromEmail))
	m.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	m.AddPersonalizations(p)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(m)
	if err != nil {
		log.Printf("[EMAIL] Send failed (%s to %s): %v", templateID, to, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid returned %d for %s to %s", resp.StatusCode, templateID, to)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcomeEmail greets a new user after signup.
func SendWelcomeEmail(email, name, role string) {
	go SendTemplateEmail(email, TemplateWelcome, map[string]interface{}{
		"name":     name,
		"role":     role,
		"loginUrl": config.AppConfig.AppURL + "/login",
	})
}

// SendSurveyEmail delivers the job-seeking survey link with its single-use token.
func SendSurveyEmail(email, name, token string) {
	go SendTemplateEmail(email, TemplateSurveyJobSeeking, map[string]interface{}{
		"name":      name,
		"surveyUrl": config.AppConfig.AppURL + "/survey/respond?token=" + token,
	})
}

// SendAssessmentResultsEmail delivers the final assessment outcome.
func SendAssessmentResultsEmail(email, name string, score, starRating int, certificateNumber string) {
	go SendTemplateEmail(email, TemplateAssessmentResults, map[string]interface{}{
		"name":              name,
		"score":             score,
		"starRating":        starRating,
		"certificateNumber": certificateNumber,
	})
}

// SendCvUnlockedEmail notifies an employer that contact details are available.
func SendCvUnlockedEmail(email string, candidateID uint) {
	go SendTemplateEmail(email, TemplateCvUnlocked, map[string]interface{}{
		"candidateId": candidateID,
	})
}

// SendInternshipDecisionEmail notifies an applicant of the admin decision.
func SendInternshipDecisionEmail(email, name, status string) {
	go SendTemplateEmail(email, TemplateInternshipDecision, map[string]interface{}{
		"name":   name,
		"status": status,
	})
}

// SendReactivationEmail confirms a profile became visible again.
func SendReactivationEmail(email, name string) {
	go SendTemplateEmail(email, TemplateReactivation, map[string]interface{}{
		"name": name,
	})
}
