// Seeds the system email templates. Safe to run repeatedly: an existing
// template with the same name is updated in place.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/config"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/store"
)

var systemTemplates = []*model.EmailTemplate{
	{
		Name:            "welcome_user",
		DisplayName:     "Welcome Email",
		Description:     "Sent to every new user right after registration",
		SubjectTemplate: "Welcome to Meta Portal, {{.user_name}}!",
		TextContent: `Hi {{.user_name}},

Welcome to Meta Portal! Your account is ready.

Browse open positions, upload your resume and apply in a couple of clicks.
{{if .company_name}}You joined as a member of {{.company_name}}.{{end}}

The Meta Portal Team`,
		HTMLContent: `<h2>Welcome to Meta Portal, {{.user_name}}!</h2>
<p>Your account is ready. Browse open positions, upload your resume and apply in a couple of clicks.</p>
{{if .company_name}}<p>You joined as a member of <b>{{.company_name}}</b>.</p>{{end}}
<p>The Meta Portal Team</p>`,
		Variables: []string{"user_name", "company_name"},
		Category:  "onboarding",
	},
	{
		Name:            "job_application_confirmation",
		DisplayName:     "Application Confirmation",
		Description:     "Confirms an application was received",
		SubjectTemplate: "Application received: {{.job_title}}",
		TextContent: `Hi {{.user_name}},

We received your application for {{.job_title}} at {{.company_name}}.
The hiring team will review it and you will hear back by email.

The Meta Portal Team`,
		HTMLContent: `<h2>Application received</h2>
<p>Hi {{.user_name}},</p>
<p>We received your application for <b>{{.job_title}}</b> at {{.company_name}}.
The hiring team will review it and you will hear back by email.</p>
<p>The Meta Portal Team</p>`,
		Variables: []string{"user_name", "job_title", "company_name"},
		Category:  "applications",
	},
	{
		Name:            "application_status_update",
		DisplayName:     "Application Status Update",
		Description:     "Notifies the applicant when their application moves through the pipeline",
		SubjectTemplate: "Your application for {{.job_title}} is now {{.new_status}}",
		TextContent: `Hi {{.user_name}},

Your application for {{.job_title}} moved to: {{.new_status}}.

You can check the details in your Meta Portal account.

The Meta Portal Team`,
		HTMLContent: `<h2>Application update</h2>
<p>Hi {{.user_name}},</p>
<p>Your application for <b>{{.job_title}}</b> moved to: <b>{{.new_status}}</b>.</p>
<p>You can check the details in your Meta Portal account.</p>
<p>The Meta Portal Team</p>`,
		Variables: []string{"user_name", "job_title", "new_status"},
		Category:  "applications",
	},
	{
		Name:            "admin_new_application",
		DisplayName:     "New Application Notice",
		Description:     "Tells the hiring company's admin about a fresh application",
		SubjectTemplate: "New application for {{.job_title}}",
		TextContent: `Hi {{.admin_name}},

{{.applicant_name}} just applied for {{.job_title}} at {{.company_name}}.

Review the application in the Meta Portal dashboard.`,
		HTMLContent: `<h2>New application</h2>
<p>Hi {{.admin_name}},</p>
<p><b>{{.applicant_name}}</b> just applied for <b>{{.job_title}}</b> at {{.company_name}}.</p>
<p>Review the application in the Meta Portal dashboard.</p>`,
		Variables: []string{"admin_name", "applicant_name", "job_title", "company_name"},
		Category:  "notifications",
	},
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	cfg := config.Load()

	st, err := store.New(cfg.DSN(), nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	ctx := context.Background()
	for _, tpl := range systemTemplates {
		tpl.Language = "en"
		tpl.IsSystemTemplate = true
		tpl.IsActive = true
		tpl.Version = 1

		existing, err := st.TemplateByName(ctx, tpl.Name, nil)
		if err != nil {
			log.Fatal().Err(err).Str("template", tpl.Name).Msg("Template lookup failed")
		}
		if existing == nil {
			if err := st.CreateTemplate(ctx, tpl); err != nil {
				log.Fatal().Err(err).Str("template", tpl.Name).Msg("Failed to create template")
			}
			log.Info().Str("template", tpl.Name).Msg("Template created")
			continue
		}

		tpl.ID = existing.ID
		if err := st.UpdateTemplate(ctx, tpl); err != nil {
			log.Fatal().Err(err).Str("template", tpl.Name).Msg("Failed to update template")
		}
		log.Info().Str("template", tpl.Name).Int("version", tpl.Version).Msg("Template updated")
	}

	log.Info().Msg("System templates seeded")
}
