// Command seed applies the database schema and inserts the default phishing
// templates. Safe to run repeatedly: every statement is idempotent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/phishwise/phishwise-api/pkg/config"
	"github.com/phishwise/phishwise-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schools (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		invite_code TEXT NOT NULL UNIQUE,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		image TEXT,
		role TEXT NOT NULL DEFAULT 'USER',
		school_id UUID REFERENCES schools(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS email_templates (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id UUID PRIMARY KEY,
		school_id UUID NOT NULL REFERENCES schools(id),
		template_id UUID NOT NULL REFERENCES email_templates(id),
		name TEXT NOT NULL,
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_emails (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		template_id UUID NOT NULL REFERENCES email_templates(id),
		campaign_id UUID REFERENCES campaigns(id),
		sent_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		clicked BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_simulation_emails_user_sent ON simulation_emails (user_id, sent_at DESC)`,
	`CREATE TABLE IF NOT EXISTS user_metrics (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id),
		total_sent INT NOT NULL DEFAULT 0,
		total_clicked INT NOT NULL DEFAULT 0,
		total_completed INT NOT NULL DEFAULT 0,
		last_activity TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id UUID,
		old_values JSONB,
		new_values JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

type templateSeed struct {
	name       string
	subject    string
	body       string
	difficulty string
}

var defaultTemplates = []templateSeed{
	{
		name:       "Password Reset",
		subject:    "Action required: reset your password",
		body:       `<p>Your password expires today. <a href="{{.Link}}">Reset it now</a> to keep access to your account.</p>`,
		difficulty: "EASY",
	},
	{
		name:       "Shared Document",
		subject:    "A document has been shared with you",
		body:       `<p>A colleague shared "Q3 Budget.xlsx" with you. <a href="{{.Link}}">Open document</a></p>`,
		difficulty: "MEDIUM",
	},
	{
		name:       "IT Helpdesk Verification",
		subject:    "Scheduled maintenance: verify your account",
		body:       `<p>The IT department is migrating mailboxes this weekend. <a href="{{.Link}}">Verify your account</a> before Friday to avoid interruption.</p>`,
		difficulty: "MEDIUM",
	},
	{
		name:       "Invoice Overdue",
		subject:    "RE: Overdue invoice #4823",
		body:       `<p>As discussed, the attached invoice is now 30 days overdue. Please <a href="{{.Link}}">review the payment details</a> today.</p>`,
		difficulty: "HARD",
	},
}

func main() {
	schemaOnly := flag.Bool("schema-only", false, "apply the schema without seeding templates")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	fmt.Println("schema applied")

	if *schemaOnly {
		return
	}

	const insert = `INSERT INTO email_templates (id, name, subject, body, difficulty)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM email_templates WHERE name = $2)`
	seeded := 0
	for _, tpl := range defaultTemplates {
		res, err := db.ExecContext(ctx, insert, uuid.NewString(), tpl.name, tpl.subject, tpl.body, tpl.difficulty)
		if err != nil {
			log.Fatalf("failed to seed template %q: %v", tpl.name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	fmt.Printf("templates seeded: %d new, %d total\n", seeded, len(defaultTemplates))
}
