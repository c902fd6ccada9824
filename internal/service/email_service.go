package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/mailer"
)

type reportBuilder interface {
	BuildBranchReport(ctx context.Context, branch models.Branch, from, to time.Time) (*models.BranchReport, error)
	BuildDailyParadeReports(ctx context.Context, day time.Time) ([]models.DailyParadeReport, error)
}

type mailEnqueuer interface {
	Enqueue(msg mailer.Message) error
}

// DispatchFailure names a branch whose report email could not be queued.
type DispatchFailure struct {
	Branch string `json:"branch"`
	Reason string `json:"reason"`
}

// DispatchSummary reports the outcome of a multi-branch email run. A failed
// branch never blocks the remaining branches.
type DispatchSummary struct {
	Sent   []string          `json:"sent"`
	Failed []DispatchFailure `json:"failed,omitempty"`
}

// BranchRecipient describes where one branch's reports are delivered.
type BranchRecipient struct {
	Branch  models.Branch `json:"branch"`
	Label   string        `json:"label"`
	Address string        `json:"address,omitempty"`
}

var weeklyReportTemplate = template.Must(template.New("weekly").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>NCC Weekly Attendance Report</h2>
<p><strong>{{.BranchLabel}}</strong><br>
{{.Period.From.Format "02 Jan 2006"}} to {{.Period.To.Format "02 Jan 2006"}}</p>
<p>{{.Summary.TotalStudents}} cadets, {{.Summary.TotalParades}} parades, average attendance {{printf "%.1f" .Summary.AverageAttendance}}%.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Cadet</th><th>Regimental No.</th><th>Present</th><th>Absent</th><th>Late</th><th>Excused</th><th>Rate</th></tr>
{{range .Students}}<tr>
<td>{{.Name}}</td><td>{{.RegimentalNumber}}</td>
<td>{{.Tally.Present}}</td><td>{{.Tally.Absent}}</td><td>{{.Tally.Late}}</td><td>{{.Tally.Excused}}</td>
<td>{{printf "%.1f" .Rate}}%</td>
</tr>{{end}}
</table>
<p>The full report is attached as JSON.</p>
</body>
</html>`))

var dailyReportTemplate = template.Must(template.New("daily").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>NCC Daily Parade Report — {{.Entry.BranchLabel}}</h2>
<p><strong>{{.Parade.Name}}</strong> ({{.Parade.Type}})<br>
{{.Parade.Date.Format "02 Jan 2006"}}</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Strength</th><th>Present</th><th>Absent</th><th>Late</th><th>Excused</th><th>Not Marked</th><th>Rate</th></tr>
<tr>
<td>{{.Entry.Strength}}</td>
<td>{{.Entry.Tally.Present}}</td><td>{{.Entry.Tally.Absent}}</td><td>{{.Entry.Tally.Late}}</td><td>{{.Entry.Tally.Excused}}</td>
<td>{{.Entry.NotMarked}}</td><td>{{printf "%.1f" .Entry.Rate}}%</td>
</tr>
</table>
<p>The full breakdown is attached as JSON.</p>
</body>
</html>`))

// EmailService renders report emails and hands them to the mail queue.
type EmailService struct {
	reports reportBuilder
	queue   mailEnqueuer
	cfg     config.MailConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewEmailService constructs the email service.
func NewEmailService(reports reportBuilder, queue mailEnqueuer, cfg config.MailConfig, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{reports: reports, queue: queue, cfg: cfg, logger: logger, now: time.Now}
}

// Branches lists every branch with its configured department inbox.
func (s *EmailService) Branches() []BranchRecipient {
	out := make([]BranchRecipient, 0, len(models.AllBranches()))
	for _, branch := range models.AllBranches() {
		out = append(out, BranchRecipient{
			Branch:  branch,
			Label:   branch.Label(),
			Address: s.cfg.DepartmentAddresses[string(branch)],
		})
	}
	return out
}

// SendWeeklyBranchReport builds the last-seven-days report for one branch and
// queues it to the branch's department inbox with the admin address in CC.
func (s *EmailService) SendWeeklyBranchReport(ctx context.Context, branch models.Branch) error {
	if !branch.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown branch %q", branch))
	}
	address := s.cfg.DepartmentAddresses[string(branch)]
	if address == "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no department address configured for %s", branch))
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -7)
	report, err := s.reports.BuildBranchReport(ctx, branch, from, to)
	if err != nil {
		return err
	}

	var html bytes.Buffer
	if err := weeklyReportTemplate.Execute(&html, report); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render weekly email")
	}
	attachment, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report attachment")
	}

	msg := mailer.Message{
		To:      []mail.Address{{Name: branch.Label(), Address: address}},
		Subject: fmt.Sprintf("NCC Weekly Attendance Report — %s (%s)", branch.Label(), to.Format("02 Jan 2006")),
		TextContent: fmt.Sprintf("Weekly attendance report for %s: %d cadets across %d parades, average attendance %.1f%%. See the attached JSON for details.",
			branch.Label(), report.Summary.TotalStudents, report.Summary.TotalParades, report.Summary.AverageAttendance),
		HTMLContent: html.String(),
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("weekly-report-%s-%s.json", branch, to.Format("2006-01-02")),
			ContentType: "application/json",
			Content:     attachment,
		}},
	}
	if s.cfg.AdminAddress != "" {
		msg.Cc = []mail.Address{{Address: s.cfg.AdminAddress}}
	}
	if err := s.queue.Enqueue(msg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue weekly email")
	}
	s.logger.Info("weekly report queued", zap.String("branch", string(branch)), zap.String("to", address))
	return nil
}

// SendWeeklyAll dispatches the weekly report for every branch, isolating
// per-branch failures into the summary.
func (s *EmailService) SendWeeklyAll(ctx context.Context) *DispatchSummary {
	summary := &DispatchSummary{}
	for _, branch := range models.AllBranches() {
		if err := s.SendWeeklyBranchReport(ctx, branch); err != nil {
			summary.Failed = append(summary.Failed, DispatchFailure{Branch: string(branch), Reason: err.Error()})
			continue
		}
		summary.Sent = append(summary.Sent, string(branch))
	}
	return summary
}

// SendDailyParadeReports queues one email per (parade, branch) combination
// held on the given day, addressed to the branch's department inbox with the
// admin address in CC. A failed pair never blocks the remaining pairs; days
// without parades queue nothing.
func (s *EmailService) SendDailyParadeReports(ctx context.Context, day time.Time) (*DispatchSummary, error) {
	reports, err := s.reports.BuildDailyParadeReports(ctx, day)
	if err != nil {
		return nil, err
	}
	summary := &DispatchSummary{}
	if len(reports) == 0 {
		s.logger.Info("no parades held, daily emails skipped", zap.Time("day", day))
		return summary, nil
	}

	for _, report := range reports {
		for _, entry := range report.Branches {
			label := fmt.Sprintf("%s/%s", report.Parade.Name, entry.Branch)
			if err := s.sendDailyBranchReport(report.Parade, entry, day); err != nil {
				summary.Failed = append(summary.Failed, DispatchFailure{Branch: label, Reason: err.Error()})
				continue
			}
			summary.Sent = append(summary.Sent, label)
		}
	}
	return summary, nil
}

func (s *EmailService) sendDailyBranchReport(parade models.Parade, entry models.ParadeBranchReport, day time.Time) error {
	address := s.cfg.DepartmentAddresses[string(entry.Branch)]
	if address == "" {
		return fmt.Errorf("no department address configured for %s", entry.Branch)
	}
	payload := struct {
		Parade models.Parade             `json:"parade"`
		Entry  models.ParadeBranchReport `json:"report"`
	}{parade, entry}

	var html bytes.Buffer
	if err := dailyReportTemplate.Execute(&html, payload); err != nil {
		return fmt.Errorf("render daily email: %w", err)
	}
	attachment, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report attachment: %w", err)
	}

	msg := mailer.Message{
		To:      []mail.Address{{Name: entry.BranchLabel, Address: address}},
		Subject: fmt.Sprintf("NCC Daily Parade Report — %s — %s (%s)", parade.Name, entry.BranchLabel, day.Format("02 Jan 2006")),
		TextContent: fmt.Sprintf("%s on %s: %d present, %d absent, %d late, %d excused, %d not marked out of %d cadets (%.1f%%).",
			parade.Name, day.Format("02 Jan 2006"), entry.Tally.Present, entry.Tally.Absent, entry.Tally.Late, entry.Tally.Excused, entry.NotMarked, entry.Strength, entry.Rate),
		HTMLContent: html.String(),
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("daily-report-%s-%s.json", entry.Branch, day.Format("2006-01-02")),
			ContentType: "application/json",
			Content:     attachment,
		}},
	}
	if s.cfg.AdminAddress != "" {
		msg.Cc = []mail.Address{{Address: s.cfg.AdminAddress}}
	}
	if err := s.queue.Enqueue(msg); err != nil {
		return fmt.Errorf("queue daily email: %w", err)
	}
	return nil
}

// SendTest queues a short plain message to verify transport configuration.
func (s *EmailService) SendTest(ctx context.Context, to string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid address %q", to))
	}
	msg := mailer.Message{
		To:          []mail.Address{{Address: to}},
		Subject:     "NCC Attendance API test email",
		TextContent: fmt.Sprintf("Test email sent at %s. If you can read this, outbound mail works.", s.now().UTC().Format(time.RFC1123)),
	}
	if err := s.queue.Enqueue(msg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue test email")
	}
	return nil
}
