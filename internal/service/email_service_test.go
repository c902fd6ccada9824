package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/mailer"
)

type fakeReportBuilder struct {
	failBranches map[models.Branch]error
	dailyReports []models.DailyParadeReport
}

func (f *fakeReportBuilder) BuildBranchReport(_ context.Context, branch models.Branch, from, to time.Time) (*models.BranchReport, error) {
	if err, ok := f.failBranches[branch]; ok {
		return nil, err
	}
	return &models.BranchReport{
		Branch:      branch,
		BranchLabel: branch.Label(),
		Period:      models.ReportPeriod{From: from, To: to},
		Students: []models.StudentBreakdown{
			{Name: "Cadet One", RegimentalNumber: "R1", Tally: models.AttendanceTally{Present: 3, Absent: 1}, Rate: 75},
		},
		Summary: models.BranchReportSummary{TotalStudents: 1, TotalParades: 4, AverageAttendance: 75},
	}, nil
}

func (f *fakeReportBuilder) BuildDailyParadeReports(_ context.Context, _ time.Time) ([]models.DailyParadeReport, error) {
	return f.dailyReports, nil
}

type fakeQueue struct {
	messages []mailer.Message
	fail     bool
}

func (f *fakeQueue) Enqueue(msg mailer.Message) error {
	if f.fail {
		return errors.New("queue full")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func mailTestConfig() config.MailConfig {
	addresses := make(map[string]string)
	for _, branch := range models.AllBranches() {
		addresses[string(branch)] = strings.ToLower(string(branch)) + "@college.edu"
	}
	delete(addresses, string(models.BranchCE))
	return config.MailConfig{
		FromName:            "NCC Cell",
		FromAddress:         "ncc@college.edu",
		AdminAddress:        "ano@college.edu",
		DepartmentAddresses: addresses,
	}
}

func TestEmailServiceWeeklyBranchReport(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewEmailService(&fakeReportBuilder{}, queue, mailTestConfig(), nil)

	require.NoError(t, svc.SendWeeklyBranchReport(context.Background(), models.BranchCSE))
	require.Len(t, queue.messages, 1)
	msg := queue.messages[0]
	assert.Equal(t, "cse@college.edu", msg.To[0].Address)
	require.Len(t, msg.Cc, 1)
	assert.Equal(t, "ano@college.edu", msg.Cc[0].Address)
	assert.Contains(t, msg.Subject, "Weekly Attendance Report")
	assert.Contains(t, msg.HTMLContent, "Cadet One")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/json", msg.Attachments[0].ContentType)
	assert.Contains(t, string(msg.Attachments[0].Content), "Cadet One")
}

func TestEmailServiceWeeklyBranchReportUnconfigured(t *testing.T) {
	svc := NewEmailService(&fakeReportBuilder{}, &fakeQueue{}, mailTestConfig(), nil)

	err := svc.SendWeeklyBranchReport(context.Background(), models.BranchCE)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEmailServiceWeeklyAllIsolatesFailures(t *testing.T) {
	queue := &fakeQueue{}
	builder := &fakeReportBuilder{failBranches: map[models.Branch]error{
		models.BranchECE: errors.New("database gone"),
	}}
	svc := NewEmailService(builder, queue, mailTestConfig(), nil)

	summary := svc.SendWeeklyAll(context.Background())
	// CE has no configured address and ECE fails to build; the other six send.
	assert.Len(t, summary.Sent, 6)
	require.Len(t, summary.Failed, 2)
	assert.Len(t, queue.messages, 6)
}

func TestEmailServiceDailyReports(t *testing.T) {
	queue := &fakeQueue{}
	builder := &fakeReportBuilder{dailyReports: []models.DailyParadeReport{
		{
			Parade: models.Parade{ID: "p1", Name: "Morning Drill", Type: models.ParadeMorning, Date: time.Now()},
			Branches: []models.ParadeBranchReport{
				{Branch: models.BranchCSE, BranchLabel: models.BranchCSE.Label(), Strength: 10, Tally: models.AttendanceTally{Present: 8}, NotMarked: 2, Rate: 80},
			},
		},
	}}
	svc := NewEmailService(builder, queue, mailTestConfig(), nil)

	summary, err := svc.SendDailyParadeReports(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning Drill/CSE"}, summary.Sent)
	assert.Empty(t, summary.Failed)
	require.Len(t, queue.messages, 1)
	msg := queue.messages[0]
	assert.Equal(t, "cse@college.edu", msg.To[0].Address)
	require.Len(t, msg.Cc, 1)
	assert.Equal(t, "ano@college.edu", msg.Cc[0].Address)
	assert.Contains(t, msg.Subject, "Morning Drill")
	assert.Contains(t, msg.HTMLContent, "Morning Drill")
}

func TestEmailServiceDailyReportsIsolatesUnconfiguredBranch(t *testing.T) {
	queue := &fakeQueue{}
	builder := &fakeReportBuilder{dailyReports: []models.DailyParadeReport{
		{
			Parade: models.Parade{ID: "p1", Name: "Morning Drill", Type: models.ParadeMorning, Date: time.Now()},
			Branches: []models.ParadeBranchReport{
				{Branch: models.BranchCSE, BranchLabel: models.BranchCSE.Label(), Strength: 10, Tally: models.AttendanceTally{Present: 8}, NotMarked: 2, Rate: 80},
				{Branch: models.BranchCE, BranchLabel: models.BranchCE.Label(), Strength: 5, Tally: models.AttendanceTally{Present: 5}, Rate: 100},
			},
		},
	}}
	svc := NewEmailService(builder, queue, mailTestConfig(), nil)

	summary, err := svc.SendDailyParadeReports(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning Drill/CSE"}, summary.Sent)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Morning Drill/CE", summary.Failed[0].Branch)
	assert.Len(t, queue.messages, 1)
}

func TestEmailServiceDailyReportsNoParades(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewEmailService(&fakeReportBuilder{}, queue, mailTestConfig(), nil)

	summary, err := svc.SendDailyParadeReports(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, summary.Sent)
	assert.Empty(t, summary.Failed)
	assert.Empty(t, queue.messages)
}

func TestEmailServiceSendTest(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewEmailService(&fakeReportBuilder{}, queue, mailTestConfig(), nil)

	require.NoError(t, svc.SendTest(context.Background(), "someone@college.edu"))
	require.Len(t, queue.messages, 1)

	err := svc.SendTest(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEmailServiceBranchesListing(t *testing.T) {
	svc := NewEmailService(&fakeReportBuilder{}, &fakeQueue{}, mailTestConfig(), nil)

	recipients := svc.Branches()
	require.Len(t, recipients, len(models.AllBranches()))
	assert.Equal(t, "cse@college.edu", recipients[0].Address)
	assert.Empty(t, recipients[len(recipients)-1].Address)
}
