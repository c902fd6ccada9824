package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/export"
)

type reportStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActiveByBranch(ctx context.Context, branch models.Branch) ([]models.Student, error)
	CountByBranch(ctx context.Context) (map[models.Branch]int, error)
	CountByCategory(ctx context.Context) (map[models.Category]int, error)
	AverageAttendanceRate(ctx context.Context) (float64, error)
}

type reportParadeRepository interface {
	FindByID(ctx context.Context, id string) (*models.ParadeDetail, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Parade, error)
	ListOnDay(ctx context.Context, day time.Time) ([]models.Parade, error)
	Count(ctx context.Context) (int, int, error)
	ListRecent(ctx context.Context, limit int) ([]models.Parade, error)
}

type reportAttendanceRepository interface {
	MapForParades(ctx context.Context, paradeIDs []string) (map[string]map[string]models.AttendanceStatus, error)
	TallyByParade(ctx context.Context, paradeID string) (models.AttendanceTally, error)
	TallyByStudent(ctx context.Context, studentID string) (models.AttendanceTally, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.AttendanceDetail, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const dashboardCacheKey = "reports:dashboard"

// ReportService computes attendance reports and dashboard aggregates.
type ReportService struct {
	students   reportStudentRepository
	parades    reportParadeRepository
	attendance reportAttendanceRepository
	cache      reportCache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs the report service. The cache may be nil.
func NewReportService(students reportStudentRepository, parades reportParadeRepository, attendance reportAttendanceRepository, cache reportCache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{
		students:   students,
		parades:    parades,
		attendance: attendance,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// BuildBranchReport computes a per-student breakdown for one branch over a
// period. The summary average is the mean of per-student rates; a student
// with no marked parades contributes a rate of zero.
func (s *ReportService) BuildBranchReport(ctx context.Context, branch models.Branch, from, to time.Time) (*models.BranchReport, error) {
	if !branch.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown branch %q", branch))
	}
	students, err := s.students.ListActiveByBranch(ctx, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch students")
	}
	parades, err := s.parades.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parades")
	}
	paradeIDs := make([]string, 0, len(parades))
	for _, p := range parades {
		paradeIDs = append(paradeIDs, p.ID)
	}
	statuses, err := s.attendance.MapForParades(ctx, paradeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	report := &models.BranchReport{
		Branch:      branch,
		BranchLabel: branch.Label(),
		Period:      models.ReportPeriod{From: from, To: to},
		Students:    make([]models.StudentBreakdown, 0, len(students)),
		GeneratedAt: s.now().UTC(),
	}
	var rateSum float64
	for _, st := range students {
		breakdown := models.StudentBreakdown{
			StudentID:        st.ID,
			Name:             st.Name,
			RegimentalNumber: st.RegimentalNumber,
			RollNumber:       st.RollNumber,
			Category:         st.Category,
			Rank:             st.Rank,
			Parades:          make(map[string]models.AttendanceStatus, len(parades)),
		}
		byParade := statuses[st.ID]
		for _, p := range parades {
			status, ok := byParade[p.ID]
			if !ok {
				status = models.StatusNotMarked
			} else {
				breakdown.Tally.Add(status)
			}
			breakdown.Parades[p.ID] = status
		}
		breakdown.Rate = breakdown.Tally.Rate()
		rateSum += breakdown.Rate
		report.Students = append(report.Students, breakdown)
	}
	report.Summary = models.BranchReportSummary{
		TotalStudents: len(students),
		TotalParades:  len(parades),
	}
	if len(students) > 0 {
		report.Summary.AverageAttendance = models.Round1(rateSum / float64(len(students)))
	}
	return report, nil
}

// BuildDailyParadeReports computes one report per parade held on the given
// day, with one entry per branch that has active students. Branch rates
// count every active student of the branch, so unmarked students lower the
// rate.
func (s *ReportService) BuildDailyParadeReports(ctx context.Context, day time.Time) ([]models.DailyParadeReport, error) {
	parades, err := s.parades.ListOnDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parades")
	}
	if len(parades) == 0 {
		return nil, nil
	}

	branchStudents := make(map[models.Branch][]models.Student)
	for _, branch := range models.AllBranches() {
		students, err := s.students.ListActiveByBranch(ctx, branch)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch students")
		}
		branchStudents[branch] = students
	}

	reports := make([]models.DailyParadeReport, 0, len(parades))
	for _, parade := range parades {
		statuses, err := s.attendance.MapForParades(ctx, []string{parade.ID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		report := models.DailyParadeReport{Parade: parade, GeneratedAt: s.now().UTC()}
		for _, branch := range models.AllBranches() {
			students := branchStudents[branch]
			if len(students) == 0 {
				continue
			}
			entry := models.ParadeBranchReport{
				Branch:      branch,
				BranchLabel: branch.Label(),
				Strength:    len(students),
			}
			for _, st := range students {
				status, ok := statuses[st.ID][parade.ID]
				if !ok {
					entry.NotMarked++
					continue
				}
				entry.Tally.Add(status)
				report.Overall.Add(status)
			}
			if entry.Strength > 0 {
				entry.Rate = models.Round1(float64(entry.Tally.Present+entry.Tally.Late) / float64(entry.Strength) * 100)
			}
			report.Branches = append(report.Branches, entry)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// MatrixFilter narrows the attendance matrix to one branch or category.
type MatrixFilter struct {
	Branch   *models.Branch
	Category *models.Category
}

// BuildMatrix crosses active students against the parades of a period.
func (s *ReportService) BuildMatrix(ctx context.Context, from, to time.Time, filter MatrixFilter) (*models.AttendanceMatrix, error) {
	if filter.Branch != nil && !filter.Branch.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown branch %q", *filter.Branch))
	}
	if filter.Category != nil && !filter.Category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", *filter.Category))
	}
	parades, err := s.parades.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parades")
	}
	paradeIDs := make([]string, 0, len(parades))
	for _, p := range parades {
		paradeIDs = append(paradeIDs, p.ID)
	}
	statuses, err := s.attendance.MapForParades(ctx, paradeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	matrix := &models.AttendanceMatrix{
		Period:      models.ReportPeriod{From: from, To: to},
		Parades:     parades,
		GeneratedAt: s.now().UTC(),
	}
	branches := models.AllBranches()
	if filter.Branch != nil {
		branches = []models.Branch{*filter.Branch}
	}
	for _, branch := range branches {
		students, err := s.students.ListActiveByBranch(ctx, branch)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch students")
		}
		for _, st := range students {
			if filter.Category != nil && st.Category != *filter.Category {
				continue
			}
			row := models.MatrixRow{
				StudentID:        st.ID,
				Name:             st.Name,
				RegimentalNumber: st.RegimentalNumber,
				Branch:           st.Branch,
				Cells:            make([]models.MatrixCell, 0, len(parades)),
			}
			var tally models.AttendanceTally
			for _, p := range parades {
				status, ok := statuses[st.ID][p.ID]
				if !ok {
					status = models.StatusNotMarked
				} else {
					tally.Add(status)
				}
				row.Cells = append(row.Cells, models.MatrixCell{ParadeID: p.ID, Status: status})
			}
			row.Rate = tally.Rate()
			matrix.Rows = append(matrix.Rows, row)
		}
	}
	return matrix, nil
}

// ParadeStats aggregates one parade's attendance.
func (s *ReportService) ParadeStats(ctx context.Context, paradeID string) (*models.ParadeStats, error) {
	parade, err := s.parades.FindByID(ctx, paradeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parade")
	}
	tally, err := s.attendance.TallyByParade(ctx, paradeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally attendance")
	}
	return &models.ParadeStats{
		ParadeID:    parade.ID,
		ParadeName:  parade.Name,
		ParadeDate:  parade.Date,
		Tally:       tally,
		TotalMarked: tally.Total(),
		Rate:        tally.Rate(),
	}, nil
}

// StudentStats aggregates one student's attendance history.
func (s *ReportService) StudentStats(ctx context.Context, studentID string) (*models.StudentStats, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	tally, err := s.attendance.TallyByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to tally attendance")
	}
	recent, err := s.attendance.ListByStudent(ctx, studentID, 10)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent records")
	}
	return &models.StudentStats{
		StudentID:     student.ID,
		Name:          student.Name,
		Branch:        student.Branch,
		Tally:         tally,
		Rate:          tally.Rate(),
		RecentRecords: recent,
	}, nil
}

// Dashboard returns the cached overview, computing it on a miss.
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	byBranch, err := s.students.CountByBranch(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	byCategory, err := s.students.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count categories")
	}
	avgRate, err := s.students.AverageAttendanceRate(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to average attendance")
	}
	totalParades, upcoming, err := s.parades.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count parades")
	}
	recent, err := s.parades.ListRecent(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent parades")
	}

	totalStudents := 0
	for _, n := range byBranch {
		totalStudents += n
	}
	stats := &models.DashboardStats{
		TotalStudents:     totalStudents,
		TotalParades:      totalParades,
		UpcomingParades:   upcoming,
		AverageAttendance: models.Round1(avgRate),
		ByBranch:          byBranch,
		ByCategory:        byCategory,
		RecentParades:     recent,
		GeneratedAt:       s.now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RefreshDashboard drops cached report entries and recomputes the overview.
func (s *ReportService) RefreshDashboard(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "reports:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return s.Dashboard(ctx)
}

// BranchReportDataset flattens a branch report for CSV or PDF export.
func (s *ReportService) BranchReportDataset(report *models.BranchReport) export.Dataset {
	headers := []string{"Name", "Regimental Number", "Roll Number", "Category", "Rank", "Present", "Absent", "Late", "Excused", "Rate (%)"}

	rows := make([]map[string]string, 0, len(report.Students))
	for _, st := range report.Students {
		row := map[string]string{
			"Name":              st.Name,
			"Regimental Number": st.RegimentalNumber,
			"Roll Number":       st.RollNumber,
			"Category":          string(st.Category),
			"Rank":              st.Rank,
			"Present":           fmt.Sprintf("%d", st.Tally.Present),
			"Absent":            fmt.Sprintf("%d", st.Tally.Absent),
			"Late":              fmt.Sprintf("%d", st.Tally.Late),
			"Excused":           fmt.Sprintf("%d", st.Tally.Excused),
			"Rate (%)":          fmt.Sprintf("%.1f", st.Rate),
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// DailyReportDataset flattens a daily parade report for CSV or PDF export.
func (s *ReportService) DailyReportDataset(report *models.DailyParadeReport) export.Dataset {
	headers := []string{"Branch", "Strength", "Present", "Absent", "Late", "Excused", "Not Marked", "Rate (%)"}
	rows := make([]map[string]string, 0, len(report.Branches))
	for _, entry := range report.Branches {
		rows = append(rows, map[string]string{
			"Branch":     entry.BranchLabel,
			"Strength":   fmt.Sprintf("%d", entry.Strength),
			"Present":    fmt.Sprintf("%d", entry.Tally.Present),
			"Absent":     fmt.Sprintf("%d", entry.Tally.Absent),
			"Late":       fmt.Sprintf("%d", entry.Tally.Late),
			"Excused":    fmt.Sprintf("%d", entry.Tally.Excused),
			"Not Marked": fmt.Sprintf("%d", entry.NotMarked),
			"Rate (%)":   fmt.Sprintf("%.1f", entry.Rate),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
