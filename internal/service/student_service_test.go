package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
	seq      int
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*models.Student)}
	for _, st := range students {
		repo.students[st.ID] = st
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, st := range f.students {
		if !filter.IncludeInactive && !st.Active {
			continue
		}
		if filter.Branch != nil && st.Branch != *filter.Branch {
			continue
		}
		out = append(out, *st)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if st, ok := f.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByRegimentalNumber(_ context.Context, regimentalNumber, excludeID string) (bool, error) {
	for _, st := range f.students {
		if st.RegimentalNumber == regimentalNumber && st.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) ExistsByRollNumber(_ context.Context, rollNumber, excludeID string) (bool, error) {
	for _, st := range f.students {
		if st.RollNumber == rollNumber && st.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.seq++
	if student.ID == "" {
		student.ID = "student-" + strings.Repeat("x", f.seq)
	}
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) Deactivate(_ context.Context, id string) error {
	if st, ok := f.students[id]; ok {
		st.Active = false
	}
	return nil
}

func TestStudentServiceCreateNormalizesIdentifiers(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:             "Cadet One",
		RegimentalNumber: "tn23sda700001",
		RollNumber:       "23cs101",
		Category:         "c",
		Branch:           "cse",
		Rank:             "Cadet",
		Address:          "12 Parade Road",
	})
	require.NoError(t, err)
	assert.Equal(t, "TN23SDA700001", student.RegimentalNumber)
	assert.Equal(t, "23CS101", student.RollNumber)
	assert.Equal(t, models.CategoryC, student.Category)
	assert.Equal(t, models.BranchCSE, student.Branch)
	assert.True(t, student.Active)
}

func TestStudentServiceCreateDuplicateRegimental(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: "s1", RegimentalNumber: "TN23SDA700001", RollNumber: "23CS101", Active: true})
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:             "Imposter",
		RegimentalNumber: "TN23SDA700001",
		RollNumber:       "23CS999",
		Category:         "C",
		Branch:           "CSE",
		Rank:             "Cadet",
		Address:          "12 Parade Road",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
}

func TestStudentServiceCreateUnknownBranch(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:             "Cadet",
		RegimentalNumber: "TN23SDA700002",
		RollNumber:       "23XX101",
		Category:         "C",
		Branch:           "XYZ",
		Rank:             "Cadet",
		Address:          "12 Parade Road",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceDeactivateKeepsRecord(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: "s1", Name: "Cadet One", Active: true})
	svc := NewStudentService(repo, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "s1"))
	assert.False(t, repo.students["s1"].Active)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceImportIsolatesRowFailures(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: "s1", RegimentalNumber: "TN23SDA700001", RollNumber: "23CS101", Active: true})
	svc := NewStudentService(repo, nil, nil)

	csvData := strings.Join([]string{
		"name,regimental_number,roll_number,category,branch,rank,address",
		"Cadet Two,TN23SDA700002,23CS102,C,CSE,Cadet,12 Parade Road",
		"Duplicate,TN23SDA700001,23CS101,C,CSE,Cadet,12 Parade Road",
		"Bad Branch,TN23SDA700003,23CS103,C,NOPE,Cadet,12 Parade Road",
		"No Rank,TN23SDA700005,23CS105,C,CSE,,12 Parade Road",
		"Cadet Four,TN23SDA700004,23EC104,B1,ECE,Sergeant,4 Camp Street",
	}, "\n")

	result, err := svc.Import(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 4")
	assert.Contains(t, result.Errors[1], "row 5")
}

func TestStudentServiceImportMissingColumn(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), nil, nil)

	_, err := svc.Import(context.Background(), strings.NewReader("name,roll_number\nCadet,23CS101"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
