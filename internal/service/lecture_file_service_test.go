package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/dto"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

type fakeStorage struct {
	uploads int
}

func (f *fakeStorage) Upload(_ context.Context, courseID uint, name string, _ io.Reader) (string, error) {
	f.uploads++
	return fmt.Sprintf("https://files.example.com/course-%d/%s", courseID, name), nil
}

func newFileFixture(t *testing.T) (LectureFileService, *gorm.DB, *fakeStorage, models.Course) {
	t.Helper()
	db := setupTestDB(t)
	seedRoles(t, db)

	course := models.Course{CourseCode: "CS101", CourseName: "Intro", IsActive: true}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.InstructorCourse{InstructorID: 7, CourseID: course.ID}).Error)

	storage := &fakeStorage{}
	svc := NewLectureFileService(
		repository.NewLectureFileRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserActivityRepository(db),
		storage,
		validator.New(validator.WithRequiredStructEnabled()),
		&auditRecorderStub{},
		1,
		testLogger(),
	)
	return svc, db, storage, course
}

func TestUploadSniffsFileType(t *testing.T) {
	svc, db, storage, course := newFileFixture(t)
	ctx := context.Background()

	content := "%PDF-1.7 minimal document body"
	response, err := svc.Upload(ctx, dto.LectureFileUploadRequest{
		CourseID: course.ID,
		Title:    "Syllabus",
	}, "syllabus.pdf", int64(len(content)), strings.NewReader(content), AuditActor{ID: 7, Role: "instructor"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, models.FileTypeDocument, response.FileType)
	require.Contains(t, response.FileURL, "course-1")
	require.Equal(t, 1, storage.uploads)

	var stored models.LectureFile
	require.NoError(t, db.First(&stored, response.ID).Error)
	require.Equal(t, uint(7), stored.UploaderID)
	require.True(t, stored.IsVisible)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, storage, course := newFileFixture(t)

	tooBig := int64(2 * 1024 * 1024)
	_, err := svc.Upload(context.Background(), dto.LectureFileUploadRequest{
		CourseID: course.ID,
		Title:    "Huge",
	}, "huge.bin", tooBig, strings.NewReader("x"), AuditActor{ID: 7}, RequestMeta{})
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Equal(t, 0, storage.uploads)
}

func TestDownloadBumpsCounterAndRecordsActivity(t *testing.T) {
	svc, db, _, course := newFileFixture(t)
	ctx := context.Background()

	file := models.LectureFile{CourseID: course.ID, UploaderID: 7, Title: "Notes", FileType: models.FileTypeDocument, FileURL: "https://files.example.com/notes.pdf", IsVisible: true}
	require.NoError(t, db.Create(&file).Error)

	response, err := svc.Download(ctx, file.ID, AuditActor{ID: 42, Role: "student"}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), response.DownloadCount)

	var stored models.LectureFile
	require.NoError(t, db.First(&stored, file.ID).Error)
	require.Equal(t, int64(1), stored.DownloadCount)

	var activities int64
	require.NoError(t, db.Model(&models.UserActivity{}).
		Where("user_id = ? AND activity_type = ?", 42, models.ActivityDownload).
		Count(&activities).Error)
	require.Equal(t, int64(1), activities)
}

func TestDownloadHiddenFileOnlyForUploader(t *testing.T) {
	svc, db, _, course := newFileFixture(t)
	ctx := context.Background()

	file := models.LectureFile{CourseID: course.ID, UploaderID: 7, Title: "Draft", FileType: models.FileTypeDocument, FileURL: "https://files.example.com/draft.pdf", IsVisible: false}
	require.NoError(t, db.Create(&file).Error)

	_, err := svc.Download(ctx, file.ID, AuditActor{ID: 42}, RequestMeta{})
	require.ErrorIs(t, err, ErrFileNotVisible)

	_, err = svc.Download(ctx, file.ID, AuditActor{ID: 7}, RequestMeta{})
	require.NoError(t, err)
}

func TestSoftDeletedFileIsGone(t *testing.T) {
	svc, db, _, course := newFileFixture(t)
	ctx := context.Background()

	file := models.LectureFile{CourseID: course.ID, UploaderID: 7, Title: "Old", FileType: models.FileTypeDocument, IsVisible: true}
	require.NoError(t, db.Create(&file).Error)

	require.NoError(t, svc.Delete(ctx, file.ID, AuditActor{ID: 7}, RequestMeta{}))

	_, err := svc.Download(ctx, file.ID, AuditActor{ID: 7}, RequestMeta{})
	require.ErrorIs(t, err, ErrFileNotFound)

	err = svc.Delete(ctx, file.ID, AuditActor{ID: 7}, RequestMeta{})
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestUploadRequiresCourseInstructor(t *testing.T) {
	svc, _, storage, course := newFileFixture(t)

	content := "%PDF-1.7 body"
	_, err := svc.Upload(context.Background(), dto.LectureFileUploadRequest{
		CourseID: course.ID,
		Title:    "Notes",
	}, "notes.pdf", int64(len(content)), strings.NewReader(content), AuditActor{ID: 99, Role: "instructor"}, RequestMeta{})
	require.ErrorIs(t, err, ErrNotCourseInstructor)
	require.Equal(t, 0, storage.uploads)
}

func TestUploadAllowsAdminWithoutAssignment(t *testing.T) {
	svc, _, storage, course := newFileFixture(t)

	content := "%PDF-1.7 body"
	_, err := svc.Upload(context.Background(), dto.LectureFileUploadRequest{
		CourseID: course.ID,
		Title:    "Notes",
	}, "notes.pdf", int64(len(content)), strings.NewReader(content), AuditActor{ID: 99, Role: "admin"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, 1, storage.uploads)
}

func TestVisibilityAndDeleteRequireCourseManager(t *testing.T) {
	svc, db, _, course := newFileFixture(t)
	ctx := context.Background()

	file := models.LectureFile{CourseID: course.ID, UploaderID: 7, Title: "Notes", FileType: models.FileTypeDocument, IsVisible: true}
	require.NoError(t, db.Create(&file).Error)

	_, err := svc.SetVisibility(ctx, file.ID, false, AuditActor{ID: 99, Role: "instructor"}, RequestMeta{})
	require.ErrorIs(t, err, ErrNotCourseInstructor)

	err = svc.Delete(ctx, file.ID, AuditActor{ID: 99, Role: "instructor"}, RequestMeta{})
	require.ErrorIs(t, err, ErrNotCourseInstructor)

	_, err = svc.SetVisibility(ctx, file.ID, false, AuditActor{ID: 7, Role: "instructor"}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, file.ID, AuditActor{ID: 99, Role: "admin"}, RequestMeta{}))
}

func TestUploadSizeCapDefaultsWhenUnset(t *testing.T) {
	_, db, storage, course := newFileFixture(t)

	svc := NewLectureFileService(
		repository.NewLectureFileRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserActivityRepository(db),
		storage,
		validator.New(validator.WithRequiredStructEnabled()),
		&auditRecorderStub{},
		0,
		testLogger(),
	)

	content := "\x89PNG\r\n\x1a\n" + strings.Repeat("x", 64)
	response, err := svc.Upload(context.Background(), dto.LectureFileUploadRequest{
		CourseID: course.ID,
		Title:    "Diagram",
	}, "diagram.png", int64(len(content)), strings.NewReader(content), AuditActor{ID: 7, Role: "instructor"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, models.FileTypeImage, response.FileType)
}

func TestCategorizeMIME(t *testing.T) {
	cases := []struct {
		mime     string
		filename string
		want     string
	}{
		{"application/pdf", "a.pdf", models.FileTypeDocument},
		{"image/png", "a.png", models.FileTypeImage},
		{"video/mp4", "a.mp4", models.FileTypeVideo},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "deck.pptx", models.FileTypeSlides},
		{"application/zip", "deck.pptx", models.FileTypeSlides},
		{"application/zip", "bundle.zip", models.FileTypeArchive},
		{"text/plain", "readme.txt", models.FileTypeDocument},
		{"application/octet-stream", "blob.bin", models.FileTypeOther},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, categorizeMIME(tc.mime, tc.filename), "%s %s", tc.mime, tc.filename)
	}
}
