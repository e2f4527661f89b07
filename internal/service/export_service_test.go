package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/schedule-api/pkg/storage"
)

func exportFixtureRepo() *mockScheduleEntryRepo {
	repo, _, _, _ := scheduleFixtures()
	return repo
}

func newExportServiceForTest(t *testing.T, repo *mockScheduleEntryRepo) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewExportService(repo, store, signer, ExportConfig{ResultTTL: time.Hour}, zap.NewNop(), nil, nil)
}

func TestExportGenerateCSV(t *testing.T) {
	svc := newExportServiceForTest(t, exportFixtureRepo())

	result, err := svc.Generate(context.Background(), ExportFormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, result.Format)
	assert.NotEmpty(t, result.Token)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

	file, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportGeneratePDF(t *testing.T) {
	svc := newExportServiceForTest(t, exportFixtureRepo())

	result, err := svc.Generate(context.Background(), ExportFormatPDF, "")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, result.Format)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportGenerateScopedToSection(t *testing.T) {
	repo := exportFixtureRepo()
	svc := newExportServiceForTest(t, repo)

	result, err := svc.Generate(context.Background(), ExportFormatCSV, "section-none")
	require.NoError(t, err)

	file, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "MATH101")
}

func TestExportGenerateRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(t, exportFixtureRepo())

	_, err := svc.Generate(context.Background(), ExportFormat("xlsx"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestExportOpenRejectsBadToken(t *testing.T) {
	svc := newExportServiceForTest(t, exportFixtureRepo())

	_, err := svc.Open("not-a-token")
	require.Error(t, err)
}
