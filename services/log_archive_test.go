package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"
	"time"

	"thaitour_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZipEntry(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("zip entry %s not found", name)
	return nil
}

func TestCreateZipArchive(t *testing.T) {
	created := time.Date(2026, time.January, 2, 9, 30, 0, 0, time.UTC)
	logs := []ArchivedLog{
		{ID: 1, UserID: 3, Username: "admin", UserRole: "admin", Action: "UPDATE", Resource: "trips", ResourceID: 9,
			Details: map[string]any{"note": `said "hi", then left`}, IPAddress: "10.0.0.1", UserAgent: "curl/8", CreatedAt: created},
		{ID: 2, Action: "DELETE", Resource: "faqs", CreatedAt: created.Add(time.Hour)},
	}

	buf, err := createZipArchive(logs, "activity_logs_2026-01-02.zip")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var payload struct {
		RecordCount int           `json:"record_count"`
		Logs        []ArchivedLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(readZipEntry(t, zr, "activity_logs.json"), &payload))
	assert.Equal(t, 2, payload.RecordCount)
	assert.Equal(t, "admin", payload.Logs[0].Username)

	records, err := csv.NewReader(bytes.NewReader(readZipEntry(t, zr, "activity_logs.csv"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Details", records[0][10])
	assert.Equal(t, "trips", records[1][5])
	assert.JSONEq(t, `{"note":"said \"hi\", then left"}`, records[1][10])
	assert.Equal(t, "", records[2][10])

	var meta map[string]any
	require.NoError(t, json.Unmarshal(readZipEntry(t, zr, "metadata.json"), &meta))
	assert.Equal(t, "activity_logs_2026-01-02.zip", meta["file_name"])
}

func TestArchiveObjectKey(t *testing.T) {
	cutoff := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "logs/archived/2026/03/a.zip", ArchiveObjectKey(cutoff, "a.zip"))
}

func TestToArchivedLog(t *testing.T) {
	l := models.ActivityLog{
		UserID:   5,
		Username: "editor1",
		UserRole: "editor",
		Action:   "CREATE",
		Details:  models.JSON(`{"path":"/api/admin/trips"}`),
	}
	l.ID = 11
	got := toArchivedLog(l)
	assert.Equal(t, uint(11), got.ID)
	assert.Equal(t, "editor1", got.Username)
	assert.Equal(t, "/api/admin/trips", got.Details["path"])

	l.Details = models.JSON("not json")
	assert.Nil(t, toArchivedLog(l).Details)
}

func TestArchiveOldLogsRejectsRecentCutoff(t *testing.T) {
	las := &LogArchiveService{}
	err := las.ArchiveOldLogs(context.Background(), MinArchiveAgeDays-1)
	assert.Error(t, err)
}
