package updates

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"civicwatch-backend/models"
	"civicwatch-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const (
	authorID = "abc12345-e89b-12d3-a456-426614174000"
	reportID = "123e4567-e89b-12d3-a456-426614174000"
)

func updateRouter(user models.User) *gin.Engine {
	r := testutils.SetupTestRouter()
	r.POST("/reports/:id/updates", func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("current_user", user)
		AddUpdate(c)
	})
	return r
}

func sendUpdate(r *gin.Engine, content string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(models.UpdateCreate{Content: content})
	req, _ := http.NewRequest(http.MethodPost, "/reports/"+reportID+"/updates", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAddUpdate_EmptyContent(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := updateRouter(models.User{ID: authorID, Role: models.UserRole})

	resp := sendUpdate(r, "   ")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddUpdate_CommentsLocked(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden", "comments_locked"}).
			AddRow(reportID, "OPEN", false, true))

	r := updateRouter(models.User{ID: authorID, Role: models.UserRole})

	resp := sendUpdate(r, "Still a problem here")

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAddUpdate_CommentsLockedAdminBypass(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden", "comments_locked"}).
			AddRow(reportID, "OPEN", false, true))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "report_updates" WHERE author_id = \$1 AND created_at >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "report_updates" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("update-1"))
	mock.ExpectCommit()

	// Helper counters
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := updateRouter(models.User{ID: authorID, Role: models.AdminRole})

	resp := sendUpdate(r, "Moderator note")

	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestAddUpdate_HiddenReportNotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden", "comments_locked"}).
			AddRow(reportID, "OPEN", true, false))

	r := updateRouter(models.User{ID: authorID, Role: models.UserRole})

	resp := sendUpdate(r, "Anyone looking at this?")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAddUpdate_RateLimited(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden", "comments_locked"}).
			AddRow(reportID, "OPEN", false, false))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "report_updates" WHERE author_id = \$1 AND created_at >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	r := updateRouter(models.User{ID: authorID, Role: models.UserRole})

	resp := sendUpdate(r, "Second comment right away")

	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestAddUpdate_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden", "comments_locked"}).
			AddRow(reportID, "OPEN", false, false))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "report_updates" WHERE author_id = \$1 AND created_at >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "report_updates" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("update-1"))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := updateRouter(models.User{ID: authorID, Role: models.UserRole})

	resp := sendUpdate(r, "I walked past today, still not fixed")

	assert.Equal(t, http.StatusCreated, resp.Code)

	var created models.ReportUpdate
	json.Unmarshal(resp.Body.Bytes(), &created)
	assert.Equal(t, "update-1", created.ID)
	assert.Equal(t, models.UpdateTypeComment, created.Type)
}

func TestGetUpdatesByReportID_HiddenNonAdmin(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "reports" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "is_hidden"}).
			AddRow(reportID, "OPEN", true))

	r := testutils.SetupTestRouter()
	r.GET("/reports/:id/updates", GetUpdatesByReportID)

	req, _ := http.NewRequest(http.MethodGet, "/reports/"+reportID+"/updates", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
