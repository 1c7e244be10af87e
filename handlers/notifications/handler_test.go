package notifications

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

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

const userID = "abc12345-e89b-12d3-a456-426614174000"

func notifRouter() *gin.Engine {
	r := testutils.SetupTestRouter()
	auth := func(c *gin.Context) { c.Set("user_id", userID) }
	r.GET("/notifications", auth, GetMyNotifications)
	r.GET("/notifications/unread-count", auth, GetUnreadCount)
	r.PATCH("/notifications/:id/read", auth, MarkRead)
	r.PATCH("/notifications/read-all", auth, MarkAllRead)
	return r
}

func send(r *gin.Engine, method, url string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGetMyNotifications_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "notifications" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "title"}).
			AddRow("notif-1", userID, "status_change", "Report status updated"))

	resp := send(notifRouter(), http.MethodGet, "/notifications")

	assert.Equal(t, http.StatusOK, resp.Code)

	var notifs []map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &notifs)
	assert.Len(t, notifs, 1)
	assert.Equal(t, "notif-1", notifs[0]["id"])
}

func TestGetUnreadCount_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND read_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	resp := send(notifRouter(), http.MethodGet, "/notifications/unread-count")

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, float64(3), body["count"])
}

func TestMarkRead_NotOwned(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	// The row belongs to someone else or does not exist: zero rows updated
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	resp := send(notifRouter(), http.MethodPatch, "/notifications/notif-1/read")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMarkRead_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp := send(notifRouter(), http.MethodPatch, "/notifications/notif-1/read")

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMarkAllRead_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	resp := send(notifRouter(), http.MethodPatch, "/notifications/read-all")

	assert.Equal(t, http.StatusOK, resp.Code)
}
