package flags

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
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const (
	reporterID = "abc12345-e89b-12d3-a456-426614174000"
	targetID   = "123e4567-e89b-12d3-a456-426614174000"
)

func flagRouter() *gin.Engine {
	r := testutils.SetupTestRouter()
	r.POST("/flags", func(c *gin.Context) {
		c.Set("user_id", reporterID)
		c.Set("current_user", models.User{ID: reporterID, Role: models.UserRole})
		CreateFlag(c)
	})
	return r
}

func sendFlag(r *gin.Engine, input models.FlagCreate) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(input)
	req, _ := http.NewRequest(http.MethodPost, "/flags", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateFlag_UnknownTargetType(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	resp := sendFlag(flagRouter(), models.FlagCreate{
		TargetType: "comment",
		TargetID:   targetID,
		Reason:     "Spam",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateFlag_AlreadyFlagged(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "flags" WHERE reporter_id = \$1 AND target_type = \$2 AND target_id = \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "target_type", "target_id", "reporter_id"}).
			AddRow("flag-1", "report", targetID, reporterID))

	resp := sendFlag(flagRouter(), models.FlagCreate{
		TargetType: "report",
		TargetID:   targetID,
		Reason:     "Spam",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateFlag_DuplicateRaceCaughtByIndex(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "flags" WHERE reporter_id = \$1 AND target_type = \$2 AND target_id = \$3`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "flags" (.+) RETURNING "id"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	resp := sendFlag(flagRouter(), models.FlagCreate{
		TargetType: "report",
		TargetID:   targetID,
		Reason:     "Spam",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateFlag_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "flags" WHERE reporter_id = \$1 AND target_type = \$2 AND target_id = \$3`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "flags" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("flag-1"))
	mock.ExpectCommit()

	resp := sendFlag(flagRouter(), models.FlagCreate{
		TargetType: "report",
		TargetID:   targetID,
		Reason:     "Offensive content",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var created models.Flag
	json.Unmarshal(resp.Body.Bytes(), &created)
	assert.Equal(t, "flag-1", created.ID)
	assert.Equal(t, models.FlagTargetReport, created.TargetType)
}
