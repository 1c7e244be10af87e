package users

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
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const userID = "abc12345-e89b-12d3-a456-426614174000"

func TestGetUserProfile_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.GET("/users/:id", GetUserProfile)

	req, _ := http.NewRequest(http.MethodGet, "/users/"+userID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetUserProfile_HidesAccountFields(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "display_name", "role", "points"}).
			AddRow(userID, "resident@example.com", "hashed-secret", "Jordan", "USER", 42))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reports" WHERE creator_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	r := testutils.SetupTestRouter()
	r.GET("/users/:id", GetUserProfile)

	req, _ := http.NewRequest(http.MethodGet, "/users/"+userID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Jordan", body["displayName"])
	assert.Equal(t, float64(42), body["points"])
	assert.Equal(t, float64(3), body["reportsCount"])
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "password")
}

func TestGetMe_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow(userID, "resident@example.com", "USER"))

	r := testutils.SetupTestRouter()
	r.GET("/me", func(c *gin.Context) {
		c.Set("user_id", userID)
		GetMe(c)
	})

	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "resident@example.com", body["email"])
}
