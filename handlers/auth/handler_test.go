package auth

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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func authRouter() *gin.Engine {
	r := testutils.SetupTestRouter()
	r.POST("/register", Register)
	r.POST("/login", Login)
	return r
}

func sendCredentials(r *gin.Engine, url string, creds models.UserCreate) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(creds)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegister_InvalidEmail(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	resp := sendCredentials(authRouter(), "/register", models.UserCreate{
		Email:    "not-an-email",
		Password: "Password1",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegister_WeakPassword(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	resp := sendCredentials(authRouter(), "/register", models.UserCreate{
		Email:    "resident@example.com",
		Password: "alllowercase",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegister_EmailAlreadyUsed(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("existing-user", "resident@example.com"))

	resp := sendCredentials(authRouter(), "/register", models.UserCreate{
		Email:    "resident@example.com",
		Password: "Password1",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRegister_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("new-user"))
	mock.ExpectCommit()

	resp := sendCredentials(authRouter(), "/register", models.UserCreate{
		Email:    "resident@example.com",
		Password: "Password1",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "resident@example.com", body["email"])
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}).
			AddRow("existing-user", "resident@example.com", string(hash)))

	resp := sendCredentials(authRouter(), "/login", models.UserCreate{
		Email:    "resident@example.com",
		Password: "WrongPassword9",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	resp := sendCredentials(authRouter(), "/login", models.UserCreate{
		Email:    "nobody@example.com",
		Password: "Password1",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role"}).
			AddRow("existing-user", "resident@example.com", string(hash), "USER"))

	resp := sendCredentials(authRouter(), "/login", models.UserCreate{
		Email:    "resident@example.com",
		Password: "Password1",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.NotEmpty(t, body["token"])
}
