package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/services"
	"github.com/yukikurage/task-manager-api/internal/testutil"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	alice   *models.User
	bob     *models.User
	admin   *models.User
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = testutil.NewDB(suite.T())
	suite.handler = NewTaskHandler(services.NewTaskService(repository.NewStore(suite.db)))

	suite.admin = testutil.CreateUser(suite.T(), suite.db, "admin", "admin@x.com", models.RoleAdmin)
	suite.alice = testutil.CreateUser(suite.T(), suite.db, "alice", "alice@x.com", models.RoleUser)
	suite.bob = testutil.CreateUser(suite.T(), suite.db, "bob", "bob@x.com", models.RoleUser)
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyCurrentUser, user)
	}

	return c, w
}

func (suite *TaskHandlerTestSuite) withID(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

func (suite *TaskHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.alice, "Test Task", "pending")
	testutil.CreateTask(suite.T(), suite.db, suite.bob, "Other Task", "pending")

	c, w := suite.createAuthContext("GET", "/tasks?page=1&limit=5", nil, suite.alice)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), task.Title, tasks[0].(map[string]interface{})["title"])

	pagination := response["pagination"].(map[string]interface{})
	assert.EqualValues(suite.T(), 1, pagination["total_items"])
	assert.EqualValues(suite.T(), 1, pagination["total_pages"])
	assert.EqualValues(suite.T(), 5, pagination["limit"])
	assert.Equal(suite.T(), false, pagination["has_next"])
}

// TestListTasks_InvalidPagination tests out of range pagination values
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidPagination() {
	for _, query := range []string{"page=0", "limit=0", "limit=101", "page=abc"} {
		c, w := suite.createAuthContext("GET", "/tasks?"+query, nil, suite.alice)

		suite.handler.ListTasks(c)

		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, query)
		assert.Equal(suite.T(), "VALIDATION_ERROR", suite.decode(w)["code"], query)
	}
}

// TestListTasks_EmptySearch tests that a blank search matches nothing
func (suite *TaskHandlerTestSuite) TestListTasks_EmptySearch() {
	testutil.CreateTask(suite.T(), suite.db, suite.alice, "Test Task", "pending")

	c, w := suite.createAuthContext("GET", "/tasks?search=", nil, suite.alice)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Empty(suite.T(), response["tasks"])
	pagination := response["pagination"].(map[string]interface{})
	assert.EqualValues(suite.T(), 0, pagination["total_items"])
	assert.EqualValues(suite.T(), 1, pagination["total_pages"])
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	c, w := suite.createAuthContext("GET", "/tasks", nil, nil)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetTask_OtherOwner tests that another user's task is reported missing
func (suite *TaskHandlerTestSuite) TestGetTask_OtherOwner() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.alice, "Private", "pending")

	c, w := suite.createAuthContext("GET", "/tasks/1", nil, suite.bob)
	suite.withID(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", suite.decode(w)["code"])
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	body, _ := json.Marshal(map[string]interface{}{
		"title":    "T1",
		"priority": "high",
	})

	c, w := suite.createAuthContext("POST", "/tasks", body, suite.alice)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	response := suite.decode(w)
	assert.Equal(suite.T(), "T1", response["title"])
	assert.Equal(suite.T(), "pending", response["status"])
	assert.Equal(suite.T(), "high", response["priority"])
	assert.Nil(suite.T(), response["completion_datetime"])
	assert.Equal(suite.T(), false, response["is_deleted"])
	assert.EqualValues(suite.T(), suite.alice.ID, response["owner_id"])
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	for _, payload := range []map[string]interface{}{
		{"description": "missing title"},
		{"title": "T", "priority": "critical"},
	} {
		body, _ := json.Marshal(payload)
		c, w := suite.createAuthContext("POST", "/tasks", body, suite.alice)

		suite.handler.CreateTask(c)

		assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
		assert.Equal(suite.T(), "VALIDATION_ERROR", suite.decode(w)["code"])
	}
}

// TestCreateTask_Admin tests that administrators cannot own tasks
func (suite *TaskHandlerTestSuite) TestCreateTask_Admin() {
	body, _ := json.Marshal(map[string]interface{}{"title": "T"})
	c, w := suite.createAuthContext("POST", "/tasks", body, suite.admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_RestrictedField tests that users cannot change priority
func (suite *TaskHandlerTestSuite) TestUpdateTask_RestrictedField() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.alice, "T1", "pending")
	body := []byte(`{"priority":"urgent","status":"in_progress"}`)

	c, w := suite.createAuthContext("PUT", "/tasks/1", body, suite.alice)
	suite.withID(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	response := suite.decode(w)
	assert.Equal(suite.T(), "FORBIDDEN", response["code"])
	details := response["details"].(map[string]interface{})
	assert.Equal(suite.T(), []interface{}{"priority"}, details["fields"])
}

// TestUpdateTask_ClearsNullableField tests that an explicit null clears a datetime
func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearsNullableField() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.alice, "T1", "pending")

	c, w := suite.createAuthContext("PUT", "/tasks/1", []byte(`{"start_datetime":"2024-05-01T10:00:00Z"}`), suite.alice)
	suite.withID(c, task.ID)
	suite.handler.UpdateTask(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.NotNil(suite.decode(w)["start_datetime"])

	c, w = suite.createAuthContext("PUT", "/tasks/1", []byte(`{"start_datetime":null,"status":"completed"}`), suite.alice)
	suite.withID(c, task.ID)
	suite.handler.UpdateTask(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	response := suite.decode(w)
	suite.Nil(response["start_datetime"])
	suite.NotNil(response["completion_datetime"])
}

// TestDeleteTask_Success tests soft deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.alice, "T1", "pending")

	c, w := suite.createAuthContext("DELETE", "/tasks/1", nil, suite.alice)
	suite.withID(c, task.ID)
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusNoContent, c.Writer.Status())

	c, w = suite.createAuthContext("GET", "/tasks/1", nil, suite.alice)
	suite.withID(c, task.ID)
	suite.handler.GetTask(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestDeleteTask_InvalidID tests a malformed id
func (suite *TaskHandlerTestSuite) TestDeleteTask_InvalidID() {
	c, w := suite.createAuthContext("DELETE", "/tasks/abc", nil, suite.alice)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSearchTasks_OwnerFilter tests the administrator owner filter
func (suite *TaskHandlerTestSuite) TestSearchTasks_OwnerFilter() {
	testutil.CreateTask(suite.T(), suite.db, suite.alice, "A", "pending")
	testutil.CreateTask(suite.T(), suite.db, suite.bob, "B", "pending")

	c, w := suite.createAuthContext("GET", "/admin/tasks?owner_id="+strconv.FormatUint(suite.bob.ID, 10), nil, suite.admin)

	suite.handler.SearchTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	tasks := suite.decode(w)["tasks"].([]interface{})
	suite.Require().Len(tasks, 1)
	task := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), "B", task["title"])
	owner := task["owner"].(map[string]interface{})
	assert.Equal(suite.T(), "bob", owner["username"])
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
