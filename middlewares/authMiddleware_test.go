package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware(), AuthMiddleware())
	handlers := append(guards, func(c *gin.Context) {
		email, _ := utils.GetEmployeeEmailFromContext(c.Request.Context())
		customer, _ := utils.GetCustomerIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"email": email, "customer_id": customer})
	})
	r.GET("/", handlers...)
	return r
}

func call(t *testing.T, r *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, id int, role string, email string) string {
	t.Helper()
	token, err := utils.JwtGenerate(id, role, email)
	require.NoError(t, err)
	return token
}

func TestCorrelationMiddlewareEchoesHeader(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Correlation-Id"))

	w = call(t, r, "")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-Id"))
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusOK, call(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, r, "not-a-jwt").Code)
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(RequireRoles(models.EmployeeRoleInventoryManager))

	assert.Equal(t, http.StatusUnauthorized, call(t, r, "").Code)

	w := call(t, r, tokenFor(t, 1, string(models.EmployeeRoleInventoryManager), "stores@eurodoor.co.ke"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stores@eurodoor.co.ke")

	w = call(t, r, tokenFor(t, 2, string(models.EmployeeRoleDriver), "driver@eurodoor.co.ke"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, tokenFor(t, 3, string(models.EmployeeRoleAdmin), "admin@eurodoor.co.ke"))
	assert.Equal(t, http.StatusOK, w.Code)

	// Customers never carry an employee role.
	w = call(t, r, tokenFor(t, 4, models.CustomerRole, "jane@example.com"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCustomer(t *testing.T) {
	r := newRouter(RequireCustomer())

	w := call(t, r, tokenFor(t, 42, models.CustomerRole, "jane@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customer_id":42`)

	w = call(t, r, tokenFor(t, 1, string(models.EmployeeRoleFinanceManager), "finance@eurodoor.co.ke"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
