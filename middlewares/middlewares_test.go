package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/utils"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/echo", func(c *gin.Context) {
		company, _ := utils.GetCompanyFromContext(c.Request.Context())
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"company": company, "correlation_id": cid})
	})
	return r
}

func TestCorrelationMiddleware(t *testing.T) {
	r := newTestRouter(CorrelationMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(CorrelationIdHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(CorrelationIdHeader); got != "abc-123" {
		t.Fatalf("correlation id = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	if got := w.Header().Get(CorrelationIdHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestCompanyMiddleware(t *testing.T) {
	r := newTestRouter(CompanyMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(CompanyHeader, "Acme Corp")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"company":"Acme Corp","correlation_id":""}` {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCompanyMiddleware_RejectsOtherCompanyThanSession(t *testing.T) {
	sessionCompany := func(c *gin.Context) {
		c.Request = c.Request.WithContext(utils.SetCompanyInContext(c.Request.Context(), "Acme Corp"))
		c.Next()
	}
	r := newTestRouter(sessionCompany, CompanyMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(CompanyHeader, "Globex Inc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(AuthMiddleware())

	token, err := utils.JwtGenerate("alice", "Acme Corp")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"company":"Acme Corp","correlation_id":""}` {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}

	// no header: anonymous request passes through
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
