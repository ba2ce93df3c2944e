package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/importer"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/andresuchdata/b2b-portal/internal/session"
	"github.com/andresuchdata/b2b-portal/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type portal struct {
	router *gin.Engine
	remote *testutil.Remote
	ws     *service.Workspace
}

func newPortal(t *testing.T, user *domain.User) *portal {
	t.Helper()
	remote := testutil.NewRemote()
	remote.AddProduct("P1", "Widget", "10", 5)
	remote.SetInventory("P1", 3)

	ws := service.NewWorkspace(context.Background(), service.Deps{
		Session:   session.NewManager(remote, &session.MemoryTokenStore{}),
		Catalog:   remote,
		Orders:    remote,
		Accounts:  remote,
		Analytics: remote,
		Imports:   importer.NewRegistry(remote),
		Location:  time.UTC,
	})
	t.Cleanup(ws.Close)

	if user != nil {
		remote.AddUser("tok", *user)
		_, err := ws.Login(context.Background(), domain.Credentials{Email: user.Email, Password: "pw"})
		require.NoError(t, err)
	}
	return &portal{router: NewRouter(&Services{Workspace: ws}, nil), remote: remote, ws: ws}
}

func (p *portal) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

var distributor = &domain.User{ID: "u1", Email: "d@x.test", EntityType: domain.EntityDistributor, EntityID: "d1"}
var company = &domain.User{ID: "u2", Email: "c@x.test", EntityType: domain.EntityCompany}

func TestHealth(t *testing.T) {
	p := newPortal(t, nil)
	rec, body := p.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRoutesRequireSession(t *testing.T) {
	p := newPortal(t, nil)
	rec, body := p.do(t, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not authenticated", body["error"])

	rec, body = p.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["authenticated"])
}

func TestRoutesCheckAccountType(t *testing.T) {
	p := newPortal(t, company)
	rec, _ := p.do(t, http.MethodPost, "/api/v1/draft/submit", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDraftFlow(t *testing.T) {
	p := newPortal(t, distributor)

	rec, body := p.do(t, http.MethodPost, "/api/v1/views/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["products"], 1)

	rec, body = p.do(t, http.MethodPut, "/api/v1/draft/items/P1", map[string]string{"value": "8"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), body["quantity"])
	assert.Equal(t, float64(50), body["total"])

	rec, body = p.do(t, http.MethodPost, "/api/v1/draft/submit", map[string]string{"shopName": "Corner"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Corner", body["shopName"])

	reqs := p.remote.OrderRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []domain.DraftLineItem{{ProductID: "P1", Quantity: 5}}, reqs[0].Items)

	rec, body = p.do(t, http.MethodPost, "/api/v1/draft/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["error"], "please select at least one item")
}

func TestRemoteRejectionPassesThrough(t *testing.T) {
	p := newPortal(t, distributor)
	_, _ = p.do(t, http.MethodPost, "/api/v1/views/catalog", nil)
	_, _ = p.do(t, http.MethodPut, "/api/v1/draft/items/P1", map[string]string{"value": "1"})

	p.remote.SetFail(&domain.RemoteError{Status: http.StatusBadRequest, Message: "Distributor account is not active"})
	rec, body := p.do(t, http.MethodPost, "/api/v1/draft/submit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Distributor account is not active", body["error"])
}

func TestCatalogFetchFailureIsBadGateway(t *testing.T) {
	p := newPortal(t, distributor)
	p.remote.SetFail(&domain.RemoteError{Status: http.StatusInternalServerError, Message: "Server Error"})

	rec, body := p.do(t, http.MethodPost, "/api/v1/views/catalog", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, body["products"])
}

func TestSalesRowsFlow(t *testing.T) {
	p := newPortal(t, distributor)
	rec, _ := p.do(t, http.MethodPost, "/api/v1/views/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := p.do(t, http.MethodPut, "/api/v1/sales/rows/0", map[string]string{"productId": "P1", "quantity": "9"})
	require.Equal(t, http.StatusOK, rec.Code)
	rows := body["rows"].([]any)
	assert.Equal(t, float64(3), rows[0].(map[string]any)["quantity"])

	rec, _ = p.do(t, http.MethodPut, "/api/v1/sales/rows/x", map[string]string{"quantity": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = p.do(t, http.MethodDelete, "/api/v1/sales/rows/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = p.do(t, http.MethodPost, "/api/v1/sales/submit", map[string]string{"date": "2026-03-02"})
	require.Equal(t, http.StatusCreated, rec.Code)
	reports := p.remote.SalesReports()
	require.Len(t, reports, 1)
	assert.Equal(t, 2026, reports[0].Date.Year())
}

func TestStockUpdateAcceptsNumberOrText(t *testing.T) {
	p := newPortal(t, company)
	_, _ = p.do(t, http.MethodPost, "/api/v1/views/catalog", nil)

	rec, _ := p.do(t, http.MethodPost, "/api/v1/products/P1/stock", map[string]any{"stock": 40})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = p.do(t, http.MethodPost, "/api/v1/products/P1/stock", map[string]any{"stock": "12 units"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := p.do(t, http.MethodPost, "/api/v1/products/P1/stock", map[string]any{"stock": "lots"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["error"], "Invalid stock value")

	rec, _ = p.do(t, http.MethodPost, "/api/v1/products/P1/stock", map[string]any{"stockAdjustment": -2, "reason": "damaged"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, p.ws.SearchCatalog("widget")[0].Stock)
}

func TestImportUpload(t *testing.T) {
	p := newPortal(t, company)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("name,price\nBolt,1\n,2\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var status domain.ImportJobStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.TotalRows)

	require.Eventually(t, func() bool {
		got, err := p.ws.ImportStatus(context.Background(), status.ID)
		return err == nil && got.State == domain.ImportCompleted
	}, time.Second, 10*time.Millisecond)

	rec, body := p.do(t, http.MethodGet, "/api/v1/imports/"+status.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["failedRows"])

	rec, _ = p.do(t, http.MethodGet, "/api/v1/imports/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	p := newPortal(t, company)
	rec, _ := p.do(t, http.MethodGet, "/api/v1/analytics/calendar/d1?month=2026-13", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body := p.do(t, http.MethodGet, "/api/v1/analytics/calendar/d1?month=2026-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["calendar"])
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.test, https://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}

func TestDraftQuantityDelta(t *testing.T) {
	p := newPortal(t, distributor)
	_, _ = p.do(t, http.MethodPost, "/api/v1/views/catalog", nil)

	_, body := p.do(t, http.MethodPut, "/api/v1/draft/items/P1", map[string]any{"delta": 2})
	assert.Equal(t, float64(2), body["quantity"])

	rec, body := p.do(t, http.MethodPut, "/api/v1/draft/items/P1", map[string]any{"delta": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["quantity"])
	assert.Equal(t, float64(10), body["total"])
}

func TestOrderAdvance(t *testing.T) {
	p := newPortal(t, company)
	p.remote.Orders = append(p.remote.Orders, domain.OrderRequest{ShopName: "Corner"})

	rec, body := p.do(t, http.MethodPut, "/api/v1/orders/o1/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(domain.OrderConfirmed), body["status"])

	rec, _ = p.do(t, http.MethodPut, "/api/v1/orders/o9/advance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
