package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sarthakgup/personal-finance-copilot/internal/services"
	"github.com/sarthakgup/personal-finance-copilot/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s := memory.New()
	svc := services.NewTransactionService(s, nil, nil)
	t.Cleanup(func() { svc.Close() })
	srv := NewServer(":0", svc, s, nil)
	return srv, srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func uploadCSV(t *testing.T, h http.Handler, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(csv)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestHealthzReportsMetrics(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodGet, "/api/categories", "")
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}

	body := decodeBody[healthResponse](t, rec)
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	// The healthz request itself is counted too.
	if body.TotalRequests < 2 {
		t.Errorf("total_requests = %d, want at least 2", body.TotalRequests)
	}
	if body.RateLimitClients < 1 {
		t.Errorf("rate_limit_active_clients = %d, want at least 1", body.RateLimitClients)
	}
}

func TestUploadStatementMultipart(t *testing.T) {
	_, h := newTestServer(t)

	rec := uploadCSV(t, h, "Date,Description,Amount\n2024-05-01,Coffee,-4.50\n2024-05-01,Coffee,-4.50\nbad-row\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}

	got := decodeBody[uploadResponse](t, rec)
	if got.InsertedCount != 1 || got.DuplicateCount != 1 || got.ErrorCount != 1 {
		t.Errorf("got %+v, want 1/1/1", got)
	}
}

func TestUploadStatementRawBody(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload",
		strings.NewReader("2024-05-01,Coffee,-4.50\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[uploadResponse](t, rec)
	if got.InsertedCount != 1 {
		t.Errorf("inserted = %d, want 1", got.InsertedCount)
	}
}

func TestListTransactionsWithCategoryJoin(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"Groceries","keywords":"whole foods,grocery"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category = %d: %s", rec.Code, rec.Body.String())
	}
	cat := decodeBody[categoryDTO](t, rec)

	if rec := uploadCSV(t, h, "2024-05-01,WHOLE FOODS,-54.12\n2024-05-02,Mystery,-3.00\n"); rec.Code != http.StatusOK {
		t.Fatalf("upload = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/transactions/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", rec.Code, rec.Body.String())
	}
	txs := decodeBody[[]transactionDTO](t, rec)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	first := txs[0]
	if first.Amount != -54.12 || first.Date != "2024-05-01" {
		t.Errorf("first = %+v", first)
	}
	if first.Category == nil || first.Category.ID != cat.ID || first.Category.Name != "Groceries" {
		t.Errorf("category join missing: %+v", first.Category)
	}
	if txs[1].Category != nil {
		t.Errorf("second row should be uncategorized, got %+v", txs[1].Category)
	}

	// Filtered listing
	rec = doJSON(t, h, http.MethodGet, "/api/transactions/?category_id=1", "")
	if got := decodeBody[[]transactionDTO](t, rec); len(got) != 1 {
		t.Errorf("filtered list = %d rows, want 1", len(got))
	}
}

func TestListTransactionsInvalidQuery(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/transactions/?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("list = %d, want 400", rec.Code)
	}
}

func TestUpdateTransactionCategory(t *testing.T) {
	_, h := newTestServer(t)

	uploadCSV(t, h, "2024-05-01,Bookstore,-20.00\n")
	rec := doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"Shopping","keywords":""}`)
	cat := decodeBody[categoryDTO](t, rec)

	rec = doJSON(t, h, http.MethodPut, "/api/transactions/1",
		`{"category_id":`+jsonInt(cat.ID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	tx := decodeBody[transactionDTO](t, rec)
	if tx.Category == nil || tx.Category.Name != "Shopping" {
		t.Errorf("updated transaction = %+v", tx)
	}

	// Unknown transaction and unknown category map to 404 and 422.
	if rec := doJSON(t, h, http.MethodPut, "/api/transactions/99", `{"category_id":1}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown transaction = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPut, "/api/transactions/1", `{"category_id":99}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown category = %d, want 422", rec.Code)
	}
}

func TestCreateCategoryConflict(t *testing.T) {
	_, h := newTestServer(t)

	if rec := doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"Travel","keywords":"airline"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"travel","keywords":""}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"  "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name = %d, want 422", rec.Code)
	}
}

func TestReclassifyEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	uploadCSV(t, h, "2024-05-01,WHOLE FOODS,-30.00\n")
	doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"Groceries","keywords":"whole foods"}`)

	rec := doJSON(t, h, http.MethodPost, "/api/transactions/reclassify", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reclassify = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[reclassifyResponse](t, rec)
	if got.UpdatedCount != 1 {
		t.Errorf("updated_count = %d, want 1", got.UpdatedCount)
	}
}

func TestDashboardSummaryEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	uploadCSV(t, h, "2024-04-10,Rent,-1000.00\n2024-05-01,Coffee,-4.50\n2024-05-02,Paycheck,2500.00\n")

	rec := doJSON(t, h, http.MethodGet, "/api/dashboard/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[dashboardSummaryDTO](t, rec)
	if got.TotalExpenses != 1004.50 {
		t.Errorf("total_expenses = %v, want 1004.50", got.TotalExpenses)
	}
	if got.TotalTransactions != 3 {
		t.Errorf("total_transactions = %v, want 3", got.TotalTransactions)
	}
	if len(got.MonthlyExpenses) != 2 || got.MonthlyExpenses[0].Month != 4 {
		t.Errorf("monthly_expenses = %+v", got.MonthlyExpenses)
	}
	if len(got.ExpensesByCategory) != 1 || got.ExpensesByCategory[0].Category != "Uncategorized" {
		t.Errorf("expenses_by_category = %+v", got.ExpensesByCategory)
	}
}

func TestCopilotQueryEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/categories/", `{"name":"Groceries","keywords":"whole foods"}`)
	uploadCSV(t, h, "2024-05-01,WHOLE FOODS,-54.12\n")

	rec := doJSON(t, h, http.MethodPost, "/api/copilot/query", `{"question":"How much did I spend on groceries?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("query = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[copilotQueryResponse](t, rec)
	if got.Data.Category != "Groceries" {
		t.Errorf("category = %q", got.Data.Category)
	}
	if got.Data.Amount == nil || *got.Data.Amount != 54.12 {
		t.Errorf("amount = %v, want 54.12", got.Data.Amount)
	}
	if got.Answer == "" {
		t.Error("answer is empty")
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/copilot/query", `{"question":""}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank question = %d, want 422", rec.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
