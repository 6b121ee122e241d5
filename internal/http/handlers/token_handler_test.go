package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/janseva/go-queue-backend/internal/domain"
	"github.com/janseva/go-queue-backend/internal/http/middleware"
	"github.com/janseva/go-queue-backend/internal/repo"
	"github.com/janseva/go-queue-backend/internal/services"
)

// ---------- test DB + seed ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:token_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedHandlerOffice provisions the minimal hierarchy for one RTO office.
func seedHandlerOffice(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []any{
		&domain.State{ID: "st-1", Name: "Karnataka"},
		&domain.District{ID: "di-1", StateID: "st-1", Name: "Bengaluru Urban"},
		&domain.City{ID: "ci-1", DistrictID: "di-1", Name: "Bengaluru"},
		&domain.Office{ID: "off-1", CityID: "ci-1", Code: "RTO", Name: "Regional Transport Office", IsActive: true},
		&domain.Service{ID: "svc-1", OfficeID: "off-1", Name: "Driving Licence Renewal"},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

// withActor injects an authenticated actor the way the auth middleware does.
func withActor(act domain.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", act)
		c.Set("userID", act.ID)
		c.Next()
	}
}

var (
	handlerCitizen  = domain.Actor{ID: "u1", Role: domain.RoleCitizen}
	handlerOfficial = domain.Actor{ID: "official-1", Role: domain.RoleOfficial, OfficeID: "off-1"}
)

// ---------- flexible service stubs ----------

type stubTokenSvc struct {
	create    func(context.Context, domain.Actor, services.CreateTokenInput) (*domain.Token, error)
	get       func(context.Context, domain.Actor, string) (*domain.Token, error)
	getByNum  func(context.Context, domain.Actor, string) (*domain.Token, error)
	listMine  func(context.Context, domain.Actor) ([]domain.Token, error)
	checkIn   func(context.Context, domain.Actor, string) (*domain.Token, error)
	verify    func(context.Context, domain.Actor, string) (*domain.Token, error)
	cancel    func(context.Context, domain.Actor, string) (*domain.Token, error)
	attachDoc func(context.Context, domain.Actor, string, string, domain.DocumentRef) (*domain.Token, error)
}

func (s stubTokenSvc) Create(ctx context.Context, a domain.Actor, in services.CreateTokenInput) (*domain.Token, error) {
	if s.create != nil {
		return s.create(ctx, a, in)
	}
	return &domain.Token{ID: uuid.NewString(), UserID: a.ID, OfficeID: in.OfficeID, Status: domain.StatusPending}, nil
}

func (s stubTokenSvc) Get(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.get != nil {
		return s.get(ctx, a, id)
	}
	return &domain.Token{ID: id, UserID: a.ID, Status: domain.StatusPending}, nil
}

func (s stubTokenSvc) GetByNumber(ctx context.Context, a domain.Actor, number string) (*domain.Token, error) {
	if s.getByNum != nil {
		return s.getByNum(ctx, a, number)
	}
	return &domain.Token{ID: uuid.NewString(), TokenNumber: number}, nil
}

func (s stubTokenSvc) ListMine(ctx context.Context, a domain.Actor) ([]domain.Token, error) {
	if s.listMine != nil {
		return s.listMine(ctx, a)
	}
	return nil, nil
}

func (s stubTokenSvc) CheckIn(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.checkIn != nil {
		return s.checkIn(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusCheckedIn}, nil
}

func (s stubTokenSvc) VerifyDocuments(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.verify != nil {
		return s.verify(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusWaiting}, nil
}

func (s stubTokenSvc) Cancel(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.cancel != nil {
		return s.cancel(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusCancelled}, nil
}

func (s stubTokenSvc) AttachDocument(ctx context.Context, a domain.Actor, id, label string, ref domain.DocumentRef) (*domain.Token, error) {
	if s.attachDoc != nil {
		return s.attachDoc(ctx, a, id, label, ref)
	}
	return &domain.Token{ID: id, Documents: domain.DocumentMap{label: ref}}, nil
}

type stubQueueSvc struct {
	listWaiting func(context.Context, domain.Actor) ([]domain.Token, error)
	serving     func(context.Context, domain.Actor) (*domain.Token, error)
	listSkipped func(context.Context, domain.Actor) ([]domain.Token, error)
	callNext    func(context.Context, domain.Actor) (*domain.Token, error)
	skip        func(context.Context, domain.Actor, string) (*domain.Token, error)
	complete    func(context.Context, domain.Actor, string) (*domain.Token, error)
	recall      func(context.Context, domain.Actor, string) (*domain.Token, error)
	summarize   func(context.Context, domain.Actor) (*services.Summary, error)
}

func (s stubQueueSvc) ListWaiting(ctx context.Context, a domain.Actor) ([]domain.Token, error) {
	if s.listWaiting != nil {
		return s.listWaiting(ctx, a)
	}
	return nil, nil
}

func (s stubQueueSvc) CurrentlyServing(ctx context.Context, a domain.Actor) (*domain.Token, error) {
	if s.serving != nil {
		return s.serving(ctx, a)
	}
	return nil, nil
}

func (s stubQueueSvc) ListSkipped(ctx context.Context, a domain.Actor) ([]domain.Token, error) {
	if s.listSkipped != nil {
		return s.listSkipped(ctx, a)
	}
	return nil, nil
}

func (s stubQueueSvc) CallNext(ctx context.Context, a domain.Actor) (*domain.Token, error) {
	if s.callNext != nil {
		return s.callNext(ctx, a)
	}
	return nil, nil
}

func (s stubQueueSvc) Skip(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.skip != nil {
		return s.skip(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusSkipped}, nil
}

func (s stubQueueSvc) Complete(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.complete != nil {
		return s.complete(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusCompleted}, nil
}

func (s stubQueueSvc) Recall(ctx context.Context, a domain.Actor, id string) (*domain.Token, error) {
	if s.recall != nil {
		return s.recall(ctx, a, id)
	}
	return &domain.Token{ID: id, Status: domain.StatusWaiting}, nil
}

func (s stubQueueSvc) Summarize(ctx context.Context, a domain.Actor) (*services.Summary, error) {
	if s.summarize != nil {
		return s.summarize(ctx, a)
	}
	return &services.Summary{}, nil
}

type stubEstSvc struct {
	forOffice func(context.Context, string, string) (*services.Estimate, error)
}

func (s stubEstSvc) ForOffice(ctx context.Context, officeID, departmentID string) (*services.Estimate, error) {
	if s.forOffice != nil {
		return s.forOffice(ctx, officeID, departmentID)
	}
	return &services.Estimate{EstimatedMinutes: 15, Confidence: "medium"}, nil
}

// ---------- CreateToken ----------

func TestCreateToken_BadJSON_Missing_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(stubTokenSvc{}, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)

	// Bad JSON -> 400
	r := gin.New()
	r.POST("/tokens", withActor(handlerCitizen), h.CreateToken)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString("{bad"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Missing required fields -> 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(`{"office_id":"off-1"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields -> %d", w.Code)
	}

	// No actor in context -> 401
	r2 := gin.New()
	r2.POST("/tokens", h.CreateToken)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(`{}`))
	r2.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated -> %d", w.Code)
	}
}

func TestCreateToken_Success_and_IdempotentReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	seedHandlerOffice(t, db)

	tokenSvc := services.NewTokenService(db)
	h := New(tokenSvc, stubQueueSvc{}, stubEstSvc{}, db, time.Hour)

	r := gin.New()
	r.Use(withActor(handlerCitizen))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
		return repo.HasBookingKey(ctx, db, userID, key, now)
	}))
	r.POST("/tokens", h.CreateToken)

	body := `{"office_id":"off-1","service_name":"Driving Licence Renewal","appointment_date":"2026-03-05","appointment_time":"10:00"}`

	// First booking -> 201
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(body))
	req.Header.Set(middleware.HeaderIdempotencyKey, "retry-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var first domain.Token
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("json: %v", err)
	}
	if first.TokenNumber != "RTO-0503-001" {
		t.Fatalf("token number = %q", first.TokenNumber)
	}

	// Same key again -> 200 with the original token, no duplicate booked
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(body))
	req.Header.Set(middleware.HeaderIdempotencyKey, "retry-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replay -> %d body=%s", w.Code, w.Body.String())
	}
	var replayed domain.Token
	if err := json.Unmarshal(w.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("json: %v", err)
	}
	if replayed.ID != first.ID {
		t.Fatalf("replay returned different token: %s vs %s", replayed.ID, first.ID)
	}
	var count int64
	if err := db.Model(&domain.Token{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 token after replay, got %d", count)
	}

	// A fresh key books a new token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(body))
	req.Header.Set(middleware.HeaderIdempotencyKey, "retry-2")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("second booking -> %d", w.Code)
	}
}

func TestCreateToken_ServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown office", services.ErrOfficeNotFound, http.StatusNotFound, "not_found"},
		{"bad date", services.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubTokenSvc{
				create: func(context.Context, domain.Actor, services.CreateTokenInput) (*domain.Token, error) {
					return nil, tc.err
				},
			}
			h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
			r := gin.New()
			r.POST("/tokens", withActor(handlerCitizen), h.CreateToken)

			w := httptest.NewRecorder()
			body := `{"office_id":"x","service_name":"y","appointment_date":"2026-03-05","appointment_time":"10:00"}`
			req := httptest.NewRequest(http.MethodPost, "/tokens", bytes.NewBufferString(body))
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

// ---------- GetToken / ListTokens ----------

func TestGetToken_BadID_NotFound_OK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()

	svc := stubTokenSvc{
		get: func(_ context.Context, _ domain.Actor, got string) (*domain.Token, error) {
			if got != id {
				return nil, services.ErrTokenNotFound
			}
			return &domain.Token{ID: id, Status: domain.StatusWaiting}, nil
		},
	}
	h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
	r := gin.New()
	r.GET("/tokens/:id", withActor(handlerCitizen), h.GetToken)

	// Non-UUID id -> 400 before the service is consulted
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown id -> 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/tokens/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id -> %d", w.Code)
	}

	// Known id -> 200
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/tokens/"+id, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get -> %d", w.Code)
	}
	var out domain.Token
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.ID != id || out.Status != domain.StatusWaiting {
		t.Fatalf("unexpected token: %#v", out)
	}
}

func TestListTokens_WrapsItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := stubTokenSvc{
		listMine: func(_ context.Context, a domain.Actor) ([]domain.Token, error) {
			return []domain.Token{
				{ID: "t2", UserID: a.ID},
				{ID: "t1", UserID: a.ID},
			}, nil
		},
	}
	h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
	r := gin.New()
	r.GET("/tokens", withActor(handlerCitizen), h.ListTokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var out ListTokensResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Tokens) != 2 || out.Tokens[0].ID != "t2" {
		t.Fatalf("unexpected list: %#v", out.Tokens)
	}
}

// ---------- transitions ----------

func TestTransitions_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"stale", services.ErrStaleStatus, http.StatusConflict, "conflict"},
		{"terminal", services.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"foreign office", services.ErrNotPermitted, http.StatusForbidden, "forbidden"},
		{"missing", services.ErrTokenNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubTokenSvc{
				cancel: func(context.Context, domain.Actor, string) (*domain.Token, error) {
					return nil, tc.err
				},
			}
			h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
			r := gin.New()
			r.POST("/tokens/:id/cancel", withActor(handlerCitizen), h.CancelToken)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tokens/"+id+"/cancel", nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}

	// Happy path returns the updated token.
	h := New(stubTokenSvc{}, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
	r := gin.New()
	r.POST("/tokens/:id/check-in", withActor(handlerOfficial), h.CheckInToken)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tokens/"+id+"/check-in", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("check-in -> %d", w.Code)
	}
	var out domain.Token
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Status != domain.StatusCheckedIn {
		t.Fatalf("status = %q", out.Status)
	}
}

// ---------- documents ----------

func TestAttachDocument_Validation_and_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()

	var gotLabel string
	var gotRef domain.DocumentRef
	svc := stubTokenSvc{
		attachDoc: func(_ context.Context, _ domain.Actor, _ string, label string, ref domain.DocumentRef) (*domain.Token, error) {
			gotLabel, gotRef = label, ref
			return &domain.Token{ID: id, Documents: domain.DocumentMap{label: ref}}, nil
		},
	}
	h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
	r := gin.New()
	r.POST("/tokens/:id/documents", withActor(handlerCitizen), h.AttachDocument)

	// Missing url -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tokens/"+id+"/documents", bytes.NewBufferString(`{"label":"aadhaar_card"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing url -> %d", w.Code)
	}

	// Full payload with analysis verdict -> 200, passed through verbatim
	body := `{"label":"aadhaar_card","url":"https://store/abc","declared_type":"aadhaar_card","analysis":{"valid":true,"confidence":92}}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tokens/"+id+"/documents", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("attach -> %d body=%s", w.Code, w.Body.String())
	}
	if gotLabel != "aadhaar_card" || gotRef.URL != "https://store/abc" {
		t.Fatalf("service got label=%q ref=%#v", gotLabel, gotRef)
	}
	if gotRef.Analysis == nil || !gotRef.Analysis.Valid || gotRef.Analysis.Confidence != 92 {
		t.Fatalf("analysis not passed through: %#v", gotRef.Analysis)
	}
}

// ---------- estimate ----------

func TestTokenEstimate_UsesTokenScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.NewString()
	dept := "dep-1"

	svc := stubTokenSvc{
		get: func(context.Context, domain.Actor, string) (*domain.Token, error) {
			return &domain.Token{ID: id, OfficeID: "off-1", DepartmentID: &dept, Status: domain.StatusWaiting}, nil
		},
	}
	var gotOffice, gotDept string
	est := stubEstSvc{
		forOffice: func(_ context.Context, officeID, departmentID string) (*services.Estimate, error) {
			gotOffice, gotDept = officeID, departmentID
			return &services.Estimate{EstimatedMinutes: 45, AvgServiceMinutes: 15, QueueLength: 2, SampleCount: 7, Confidence: "high"}, nil
		},
	}
	h := New(svc, stubQueueSvc{}, est, nil, time.Hour)
	r := gin.New()
	r.GET("/tokens/:id/estimate", withActor(handlerCitizen), h.TokenEstimate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens/"+id+"/estimate", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate -> %d", w.Code)
	}
	if gotOffice != "off-1" || gotDept != "dep-1" {
		t.Fatalf("estimator scope = (%q, %q)", gotOffice, gotDept)
	}
	var out services.Estimate
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.EstimatedMinutes != 45 || out.Confidence != "high" {
		t.Fatalf("unexpected estimate: %#v", out)
	}
}

// ---------- by-number lookup ----------

func TestGetTokenByNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := stubTokenSvc{
		getByNum: func(_ context.Context, _ domain.Actor, number string) (*domain.Token, error) {
			if number != "RTO-0503-001" {
				return nil, services.ErrTokenNotFound
			}
			return &domain.Token{ID: uuid.NewString(), TokenNumber: number}, nil
		},
	}
	h := New(svc, stubQueueSvc{}, stubEstSvc{}, nil, time.Hour)
	r := gin.New()
	r.GET("/tokens/by-number/:number", withActor(handlerOfficial), h.GetTokenByNumber)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens/by-number/RTO-0503-001", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/tokens/by-number/RTO-9999-999", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown number -> %d", w.Code)
	}
}
