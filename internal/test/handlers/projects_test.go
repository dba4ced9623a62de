package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"product-studio-backend/internal/config"
	"product-studio-backend/internal/handlers"
	"product-studio-backend/internal/middleware"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/payments"
	"product-studio-backend/internal/realtime"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/workflow"
)

const (
	userHeader    = "X-Test-User"
	roleHeader    = "X-Test-Role"
	webhookSecret = "whsec_test"
)

type api struct {
	router  *gin.Engine
	store   *workflow.MemoryStore
	catalog *workflow.MemoryCatalog
	blobs   *workflow.MemoryBlobs
	gateway *payments.StubGateway
	service *services.ProjectService
}

// fakeAuth stands in for the JWT middleware: identity comes from test headers.
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(userHeader); id != "" {
			c.Set(middleware.UserIDKey, id)
		}
		role := c.GetHeader(roleHeader)
		if role == "" {
			role = middleware.RoleCustomer
		}
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func newAPI() *api {
	gin.SetMode(gin.TestMode)
	a := &api{
		store:   workflow.NewMemoryStore(),
		catalog: workflow.NewMemoryCatalog(),
		blobs:   workflow.NewMemoryBlobs(),
		gateway: payments.NewStubGateway(),
	}
	engine := workflow.NewEngine(a.store, a.gateway, a.blobs, a.catalog)
	a.service = services.NewProjectService(a.store, engine, a.catalog, realtime.NewHub())

	projects := handlers.NewProjectsHandler(a.service)
	status := handlers.NewStatusHandler(a.service)
	prototype := handlers.NewPrototypeHandler(a.service)
	pay := handlers.NewPaymentsHandler(a.service)
	catalog := handlers.NewCatalogHandler(a.service)
	events := handlers.NewEventsHandler(a.service)
	webhook := handlers.NewWebhookHandler(&config.Config{PaymentWebhookSecret: webhookSecret}, a.service)

	router := gin.New()
	router.POST("/api/v1/webhooks/payments", webhook.HandlePaymentWebhook)

	v1 := router.Group("/api/v1")
	v1.Use(fakeAuth())
	v1.POST("/projects", projects.CreateProject)
	v1.GET("/projects", projects.ListProjects)
	v1.GET("/projects/:project_id", projects.GetProject)
	v1.DELETE("/projects/:project_id", projects.DeleteProject)
	v1.GET("/projects/:project_id/status", status.GetStatus)
	v1.GET("/projects/:project_id/events", events.Stream)
	v1.POST("/projects/:project_id/transition", projects.Transition)
	v1.PUT("/projects/:project_id/brief", projects.SubmitBrief)
	v1.POST("/projects/:project_id/manufacturer", projects.SelectManufacturer)
	v1.POST("/projects/:project_id/packages/:module", projects.SelectPackage)
	v1.POST("/projects/:project_id/prototype", prototype.AdvancePrototype)
	v1.POST("/projects/:project_id/feedback", prototype.SubmitFeedback)
	v1.POST("/projects/:project_id/sample/approve", prototype.Approve)
	v1.POST("/projects/:project_id/sample/request-new", prototype.RequestNewSample)
	v1.GET("/projects/:project_id/payments", pay.GetPayments)
	v1.POST("/projects/:project_id/payments/:type", pay.Pay)
	v1.GET("/catalog/manufacturers", catalog.ListManufacturers)
	v1.GET("/catalog/packages/:module", catalog.ListPackages)

	admin := v1.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/projects/:project_id/payments/:type/record", pay.RecordPayment)
	admin.PATCH("/projects/:project_id/pricing", projects.UpdatePricing)
	admin.PATCH("/projects/:project_id/unlocks", projects.SetUnlocks)

	a.router = router
	return a
}

type resultBody struct {
	Project  models.ProjectRecord `json:"project"`
	Modules  map[string]bool      `json:"modules"`
	Progress struct {
		Status       models.ProjectStatus `json:"status"`
		Percent      int                  `json:"percent"`
		CustomerStep int                  `json:"customer_step"`
	} `json:"progress"`
}

func (a *api) do(t *testing.T, method, path string, user uuid.UUID, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set(userHeader, user.String())
	}
	req.Header.Set(roleHeader, role)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) resultBody {
	t.Helper()
	var res resultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var res models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

// seed stores a project owned by owner in the given state.
func (a *api) seed(owner uuid.UUID, status models.ProjectStatus, mutate ...func(*models.ProjectRecord)) uuid.UUID {
	rec := models.NewProjectRecord(owner, "Ceramic mug")
	rec.Status = status
	for _, m := range mutate {
		m(&rec)
	}
	a.store.Put(rec)
	return rec.ID
}

func projectPath(id uuid.UUID, suffix string) string {
	return "/api/v1/projects/" + id.String() + suffix
}

func TestProjects_CreateListGet(t *testing.T) {
	a := newAPI()
	owner := uuid.New()

	w := a.do(t, http.MethodPost, "/api/v1/projects", owner, middleware.RoleCustomer, models.CreateProjectRequest{Name: "Tote bag"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeResult(t, w)
	assert.Equal(t, "Tote bag", created.Project.Name)
	assert.Equal(t, models.StatusDraft, created.Progress.Status)
	assert.True(t, created.Modules["brief"])
	assert.False(t, created.Modules["prototyping"])

	w = a.do(t, http.MethodPost, "/api/v1/projects", owner, middleware.RoleCustomer, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/projects", owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Projects, 1)
	assert.Equal(t, created.Project.ID.String(), list.Projects[0].ID)

	w = a.do(t, http.MethodGet, projectPath(created.Project.ID, ""), owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, projectPath(created.Project.ID, ""), uuid.New(), middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Error)
}

func TestProjects_RequiresUser(t *testing.T) {
	a := newAPI()
	w := a.do(t, http.MethodGet, "/api/v1/projects", uuid.Nil, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid", uuid.New(), middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_Transition(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusDraft)

	w := a.do(t, http.MethodPost, projectPath(id, "/transition"), owner, middleware.RoleCustomer,
		models.TransitionRequest{Status: models.StatusProduction})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Error)

	w = a.do(t, http.MethodPost, projectPath(id, "/transition"), uuid.New(), middleware.RoleAdmin,
		models.TransitionRequest{Status: models.StatusProduction})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.Equal(t, models.StatusProduction, res.Project.Status)
	assert.Equal(t, 71, res.Progress.Percent)

	w = a.do(t, http.MethodPost, projectPath(id, "/transition"), uuid.New(), middleware.RoleAdmin,
		models.TransitionRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_BriefAndStatus(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusDraft)

	w := a.do(t, http.MethodPut, projectPath(id, "/brief"), owner, middleware.RoleCustomer, models.BriefRequest{
		ProductType:    "mug",
		Description:    "Stoneware, matte glaze",
		TargetQuantity: 300,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, projectPath(id, "/status"), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.StatusPrototyping, status.Status)
	assert.Equal(t, 29, status.Progress)
	assert.Equal(t, 1, status.CustomerStep)
	assert.True(t, status.Modules["prototyping"])
	assert.False(t, status.Modules["sourcing"])
}

func feedbackForm(t *testing.T, text string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("feedback", text))
	for name, data := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestPrototype_MultipartFeedback(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusPrototyping, func(r *models.ProjectRecord) { r.PrototypeStatus = models.PrototypeDelivered })

	// Not an image.
	body, contentType := feedbackForm(t, "Looks good", map[string][]byte{"notes.txt": []byte("plain text, not a photo")})
	req := httptest.NewRequest(http.MethodPost, projectPath(id, "/feedback"), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userHeader, owner.String())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, a.blobs.Len())

	body, contentType = feedbackForm(t, "Looks good", map[string][]byte{"front.png": pngHeader})
	req = httptest.NewRequest(http.MethodPost, projectPath(id, "/feedback"), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userHeader, owner.String())
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decodeResult(t, w)
	assert.Equal(t, "Looks good", *res.Project.CustomerFeedback)
	require.Len(t, res.Project.FeedbackImages, 1)
	assert.Contains(t, res.Project.FeedbackImages[0], "front.png")
	assert.Equal(t, 1, a.blobs.Len())

	// Second feedback on the same sample.
	w = a.do(t, http.MethodPost, projectPath(id, "/feedback"), owner, middleware.RoleCustomer,
		models.FeedbackRequest{Feedback: "Actually..."})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "precondition_failed", decodeError(t, w).Error)
}

func TestPrototype_AdminFlow(t *testing.T) {
	a := newAPI()
	owner, admin := uuid.New(), uuid.New()
	id := a.seed(owner, models.StatusPrototyping)

	w := a.do(t, http.MethodPost, projectPath(id, "/prototype"), admin, middleware.RoleAdmin,
		models.PrototypeUpdateRequest{Status: models.PrototypeShipping})
	assert.Equal(t, http.StatusBadRequest, w.Code, "shipping needs a tracking number")

	tracking := "1Z999AA1"
	w = a.do(t, http.MethodPost, projectPath(id, "/prototype"), owner, middleware.RoleCustomer,
		models.PrototypeUpdateRequest{Status: models.PrototypeShipping, TrackingNumber: &tracking})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, projectPath(id, "/prototype"), admin, middleware.RoleAdmin,
		models.PrototypeUpdateRequest{Status: models.PrototypeDelivered, TrackingNumber: &tracking})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, projectPath(id, "/sample/request-new"), owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "nothing to reject before feedback")

	w = a.do(t, http.MethodPost, projectPath(id, "/feedback"), owner, middleware.RoleCustomer,
		models.FeedbackRequest{Feedback: "Wrong glaze", ImageURLs: []string{"https://img/1.jpg"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, projectPath(id, "/sample/request-new"), owner, middleware.RoleCustomer,
		models.NewSampleRequest{Reason: "wrong color"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.Equal(t, 1, res.Project.SampleRevisionCount)
	assert.Equal(t, models.PrototypeProducing, res.Project.PrototypeStatus)
	assert.Nil(t, res.Project.CustomerFeedback)
}

func TestPrototype_Approve(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	feedback := "Perfect"
	id := a.seed(owner, models.StatusPrototyping, func(r *models.ProjectRecord) {
		r.PrototypeStatus = models.PrototypeFeedback
		r.CustomerFeedback = &feedback
	})

	w := a.do(t, http.MethodPost, projectPath(id, "/sample/approve"), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.Equal(t, models.StatusSourcing, res.Project.Status)
	assert.True(t, res.Project.SampleApproved)
	assert.True(t, res.Modules["sourcing"])
}

func TestCatalog_SelectManufacturerAndPayDeposit(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusSourcing)
	a.catalog.AddManufacturer(id, models.ManufacturerSnapshot{ID: "m-exp", Name: "Atelier", Price: 20, MinOrderQuantity: 200})
	a.catalog.AddManufacturer(id, models.ManufacturerSnapshot{ID: "m-cheap", Name: "Kiln Co", Price: 12.50, MinOrderQuantity: 200})

	w := a.do(t, http.MethodGet, "/api/v1/catalog/manufacturers?project_id="+id.String(), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var quotes models.ManufacturerListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quotes))
	require.Len(t, quotes.Manufacturers, 2)
	assert.Equal(t, "m-cheap", quotes.Manufacturers[0].ID)

	w = a.do(t, http.MethodPost, projectPath(id, "/manufacturer"), owner, middleware.RoleCustomer,
		models.SelectManufacturerRequest{ManufacturerID: "m-cheap"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, projectPath(id, "/payments"), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.PaymentSummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.InDelta(t, 2500, summary.Total, 0.001)
	assert.InDelta(t, 750, summary.Deposit, 0.001)
	assert.InDelta(t, 1750, summary.Remaining, 0.001)
	assert.Equal(t, int64(75000), summary.DepositCents)
	assert.Equal(t, summary.TotalCents, summary.DepositCents+summary.RemainingCents)

	w = a.do(t, http.MethodPost, projectPath(id, "/payments/deposit"), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.Equal(t, models.StatusProduction, res.Project.Status)
	assert.True(t, res.Project.Payments.Deposit.Paid)
	assert.True(t, res.Modules["photography"])

	charges := a.gateway.Charges()
	require.Len(t, charges, 1)
	assert.Equal(t, int64(75000), charges[0].AmountCents)

	w = a.do(t, http.MethodPost, projectPath(id, "/payments/deposit"), owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPayments_GatewayFailure(t *testing.T) {
	a := newAPI()
	a.gateway.Fail = assert.AnError
	owner := uuid.New()
	id := a.seed(owner, models.StatusPrototyping)

	w := a.do(t, http.MethodPost, projectPath(id, "/payments/starter_fee"), owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "payment", decodeError(t, w).Error)
}

func TestCatalog_Packages(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	a.catalog.AddPackage(workflow.ModulePhotography, models.PackageSnapshot{ID: "p-basic", Name: "Basic", Price: 300})

	w := a.do(t, http.MethodGet, "/api/v1/catalog/packages/photography", owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pkgs models.PackageListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pkgs))
	require.Len(t, pkgs.Packages, 1)

	w = a.do(t, http.MethodGet, "/api/v1/catalog/packages/brief", owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := a.seed(owner, models.StatusSourcing)
	w = a.do(t, http.MethodPost, projectPath(id, "/packages/photography"), owner, middleware.RoleCustomer,
		models.SelectPackageRequest{PackageID: "p-basic"})
	assert.Equal(t, http.StatusForbidden, w.Code, "photography opens at production")
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI()
	owner, admin := uuid.New(), uuid.New()
	id := a.seed(owner, models.StatusSourcing)
	qc := 150.0
	unlock := true

	w := a.do(t, http.MethodPatch, projectPath(id, "/pricing"), owner, middleware.RoleCustomer, models.PricingRequest{QCCost: &qc})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPatch, projectPath(id, "/pricing"), admin, middleware.RoleAdmin, models.PricingRequest{QCCost: &qc})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 150.0, decodeResult(t, w).Project.QCCost)

	w = a.do(t, http.MethodPatch, projectPath(id, "/unlocks"), admin, middleware.RoleAdmin, models.UnlocksRequest{Marketing: &unlock})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeResult(t, w).Modules["marketing"])

	w = a.do(t, http.MethodPost, projectPath(id, "/payments/freight/record"), admin, middleware.RoleAdmin,
		models.RecordPaymentRequest{Reference: "wire-001"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.True(t, res.Project.Payments.Freight.Paid)
	assert.Equal(t, "wire-001", *res.Project.Payments.Freight.Reference)
}

func TestProjects_Delete(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusDraft)

	w := a.do(t, http.MethodDelete, projectPath(id, ""), owner, middleware.RoleCustomer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var del models.DeleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &del))
	assert.True(t, del.Deleted)

	w = a.do(t, http.MethodGet, projectPath(id, ""), owner, middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (a *api) webhook(t *testing.T, payload interface{}, sign func([]byte) string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign != nil {
		req.Header.Set(payments.SignatureHeader, sign(body))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestWebhook_PaymentSucceeded(t *testing.T) {
	a := newAPI()
	id := a.seed(uuid.New(), models.StatusPayment, func(r *models.ProjectRecord) {
		r.SelectedManufacturer = &models.ManufacturerSnapshot{ID: "m1", Price: 10, MinOrderQuantity: 100}
	})
	event := models.PaymentWebhookRequest{
		Event:       "payment.succeeded",
		ProjectID:   id.String(),
		PaymentType: models.PaymentDeposit,
		Reference:   "pi_123",
	}
	valid := func(b []byte) string { return "sha256=" + payments.Sign(webhookSecret, b) }

	w := a.webhook(t, event, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.webhook(t, event, func(b []byte) string { return payments.Sign("wrong", b) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.webhook(t, event, valid)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec, err := a.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, rec.Payments.Deposit.Paid)
	assert.Equal(t, models.StatusProduction, rec.Status)

	// Redelivery is harmless.
	w = a.webhook(t, event, valid)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.webhook(t, models.PaymentWebhookRequest{Event: "payment.refunded", ProjectID: id.String()}, valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestEvents_StreamsSnapshotThenChanges(t *testing.T) {
	a := newAPI()
	owner := uuid.New()
	id := a.seed(owner, models.StatusDraft)

	server := httptest.NewServer(a.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+projectPath(id, "/events"), nil)
	require.NoError(t, err)
	req.Header.Set(userHeader, owner.String())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEventType := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	assert.Equal(t, "snapshot", readEventType())

	_, err = a.service.Transition(context.Background(), workflow.Admin(uuid.New()), id, models.StatusDetails)
	require.NoError(t, err)
	assert.Equal(t, realtime.EventStatusChanged, readEventType())
}

func TestEvents_HidesOtherProjects(t *testing.T) {
	a := newAPI()
	id := a.seed(uuid.New(), models.StatusDraft)

	w := a.do(t, http.MethodGet, projectPath(id, "/events"), uuid.New(), middleware.RoleCustomer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
