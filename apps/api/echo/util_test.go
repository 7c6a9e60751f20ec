package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trezcool/edvise/apps/shared"
	"github.com/trezcool/edvise/core/catalog"
	"github.com/trezcool/edvise/core/content"
	"github.com/trezcool/edvise/core/dashboard"
	"github.com/trezcool/edvise/core/payment"
	"github.com/trezcool/edvise/core/pricing"
	"github.com/trezcool/edvise/core/reservation"
	"github.com/trezcool/edvise/core/tenant"
	"github.com/trezcool/edvise/core/user"
	"github.com/trezcool/edvise/core/writing"
	emailsvc "github.com/trezcool/edvise/services/email"
	logsvc "github.com/trezcool/edvise/services/logger"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
	"github.com/trezcool/edvise/testutil"
)

const tenantSlug = "acme"

var (
	ctxBg           = context.Background()
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testApp struct {
	srv    *Server
	db     *sqlx.DB
	tenant tenant.Tenant
	mail   *emailsvc.ConsoleService
	host   *fakeImageHost
}

// fakeImageHost records uploads instead of sending them.
type fakeImageHost struct {
	uploads []string
}

func (h *fakeImageHost) Upload(_ context.Context, name string, _ []byte) (payment.UploadedImage, error) {
	h.uploads = append(h.uploads, name)
	return payment.UploadedImage{
		URL:        "https://img.test/" + name,
		DisplayURL: "https://img.test/view/" + name,
		DeleteURL:  "https://img.test/delete/" + name,
	}, nil
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := testutil.Config()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	tnt := testutil.CreateTenant(t, db, tenantSlug)

	tenantRepo := boiledrepos.NewTenantRepository(db)
	usrRepo := boiledrepos.NewUserRepository(db)
	courseRepo := boiledrepos.NewCourseRepository(db)
	pricingRepo := boiledrepos.NewPricingRepository(db)
	resRepo := boiledrepos.NewReservationRepository(db)
	orderRepo := boiledrepos.NewWritingOrderRepository(db)
	proofRepo := boiledrepos.NewPaymentProofRepository(db)
	contentRepo := boiledrepos.NewContentRepository(db)

	// set up services
	logger := logsvc.NewRollbarLogger(zap.NewNop().Sugar(), conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	host := new(fakeImageHost)
	validate, translator := shared.NewValidator()

	pricingSvc := pricing.NewService(pricingRepo, logger)
	resSvc := reservation.NewService(resRepo, pricingSvc, mailSvc)
	orderSvc := writing.NewService(orderRepo, mailSvc, conf)
	proofSvc := payment.NewService(proofRepo, host, resSvc, orderSvc, mailSvc, conf)

	// set up server
	srv := NewServer(Deps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		TenantSvc:      tenant.NewService(tenantRepo, conf),
		UserSvc:        user.NewService(usrRepo),
		CourseSvc:      catalog.NewService(courseRepo),
		PricingSvc:     pricingSvc,
		ReservationSvc: resSvc,
		WritingSvc:     orderSvc,
		PaymentSvc:     proofSvc,
		ContentSvc:     content.NewService(contentRepo),
		DashboardSvc:   dashboard.NewService(resSvc, orderSvc, proofSvc),
	})
	return &testApp{srv: srv, db: db, tenant: tnt, mail: mailSvc, host: host}
}

// do serves req, for the test tenant unless the request already names one.
func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get("X-Tenant") == "" && req.Host == "example.com" {
		req.Header.Set("X-Tenant", tenantSlug)
	}
	rec := httptest.NewRecorder()
	app.srv.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	rec := app.do(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
	checkCodeAndData(t, tt, rec)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func newMultipartRequest(t *testing.T, path, token string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "receipt.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func newClaims(usr user.User, slug string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
		Name:   usr.Name,
		Email:  usr.Email,
		Roles:  usr.Roles,
		Tenant: slug,
	}
}

func signClaims(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := GenerateToken(testutil.SigningKey, claims)
	require.NoError(t, err)
	return token
}

func getToken(t *testing.T, usr user.User) string {
	return signClaims(t, newClaims(usr, tenantSlug))
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

// checkCodeAndData checks the status code, and the body when wantData is set.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
