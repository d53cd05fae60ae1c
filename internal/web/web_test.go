package web

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"purecerts-console/internal/model"
)

var pages = []string{
	"login.html", "loading.html", "error.html", "dashboard.html",
	"certificates.html", "certificate.html", "certificate_new.html",
	"cas.html", "ca.html", "ca_new.html", "users.html", "audit.html", "audit_entry.html",
	"profile.html", "security.html", "api_keys.html", "billing.html", "organization.html",
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	for _, name := range pages {
		if !r.Has(name) {
			t.Fatalf("missing page %s", name)
		}
	}
	if r.Has("layout.html") {
		t.Fatalf("layout must not be a page of its own")
	}
}

func renderPage(t *testing.T, name string, p Page) string {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	w := httptest.NewRecorder()
	if err := r.Instance(name, p).Render(w); err != nil {
		t.Fatalf("Render %s: %v", name, err)
	}
	return w.Body.String()
}

func TestRender_LoginSignedOut(t *testing.T) {
	body := renderPage(t, "login.html", Page{
		Title: "Sign in",
		Error: "invalid credentials",
		Data:  struct{ Email, Next string }{Email: "a@example.com", Next: "/certificates"},
	})
	if !strings.Contains(body, `data-authenticated="false"`) {
		t.Fatalf("expected signed-out marker, got %s", body)
	}
	if !strings.Contains(body, "invalid credentials") || !strings.Contains(body, `value="/certificates"`) {
		t.Fatalf("unexpected login body %s", body)
	}
	if strings.Contains(body, "Sign out") {
		t.Fatalf("navigation must be hidden when signed out")
	}
}

func TestRender_NavigationForUser(t *testing.T) {
	u := &model.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada", Role: model.RoleAdmin}
	body := renderPage(t, "profile.html", Page{Title: "Profile", Section: "settings", User: u, Data: *u})
	if !strings.Contains(body, `data-authenticated="true"`) {
		t.Fatalf("expected signed-in marker")
	}
	if !strings.Contains(body, "Ada (Admin)") {
		t.Fatalf("expected user in navigation, got %s", body)
	}
}

func TestRender_LoadingRefreshes(t *testing.T) {
	body := renderPage(t, "loading.html", Page{Title: "Loading", Loading: true})
	if !strings.Contains(body, `http-equiv="refresh"`) || !strings.Contains(body, `data-loading="true"`) {
		t.Fatalf("unexpected loading body %s", body)
	}
}

func TestRender_CertificateEscapesValues(t *testing.T) {
	notAfter := time.Date(2027, 1, 2, 3, 4, 0, 0, time.UTC)
	data := struct {
		Certificate model.Certificate
		Reasons     []string
	}{
		Certificate: model.Certificate{
			CertID:       "c1",
			CommonName:   "<script>x</script>",
			Status:       "CERTIFICATE_STATUS_ACTIVE",
			KeyAlgorithm: model.KeyAlgorithmECDSA,
			NotAfter:     &notAfter,
		},
		Reasons: []string{"superseded"},
	}
	body := renderPage(t, "certificate.html", Page{Title: "c", User: &model.User{ID: "u1"}, Data: data})
	if strings.Contains(body, "<script>x</script>") {
		t.Fatalf("common name was not escaped")
	}
	for _, want := range []string{"Active", "Ecdsa", "2027-01-02 03:04 UTC", "/certificates/c1/download?format=der"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body", want)
		}
	}
}

func TestFuncs(t *testing.T) {
	if got := enumLabel("CERTIFICATE_STATUS_EXPIRING_SOON", "CERTIFICATE_STATUS_"); got != "Expiring soon" {
		t.Fatalf("enumLabel: %q", got)
	}
	if got := enumLabel("CA_STATUS_UNSPECIFIED", "CA_STATUS_"); got != "Unknown" {
		t.Fatalf("enumLabel unspecified: %q", got)
	}
	if got := percent(30, 20); got != 100 {
		t.Fatalf("percent clamps: %d", got)
	}
	if got := percent(1, 0); got != 0 {
		t.Fatalf("percent without limit: %d", got)
	}
	if got := money(12345, "eur"); got != "123.45 EUR" {
		t.Fatalf("money: %q", got)
	}
	if got := formatDate((*time.Time)(nil)); got != "-" {
		t.Fatalf("nil date: %q", got)
	}
}
