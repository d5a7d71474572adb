package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	dashauth "github.com/zcscompany/dashauth"
	"github.com/zcscompany/dashauth/authclient"
	"github.com/zcscompany/dashauth/permission"
)

func newTestManager(t *testing.T) *dashauth.Manager {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mock := authclient.NewMock()
	mock.Delay = 0

	manager, err := dashauth.New().
		WithRedis(rdb).
		WithBackend(mock).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(manager.Close)

	if _, err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return manager
}

func login(t *testing.T, manager *dashauth.Manager, email string) {
	t.Helper()
	if _, err := manager.Login(context.Background(), email, "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || sess.User == nil {
			http.Error(w, "missing session", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sess.User.ID))
	})
}

func serve(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	manager := newTestManager(t)
	handler := RequireAuth(manager, "/login")(okHandler())

	rec := serve(handler)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("location = %q", got)
	}
}

func TestRequireAuthWithoutLoginPathRejects(t *testing.T) {
	manager := newTestManager(t)
	handler := RequireAuth(manager, "")(okHandler())

	if rec := serve(handler); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthAdmitsAuthenticated(t *testing.T) {
	manager := newTestManager(t)
	login(t, manager, "viewer@zcscompany.com")

	handler := RequireAuth(manager, "/login")(okHandler())
	rec := serve(handler)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "user-viewer@zcscompany.com" {
		t.Fatalf("body = %q", got)
	}
}

func TestRequireMinRole(t *testing.T) {
	manager := newTestManager(t)
	login(t, manager, "viewer@zcscompany.com")

	admin := RequireMinRole(manager, permission.RoleAdmin)(okHandler())
	if rec := serve(admin); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer at admin route: status = %d, want 403", rec.Code)
	}

	viewer := RequireMinRole(manager, permission.RoleViewer)(okHandler())
	if rec := serve(viewer); rec.Code != http.StatusOK {
		t.Fatalf("viewer at viewer route: status = %d, want 200", rec.Code)
	}
}

func TestRequireMinRoleAnonymous(t *testing.T) {
	manager := newTestManager(t)

	handler := RequireMinRole(manager, permission.RoleViewer)(okHandler())
	if rec := serve(handler); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	manager := newTestManager(t)
	login(t, manager, "viewer@zcscompany.com")

	allowed := RequirePermission(manager, "documents.read")(okHandler())
	if rec := serve(allowed); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	denied := RequirePermission(manager, "users.manage")(okHandler())
	if rec := serve(denied); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestGuardNilManager(t *testing.T) {
	handler := RequireAuth(nil, "/login")(okHandler())
	if rec := serve(handler); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSessionFromContextAbsent(t *testing.T) {
	if _, ok := SessionFromContext(context.Background()); ok {
		t.Fatal("bare context must not carry a session")
	}
}
