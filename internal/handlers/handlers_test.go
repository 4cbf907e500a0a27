package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"blockpress/internal/apikey"
	"blockpress/internal/audit"
	"blockpress/internal/auth"
	"blockpress/internal/cache"
	"blockpress/internal/content"
	"blockpress/internal/handlers"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
	"blockpress/internal/router"
	"blockpress/internal/store/memory"
)

// api wires the full HTTP stack against the in-memory store.
type api struct {
	t       *testing.T
	handler http.Handler
	mem     *memory.Store
}

func newAPI(t *testing.T) *api {
	return newAPIWithCache(t, nil)
}

func newAPIWithCache(t *testing.T, pageCache *cache.PageCache) *api {
	t.Helper()
	mem := memory.NewStore()
	auditLog := audit.New(mem.Audit())
	authSvc := auth.New(mem.Users(), mem.Sessions(), mem.Workspaces(), auditLog, 0)
	keySvc := apikey.New(mem.APIKeys(), auditLog)

	var invalidator content.PageInvalidator
	if pageCache != nil {
		invalidator = pageCache
	}
	contentSvc := content.New(mem.Pages(), mem.Blocks(), mem.Sections(), invalidator, auditLog)

	var cacher handlers.PageCacher
	if pageCache != nil {
		cacher = pageCache
	}

	limiter := middleware.NewRateLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)

	handler := router.New(router.Deps{
		Authn:    authSvc,
		Limiter:  limiter,
		Auth:     handlers.NewAuth(authSvc),
		Users:    handlers.NewUsers(authSvc),
		Pages:    handlers.NewPages(contentSvc),
		Blocks:   handlers.NewBlocks(contentSvc),
		Sections: handlers.NewSections(contentSvc),
		APIKeys:  handlers.NewAPIKeys(keySvc),
		Audit:    handlers.NewAudit(auditLog),
		Public:   handlers.NewPublic(contentSvc, cacher),
		External: handlers.NewExternal(keySvc, contentSvc, cacher),
	})
	return &api{t: t, handler: handler, mem: mem}
}

// do sends a JSON request and returns the recorded response.
func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// register creates a workspace owner and returns their session token.
func (a *api) register(email string) (string, *auth.Credentials) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Owner",
		"email":    email,
		"password": "correct horse battery",
	})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	creds := decodeBody[*auth.Credentials](a.t, w)
	return creds.Token, creds
}

// addEditor creates an editor in the admin's workspace and logs them in.
func (a *api) addEditor(adminToken, email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/users/", adminToken, map[string]string{
		"name":     "Editor",
		"email":    email,
		"password": "correct horse battery",
		"role":     "editor",
	})
	if w.Code != http.StatusCreated {
		a.t.Fatalf("create user returned %d: %s", w.Code, w.Body.String())
	}
	w = a.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": "correct horse battery",
	})
	if w.Code != http.StatusOK {
		a.t.Fatalf("editor login returned %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[*auth.Credentials](a.t, w).Token
}

func TestHealthEndpoint(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	a := newAPI(t)
	token, creds := a.register("owner@example.com")

	if creds.User.Role != models.RoleAdmin {
		t.Errorf("registered role = %q, want admin", creds.User.Role)
	}
	if creds.WorkspaceID == uuid.Nil {
		t.Error("no workspace assigned")
	}

	w := a.do(http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/me returned %d", w.Code)
	}
	me := decodeBody[*auth.Identity](t, w)
	if me.UserID != creds.User.UserID {
		t.Errorf("/me user = %s, want %s", me.UserID, creds.User.UserID)
	}

	if w := a.do(http.MethodPost, "/api/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout returned %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("/me after logout returned %d, want 401", w.Code)
	}

	// Bad credentials and duplicate registration map to their statuses.
	w = a.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login returned %d, want 401", w.Code)
	}
	w = a.do(http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Owner",
		"email":    "owner@example.com",
		"password": "correct horse battery",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", w.Code)
	}
}

func TestPageLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	token, creds := a.register("owner@example.com")
	workspaceID := creds.WorkspaceID

	// Create a draft page.
	w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "About Us"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create page returned %d: %s", w.Code, w.Body.String())
	}
	page := decodeBody[*models.Page](t, w)
	if page.Slug != "about-us" || page.Status != models.PageStatusDraft {
		t.Fatalf("created page = %q/%q", page.Slug, page.Status)
	}

	// Drafts are invisible on the public path.
	publicPath := fmt.Sprintf("/sites/%s/pages/about-us", workspaceID)
	if w := a.do(http.MethodGet, publicPath, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("public draft read returned %d, want 404", w.Code)
	}

	// Add a block and publish.
	w = a.do(http.MethodPost, fmt.Sprintf("/api/pages/%s/blocks", page.ID), token, map[string]any{
		"type":    "text",
		"content": map[string]any{"body": "hello"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add block returned %d: %s", w.Code, w.Body.String())
	}
	block := decodeBody[*models.Block](t, w)

	if w := a.do(http.MethodPost, fmt.Sprintf("/api/pages/%s/publish", page.ID), token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("publish returned %d: %s", w.Code, w.Body.String())
	}

	// The published rendition carries the block.
	w = a.do(http.MethodGet, publicPath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public read returned %d: %s", w.Code, w.Body.String())
	}
	rendition := decodeBody[map[string]json.RawMessage](t, w)
	var blocks []models.Block
	if err := json.Unmarshal(rendition["blocks"], &blocks); err != nil {
		t.Fatalf("decode blocks: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != block.ID {
		t.Errorf("rendition blocks = %v", blocks)
	}

	// Patch the title; omitted fields are untouched.
	w = a.do(http.MethodPatch, fmt.Sprintf("/api/pages/%s", page.ID), token, map[string]string{"title": "About"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch returned %d: %s", w.Code, w.Body.String())
	}
	patched := decodeBody[*models.Page](t, w)
	if patched.Title != "About" || patched.Slug != "about-us" {
		t.Errorf("patched page = %q/%q", patched.Title, patched.Slug)
	}

	// Unpublish hides it again; delete cascades.
	if w := a.do(http.MethodPost, fmt.Sprintf("/api/pages/%s/unpublish", page.ID), token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("unpublish returned %d", w.Code)
	}
	if w := a.do(http.MethodGet, publicPath, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("public read after unpublish returned %d, want 404", w.Code)
	}
	if w := a.do(http.MethodDelete, fmt.Sprintf("/api/pages/%s", page.ID), token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", w.Code)
	}
	if w := a.do(http.MethodGet, fmt.Sprintf("/api/pages/%s", page.ID), token, nil); w.Code != http.StatusNotFound {
		t.Errorf("read after delete returned %d, want 404", w.Code)
	}
}

func TestHeaderOverridePatchSemantics(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("owner@example.com")

	w := a.do(http.MethodPost, "/api/sections/", token, map[string]any{
		"name":         "Main Header",
		"section_type": "header",
		"type":         "hero",
		"content":      map[string]any{"heading": "hi"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create section returned %d: %s", w.Code, w.Body.String())
	}
	section := decodeBody[*models.GlobalSection](t, w)

	w = a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Home"})
	page := decodeBody[*models.Page](t, w)
	path := fmt.Sprintf("/api/pages/%s", page.ID)

	// Set the override.
	w = a.do(http.MethodPatch, path, token, map[string]any{"header_id": section.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("set override returned %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody[*models.Page](t, w); got.HeaderID == nil || *got.HeaderID != section.ID {
		t.Fatalf("header_id = %v", got.HeaderID)
	}

	// A patch that omits header_id leaves it alone.
	w = a.do(http.MethodPatch, path, token, map[string]any{"title": "Still Home"})
	if got := decodeBody[*models.Page](t, w); got.HeaderID == nil {
		t.Error("omitted header_id was cleared")
	}

	// An explicit null clears it.
	w = a.do(http.MethodPatch, path, token, map[string]any{"header_id": nil})
	if got := decodeBody[*models.Page](t, w); got.HeaderID != nil {
		t.Errorf("header_id after null = %v", got.HeaderID)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("owner@example.com")
	editorToken := a.addEditor(token, "editor@example.com")

	// 401: no session.
	if w := a.do(http.MethodGet, "/api/pages/", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list returned %d, want 401", w.Code)
	}
	// 403: editor attempting a structural mutation.
	if w := a.do(http.MethodPost, "/api/pages/", editorToken, map[string]string{"title": "Nope"}); w.Code != http.StatusForbidden {
		t.Errorf("editor create returned %d, want 403", w.Code)
	}
	// 404: unknown resource.
	if w := a.do(http.MethodGet, fmt.Sprintf("/api/pages/%s", uuid.New()), token, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown page returned %d, want 404", w.Code)
	}
	// 404: garbage id reads the same as absent.
	if w := a.do(http.MethodGet, "/api/pages/not-a-uuid", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("malformed id returned %d, want 404", w.Code)
	}
	// 422: validation.
	if w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": ""}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty title returned %d, want 422", w.Code)
	}
	if w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "X", "bogus": "field"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown field returned %d, want 422", w.Code)
	}
	// 409: duplicate slug.
	a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Home", "slug": "home"})
	if w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Home 2", "slug": "home"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate slug returned %d, want 409", w.Code)
	}

	errBody := decodeBody[map[string]string](t, a.do(http.MethodGet, "/api/pages/", "", nil))
	if errBody["error"] == "" {
		t.Error("error response missing error field")
	}
}

func TestWorkspaceIsolationOverHTTP(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("one@example.com")
	otherToken, _ := a.register("two@example.com")

	w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Private"})
	page := decodeBody[*models.Page](t, w)

	if w := a.do(http.MethodGet, fmt.Sprintf("/api/pages/%s", page.ID), otherToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("cross-workspace read returned %d, want 404", w.Code)
	}
	if w := a.do(http.MethodDelete, fmt.Sprintf("/api/pages/%s", page.ID), otherToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("cross-workspace delete returned %d, want 404", w.Code)
	}
}

func TestExternalKeyPath(t *testing.T) {
	a := newAPI(t)
	token, creds := a.register("owner@example.com")

	// Publish a page to read back through the key.
	w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Docs", "slug": "docs"})
	page := decodeBody[*models.Page](t, w)
	a.do(http.MethodPost, fmt.Sprintf("/api/pages/%s/publish", page.ID), token, nil)

	w = a.do(http.MethodPost, "/api/keys/", token, map[string]any{
		"name":            "site render",
		"allowed_origins": []string{"https://site.example.com"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create key returned %d: %s", w.Code, w.Body.String())
	}
	key := decodeBody[*apikey.CreatedKey](t, w)
	if key.Secret == "" {
		t.Fatal("created key carries no secret")
	}

	doExternal := func(path, secret, origin string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("X-API-Key", key.PublicKey)
		r.Header.Set("X-API-Secret", secret)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, r)
		return rec
	}

	// The key's workspace scopes the read; no tenant appears in the URL.
	w2 := doExternal("/external/pages/docs", key.Secret, "https://site.example.com")
	if w2.Code != http.StatusOK {
		t.Fatalf("external read returned %d: %s", w2.Code, w2.Body.String())
	}
	rendition := decodeBody[map[string]json.RawMessage](t, w2)
	var got models.Page
	if err := json.Unmarshal(rendition["page"], &got); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if got.WorkspaceID != creds.WorkspaceID {
		t.Errorf("external read crossed workspaces: %s", got.WorkspaceID)
	}

	// External consumers see the same rendition as anonymous visitors.
	anon := a.do(http.MethodGet, fmt.Sprintf("/sites/%s/pages/docs", creds.WorkspaceID), "", nil)
	if anon.Code != http.StatusOK {
		t.Fatalf("anonymous read returned %d", anon.Code)
	}
	if anon.Body.String() != w2.Body.String() {
		t.Errorf("external and anonymous renditions differ:\n%s\n%s", w2.Body.String(), anon.Body.String())
	}

	if w2 := doExternal("/external/pages", key.Secret, ""); w2.Code != http.StatusOK {
		t.Errorf("external list returned %d", w2.Code)
	}
	if w2 := doExternal("/external/pages/docs", "wrong-secret", ""); w2.Code != http.StatusUnauthorized {
		t.Errorf("bad secret returned %d, want 401", w2.Code)
	}
	if w2 := doExternal("/external/pages/docs", key.Secret, "https://evil.example.com"); w2.Code != http.StatusForbidden {
		t.Errorf("disallowed origin returned %d, want 403", w2.Code)
	}
	// The default grant is pages:read only.
	if w2 := doExternal("/external/sections", key.Secret, ""); w2.Code != http.StatusForbidden {
		t.Errorf("sections read without grant returned %d, want 403", w2.Code)
	}

	// Revocation takes effect immediately.
	if w := a.do(http.MethodPost, fmt.Sprintf("/api/keys/%s/revoke", key.ID), token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("revoke returned %d", w.Code)
	}
	if w2 := doExternal("/external/pages/docs", key.Secret, ""); w2.Code != http.StatusUnauthorized {
		t.Errorf("revoked key returned %d, want 401", w2.Code)
	}
}

func TestPublicPathServesFromCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	pageCache := cache.NewPageCache(client, 0)

	a := newAPIWithCache(t, pageCache)
	token, creds := a.register("owner@example.com")

	w := a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Home", "slug": "home"})
	page := decodeBody[*models.Page](t, w)
	a.do(http.MethodPost, fmt.Sprintf("/api/pages/%s/publish", page.ID), token, nil)

	publicPath := fmt.Sprintf("/sites/%s/pages/home", creds.WorkspaceID)
	if w := a.do(http.MethodGet, publicPath, "", nil); w.Code != http.StatusOK {
		t.Fatalf("public read returned %d", w.Code)
	}

	// A direct store mutation is invisible while the rendition is cached.
	stored, err := a.mem.Pages().FindByID(creds.WorkspaceID, page.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	stored.Title = "Changed Behind The Cache"
	if err := a.mem.Pages().Update(stored); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	w2 := a.do(http.MethodGet, publicPath, "", nil)
	rendition := decodeBody[map[string]json.RawMessage](t, w2)
	var got models.Page
	if err := json.Unmarshal(rendition["page"], &got); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if got.Title != "Home" {
		t.Errorf("cached title = %q, want the cached rendition", got.Title)
	}

	// A service-level mutation invalidates and the next read is fresh.
	w = a.do(http.MethodPatch, fmt.Sprintf("/api/pages/%s", page.ID), token, map[string]string{"title": "Updated"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch returned %d: %s", w.Code, w.Body.String())
	}
	w2 = a.do(http.MethodGet, publicPath, "", nil)
	rendition = decodeBody[map[string]json.RawMessage](t, w2)
	if err := json.Unmarshal(rendition["page"], &got); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("title after invalidation = %q, want Updated", got.Title)
	}
}

func TestAuditFeedOverHTTP(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("owner@example.com")
	editorToken := a.addEditor(token, "editor@example.com")

	a.do(http.MethodPost, "/api/pages/", token, map[string]string{"title": "Home"})

	w := a.do(http.MethodGet, "/api/audit?limit=10", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit feed returned %d: %s", w.Code, w.Body.String())
	}
	entries := decodeBody[[]models.AuditEntry](t, w)
	if len(entries) == 0 {
		t.Fatal("audit feed empty")
	}
	if entries[0].Action != "page.create" {
		t.Errorf("newest entry = %q, want page.create", entries[0].Action)
	}

	// The feed is admin only.
	if w := a.do(http.MethodGet, "/api/audit", editorToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("editor audit read returned %d, want 403", w.Code)
	}
}
