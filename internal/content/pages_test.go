package content

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

func TestCreatePage(t *testing.T) {
	f := newFixture(t)

	page := f.mustCreatePage(t, "About Us", "")
	if page.Slug != "about-us" {
		t.Errorf("derived slug = %q, want about-us", page.Slug)
	}
	if page.Status != models.PageStatusDraft {
		t.Errorf("new page status = %q, want draft", page.Status)
	}
	if len(page.BlockOrder) != 0 {
		t.Error("new page has blocks")
	}

	if _, err := f.svc.CreatePage(f.editor, "Editor Page", ""); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("CreatePage as editor = %v, want ErrInsufficientRole", err)
	}
	if _, err := f.svc.CreatePage(f.admin, "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("CreatePage without title = %v, want validation error", err)
	}
	if _, err := f.svc.CreatePage(f.admin, "Bad Slug", "Not A Slug"); !errors.Is(err, errs.ErrInvalidSlugFormat) {
		t.Errorf("CreatePage with bad slug = %v, want ErrInvalidSlugFormat", err)
	}
}

func TestSlugUniquePerWorkspace(t *testing.T) {
	f := newFixture(t)
	f.mustCreatePage(t, "About", "about")

	if _, err := f.svc.CreatePage(f.admin, "Also About", "about"); !errors.Is(err, errs.ErrSlugTaken) {
		t.Fatalf("duplicate slug = %v, want ErrSlugTaken", err)
	}

	// The same slug is fine in another workspace.
	other := f.outsider()
	if _, err := f.svc.CreatePage(other, "About", "about"); err != nil {
		t.Fatalf("same slug in other workspace failed: %v", err)
	}
}

func TestUpdatePageFieldGating(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Home", "home")

	// Editors may change title and SEO.
	updated, err := f.svc.UpdatePage(f.editor, page.ID, models.PageUpdate{
		Title: strPtr("Welcome"),
		SEO:   &models.SEOMeta{Title: "Welcome", Description: "front door"},
	})
	if err != nil {
		t.Fatalf("editor UpdatePage failed: %v", err)
	}
	if updated.Title != "Welcome" || updated.SEO.Description != "front door" {
		t.Error("editor update did not apply")
	}

	// Slug changes are structural and need admin.
	_, err = f.svc.UpdatePage(f.editor, page.ID, models.PageUpdate{Slug: strPtr("welcome")})
	if !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor slug change = %v, want ErrInsufficientRole", err)
	}
	if _, err := f.svc.UpdatePage(f.admin, page.ID, models.PageUpdate{Slug: strPtr("welcome")}); err != nil {
		t.Fatalf("admin slug change failed: %v", err)
	}

	// Unchanged fields stay put.
	got, err := f.svc.GetPage(f.admin, page.ID)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if got.Page.Title != "Welcome" || got.Page.Slug != "welcome" {
		t.Errorf("page after updates = %q/%q", got.Page.Title, got.Page.Slug)
	}
}

func TestUpdatePageSectionOverrides(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Home", "home")

	header, err := f.svc.CreateSection(f.admin, "Main Header", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "hi"}, false)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	ref := &header.ID
	if _, err := f.svc.UpdatePage(f.admin, page.ID, models.PageUpdate{HeaderID: &ref}); err != nil {
		t.Fatalf("set header override failed: %v", err)
	}

	// A footer slot cannot reference a header section.
	if _, err := f.svc.UpdatePage(f.admin, page.ID, models.PageUpdate{FooterID: &ref}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("header section as footer = %v, want validation error", err)
	}

	// Explicit null clears the override.
	var clear *uuid.UUID
	updated, err := f.svc.UpdatePage(f.admin, page.ID, models.PageUpdate{HeaderID: &clear})
	if err != nil {
		t.Fatalf("clear header override failed: %v", err)
	}
	if updated.HeaderID != nil {
		t.Error("header override not cleared")
	}
}

func TestPublishLifecycle(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Launch", "launch")

	// Draft pages are not publicly visible.
	if _, err := f.svc.PublishedBySlug(f.admin.WorkspaceID, "launch"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("draft visible publicly: %v", err)
	}

	if err := f.svc.PublishPage(f.editor, page.ID); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor publish = %v, want ErrInsufficientRole", err)
	}
	if err := f.svc.PublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("PublishPage failed: %v", err)
	}
	if err := f.svc.PublishPage(f.admin, page.ID); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("double publish = %v, want ErrConflict", err)
	}

	published, err := f.svc.PublishedBySlug(f.admin.WorkspaceID, "launch")
	if err != nil {
		t.Fatalf("PublishedBySlug failed: %v", err)
	}
	if published.Page.PublishedAt == nil {
		t.Error("published page has no publish timestamp")
	}

	// Unpublish returns to draft and clears the timestamp.
	if err := f.svc.UnpublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("UnpublishPage failed: %v", err)
	}
	if err := f.svc.UnpublishPage(f.admin, page.ID); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("unpublish draft = %v, want ErrConflict", err)
	}
	got, err := f.svc.GetPage(f.admin, page.ID)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if got.Page.Status != models.PageStatusDraft || got.Page.PublishedAt != nil {
		t.Errorf("after unpublish: status=%q published_at=%v", got.Page.Status, got.Page.PublishedAt)
	}
	if _, err := f.svc.PublishedBySlug(f.admin.WorkspaceID, "launch"); !errors.Is(err, errs.ErrNotFound) {
		t.Error("unpublished page still publicly visible")
	}
}

func TestArchivePreservesPublishTime(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Old News", "old-news")

	if err := f.svc.PublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("PublishPage failed: %v", err)
	}
	if err := f.svc.ArchivePage(f.admin, page.ID); err != nil {
		t.Fatalf("ArchivePage failed: %v", err)
	}

	got, err := f.svc.GetPage(f.admin, page.ID)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if got.Page.Status != models.PageStatusArchived {
		t.Errorf("status = %q, want archived", got.Page.Status)
	}
	if got.Page.PublishedAt == nil {
		t.Error("archive dropped the historical publish time")
	}
	if _, err := f.svc.PublishedBySlug(f.admin.WorkspaceID, "old-news"); !errors.Is(err, errs.ErrNotFound) {
		t.Error("archived page still publicly visible")
	}

	// Republishing an archived page works and stamps a fresh time.
	if err := f.svc.PublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("republish after archive failed: %v", err)
	}
}

func TestDeletePageCascades(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Doomed", "doomed")
	block := f.mustAddText(t, page.ID, "text", nil)

	if err := f.svc.DeletePage(f.editor, page.ID); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor delete = %v, want ErrInsufficientRole", err)
	}
	if err := f.svc.DeletePage(f.admin, page.ID); err != nil {
		t.Fatalf("DeletePage failed: %v", err)
	}

	if _, err := f.svc.GetPage(f.admin, page.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deleted page readable: %v", err)
	}
	stored, err := f.mem.Blocks().FindByID(f.admin.WorkspaceID, block.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored != nil {
		t.Error("cascade left an orphan block")
	}
}

func TestCrossWorkspaceReadsAsNotFound(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Private", "private")
	other := f.outsider()

	if _, err := f.svc.GetPage(other, page.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-workspace GetPage = %v, want ErrNotFound", err)
	}
	if err := f.svc.PublishPage(other, page.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-workspace PublishPage = %v, want ErrNotFound", err)
	}
	if err := f.svc.DeletePage(other, page.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-workspace DeletePage = %v, want ErrNotFound", err)
	}
}

func TestMutationsInvalidateCache(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Cached", "cached")

	if err := f.svc.PublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("PublishPage failed: %v", err)
	}
	if !f.cache.saw(f.admin.WorkspaceID, "cached") {
		t.Error("publish did not invalidate the page's cache entry")
	}

	// A slug change invalidates both the old and the new entry.
	f.cache.keys = nil
	if _, err := f.svc.UpdatePage(f.admin, page.ID, models.PageUpdate{Slug: strPtr("renamed")}); err != nil {
		t.Fatalf("UpdatePage failed: %v", err)
	}
	if !f.cache.saw(f.admin.WorkspaceID, "cached") || !f.cache.saw(f.admin.WorkspaceID, "renamed") {
		t.Errorf("slug change invalidated %v, want both old and new slug", f.cache.keys)
	}
}
