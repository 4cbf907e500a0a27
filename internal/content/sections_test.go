package content

import (
	"errors"
	"testing"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

func TestCreateSection(t *testing.T) {
	f := newFixture(t)

	section, err := f.svc.CreateSection(f.admin, "Main Header", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "Welcome"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	if section.Slug != "main-header" {
		t.Errorf("derived slug = %q, want main-header", section.Slug)
	}
	if !section.IsDefault {
		t.Error("section not marked default")
	}
	if section.ContentType != models.BlockTypeHero {
		t.Errorf("content type = %q, want hero", section.ContentType)
	}

	if _, err := f.svc.CreateSection(f.editor, "Editor Header", "", models.SectionTypeHeader, models.HeroContent{}, false); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor CreateSection = %v, want ErrInsufficientRole", err)
	}
	if _, err := f.svc.CreateSection(f.admin, "", "", models.SectionTypeHeader, models.HeroContent{}, false); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("CreateSection without name = %v, want validation error", err)
	}
	if _, err := f.svc.CreateSection(f.admin, "Odd", "", "sidebar", models.HeroContent{}, false); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("CreateSection with unknown type = %v, want validation error", err)
	}
	if _, err := f.svc.CreateSection(f.admin, "Other Header", "main-header", models.SectionTypeHeader, models.HeroContent{}, false); !errors.Is(err, errs.ErrSlugTaken) {
		t.Errorf("duplicate section slug = %v, want ErrSlugTaken", err)
	}
}

func TestSingleDefaultPerType(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.CreateSection(f.admin, "Header A", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "a"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	// A footer default does not interfere with the header default.
	footer, err := f.svc.CreateSection(f.admin, "Footer", "", models.SectionTypeFooter,
		models.TextContent{Body: "fine print"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	// Creating a second default header demotes the first.
	second, err := f.svc.CreateSection(f.admin, "Header B", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "b"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	defaults := map[string]bool{}
	sections, err := f.svc.ListSections(f.editor)
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	for _, s := range sections {
		if s.IsDefault {
			defaults[s.Name] = true
		}
	}
	if defaults["Header A"] || !defaults["Header B"] || !defaults["Footer"] {
		t.Errorf("defaults = %v, want Header B and Footer only", defaults)
	}

	// SetDefaultSection demotes the current default the same way.
	if err := f.svc.SetDefaultSection(f.editor, first.ID); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor SetDefaultSection = %v, want ErrInsufficientRole", err)
	}
	if err := f.svc.SetDefaultSection(f.admin, first.ID); err != nil {
		t.Fatalf("SetDefaultSection failed: %v", err)
	}
	a, _ := f.svc.GetSection(f.editor, first.ID)
	b, _ := f.svc.GetSection(f.editor, second.ID)
	fs, _ := f.svc.GetSection(f.editor, footer.ID)
	if !a.IsDefault || b.IsDefault || !fs.IsDefault {
		t.Errorf("after promote: a=%v b=%v footer=%v", a.IsDefault, b.IsDefault, fs.IsDefault)
	}
}

func TestUpdateSection(t *testing.T) {
	f := newFixture(t)
	section, err := f.svc.CreateSection(f.admin, "Footer", "", models.SectionTypeFooter,
		models.TextContent{Body: "v1"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	if _, err := f.svc.UpdateSection(f.editor, section.ID, "Footer", models.TextContent{Body: "v2"}); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor UpdateSection = %v, want ErrInsufficientRole", err)
	}

	updated, err := f.svc.UpdateSection(f.admin, section.ID, "Site Footer", models.TextContent{Body: "v2"})
	if err != nil {
		t.Fatalf("UpdateSection failed: %v", err)
	}
	if updated.Name != "Site Footer" {
		t.Errorf("name = %q", updated.Name)
	}
	text, ok := updated.Content.(models.TextContent)
	if !ok || text.Body != "v2" {
		t.Errorf("content = %#v", updated.Content)
	}
}

func TestSectionChangesInvalidatePublishedPages(t *testing.T) {
	f := newFixture(t)
	page := f.mustCreatePage(t, "Home", "home")
	if err := f.svc.PublishPage(f.admin, page.ID); err != nil {
		t.Fatalf("PublishPage failed: %v", err)
	}

	section, err := f.svc.CreateSection(f.admin, "Footer", "", models.SectionTypeFooter,
		models.TextContent{Body: "v1"}, true)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	f.cache.keys = nil
	if _, err := f.svc.UpdateSection(f.admin, section.ID, "Footer", models.TextContent{Body: "v2"}); err != nil {
		t.Fatalf("UpdateSection failed: %v", err)
	}
	if !f.cache.saw(f.admin.WorkspaceID, "home") {
		t.Error("section update did not invalidate published pages")
	}
}

func TestDeleteSection(t *testing.T) {
	f := newFixture(t)
	section, err := f.svc.CreateSection(f.admin, "Header", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "hi"}, false)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	if err := f.svc.DeleteSection(f.editor, section.ID); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor DeleteSection = %v, want ErrInsufficientRole", err)
	}
	if err := f.svc.DeleteSection(f.admin, section.ID); err != nil {
		t.Fatalf("DeleteSection failed: %v", err)
	}
	if _, err := f.svc.GetSection(f.editor, section.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("deleted section readable: %v", err)
	}
}

func TestSectionWorkspaceIsolation(t *testing.T) {
	f := newFixture(t)
	section, err := f.svc.CreateSection(f.admin, "Header", "", models.SectionTypeHeader,
		models.HeroContent{Heading: "hi"}, false)
	if err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	other := f.outsider()

	if _, err := f.svc.GetSection(other, section.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-workspace GetSection = %v, want ErrNotFound", err)
	}
	if err := f.svc.DeleteSection(other, section.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("cross-workspace DeleteSection = %v, want ErrNotFound", err)
	}

	// Same slug is fine in a different workspace.
	if _, err := f.svc.CreateSection(other, "Header", "header", models.SectionTypeHeader, models.HeroContent{}, false); err != nil {
		t.Errorf("same slug in other workspace failed: %v", err)
	}
}
