// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"postboard/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(string, ...any)
	Cleanup(func())
}

// NewSQLiteDB opens an isolated in-memory database with the posts table.
func NewSQLiteDB(t TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&models.Post{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Students and admin matching the built-in identity registry.
var (
	Marco = &models.Identity{ID: "student-001", Username: "student1", DisplayName: "Marco Rossi", Role: models.RoleStudent}
	Sofia = &models.Identity{ID: "student-002", Username: "student2", DisplayName: "Sofia Chen", Role: models.RoleStudent}
	Admin = &models.Identity{ID: "admin-001", Username: "admin", DisplayName: "Dr. Johnson", Role: models.RoleAdmin}
)

// Draft returns a valid post draft with the given title and tags.
func Draft(title string, tags ...models.Category) models.PostDraft {
	if len(tags) == 0 {
		tags = []models.Category{models.CategoryEvent}
	}
	return models.PostDraft{
		Title:        title,
		Description:  "All about " + title,
		CategoryTags: tags,
	}
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGDataURL wraps TinyPNG in a base64 data URL.
func PNGDataURL(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(TinyPNG(t, w, h))
}
