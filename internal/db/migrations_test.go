package db

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	database := openTestDatabase(t)

	expectedTables := []string{
		"users",
		"fermentation_profiles",
		"fermentations",
		"temperature_logs",
		"fermentation_photos",
		"taste_profiles",
		"sessions",
		"schema_migrations",
	}
	for _, table := range expectedTables {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist after migrations", table)
		}
	}

	userColumns := loadTableColumns(t, database, "users")
	for _, column := range []string{"first_name", "last_name", "is_locked", "preferred_temp_unit"} {
		if _, ok := userColumns[column]; !ok {
			t.Fatalf("expected users.%s column to exist after migrations", column)
		}
	}
	if _, ok := loadTableColumns(t, database, "fermentation_profiles")["is_active"]; !ok {
		t.Fatal("expected fermentation_profiles.is_active column to exist after migrations")
	}
	if _, ok := loadTableColumns(t, database, "fermentations")["lessons_learned"]; !ok {
		t.Fatal("expected fermentations.lessons_learned column to exist after migrations")
	}

	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestOpenSQLiteSeedsSevenFermentationProfiles(t *testing.T) {
	database := openTestDatabase(t)

	var rows []struct {
		ID       uint
		Name     string
		Type     string
		MinDays  int
		MaxDays  int
		TempMin  float64
		TempMax  float64
		IsActive bool
	}
	if err := database.Raw(
		`SELECT id, name, type, min_days, max_days, temp_min, temp_max, is_active FROM fermentation_profiles ORDER BY id ASC`,
	).Scan(&rows).Error; err != nil {
		t.Fatalf("load seeded profiles: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 seeded profiles, got %d", len(rows))
	}

	pickles := rows[0]
	if pickles.ID != 1 || pickles.Name != "Pickles" || pickles.Type != "vegetable" {
		t.Fatalf("expected profile 1 to be vegetable Pickles, got %+v", pickles)
	}
	if pickles.MinDays != 3 || pickles.MaxDays != 7 {
		t.Fatalf("expected Pickles to take 3-7 days, got %d-%d", pickles.MinDays, pickles.MaxDays)
	}

	for _, row := range rows {
		if !row.IsActive {
			t.Fatalf("expected seeded profile %s to be active", row.Name)
		}
		if row.MinDays > row.MaxDays {
			t.Fatalf("profile %s has min_days > max_days", row.Name)
		}
		if row.TempMin >= row.TempMax {
			t.Fatalf("profile %s has temp_min >= temp_max", row.Name)
		}
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	if !strings.Contains(strings.Join(names, ","), "Kombucha") {
		t.Fatalf("expected Kombucha among seeded profiles, got %v", names)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "raugupatis-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords, err := ListAppliedMigrations(firstOpen)
	if err != nil {
		t.Fatalf("list first migrations: %v", err)
	}
	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openTestDatabaseAt(t, databasePath)
	secondRecords, err := ListAppliedMigrations(secondOpen)
	if err != nil {
		t.Fatalf("list second migrations: %v", err)
	}

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}

	var profileCount int64
	if err := secondOpen.Table("fermentation_profiles").Count(&profileCount).Error; err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profileCount != 7 {
		t.Fatalf("expected seed to run once, got %d profiles", profileCount)
	}
}

func TestApplyMigrationsStopsAtFailingMigration(t *testing.T) {
	database := openRawSQLite(t)
	source := fstest.MapFS{
		"0001_create_batches.sql": {Data: []byte("CREATE TABLE batches (id INTEGER PRIMARY KEY)")},
		"0002_broken.sql":         {Data: []byte("CREATE TABLE broken (id INTEGER PRIMARY KEY);\nINSERT INTO missing_table VALUES (1)")},
		"0003_never_runs.sql":     {Data: []byte("CREATE TABLE later (id INTEGER PRIMARY KEY)")},
	}

	if err := applyMigrations(database, source); err == nil {
		t.Fatal("expected failing migration to abort the run")
	}

	records, err := ListAppliedMigrations(database)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(records) != 1 || records[0].Version != "0001" {
		t.Fatalf("expected only 0001 to be recorded, got %v", records)
	}
	if database.Migrator().HasTable("broken") {
		t.Fatal("expected failed migration to roll back its statements")
	}
	if database.Migrator().HasTable("later") {
		t.Fatal("expected migrations after the failure to stay pending")
	}
}

func TestApplyMigrationsRejectsDuplicateVersions(t *testing.T) {
	database := openRawSQLite(t)
	source := fstest.MapFS{
		"0001_first.sql":  {Data: []byte("CREATE TABLE first (id INTEGER PRIMARY KEY)")},
		"0001_second.sql": {Data: []byte("CREATE TABLE second (id INTEGER PRIMARY KEY)")},
	}

	err := applyMigrations(database, source)
	if err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestApplyMigrationsSkipsExistingColumns(t *testing.T) {
	database := openRawSQLite(t)
	if err := database.Exec(`CREATE TABLE batches (id INTEGER PRIMARY KEY, label TEXT)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	source := fstest.MapFS{
		"0001_add_label.sql": {Data: []byte("-- label was added by hand on some installs\nALTER TABLE batches ADD COLUMN label TEXT")},
	}
	if err := applyMigrations(database, source); err != nil {
		t.Fatalf("expected existing column to be skipped, got %v", err)
	}
}

func TestSplitSQLStatementsDropsCommentsAndBlanks(t *testing.T) {
	statements := splitSQLStatements("-- header\nCREATE TABLE a (id INTEGER);\n\n;\n-- trailing comment\n")
	if len(statements) != 1 || statements[0] != "CREATE TABLE a (id INTEGER)" {
		t.Fatalf("unexpected statements: %q", statements)
	}
}

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDatabaseAt(t, filepath.Join(t.TempDir(), "raugupatis-test.db"))
}

func openTestDatabaseAt(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func openRawSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "raugupatis-raw.db")
	database, err := gorm.Open(sqlite.Open(sqliteDSN(databasePath)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open raw sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(`PRAGMA table_info("` + tableName + `")`).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(strings.TrimSpace(row.Name))] = struct{}{}
	}
	return columns
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	embedded, err := loadMigrations(embeddedMigrationSource())
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	expected := make([]string, 0, len(embedded))
	for _, item := range embedded {
		expected = append(expected, item.Version)
	}

	records, err := ListAppliedMigrations(database)
	if err != nil {
		t.Fatalf("list applied migrations: %v", err)
	}
	actual := make([]string, 0, len(records))
	for _, record := range records {
		actual = append(actual, record.Version)
	}

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expected, actual)
	}
	if len(actual) != 7 {
		t.Fatalf("expected 7 migrations, got %d", len(actual))
	}
}
