package filter

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type depot struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string
	Parish string
	Status string
	Stock  int
}

var depotFields = Fields{
	"name":   "name",
	"parish": "parish",
	"status": "status",
	"stock":  "stock",
}

func newDepots(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&depot{}))
	require.NoError(t, db.Create([]depot{
		{Name: "KINGSTON CENTRAL", Parish: "01", Status: "A", Stock: 500},
		{Name: "KINGSTON EAST", Parish: "01", Status: "I", Stock: 0},
		{Name: "SPANISH TOWN", Parish: "14", Status: "A", Stock: 120},
		{Name: "MONTEGO BAY", Parish: "08", Status: "A", Stock: 75},
	}).Error)
	return db
}

func names(t *testing.T, db *gorm.DB, raw string) []string {
	t.Helper()
	q, err := Apply(db.Model(&depot{}), raw, depotFields)
	require.NoError(t, err, raw)
	var out []string
	require.NoError(t, q.Order("id").Pluck("name", &out).Error, raw)
	return out
}

func TestApply(t *testing.T) {
	db := newDepots(t)

	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"KINGSTON CENTRAL", "KINGSTON EAST", "SPANISH TOWN", "MONTEGO BAY"}},
		{"status = 'A'", []string{"KINGSTON CENTRAL", "SPANISH TOWN", "MONTEGO BAY"}},
		{"status != 'A'", []string{"KINGSTON EAST"}},
		{"status <> 'A'", []string{"KINGSTON EAST"}},
		{"stock > 100", []string{"KINGSTON CENTRAL", "SPANISH TOWN"}},
		{"stock >= 75 and stock <= 120", []string{"SPANISH TOWN", "MONTEGO BAY"}},
		{"stock < 1", []string{"KINGSTON EAST"}},
		{"name LIKE 'KINGSTON%'", []string{"KINGSTON CENTRAL", "KINGSTON EAST"}},
		{`parish IN ('08', "14")`, []string{"SPANISH TOWN", "MONTEGO BAY"}},
		{"parish NOT IN ('01')", []string{"SPANISH TOWN", "MONTEGO BAY"}},
		{"status = 'I' OR parish = '08'", []string{"KINGSTON EAST", "MONTEGO BAY"}},
		{"status = 'A' AND (parish = '01' OR stock < 100)", []string{"KINGSTON CENTRAL", "MONTEGO BAY"}},
		{"(status = 'A' AND parish = '01') OR (status = 'I')", []string{"KINGSTON CENTRAL", "KINGSTON EAST"}},
		{"Status = 'A' And Stock > 400", []string{"KINGSTON CENTRAL"}},
		{"name = 'O\\'NEIL'", nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := names(t, db, tt.filter)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyNull(t *testing.T) {
	db := newDepots(t)
	assert.Empty(t, names(t, db, "name = NULL"))
	assert.Len(t, names(t, db, "name != null"), 4)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"password = 'x'", `cannot filter on "password"`},
		{"status =", ""},
		{"status = 'A' AND", ""},
		{"status 'A'", ""},
		{"(status = 'A'", ""},
		{"status NOT = 'A'", "NOT is only allowed before IN"},
		{"stock LIKE 5", "LIKE needs a string"},
		{"parish IN (NULL)", "NULL is not allowed in IN"},
		{"status = 'A'; DROP TABLE depots", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			_, err := Compile(tt.filter, depotFields)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestCompileTooLong(t *testing.T) {
	long := "name = '"
	for len(long) < MaxLength {
		long += "x"
	}
	_, err := Compile(long+"'", depotFields)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValuesAreBound(t *testing.T) {
	db := newDepots(t)
	q, err := Apply(db.Session(&gorm.Session{DryRun: true}).Model(&depot{}), "name = 'x OR 1=1' AND stock > 5", depotFields)
	require.NoError(t, err)
	stmt := q.Find(&[]depot{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "1=1")
	assert.Contains(t, stmt.SQL.String(), "`name` = ?")
	assert.Contains(t, stmt.Vars, "x OR 1=1")
	assert.Contains(t, stmt.Vars, int64(5))
}

func TestLiteral(t *testing.T) {
	s, n, f, b := "x", "42", "2.5", "TRUE"
	assert.Equal(t, "x", (&Value{String: &s}).literal())
	assert.Equal(t, int64(42), (&Value{Number: &n}).literal())
	assert.Equal(t, 2.5, (&Value{Number: &f}).literal())
	assert.Equal(t, true, (&Value{Bool: &b}).literal())
	assert.Nil(t, (&Value{Null: true}).literal())
}
