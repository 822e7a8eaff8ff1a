package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/celumarket/celumarket/app/models"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=celumarket dbname=celumarket sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestListingPageQuery(t *testing.T) {
	db := newDryRunDB(t)

	tests := []struct {
		name    string
		filter  ListingFilter
		want    []string
		notWant []string
	}{
		{
			name:   "pending first then newest",
			filter: ListingFilter{},
			want: []string{
				"SELECT listings.* FROM \"listings\"",
				"LEFT JOIN devices ON devices.id = listings.device_id",
				"LEFT JOIN users ON users.id = listings.user_id",
				"ORDER BY CASE WHEN listings.moderation_status = 'PENDING' THEN 0 ELSE 1 END, listings.created_at DESC",
				"LIMIT 10",
			},
			notWant: []string{"LIKE", "OFFSET"},
		},
		{
			name:   "search matches model owner and location",
			filter: ListingFilter{Search: "  Galaxy_S ", Pagination: Pagination{Page: 3, Limit: 20}},
			want: []string{
				`LOWER(devices.model) LIKE '%galaxy\_s%' OR LOWER(users.name) LIKE '%galaxy\_s%' OR LOWER(listings.location) LIKE '%galaxy\_s%'`,
				"LIMIT 20",
				"OFFSET 40",
			},
		},
		{
			name:   "status filters",
			filter: ListingFilter{ModerationStatus: models.ModerationApproved, Status: "ACTIVE"},
			want: []string{
				"listings.moderation_status = '" + models.ModerationApproved + "'",
				"listings.status = 'ACTIVE'",
			},
			notWant: []string{"LIKE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				return listingPageQuery(tx, tt.filter).Find(&[]models.Listing{})
			})
			for _, w := range tt.want {
				assert.Contains(t, sql, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, sql, w)
			}
		})
	}
}

func TestReportPageQuery(t *testing.T) {
	db := newDryRunDB(t)
	validated := false

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return reportPageQuery(tx, ReportFilter{Search: "RPT-9", IsValidated: &validated}).Find(&[]models.TechnicalReport{})
	})

	assert.Contains(t, sql, "SELECT technical_reports.* FROM")
	assert.Contains(t, sql, "LEFT JOIN users ON users.id = technical_reports.user_id")
	assert.Contains(t, sql, "technical_reports.is_validated = false")
	assert.Contains(t, sql, "LOWER(technical_reports.device_model) LIKE '%rpt-9%' OR LOWER(technical_reports.report_number) LIKE '%rpt-9%' OR LOWER(users.name) LIKE '%rpt-9%'")
	assert.Contains(t, sql, "ORDER BY technical_reports.is_validated ASC, technical_reports.created_at DESC")
}

func TestUserFilterScope(t *testing.T) {
	db := newDryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(userFilterScope(UserFilter{Role: models.ROLE_ADMIN, Search: "Ana"})).Find(&[]models.User{})
	})

	assert.Contains(t, sql, "role = '"+models.ROLE_ADMIN+"'")
	assert.Contains(t, sql, "LOWER(name) LIKE '%ana%' OR LOWER(email) LIKE '%ana%'")
	assert.Contains(t, sql, `"users"."deleted_at" IS NULL`)
}
