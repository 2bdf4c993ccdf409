package report

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectDailyQueries registers the five KPI queries the digest runs,
// in order, all bound to the month-to-date window of testNow.
func expectDailyQueries(mock sqlmock.Sqlmock, topRows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT AVG\(COALESCE\(mttr_hours, labor_hours\)\) FROM work_orders`).
		WithArgs("Cerrada", "2025-03-01", "2025-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(4.25))

	mock.ExpectQuery(`SELECT opened_at FROM work_orders`).
		WithArgs("2025-03-01", "2025-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"opened_at"}).
			AddRow(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))

	mock.ExpectQuery(`SELECT due_date, closed_at FROM work_orders`).
		WithArgs("PM", "2025-03-01", "2025-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"due_date", "closed_at"}).
			AddRow(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 8, 9, 30, 0, 0, time.UTC)).
			AddRow(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 20, 16, 0, 0, 0, time.UTC)).
			AddRow(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), nil))

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM work_orders`).
		WithArgs("2025-03-01", "2025-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Abierta", 4).
			AddRow("En Progreso", 2).
			AddRow("Cerrada", 9).
			AddRow("Pendiente", 1))

	mock.ExpectQuery(`SUM\(work_orders.downtime_hours\)`).
		WithArgs("2025-03-01", "2025-03-15").
		WillReturnRows(topRows)
}

func TestBuildDaily(t *testing.T) {
	store, mock := newTestStore(t)

	top := sqlmock.NewRows([]string{"asset_id", "name", "dt"}).
		AddRow("A-102", "Compresor 2", 18.0).
		AddRow("A-205", "Bomba 5", 7.5)
	expectDailyQueries(mock, top)

	text, err := BuildDaily(context.Background(), store, testNow)
	require.NoError(t, err)

	// The status total here is the full count, including the row with
	// the unexpected "Pendiente" status.
	expected := "📮 Reporte diario (Mes actual)\n" +
		"• 🛠️ MTTR: 4.25 h\n" +
		"• 📚 Backlog: 7.5 días\n" +
		"• ✅ Cumplimiento PM: 33.33%\n" +
		"• 📊 Estados: Abiertas 4 · En Progreso 2 · Cerradas 9 · Total 16\n" +
		"• ⛔ Top downtime:\n" +
		"- A-102 · Compresor 2: 18.0 h\n" +
		"- A-205 · Bomba 5: 7.5 h"
	assert.Equal(t, expected, text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildDailyWithoutDowntime(t *testing.T) {
	store, mock := newTestStore(t)

	expectDailyQueries(mock, sqlmock.NewRows([]string{"asset_id", "name", "dt"}))

	text, err := BuildDaily(context.Background(), store, testNow)
	require.NoError(t, err)
	assert.Contains(t, text, "• ⛔ Top downtime:\nSin paradas registradas en el periodo.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildDailyPropagatesErrors(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT AVG\(COALESCE\(mttr_hours, labor_hours\)\) FROM work_orders`).
		WillReturnError(assert.AnError)

	_, err := BuildDaily(context.Background(), store, testNow)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
