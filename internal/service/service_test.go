package service

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/attendance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	report      *attendance.Report
	err         error
	calls       int
	invalidated []string
}

func (f *fakeFetcher) FetchAttendance(_ context.Context, token string) (*attendance.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeFetcher) Invalidate(token string) {
	f.invalidated = append(f.invalidated, token)
}

type memorySessionRepo struct {
	sessions map[int64]*models.Session
	fail     error
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[int64]*models.Session)}
}

func (r *memorySessionRepo) Save(session *models.Session) error {
	if r.fail != nil {
		return r.fail
	}
	copied := *session
	r.sessions[session.ChatID] = &copied
	return nil
}

func (r *memorySessionRepo) GetByChatID(chatID int64) (*models.Session, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	return r.sessions[chatID], nil
}

func (r *memorySessionRepo) UpdateLogin(chatID int64, login string) error {
	s, ok := r.sessions[chatID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.Login = login
	return nil
}

func (r *memorySessionRepo) Delete(chatID int64) error {
	if _, ok := r.sessions[chatID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.sessions, chatID)
	return nil
}

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func sampleReport() *attendance.Report {
	return &attendance.Report{
		Login: "jdoe",
		Attendance: []attendance.AttendanceReport{
			{Entries: []attendance.ReportEntry{
				// понедельник 4 марта 2024, 09:00-12:00 и 11:00-13:00 по Парижу
				{CampusID: 1, Source: "badgeuse", TimePeriod: attendance.TimePeriod{BeginAt: "2024-03-04T08:00:00Z", EndAt: "2024-03-04T11:00:00Z"}},
				{CampusID: 1, Source: "locations", TimePeriod: attendance.TimePeriod{BeginAt: "2024-03-04T10:00:00Z", EndAt: "2024-03-04T12:00:00Z"}},
				// суббота
				{CampusID: 1, Source: "badgeuse", TimePeriod: attendance.TimePeriod{BeginAt: "2024-03-09T09:00:00Z", EndAt: "2024-03-09T10:00:00Z"}},
			}},
			{Entries: nil},
			{Entries: []attendance.ReportEntry{
				{CampusID: 1, Source: "badgeuse", TimePeriod: attendance.TimePeriod{BeginAt: "2023-12-15T08:00:00Z", EndAt: "2023-12-15T16:00:00Z"}},
				{CampusID: 1, Source: "badgeuse", TimePeriod: attendance.TimePeriod{BeginAt: "2023-12-15T18:00:00Z", EndAt: "2023-12-15T17:00:00Z"}},
			}},
		},
	}
}

func TestAttendanceService_Summary(t *testing.T) {
	fetcher := &fakeFetcher{report: sampleReport()}
	svc := NewAttendanceService(fetcher, paris(t), attendance.Goals{DailyHours: 7})

	summary, err := svc.Summary(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, "jdoe", summary.Login)
	assert.False(t, summary.IsEmpty())
	assert.Equal(t, 1, summary.Clamped)
	require.Len(t, summary.Years, 2)
	assert.Equal(t, 2024, summary.Latest().Year)

	march := summary.Years[0].FindMonth("2024-03")
	require.NotNil(t, march)
	day := march.Day("2024-03-04")
	require.NotNil(t, day)
	assert.InDelta(t, 4, day.TotalMergedHours, 1e-9)
	assert.InDelta(t, 5, day.TotalRawHours, 1e-9)
	assert.Equal(t, "09:00 - 13:00", day.MergedEntries[0].Span())

	assert.InDelta(t, 8, summary.Years[1].TotalRawHours, 1e-9)
}

func TestAttendanceService_SummaryEmpty(t *testing.T) {
	fetcher := &fakeFetcher{report: &attendance.Report{Login: "jdoe"}}
	svc := NewAttendanceService(fetcher, paris(t), attendance.Goals{})

	summary, err := svc.Summary(context.Background(), "token")
	require.NoError(t, err)
	assert.True(t, summary.IsEmpty())
	assert.Nil(t, summary.Latest())
	assert.Contains(t, svc.FormatYears(summary), "Нет данных")
}

func TestAttendanceService_SummaryErrors(t *testing.T) {
	upstreamErr := errors.New("boom")
	svc := NewAttendanceService(&fakeFetcher{err: upstreamErr}, paris(t), attendance.Goals{})
	_, err := svc.Summary(context.Background(), "token")
	assert.ErrorIs(t, err, upstreamErr)

	bad := &attendance.Report{Attendance: []attendance.AttendanceReport{{Entries: []attendance.ReportEntry{
		{Source: "badgeuse", TimePeriod: attendance.TimePeriod{BeginAt: "garbage", EndAt: "2024-03-04T11:00:00Z"}},
	}}}}
	svc = NewAttendanceService(&fakeFetcher{report: bad}, paris(t), attendance.Goals{})
	_, err = svc.Summary(context.Background(), "token")

	var malformed *attendance.MalformedEntryError
	assert.ErrorAs(t, err, &malformed)
}

func TestAttendanceService_RefreshAndReport(t *testing.T) {
	fetcher := &fakeFetcher{report: sampleReport()}
	svc := NewAttendanceService(fetcher, nil, attendance.Goals{})

	assert.Equal(t, time.Local, svc.Location())

	report, err := svc.Report(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", report.Login)

	svc.Refresh("token")
	assert.Equal(t, []string{"token"}, fetcher.invalidated)
}

func TestAttendanceService_Format(t *testing.T) {
	svc := NewAttendanceService(&fakeFetcher{report: sampleReport()}, paris(t), attendance.Goals{DailyHours: 7})
	summary, err := svc.Summary(context.Background(), "token")
	require.NoError(t, err)

	years := svc.FormatYears(summary)
	assert.Contains(t, years, "jdoe")
	assert.Contains(t, years, "<b>2024</b>")
	assert.Contains(t, years, "<b>2023</b>")
	assert.Contains(t, years, "концом раньше начала: 1")

	year := svc.FormatYear(summary.Years[0])
	assert.Contains(t, year, "2024 год")
	assert.Contains(t, year, "Март 2024")
	assert.Contains(t, year, "<pre>")

	march := summary.Years[0].FindMonth("2024-03")
	month := svc.FormatMonth(march)
	assert.Contains(t, month, "Март 2024")
	assert.Contains(t, month, "140ч")
	assert.Contains(t, month, "✗")
	assert.Contains(t, month, "09")

	day := svc.FormatDay(march.Day("2024-03-04"))
	assert.Contains(t, day, "Понедельник, 4 марта 2024")
	assert.Contains(t, day, "осталось 3ч")
	assert.Contains(t, day, "badgeuse, locations")
	assert.Contains(t, day, "13:00")

	weekend := svc.FormatDay(march.Day("2024-03-09"))
	assert.Contains(t, weekend, "Выходной")

	clamped := svc.FormatDay(summary.Years[1].Months[0].Day("2023-12-15"))
	assert.Contains(t, clamped, "19:00!")
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "0ч", FormatHours(0))
	assert.Equal(t, "5ч 30м", FormatHours(5.5))
	assert.Equal(t, "3ч", FormatHours(2.9999))
	assert.Equal(t, "-1ч 15м", FormatHours(-1.25))
	assert.Equal(t, "Март 2024", MonthTitle("2024-03"))
	assert.Equal(t, "bad", MonthTitle("bad"))
}

func TestSessionService(t *testing.T) {
	repo := newMemorySessionRepo()
	svc := NewSessionService(repo)

	_, err := svc.Token(1)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.ErrorIs(t, svc.SetToken(1, "   "), ErrEmptyToken)

	require.NoError(t, svc.SetToken(1, "  token-value \n"))
	token, err := svc.Token(1)
	require.NoError(t, err)
	assert.Equal(t, "token-value", token)

	svc.RememberLogin(1, "jdoe")
	session, err := svc.Session(1)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", session.Login)

	// отсутствующая сессия только логируется
	svc.RememberLogin(2, "ghost")

	require.NoError(t, svc.Logout(1))
	assert.ErrorIs(t, svc.Logout(1), ErrNoSession)
}

func TestSessionService_RepositoryFailure(t *testing.T) {
	repo := newMemorySessionRepo()
	repo.fail = errors.New("disk full")
	svc := NewSessionService(repo)

	assert.ErrorIs(t, svc.SetToken(1, "token"), repo.fail)
	_, err := svc.Token(1)
	assert.ErrorIs(t, err, repo.fail)
}
