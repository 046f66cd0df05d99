package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func threePeriods() []models.Period {
	return []models.Period{
		{ID: 1, OrderNo: 1, StartTime: "08:30", EndTime: "09:10"},
		{ID: 2, OrderNo: 2, StartTime: "09:20", EndTime: "10:00"},
		{ID: 3, OrderNo: 3, StartTime: "10:10", EndTime: "10:50"},
	}
}

func TestResolveAvailabilityPrecedence(t *testing.T) {
	teachers := []models.Teacher{
		{ID: 1, FullName: "Teacher One", Branch: "Matematik"},
		{ID: 2, FullName: "Teacher Two", Branch: "Fizik"},
		{ID: 3, FullName: "Teacher Three", Branch: "Tarih"},
		{ID: 4, FullName: "Teacher Four", Branch: "Muzik"},
		{ID: 5, FullName: "Teacher Five", Branch: "Resim"},
	}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
		{ID: 11, TeacherID: 3, ClassID: 2, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
		{ID: 12, TeacherID: 2, ClassID: 3, SubjectID: 2, PeriodID: 2, DayOfWeek: 1},
	}
	duties := []models.DutyEntry{
		{ID: 20, TeacherID: 4, Location: "Bahce", DayOfWeek: 1, PeriodID: int64Ptr(1)},
	}
	absences := []models.Absence{
		{ID: 30, TeacherID: 1, StartDate: monday, EndDate: monday},
	}
	assignments := []models.SubstitutionAssignment{
		{ID: 40, AbsentTeacherID: 1, SubstituteTeacherID: 2, ScheduleEntryID: 10, Date: monday},
	}

	snap := newRosterSnapshot(monday, teachers, threePeriods(), nil, entries, duties, absences, assignments)

	statuses, ok := snap.resolveAvailability(1)
	require.True(t, ok)
	// Teacher one is both absent and scheduled in the period; absent wins.
	assert.Equal(t, models.AvailabilityAbsent, statuses[1])
	assert.Equal(t, models.AvailabilityAlreadySubstituting, statuses[2])
	assert.Equal(t, models.AvailabilityHasOwnClass, statuses[3])
	assert.Equal(t, models.AvailabilityOnDuty, statuses[4])
	assert.Equal(t, models.AvailabilityAvailable, statuses[5])
}

func TestResolveAvailabilityUnknownPeriod(t *testing.T) {
	snap := newRosterSnapshot(monday, nil, threePeriods(), nil, nil, nil, nil, nil)

	_, ok := snap.resolveAvailability(99)
	assert.False(t, ok)
}

func TestResolveAvailabilityAllDayDutyBlocksEveryPeriod(t *testing.T) {
	teachers := []models.Teacher{{ID: 1}, {ID: 2}}
	duties := []models.DutyEntry{
		{ID: 20, TeacherID: 1, Location: "Nobet", DayOfWeek: 1, PeriodID: nil},
		{ID: 21, TeacherID: 2, Location: "Koridor", DayOfWeek: 1, PeriodID: int64Ptr(1)},
	}

	snap := newRosterSnapshot(monday, teachers, threePeriods(), nil, nil, duties, nil, nil)

	statuses, ok := snap.resolveAvailability(3)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityOnDuty, statuses[1])
	assert.Equal(t, models.AvailabilityAvailable, statuses[2])

	statuses, ok = snap.resolveAvailability(1)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityOnDuty, statuses[1])
	assert.Equal(t, models.AvailabilityOnDuty, statuses[2])
}

func TestResolveAvailabilitySubstitutingBlocksSamePeriodOnly(t *testing.T) {
	teachers := []models.Teacher{{ID: 1}, {ID: 2}}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
	}
	assignments := []models.SubstitutionAssignment{
		{ID: 40, AbsentTeacherID: 1, SubstituteTeacherID: 2, ScheduleEntryID: 10, Date: monday},
	}

	snap := newRosterSnapshot(monday, teachers, threePeriods(), nil, entries, nil, nil, assignments)

	statuses, ok := snap.resolveAvailability(1)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityAlreadySubstituting, statuses[2])

	statuses, ok = snap.resolveAvailability(3)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityAvailable, statuses[2])
}

func TestCoverageNeededOrdersByPeriodPosition(t *testing.T) {
	// Period ids deliberately disagree with their timetable position.
	periods := []models.Period{
		{ID: 7, OrderNo: 3},
		{ID: 8, OrderNo: 1},
		{ID: 9, OrderNo: 2},
	}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, PeriodID: 7, DayOfWeek: 1},
		{ID: 11, TeacherID: 1, PeriodID: 9, DayOfWeek: 1},
		{ID: 12, TeacherID: 1, PeriodID: 8, DayOfWeek: 1},
		{ID: 13, TeacherID: 2, PeriodID: 8, DayOfWeek: 1},
	}

	snap := newRosterSnapshot(monday, nil, periods, nil, entries, nil, nil, nil)

	needed := snap.coverageNeeded(1)
	require.Len(t, needed, 3)
	assert.Equal(t, int64(12), needed[0].ID)
	assert.Equal(t, int64(11), needed[1].ID)
	assert.Equal(t, int64(10), needed[2].ID)
}

func mondayMathRoster() *rosterSnapshot {
	teachers := []models.Teacher{
		{ID: 1, FullName: "Teacher One", Branch: "Matematik"},
		{ID: 2, FullName: "Teacher Two", Branch: "Fizik"},
		{ID: 3, FullName: "Teacher Three", Branch: "Matematik"},
	}
	subjects := []models.Subject{
		{ID: 1, Name: "Matematik", Branch: "Matematik"},
		{ID: 2, Name: "Fizik", Branch: "Fizik"},
	}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
		{ID: 11, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 3, DayOfWeek: 1},
		{ID: 12, TeacherID: 3, ClassID: 2, SubjectID: 1, PeriodID: 3, DayOfWeek: 1},
	}
	absences := []models.Absence{
		{ID: 30, TeacherID: 1, StartDate: monday, EndDate: monday, Reason: "rapor"},
	}
	return newRosterSnapshot(monday, teachers, threePeriods(), subjects, entries, nil, absences, nil)
}

func TestPlanAutoFillPrefersBranchMatch(t *testing.T) {
	snap := mondayMathRoster()

	planned, skipped := snap.planAutoFill(1)
	require.Len(t, planned, 2)
	assert.Empty(t, skipped)

	// First period: teacher three shares the Matematik branch and beats the
	// Fizik teacher. Third period: teacher three teaches an own class, so the
	// remaining teacher covers it.
	assert.Equal(t, int64(10), planned[0].ScheduleEntryID)
	assert.Equal(t, int64(3), planned[0].SubstituteTeacherID)
	assert.Equal(t, int64(11), planned[1].ScheduleEntryID)
	assert.Equal(t, int64(2), planned[1].SubstituteTeacherID)
}

func TestPlanAutoFillDeterministic(t *testing.T) {
	first, firstSkipped := mondayMathRoster().planAutoFill(1)
	second, secondSkipped := mondayMathRoster().planAutoFill(1)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSkipped, secondSkipped)
}

func TestPlanAutoFillBalancesDailyLoad(t *testing.T) {
	teachers := []models.Teacher{
		{ID: 1, Branch: "Matematik"},
		{ID: 2, Branch: "Tarih"},
		{ID: 3, Branch: "Muzik"},
	}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
		{ID: 11, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 2, DayOfWeek: 1},
	}
	subjects := []models.Subject{{ID: 1, Name: "Matematik", Branch: "Matematik"}}
	absences := []models.Absence{{ID: 30, TeacherID: 1, StartDate: monday, EndDate: monday}}

	snap := newRosterSnapshot(monday, teachers, threePeriods(), subjects, entries, nil, absences, nil)

	planned, skipped := snap.planAutoFill(1)
	require.Len(t, planned, 2)
	assert.Empty(t, skipped)

	// Neither candidate matches the branch: the lowest id takes the first
	// slot, and the load tie-break hands the next slot to the other teacher.
	assert.Equal(t, int64(2), planned[0].SubstituteTeacherID)
	assert.Equal(t, int64(3), planned[1].SubstituteTeacherID)
}

func TestPlanAutoFillSkipsUncoverableSlots(t *testing.T) {
	teachers := []models.Teacher{
		{ID: 1, Branch: "Matematik"},
		{ID: 2, Branch: "Fizik"},
	}
	entries := []models.ScheduleEntry{
		{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
		{ID: 11, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 2, DayOfWeek: 1},
	}
	duties := []models.DutyEntry{
		{ID: 20, TeacherID: 2, Location: "Nobet", DayOfWeek: 1, PeriodID: int64Ptr(2)},
	}
	absences := []models.Absence{{ID: 30, TeacherID: 1, StartDate: monday, EndDate: monday}}

	snap := newRosterSnapshot(monday, teachers, threePeriods(), nil, entries, duties, absences, nil)

	planned, skipped := snap.planAutoFill(1)
	require.Len(t, planned, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(10), planned[0].ScheduleEntryID)
	assert.Equal(t, int64(11), skipped[0].ScheduleEntryID)
	assert.Equal(t, models.SkipReasonNoAvailableTeacher, skipped[0].Reason)
}

func TestPlanAutoFillLeavesCoveredSlotsAlone(t *testing.T) {
	snap := mondayMathRoster()
	snap.assignments = append(snap.assignments, models.SubstitutionAssignment{
		ID: 40, AbsentTeacherID: 1, SubstituteTeacherID: 2, ScheduleEntryID: 10, Date: monday,
	})

	planned, skipped := snap.planAutoFill(1)
	require.Len(t, planned, 1)
	assert.Empty(t, skipped)
	assert.Equal(t, int64(11), planned[0].ScheduleEntryID)
}

func TestChooseCandidateBranchMatchIsCaseInsensitive(t *testing.T) {
	candidates := []models.Teacher{
		{ID: 1, Branch: "fizik"},
		{ID: 2, Branch: "MATEMATIK"},
	}

	chosen := chooseCandidate(candidates, "Matematik", map[int64]int{})
	assert.Equal(t, int64(2), chosen.ID)
}
