package service

import (
	"sort"
	"strings"
	"time"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// rosterSnapshot is the immutable roster state for one date, loaded once per
// operation. Every resolver and planner computation runs against a snapshot,
// so identical snapshots always produce identical results.
type rosterSnapshot struct {
	date      time.Time
	dayOfWeek int

	teachers    []models.Teacher
	periods     map[int64]models.Period
	subjects    map[int64]models.Subject
	entries     []models.ScheduleEntry
	entryByID   map[int64]models.ScheduleEntry
	duties      []models.DutyEntry
	absences    []models.Absence
	assignments []models.SubstitutionAssignment
}

func newRosterSnapshot(
	date time.Time,
	teachers []models.Teacher,
	periods []models.Period,
	subjects []models.Subject,
	entries []models.ScheduleEntry,
	duties []models.DutyEntry,
	absences []models.Absence,
	assignments []models.SubstitutionAssignment,
) *rosterSnapshot {
	snap := &rosterSnapshot{
		date:        date,
		dayOfWeek:   models.ISOWeekday(date),
		teachers:    teachers,
		periods:     make(map[int64]models.Period, len(periods)),
		subjects:    make(map[int64]models.Subject, len(subjects)),
		entries:     entries,
		entryByID:   make(map[int64]models.ScheduleEntry, len(entries)),
		duties:      duties,
		absences:    absences,
		assignments: assignments,
	}
	for _, period := range periods {
		snap.periods[period.ID] = period
	}
	for _, subject := range subjects {
		snap.subjects[subject.ID] = subject
	}
	for _, entry := range entries {
		snap.entryByID[entry.ID] = entry
	}
	return snap
}

// resolveAvailability classifies every teacher for one period on the snapshot
// date. Statuses are assigned in a fixed precedence order, first match wins:
// absent, already substituting in the same period, teaching an own class,
// on duty, available.
func (s *rosterSnapshot) resolveAvailability(periodID int64) (map[int64]models.Availability, bool) {
	if _, ok := s.periods[periodID]; !ok {
		return nil, false
	}

	absent := make(map[int64]bool, len(s.absences))
	for _, absence := range s.absences {
		if absence.Contains(s.date) {
			absent[absence.TeacherID] = true
		}
	}

	substituting := make(map[int64]bool)
	for _, assignment := range s.assignments {
		entry, ok := s.entryByID[assignment.ScheduleEntryID]
		if !ok {
			continue
		}
		// Period equality matters: the same substitute may cover other
		// periods on the same day.
		if entry.PeriodID == periodID {
			substituting[assignment.SubstituteTeacherID] = true
		}
	}

	teaching := make(map[int64]bool)
	for _, entry := range s.entries {
		if entry.PeriodID == periodID {
			teaching[entry.TeacherID] = true
		}
	}

	onDuty := make(map[int64]bool)
	for _, duty := range s.duties {
		if duty.PeriodID == nil || *duty.PeriodID == periodID {
			onDuty[duty.TeacherID] = true
		}
	}

	result := make(map[int64]models.Availability, len(s.teachers))
	for _, teacher := range s.teachers {
		switch {
		case absent[teacher.ID]:
			result[teacher.ID] = models.AvailabilityAbsent
		case substituting[teacher.ID]:
			result[teacher.ID] = models.AvailabilityAlreadySubstituting
		case teaching[teacher.ID]:
			result[teacher.ID] = models.AvailabilityHasOwnClass
		case onDuty[teacher.ID]:
			result[teacher.ID] = models.AvailabilityOnDuty
		default:
			result[teacher.ID] = models.AvailabilityAvailable
		}
	}
	return result, true
}

// isAbsent reports whether the teacher has an absence covering the snapshot date.
func (s *rosterSnapshot) isAbsent(teacherID int64) bool {
	for _, absence := range s.absences {
		if absence.TeacherID == teacherID && absence.Contains(s.date) {
			return true
		}
	}
	return false
}

// coverageNeeded returns the absent teacher's schedule entries for the
// snapshot weekday, ordered by period position ascending. These are exactly
// the slots that must be covered.
func (s *rosterSnapshot) coverageNeeded(teacherID int64) []models.ScheduleEntry {
	var entries []models.ScheduleEntry
	for _, entry := range s.entries {
		if entry.TeacherID == teacherID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return s.periods[entries[i].PeriodID].OrderNo < s.periods[entries[j].PeriodID].OrderNo
	})
	return entries
}

// planAutoFill greedily covers the absent teacher's uncovered slots, earliest
// period first. Processing order is a documented contract: earlier periods
// claim scarce teachers before later ones, and assignments made within the
// run reduce availability for the remaining slots. Slots nobody can cover are
// skipped, never aborting the run.
//
// Candidate tie-break, applied until one remains:
//  1. teacher branch matches the covered subject's branch (case-insensitive)
//  2. fewest substitution assignments already made on this date school-wide
//  3. lowest teacher id
func (s *rosterSnapshot) planAutoFill(absentTeacherID int64) ([]models.SubstitutionAssignment, []models.SkippedEntry) {
	planned := make([]models.SubstitutionAssignment, 0)
	skipped := make([]models.SkippedEntry, 0)

	loadToday := make(map[int64]int)
	for _, assignment := range s.assignments {
		loadToday[assignment.SubstituteTeacherID]++
	}

	for _, entry := range s.coverageNeeded(absentTeacherID) {
		if s.hasAssignment(entry.ID) {
			continue
		}

		statuses, ok := s.resolveAvailability(entry.PeriodID)
		if !ok {
			skipped = append(skipped, models.SkippedEntry{ScheduleEntryID: entry.ID, Reason: models.SkipReasonNoAvailableTeacher})
			continue
		}

		var candidates []models.Teacher
		for _, teacher := range s.teachers {
			if statuses[teacher.ID] == models.AvailabilityAvailable {
				candidates = append(candidates, teacher)
			}
		}
		if len(candidates) == 0 {
			skipped = append(skipped, models.SkippedEntry{ScheduleEntryID: entry.ID, Reason: models.SkipReasonNoAvailableTeacher})
			continue
		}

		chosen := chooseCandidate(candidates, s.subjects[entry.SubjectID].Branch, loadToday)

		assignment := models.SubstitutionAssignment{
			AbsentTeacherID:     absentTeacherID,
			SubstituteTeacherID: chosen.ID,
			ScheduleEntryID:     entry.ID,
			Date:                s.date,
		}
		planned = append(planned, assignment)
		s.assignments = append(s.assignments, assignment)
		loadToday[chosen.ID]++
	}

	return planned, skipped
}

func (s *rosterSnapshot) hasAssignment(scheduleEntryID int64) bool {
	for _, assignment := range s.assignments {
		if assignment.ScheduleEntryID == scheduleEntryID {
			return true
		}
	}
	return false
}

func chooseCandidate(candidates []models.Teacher, subjectBranch string, loadToday map[int64]int) models.Teacher {
	remaining := candidates

	if subjectBranch != "" {
		var matched []models.Teacher
		for _, teacher := range remaining {
			if strings.EqualFold(teacher.Branch, subjectBranch) {
				matched = append(matched, teacher)
			}
		}
		if len(matched) > 0 {
			remaining = matched
		}
	}

	minLoad := loadToday[remaining[0].ID]
	for _, teacher := range remaining[1:] {
		if loadToday[teacher.ID] < minLoad {
			minLoad = loadToday[teacher.ID]
		}
	}
	var lightest []models.Teacher
	for _, teacher := range remaining {
		if loadToday[teacher.ID] == minLoad {
			lightest = append(lightest, teacher)
		}
	}

	chosen := lightest[0]
	for _, teacher := range lightest[1:] {
		if teacher.ID < chosen.ID {
			chosen = teacher
		}
	}
	return chosen
}
