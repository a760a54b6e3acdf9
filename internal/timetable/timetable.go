// Package timetable maps student ids to majors and grades and loads the
// static course timetable.
package timetable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"campusmarket/trading/internal/model"
)

// AcademicYearStart is the first calendar year of the loaded timetable.
const AcademicYearStart = 2025

var ErrInvalidStudentID = errors.New("invalid student id")

// Profile is what a student id encodes.
type Profile struct {
	EntryYear int
	Major     string
}

var majors = map[byte]string{
	'1': "IOT",
	'2': "SE",
	'3': "FIN",
	'4': "EIE",
}

// ParseStudentID decodes ids such as 24373302: the first two digits are the
// entry year, the fifth digit the major.
func ParseStudentID(id string) (Profile, error) {
	if len(id) < 6 {
		return Profile{}, fmt.Errorf("%w: %q is too short", ErrInvalidStudentID, id)
	}
	yy, err := strconv.Atoi(id[:2])
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %q has no entry year", ErrInvalidStudentID, id)
	}
	major, ok := majors[id[4]]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown major code %q in %q", ErrInvalidStudentID, id[4], id)
	}
	return Profile{EntryYear: 2000 + yy, Major: major}, nil
}

// TermForMonth treats February to July as the second term.
func TermForMonth(m time.Month) int {
	if m >= time.February && m <= time.July {
		return 2
	}
	return 1
}

// GradeLevel returns the year of study, clamped to 1..4.
func GradeLevel(entryYear int) int {
	return min(max(AcademicYearStart-entryYear+1, 1), 4)
}

// CourseStore is the persistence the timetable needs.
type CourseStore interface {
	CountCourses(ctx context.Context) (int, error)
	ReplaceCourses(ctx context.Context, courses []model.Course) error
	ListCourses(ctx context.Context, major string, grade, term int) ([]model.Course, error)
}

// Decode reads a JSON array of courses.
func Decode(r io.Reader) ([]model.Course, error) {
	var courses []model.Course
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("failed to decode timetable: %w", err)
	}
	return courses, nil
}

// EnsureLoaded imports the JSON file at path when the store holds no courses
// yet. It returns the number of courses imported.
func EnsureLoaded(ctx context.Context, store CourseStore, path string) (int, error) {
	n, err := store.CountCourses(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || path == "" {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open timetable: %w", err)
	}
	defer f.Close()

	courses, err := Decode(f)
	if err != nil {
		return 0, err
	}
	if len(courses) == 0 {
		return 0, nil
	}
	if err := store.ReplaceCourses(ctx, courses); err != nil {
		return 0, err
	}
	return len(courses), nil
}

// CoursesForTerm returns the courses the student takes in term.
func CoursesForTerm(ctx context.Context, store CourseStore, studentID string, term int) ([]model.Course, error) {
	p, err := ParseStudentID(studentID)
	if err != nil {
		return nil, err
	}
	return store.ListCourses(ctx, p.Major, GradeLevel(p.EntryYear), term)
}
